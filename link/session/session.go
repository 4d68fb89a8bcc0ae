package session

import (
	"github.com/tennlab/ucaspian/link/util"
	"time"
)

// WithSession opens a port, runs fn against a dispatcher bound to it and
// closes the port whether or not fn succeeded.
func WithSession(open Opener, timeout time.Duration, fn func(d *Dispatcher) error) error {
	port, err := open()
	if err != nil {
		return err
	}
	return util.CombineErrors(fn(MakeDispatcher(port, timeout)), port.Close())
}
