package util

import "github.com/hashicorp/go-multierror"

// CombineErrors merges every non-nil error, returning a single error unchanged
// and nil when there are none.
func CombineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}
