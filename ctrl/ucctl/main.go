package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"github.com/tennlab/ucaspian/ctrl/config"
	"github.com/tennlab/ucaspian/link/capture"
	"github.com/tennlab/ucaspian/link/packet"
	"github.com/tennlab/ucaspian/link/session"
	"github.com/tennlab/ucaspian/link/testpoint"
	"github.com/tennlab/ucaspian/link/util"
	"log"
	"os"
	"time"
)

var (
	cfgFile     string
	portFlag    string
	tcpFlag     string
	timeoutFlag time.Duration
	framingFlag string
	captureFlag string
	verbose     bool
	dryRun      bool

	cfg     *config.Config
	framing packet.Framing
)

var rootCmd = &cobra.Command{
	Use:   "ucctl",
	Short: "Drive a uCaspian accelerator over its serial link",
	Long: `ucctl sends commands to a uCaspian accelerator over a serial port or a
TCP serial bridge, and decodes the event stream the device sends back,
either live or from a capture.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("port") {
			cfg.Port = portFlag
		}
		if flags.Changed("tcp") {
			cfg.TCP = tcpFlag
		}
		if flags.Changed("timeout") {
			cfg.Timeout = timeoutFlag
		}
		if flags.Changed("framing") {
			cfg.Framing = framingFlag
		}
		if flags.Changed("capture") {
			cfg.Capture = captureFlag
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		framing, err = cfg.ParsedFraming()
		return err
	},
}

// runSession opens the configured link, recording it if a capture file is
// configured, and runs fn against it.
func runSession(fn func(d *session.Dispatcher) error) error {
	open := cfg.Opener()
	if dryRun {
		open = func() (session.Port, error) {
			return testpoint.MakeFakeDevice(framing), nil
		}
	}
	var recorder *capture.CSVRecorder
	if cfg.Capture != "" {
		var err error
		recorder, err = capture.CreateCSVRecorder(cfg.Capture)
		if err != nil {
			return err
		}
		direct := open
		open = func() (session.Port, error) {
			port, err := direct()
			if err != nil {
				return nil, err
			}
			return capture.Tap(port, recorder), nil
		}
	}
	err := session.WithSession(open, cfg.Timeout, func(d *session.Dispatcher) error {
		if verbose {
			d.Trace = log.New(os.Stderr, "", log.LstdFlags)
		}
		return fn(d)
	})
	if recorder != nil {
		err = util.CombineErrors(err, recorder.Close())
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.ucaspian/config.yaml)")
	pf.StringVar(&portFlag, "port", "", "serial device of the accelerator")
	pf.StringVar(&tcpFlag, "tcp", "", "host:port of a TCP serial bridge, used instead of --port")
	pf.DurationVar(&timeoutFlag, "timeout", 0, "reply timeout")
	pf.StringVar(&framingFlag, "framing", "", "packet framing: v1 (leak-sentinel) or v2 (leak-offset)")
	pf.StringVar(&captureFlag, "capture", "", "record the session to this CSV file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log every packet sent and received")
	pf.BoolVar(&dryRun, "dry-run", false, "talk to an in-memory fake device instead of the configured link")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
