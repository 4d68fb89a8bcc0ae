package main

import (
	"bytes"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/tennlab/ucaspian/link/session"
	"github.com/tennlab/ucaspian/link/trace"
	"os"
	"strconv"
)

var (
	sendOutput    string
	clearActivity bool
)

var sendCmd = &cobra.Command{
	Use:   "send <input.bin>",
	Short: "Send a raw command stream and decode the device's response",
	Long: `send writes a prepared host command stream to the device without waiting
for acknowledgements, then collects the device's output until it goes quiet
and decodes it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var output []byte
		err = runSession(func(d *session.Dispatcher) error {
			if err := d.Send(input); err != nil {
				return err
			}
			output, err = d.Drain(nil)
			return err
		})
		if err != nil {
			return err
		}
		if sendOutput != "" {
			if err := os.WriteFile(sendOutput, output, 0o644); err != nil {
				return err
			}
		}
		return printEvents(cmd.OutOrStdout(), bytes.NewReader(output))
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the device's configuration, or only its activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(func(d *session.Dispatcher) error {
			var reply session.Reply
			var err error
			if clearActivity {
				reply, err = d.ClearActivity()
			} else {
				reply, err = d.ClearConfig()
			}
			if err != nil {
				return err
			}
			if err := reply.Err(); err != nil {
				return fmt.Errorf("clear was not acknowledged: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared.")
			return nil
		})
	},
}

var metricCmd = &cobra.Command{
	Use:   "metric <address>",
	Short: "Read one metric register",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return fmt.Errorf("invalid metric address %q: %w", args[0], err)
		}
		return runSession(func(d *session.Dispatcher) error {
			value, reply, err := d.ReadMetric(int(address))
			if err != nil {
				return err
			}
			if err := reply.Err(); err != nil {
				return fmt.Errorf("no metric response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), trace.Metric{Address: uint8(address), Value: value})
			return nil
		})
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendOutput, "output", "o", "", "also write the raw device output to this file")
	clearCmd.Flags().BoolVar(&clearActivity, "activity", false, "clear only neuron activity, keeping the configuration")
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(metricCmd)
}
