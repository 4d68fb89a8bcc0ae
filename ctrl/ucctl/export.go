package main

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/tennlab/ucaspian/link/capture"
	"github.com/tennlab/ucaspian/link/util"
	"os"
	"time"
)

var (
	exportChannel string
	exportOutput  string
	exportPcap    string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Work with session recordings",
}

var captureExportCmd = &cobra.Command{
	Use:   "export <recording.csv>",
	Short: "Extract one direction of a recording as a flat trace, or convert it to pcap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (exportOutput == "") == (exportPcap == "") {
			return errors.New("exactly one of --output or --pcap is required")
		}
		records, err := capture.DecodeRecording(args[0])
		if err != nil {
			return err
		}
		if exportOutput != "" {
			data := capture.ExtractChannel(records, exportChannel)
			if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes from channel %s.\n", len(data), exportChannel)
			return nil
		}
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		out, err := os.Create(exportPcap)
		if err != nil {
			return err
		}
		// the recording's file time approximates the end of the session
		base := info.ModTime()
		if len(records) > 0 {
			base = base.Add(-records[len(records)-1].Timestamp)
		}
		err = util.CombineErrors(capture.WritePcap(out, records, base.Truncate(time.Microsecond)), out.Close())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d packets.\n", len(records))
		return nil
	},
}

func init() {
	flags := captureExportCmd.Flags()
	flags.StringVar(&exportChannel, "channel", capture.ChannelRx, "channel to extract: rx or tx")
	flags.StringVarP(&exportOutput, "output", "o", "", "write the channel's bytes to this file")
	flags.StringVar(&exportPcap, "pcap", "", "write the whole recording to this pcap file")
	captureCmd.AddCommand(captureExportCmd)
	rootCmd.AddCommand(captureCmd)
}
