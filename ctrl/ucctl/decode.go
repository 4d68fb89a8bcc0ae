package main

import (
	"bufio"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/tennlab/ucaspian/link/packet"
	"github.com/tennlab/ucaspian/link/trace"
	"io"
	"os"
)

var (
	stopAtNull  bool
	showSummary bool
)

// printEvents decodes r to completion, printing each event as it is decoded.
func printEvents(w io.Writer, r io.Reader) error {
	decoder := trace.MakeDecoder(r)
	decoder.StopAtNull = stopAtNull
	var summary trace.Summary
	var err error
	for {
		var ev trace.Event
		ev, err = decoder.Next()
		if err != nil {
			break
		}
		summary.Add(ev)
		if !showSummary {
			fmt.Fprintln(w, ev)
		}
	}
	if showSummary {
		fmt.Fprintln(w, summary.String())
	}
	if err == io.EOF {
		return nil
	}
	return err
}

var decodeCmd = &cobra.Command{
	Use:   "decode <trace.bin>",
	Short: "Print the events in a captured device output stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return printEvents(cmd.OutOrStdout(), bufio.NewReader(f))
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands <input.bin>",
	Short: "Print the commands in a host command stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		reader := packet.MakeCommandReader(f, framing)
		for {
			command, err := reader.Next()
			if err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v %+v\n", command.Opcode(), command)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{decodeCmd, sendCmd} {
		c.Flags().BoolVar(&stopAtNull, "stop-at-null", false, "treat a null byte as the end of the stream")
		c.Flags().BoolVar(&showSummary, "summary", false, "print totals instead of every event")
	}
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(commandsCmd)
}
