package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/lou-dome/internal/midi"
	"github.com/chase3718/lou-dome/internal/sink"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI inputs and serial devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		drv, err := rtmididrv.New()
		if err != nil {
			return fmt.Errorf("rtmididrv: %w", err)
		}
		defer drv.Close()

		inputs, err := midi.Inputs(drv)
		if err != nil {
			return fmt.Errorf("midi: list inputs: %w", err)
		}
		opts := p.MIDIOptions()
		usable := midi.FilterExcluded(inputs, opts.Excluded)
		picked, _ := midi.PickPreferred(usable, opts.Preferred)

		fmt.Fprintln(out, "MIDI inputs:")
		if len(inputs) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, name := range inputs {
			mark := " "
			switch {
			case name == picked:
				mark = "*"
			case !slices.Contains(usable, name):
				mark = "-"
			}
			fmt.Fprintf(out, " %s %s\n", mark, name)
		}

		ports, err := sink.SerialPorts()
		if err != nil {
			return fmt.Errorf("serial: list ports: %w", err)
		}
		fmt.Fprintln(out, "Serial devices:")
		if len(ports) == 0 {
			fmt.Fprintln(out, "  (none)")
		}
		for _, name := range ports {
			fmt.Fprintf(out, "   %s\n", name)
		}
		return nil
	},
}
