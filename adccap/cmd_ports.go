package main

import (
	"fmt"

	"github.com/itohio/adcstream/pkg/device"
	"github.com/spf13/cobra"
)

// portsCmd lists serial ports
var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available serial ports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := device.Ports()
		if err != nil {
			return fmt.Errorf("failed to list ports: %w", err)
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
			return nil
		}
		for _, p := range ports {
			if p.Description != "" && p.Description != p.Name {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", p.Name, p.Description)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), p.Name)
			}
		}
		return nil
	},
}
