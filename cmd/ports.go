package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/smazurov/lumenode/internal/link"
	"github.com/spf13/cobra"
)

// CreatePortsCmd creates the ports command.
func CreatePortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		Long:  `Enumerates the serial ports present on the system, with device descriptions where available.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ports, err := link.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Println("No serial ports found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PORT\tDESCRIPTION")
			for _, p := range ports {
				fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
			}
			return w.Flush()
		},
	}
}
