package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smazurov/lumenode/internal/link"
	"github.com/smazurov/lumenode/internal/logging"
	"github.com/smazurov/lumenode/internal/protocol"
	"github.com/spf13/cobra"
)

// CreateSendCmd creates the send command for one-shot device control
// without running the daemon.
func CreateSendCmd() *cobra.Command {
	var port string
	var baud int
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single command to the LED controller",
		Long: `Opens the serial port, waits for the controller's reset sequence to settle, ` +
			`sends one command, and exits.`,
	}
	cmd.PersistentFlags().StringVarP(&port, "port", "p", "/dev/ttyUSB0", "Serial port")
	cmd.PersistentFlags().IntVarP(&baud, "baud", "b", 9600, "Baud rate")
	cmd.PersistentFlags().DurationVar(&settle, "settle", link.DefaultSettleDelay, "Post-connect settle delay")

	// oneShot opens the link, waits out the settle delay, runs fn, and
	// closes the link again.
	oneShot := func(fn func(l *link.Link)) error {
		logging.Initialize(logging.Config{Level: "warn", Format: "text"})

		l := link.New(&link.Options{Port: port, Baud: baud, SettleDelay: settle})
		l.Connect("", 0)
		if !l.IsOpen() {
			return fmt.Errorf("could not open %s at %d baud", port, baud)
		}
		defer l.Disconnect()

		time.Sleep(settle)
		fn(l)
		return nil
	}

	colorCmd := &cobra.Command{
		Use:   "color <r> <g> <b>",
		Short: "Send a single RGB color",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			var ch [3]int
			for i, arg := range args {
				v, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("channel %q is not a number", arg)
				}
				ch[i] = v
			}
			c := protocol.NewColor(ch[0], ch[1], ch[2])
			return oneShot(func(l *link.Link) {
				l.SendTimeout(false)
				l.SendColor(c.R, c.G, c.B)
			})
		},
	}

	modeCmd := &cobra.Command{
		Use:   "mode <name>",
		Short: "Switch the firmware animation mode",
		Long:  "Accepted modes: " + strings.Join(protocol.ModeNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := protocol.ParseMode(args[0]); err != nil {
				return err
			}
			return oneShot(func(l *link.Link) {
				l.SendTimeout(false)
				l.SetMode(args[0])
			})
		},
	}

	timeoutCmd := &cobra.Command{
		Use:   "timeout <on|off>",
		Short: "Toggle the firmware idle timeout",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return oneShot(func(l *link.Link) {
				l.SendTimeout(enabled)
			})
		},
	}

	cmd.AddCommand(colorCmd, modeCmd, timeoutCmd)
	return cmd
}
