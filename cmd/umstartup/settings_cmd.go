package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the auto-minimize policy",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the persisted policy as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return writeJSON(cmd.OutOrStdout(), c.app.Settings())
			},
		},
		&cobra.Command{
			Use:   "auto-minimize <id> on|off",
			Short: "Opt an item in or out of window handling",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseSwitch(args[1])
				if err != nil {
					return err
				}
				if err := c.app.SetAutoMinimize(args[0], on); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Auto-minimize for %s: %t\n", args[0], c.app.IsAutoMinimizeEnabled(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "process-name <id> [name]",
			Short: "Override the process name watched for an item (omit name to clear)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := ""
				if len(args) == 2 {
					name = args[1]
				}
				if err := c.app.SetProcessNameMapping(args[0], name); err != nil {
					return err
				}
				if mapped, ok := c.app.ProcessNameMapping(args[0]); ok {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Process name for %s: %s\n", args[0], mapped)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Process name for %s: default\n", args[0])
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "behavior <id> minimize|close",
			Short: "Choose whether an item's window is minimized or closed",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.SetMinimizeBehavior(args[0], args[1]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Behavior for %s: %s\n", args[0], c.app.MinimizeBehavior(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "delay <id> [seconds]",
			Short: "Wait before handling an item's window (omit seconds to clear)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				var seconds *uint32
				if len(args) == 2 {
					n, err := strconv.ParseUint(args[1], 10, 32)
					if err != nil {
						return fmt.Errorf("invalid delay %q: %w", args[1], err)
					}
					v := uint32(n)
					seconds = &v
				}
				if err := c.app.SetMinimizeDelay(args[0], seconds); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Delay for %s: %ds\n", args[0], c.app.MinimizeDelay(args[0]))
				return nil
			},
		},
		&cobra.Command{
			Use:   "auto-exit on|off",
			Short: "Exit after handling all windows when launched at logon",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseSwitch(args[0])
				if err != nil {
					return err
				}
				if err := c.app.SetAutoExitEnabled(on); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Auto-exit: %t\n", c.app.AutoExitEnabled())
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the persisted policy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.app.ResetSettings(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings reset to defaults")
				return nil
			},
		},
	)
	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}
