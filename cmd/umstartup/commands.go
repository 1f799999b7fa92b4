package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/umstartup/internal/models"
)

func (c *cli) newListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List startup items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := c.app.Scan()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return c.printItems(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func (c *cli) printItems(out io.Writer, items []models.StartupItem) error {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(out, "No startup items found.")
		return nil
	}

	settings := c.app.Settings()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATE\tAUTO\tSOURCE\tPATH")
	for _, it := range items {
		state := "enabled"
		if !it.Enabled {
			state = "disabled"
		}
		if !it.Valid {
			state += " (missing)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			it.ID, it.Name, state, policySummary(settings, it.ID), it.Source, it.Path)
	}
	return w.Flush()
}

// policySummary renders an item's auto-minimize policy in one cell.
func policySummary(s models.AppSettings, id string) string {
	if !s.AutoMinimizeItems.Has(id) {
		return "-"
	}
	summary := string(s.BehaviorFor(id))
	if d := s.DelayFor(id); d > 0 {
		summary += fmt.Sprintf(" +%ds", d)
	}
	if name, ok := s.ProcessNameMappings[id]; ok {
		summary += " (" + name + ")"
	}
	return summary
}

func (c *cli) newToggleCommand(use string, enable bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("%s a startup item", titleCase(use)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.app.Toggle(args[0], enable)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%sd %s\n", titleCase(use), item.Name)
			return nil
		},
	}
}

func (c *cli) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a startup item from its source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.app.Delete(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", item.Name)
			return nil
		},
	}
}

func (c *cli) newMonitorCommand() *cobra.Command {
	var autostart bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Hide or close the windows of configured startup items",
		Long: `Scan the startup items, then poll the visible windows and apply the
configured behavior to each opted-in item once. The command returns when no
work is left or on Ctrl+C, and prints when each item's window was handled.
That record is kept only for the lifetime of this command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runMonitor(cmd, autostart)
		},
	}
	cmd.Flags().BoolVar(&autostart, "autostart", false, "Treat this run as a logon launch (enables auto-exit)")
	return cmd
}

// runMonitor scans, starts the monitor and blocks until its loop exits or a
// signal arrives.
func (c *cli) runMonitor(cmd *cobra.Command, autostart bool) error {
	items := c.app.Scan()
	c.logger.Info("Starting monitor",
		zap.Int("items", len(items)),
		zap.Bool("autostart", autostart))

	if !c.app.StartMonitor(autostart) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Monitor is already running.")
		return nil
	}
	_, active := c.app.MonitorStatus()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Monitoring %d item(s). Press Ctrl+C to stop.\n", active)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-c.app.MonitorDone():
	case sig := <-sigCh:
		c.logger.Info("Received signal, stopping monitor",
			zap.String("signal", sig.String()))
		c.app.StopMonitor()
		<-c.app.MonitorDone()
	}

	c.printTimes(cmd.OutOrStdout())
	return nil
}

func (c *cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what a monitor run would watch",
		Long: `Scan the startup items and report how many of them are opted in to window
handling, along with the auto-exit setting and the policy file location.

The monitor and its session state (handled windows and their times) live
inside a 'umstartup monitor' process, so a separate status invocation always
sees a stopped monitor. The monitor command prints the handled windows when
it finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.app.Scan()
			running, active := c.app.MonitorStatus()
			state := "stopped"
			if running {
				state = "running"
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Platform:     %s\n", c.app.PlatformName())
			_, _ = fmt.Fprintf(out, "Monitor:      %s (in this process)\n", state)
			_, _ = fmt.Fprintf(out, "Active items: %d\n", active)
			_, _ = fmt.Fprintf(out, "Auto-exit:    %t\n", c.app.AutoExitEnabled())
			_, _ = fmt.Fprintf(out, "Settings:     %s\n", c.app.SettingsPath())
			return nil
		},
	}
}

func (c *cli) printTimes(out io.Writer) {
	times := c.app.MinimizeTimes()
	if len(times) == 0 {
		_, _ = fmt.Fprintln(out, "No windows handled in this session.")
		return
	}
	ids := make([]string, 0, len(times))
	for id := range times {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		at := time.UnixMilli(times[id]).Format(time.RFC3339)
		_, _ = fmt.Fprintf(out, "%s\t%s\n", id, at)
	}
}

func (c *cli) newSelfAutostartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "self-autostart",
		Short: "Register or unregister this tool to run at logon",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Launch the monitor at logon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("resolving executable path: %w", err)
				}
				if err := c.app.SelfAutostart().Install(exe); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s for logon\n", c.app.SelfAutostart().EntryName())
				return nil
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop launching at logon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := c.app.SelfAutostart().Uninstall(); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Removed logon entry")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the tool launches at logon",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				installed, err := c.app.SelfAutostart().IsInstalled()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Launch at logon: %t\n", installed)
				return nil
			},
		},
	)
	return cmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
