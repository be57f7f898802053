package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchfire-io/labwatch/internal/config"
	"github.com/watchfire-io/labwatch/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the runs the daemon is watching",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	running, _, err := config.IsDaemonRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running.")
		return nil
	}

	state, err := config.LoadMonitorState()
	if err != nil {
		return fmt.Errorf("failed to load monitor state: %w", err)
	}
	if len(state.Monitors) == 0 {
		fmt.Println("No active runs.")
		return nil
	}

	writeMonitors(os.Stdout, state.Monitors, time.Now())
	return nil
}

// writeMonitors prints one row per monitored run.
func writeMonitors(out io.Writer, monitors []models.MonitorInfo, now time.Time) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSYSTEM\tSTATE\tOFFSET\tREGISTERED\tLAST POLL")
	for _, m := range monitors {
		lastPoll := "never"
		if m.LastPollAt != nil {
			lastPoll = now.Sub(*m.LastPollAt).Truncate(time.Second).String() + " ago"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\t%s\n",
			m.RunID, m.System, monitorBadge(m), m.Offset, m.Registered, lastPoll)
	}
	_ = tw.Flush()
}

func monitorBadge(m models.MonitorInfo) string {
	switch {
	case m.PanicSignature != "" && m.PanicReported:
		return render(badgePanic, "panic: "+m.PanicSignature)
	case m.PanicSignature != "":
		return render(badgePanic, "panic (unreported): "+m.PanicSignature)
	case m.CacheWithdrawn:
		return render(badgeWithdrawn, "collected")
	default:
		return render(badgeWatching, "watching")
	}
}
