package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"timetracker/logger"
	"timetracker/models"

	"github.com/spf13/cobra"
)

var (
	eventTaskID int64
	eventTagIDs []int64
	eventDryRun bool
)

var eventCmd = &cobra.Command{
	Use:     "event",
	Short:   "Start, stop and list time tracking events",
	Aliases: []string{"ev"},
}

var eventStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start tracking time against a task",
	Long: `Starts a new running event for --task, labelled with any --tag ids.
The task and every tag must already exist; nothing is recorded otherwise.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'event start' command for task %d", eventTaskID)
		if eventDryRun {
			if err := service().CheckStart(cmd.Context(), eventTaskID, eventTagIDs); err != nil {
				exitWithError("checking event references", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("References valid; no event recorded."))
			return
		}
		id, err := service().StartEvent(cmd.Context(), eventTaskID, eventTagIDs)
		if err != nil {
			exitWithError("starting event", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Event started successfully: ID %d", id)))
	},
}

var eventStopCmd = &cobra.Command{
	Use:   "stop [event ID]",
	Short: "Stop a running event",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			exitWithError(fmt.Sprintf("invalid event ID '%s'", args[0]), err)
		}
		logger.Info("Executing 'event stop' command for event %d", eventID)
		stopped, err := service().StopEvent(cmd.Context(), eventID)
		if err != nil {
			exitWithError(fmt.Sprintf("stopping event %d", eventID), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Event stopped successfully: ID %d, duration %s", stopped.ID, time.Duration(stopped.DurationSeconds)*time.Second)))
	},
}

var eventShowCmd = &cobra.Command{
	Use:   "show [event ID]",
	Short: "Show one event, running or stopped",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eventID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			exitWithError(fmt.Sprintf("invalid event ID '%s'", args[0]), err)
		}
		logger.Info("Executing 'event show' command for event %d", eventID)
		e, err := service().GetEvent(cmd.Context(), eventID)
		if err != nil {
			exitWithError(fmt.Sprintf("showing event %d", eventID), err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("Event %d", e.ID)))
		writer := new(tabwriter.Writer)
		writer.Init(out, 0, 8, 1, '\t', 0)
		fmt.Fprintf(writer, "Task:\t%s\n", taskLabel(e))
		fmt.Fprintf(writer, "Tags:\t%s\n", tagLabel(e.Tags))
		fmt.Fprintf(writer, "Started:\t%s\n", e.CreatedAt.Local().Format(time.DateTime))
		if e.StoppedAt == nil {
			fmt.Fprintf(writer, "Stopped:\trunning for %s\n", time.Since(e.CreatedAt).Truncate(time.Second))
		} else {
			fmt.Fprintf(writer, "Stopped:\t%s (%s)\n", e.StoppedAt.Local().Format(time.DateTime), e.StoppedAt.Sub(e.CreatedAt).Truncate(time.Second))
		}
		writer.Flush()
	},
}

var eventListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List running events",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'event list' command")
		events, err := service().ListRunningEvents(cmd.Context())
		if err != nil {
			exitWithError("listing running events", err)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No running events."))
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Render("Running events:"))
		writer := new(tabwriter.Writer)
		writer.Init(cmd.OutOrStdout(), 0, 8, 1, '\t', 0)
		fmt.Fprintln(writer, "ID\tTASK\tTAGS\tSTARTED\tELAPSED")
		fmt.Fprintln(writer, "--\t----\t----\t-------\t-------")
		for _, e := range events {
			fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
				e.ID,
				taskLabel(e),
				tagLabel(e.Tags),
				e.CreatedAt.Local().Format(time.DateTime),
				time.Since(e.CreatedAt).Truncate(time.Second),
			)
		}
		writer.Flush()
	},
}

func taskLabel(e models.HydratedEvent) string {
	if e.Task == nil {
		return fmt.Sprintf("#%d (missing)", e.TaskID)
	}
	return e.Task.Description
}

func tagLabel(tags []models.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func init() {
	eventStartCmd.Flags().Int64VarP(&eventTaskID, "task", "t", 0, "ID of the task to track (required)")
	eventStartCmd.Flags().Int64SliceVar(&eventTagIDs, "tag", nil, "Tag ID to attach; repeat or comma-separate for several")
	eventStartCmd.Flags().BoolVar(&eventDryRun, "dry-run", false, "Check the task and tags exist without starting an event")
	eventStartCmd.MarkFlagRequired("task")

	eventCmd.AddCommand(eventStartCmd)
	eventCmd.AddCommand(eventStopCmd)
	eventCmd.AddCommand(eventShowCmd)
	eventCmd.AddCommand(eventListCmd)
	rootCmd.AddCommand(eventCmd)
}
