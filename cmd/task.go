package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"
	"timetracker/logger"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create and list the tasks that events record time against.`,
}

var taskCreateCmd = &cobra.Command{
	Use:     "create [description]",
	Short:   "Create a new task",
	Long:    `Creates a task. Quote descriptions that contain spaces.`,
	Aliases: []string{"add"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'task create' command")
		task, err := service().CreateTask(cmd.Context(), args[0])
		if err != nil {
			exitWithError("creating task", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Successfully created task: ID %d, Description '%s'", task.ID, task.Description)))
	},
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all tasks",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'task list' command")
		tasks, err := service().ListTasks(cmd.Context())
		if err != nil {
			exitWithError("listing tasks", err)
		}
		if len(tasks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No tasks found in the database."))
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Render("Tasks:"))
		writer := new(tabwriter.Writer)
		writer.Init(cmd.OutOrStdout(), 0, 8, 1, '\t', 0)
		fmt.Fprintln(writer, "ID\tDESCRIPTION\tCREATED")
		fmt.Fprintln(writer, "--\t-----------\t-------")
		for _, t := range tasks {
			fmt.Fprintf(writer, "%d\t%s\t%s\n", t.ID, t.Description, t.CreatedAt.Local().Format(time.DateTime))
		}
		writer.Flush()
	},
}

func init() {
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	rootCmd.AddCommand(taskCmd)
}
