package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"
	"timetracker/logger"

	"github.com/spf13/cobra"
)

// tagCmd represents the base command for tag operations
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
	Long:  `Create and list the tags that can be attached to events.`,
}

var tagCreateCmd = &cobra.Command{
	Use:     "create [name]",
	Short:   "Create a new tag",
	Long:    `Creates a tag. Tag names must be unique.`,
	Aliases: []string{"add"},
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tagName := args[0]
		logger.Info("Executing 'tag create' command")
		tag, err := service().CreateTag(cmd.Context(), tagName)
		if err != nil {
			exitWithError(fmt.Sprintf("creating tag '%s'", tagName), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Successfully created tag: ID %d, Name '%s'", tag.ID, tag.Name)))
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all tags",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("Executing 'tag list' command")
		tags, err := service().ListTags(cmd.Context())
		if err != nil {
			exitWithError("listing tags", err)
		}
		if len(tags) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("No tags found in the database."))
			return
		}

		fmt.Fprintln(cmd.OutOrStdout(), headingStyle.Render("Tags:"))
		writer := new(tabwriter.Writer)
		writer.Init(cmd.OutOrStdout(), 0, 8, 1, '\t', 0)
		fmt.Fprintln(writer, "ID\tNAME\tCREATED")
		fmt.Fprintln(writer, "--\t----\t-------")
		for _, t := range tags {
			fmt.Fprintf(writer, "%d\t%s\t%s\n", t.ID, t.Name, t.CreatedAt.Local().Format(time.DateTime))
		}
		writer.Flush()
	},
}

func init() {
	tagCmd.AddCommand(tagCreateCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
