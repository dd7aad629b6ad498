package commands

import (
	"os"

	"memrise-uploader/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Lists the courses you have edit permissions on.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		client := login(cmd.Context())

		courses, err := client.Courses(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list courses", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Id", "Name", "Source", "Target"})
		for _, course := range courses {
			t.AppendRow(table.Row{course.Id, course.Name, course.SourceLang, course.TargetLang})
		}
		t.Render()
	},
}
