package commands

import (
	"memrise-uploader/lib/synth"
	"memrise-uploader/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(voicesCmd)
}

var voicesCmd = &cobra.Command{
	Use:   "voices <language code>",
	Short: "Lists the text-to-speech voices available for a language.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		tts, err := synth.NewClient(ctx)
		if err != nil {
			serviceutil.Fatal("failed to create text-to-speech client", err)
		}
		defer tts.Close()

		voices, err := tts.ListVoices(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to list voices", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"Name", "Language", "Gender"})
		for _, voice := range voices {
			t.AppendRow(table.Row{voice.Name, voice.LanguageCode, voice.Gender})
		}
		t.Render()
	},
}
