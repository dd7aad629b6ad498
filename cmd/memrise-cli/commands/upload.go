package commands

import (
	"context"
	"fmt"

	"memrise-uploader/lib/scrapers/memrise"
	"memrise-uploader/lib/synth"
	"memrise-uploader/lib/uploader"
	"memrise-uploader/lib/util/serviceutil"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

var (
	replaceExisting bool
	assumeYes       bool
)

func init() {
	uploadCmd.Flags().BoolVar(
		&replaceExisting, "replace", false,
		"remove existing audio from learnables and upload a fresh synthesis",
	)
	uploadCmd.Flags().BoolVarP(
		&assumeYes, "yes", "y", false,
		"skip the confirmation prompt before uploading",
	)
	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Synthesizes and uploads audio for learnables in a course.",
	Args:  cobra.MaximumNArgs(0),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		client := login(ctx)

		course := selectCourse(ctx, client)
		levels := selectLevels(ctx, client, course)

		tts, err := synth.NewClient(ctx)
		if err != nil {
			serviceutil.Fatal("failed to create text-to-speech client", err)
		}
		defer tts.Close()
		voice := selectVoice(ctx, tts, course)

		if replaceExisting && !assumeYes {
			confirmed := false
			err := survey.AskOne(&survey.Confirm{
				Message: "Existing audio on every selected learnable will be deleted. Continue?",
			}, &confirmed)
			if err != nil {
				serviceutil.Fatal("prompt failed", err)
			}
			if !confirmed {
				return
			}
		}

		stats, err := uploader.Run(ctx, uploader.Options{
			Client:          client,
			Synth:           tts,
			Voice:           voice,
			Levels:          levels,
			ReplaceExisting: replaceExisting,
		})
		if err != nil {
			serviceutil.Fatal("upload run failed", err)
		}

		fmt.Printf(
			"done: %d uploaded, %d skipped, %d synthesis failures\n",
			stats.Uploaded, stats.Skipped, stats.SynthFailed,
		)
	},
}

func selectCourse(ctx context.Context, client *memrise.Client) memrise.Course {
	courses, err := client.Courses(ctx)
	if err != nil {
		serviceutil.Fatal("failed to list courses", err)
	}
	if len(courses) == 0 {
		serviceutil.Fatal("no courses", fmt.Errorf("this account has no courses with edit permissions"))
	}

	names := make([]string, len(courses))
	for i, course := range courses {
		names[i] = fmt.Sprintf("%s (%s)", course.Name, course.TargetLang)
	}

	var idx int
	err = survey.AskOne(&survey.Select{
		Message: "Course:",
		Options: names,
	}, &idx)
	if err != nil {
		serviceutil.Fatal("prompt failed", err)
	}
	return courses[idx]
}

func selectLevels(ctx context.Context, client *memrise.Client, course memrise.Course) []memrise.Level {
	levels, err := client.Levels(ctx, course)
	if err != nil {
		serviceutil.Fatal("failed to list levels", err)
	}
	if len(levels) == 0 {
		serviceutil.Fatal("no levels", fmt.Errorf("course %q has no levels", course.Name))
	}

	names := make([]string, len(levels))
	for i, level := range levels {
		names[i] = fmt.Sprintf("%d. %s", level.Index, level.Title)
	}

	var picked []int
	err = survey.AskOne(&survey.MultiSelect{
		Message: "Levels (none selected means all):",
		Options: names,
	}, &picked)
	if err != nil {
		serviceutil.Fatal("prompt failed", err)
	}
	if len(picked) == 0 {
		return levels
	}

	selected := make([]memrise.Level, len(picked))
	for i, idx := range picked {
		selected[i] = levels[idx]
	}
	return selected
}

func selectVoice(ctx context.Context, tts *synth.Client, course memrise.Course) synth.Voice {
	voices, err := tts.ListVoices(ctx, course.TargetLang)
	if err != nil {
		serviceutil.Fatal("failed to list voices", err)
	}
	if len(voices) == 0 {
		serviceutil.Fatal(
			"no voices",
			fmt.Errorf("no text-to-speech voices for language %q", course.TargetLang),
		)
	}

	names := make([]string, len(voices))
	for i, voice := range voices {
		names[i] = voice.String()
	}

	var idx int
	err = survey.AskOne(&survey.Select{
		Message: "Voice:",
		Options: names,
	}, &idx)
	if err != nil {
		serviceutil.Fatal("prompt failed", err)
	}
	return voices[idx]
}
