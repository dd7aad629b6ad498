// Package uploader walks course levels and fills in missing audio, one
// learnable at a time. Everything it talks to comes in as an interface so
// tests can drive the walk with stubbed collaborators instead of a live
// session.
package uploader

import (
	"context"
	"log/slog"

	"memrise-uploader/lib/scrapers/memrise"
	"memrise-uploader/lib/synth"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("uploader")

// LevelClient is the slice of the memrise client the walk needs.
type LevelClient interface {
	Learnables(ctx context.Context, level memrise.Level) ([]memrise.Learnable, error)
	UploadAudio(ctx context.Context, learnable memrise.Learnable, audio []byte) error
	RemoveAudio(ctx context.Context, learnable *memrise.Learnable) (int, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice synth.Voice) ([]byte, error)
}

type Options struct {
	Client LevelClient
	Synth  Synthesizer
	Voice  synth.Voice
	Levels []memrise.Level
	// when false, learnables that already have audio are left alone.
	// when true, their existing attachments are removed first and a
	// fresh synthesis uploaded in their place.
	ReplaceExisting bool
}

type Stats struct {
	Uploaded    int
	Skipped     int
	SynthFailed int
}

// Run processes the selected levels strictly one learnable at a time.
// Synthesis failures are logged and the learnable skipped, the run keeps
// going. Upload and removal failures below the row level terminate the
// run, they mean the session or the connection is gone.
func Run(ctx context.Context, opts Options) (Stats, error) {
	ctx, span := tracer.Start(ctx, "uploader:Run")
	defer span.End()

	var stats Stats
	for _, level := range opts.Levels {
		err := runLevel(ctx, opts, level, &stats)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "level processing aborted")
			return stats, err
		}
	}

	span.SetAttributes(
		attribute.Int("uploaded", stats.Uploaded),
		attribute.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

func runLevel(ctx context.Context, opts Options, level memrise.Level, stats *Stats) error {
	ctx, span := tracer.Start(ctx, "uploader:runLevel")
	defer span.End()
	span.SetAttributes(attribute.String("level_id", level.Id))

	learnables, err := opts.Client.Learnables(ctx, level)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list learnables")
		return err
	}

	for i := range learnables {
		// cancellation lands between operations, never mid-request
		if err := ctx.Err(); err != nil {
			return err
		}
		learnable := &learnables[i]

		if learnable.AudioCount > 0 {
			if !opts.ReplaceExisting {
				slog.InfoContext(ctx, "learnable already has audio, skipping", "text", learnable.Text)
				stats.Skipped++
				continue
			}
			slog.InfoContext(ctx, "removing existing audio", "text", learnable.Text)
			_, err := opts.Client.RemoveAudio(ctx, learnable)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to remove existing audio")
				return err
			}
		}

		audio, err := opts.Synth.Synthesize(ctx, learnable.Text, opts.Voice)
		if err != nil {
			slog.WarnContext(
				ctx, "synthesis failed, skipping learnable",
				"text", learnable.Text,
				"err", err,
			)
			stats.SynthFailed++
			continue
		}

		slog.InfoContext(ctx, "uploading audio", "text", learnable.Text)
		err = opts.Client.UploadAudio(ctx, *learnable, audio)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to upload audio")
			return err
		}
		stats.Uploaded++
	}

	return nil
}
