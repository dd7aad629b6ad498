package memrise

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// UploadAudio attaches mp3 bytes to a learnable's audio column. The
// service does not echo a new attachment count back, so the in-memory
// count is left untouched.
func (c *Client) UploadAudio(ctx context.Context, learnable Learnable, audio []byte) error {
	ctx, span := tracer.Start(ctx, "client:UploadAudio")
	defer span.End()
	span.SetAttributes(attribute.String("thing_id", learnable.Id))

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	csrf := c.csrfToken()
	if csrf == "" {
		err := &AuthenticationError{Message: "session is missing the csrf cookie"}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetMultipartField("f", "audio.mp3", "audio/mp3", bytes.NewReader(audio)).
		SetMultipartFormData(map[string]string{
			"thing_id":            learnable.Id,
			"cell_id":             learnable.ColumnKey,
			"cell_type":           "column",
			"csrfmiddlewaretoken": csrf,
		}).
		SetHeader("Referer", c.absUrl("/course")).
		Post("/ajax/thing/cell/upload_file/")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make upload request")
		return &ConnectionError{Message: "audio upload request failed", Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "upload returned an error status")
		return &ConnectionError{Message: "unexpected response to audio upload: " + res.Status()}
	}

	return nil
}

// RemoveAudio deletes every audio attachment on a learnable, one deletion
// request per 1-based file position. A failed deletion is logged and that
// position skipped, so the decremented count reflects actual server state
// to the client's best knowledge. The remaining count is returned and
// also written back to the learnable.
func (c *Client) RemoveAudio(ctx context.Context, learnable *Learnable) (int, error) {
	ctx, span := tracer.Start(ctx, "client:RemoveAudio")
	defer span.End()
	span.SetAttributes(
		attribute.String("thing_id", learnable.Id),
		attribute.Int("audio_count", learnable.AudioCount),
	)

	csrf := c.csrfToken()
	if csrf == "" {
		err := &AuthenticationError{Message: "session is missing the csrf cookie"}
		span.SetStatus(codes.Error, err.Error())
		return learnable.AudioCount, err
	}

	total := learnable.AudioCount
	for fileId := 1; fileId <= total; fileId++ {
		err := c.removeAudioFile(ctx, learnable, fileId)
		if err != nil {
			span.RecordError(err)
			slog.ErrorContext(
				ctx, "failed to remove audio file",
				"thing_id", learnable.Id,
				"file_id", fileId,
				"err", err,
			)
			continue
		}
		learnable.AudioCount--
	}

	return learnable.AudioCount, nil
}

func (c *Client) removeAudioFile(ctx context.Context, learnable *Learnable, fileId int) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"thing_id":   learnable.Id,
			"column_key": learnable.ColumnKey,
			"cell_type":  "column",
			"file_id":    fmt.Sprint(fileId),
			// read fresh per request, the service may rotate it
			"csrfmiddlewaretoken": c.csrfToken(),
		}).
		SetHeader("Referer", c.absUrl("/course")).
		Post("/ajax/thing/column/delete_from/")
	if err != nil {
		return &ConnectionError{Message: "audio deletion request failed", Err: err}
	}
	if res.IsError() {
		return &ConnectionError{Message: "unexpected response to audio deletion: " + res.Status()}
	}
	return nil
}
