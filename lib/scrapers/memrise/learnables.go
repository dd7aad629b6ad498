package memrise

import (
	"context"
	"log/slog"
	"strings"

	"memrise-uploader/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Learnable is a single vocabulary row within a level, the unit audio is
// attached to. ColumnKey identifies which table column holds the audio
// cell, every mutation needs it alongside the id.
type Learnable struct {
	Id         string
	Text       string
	ColumnKey  string
	AudioCount int
}

type editingHtml struct {
	Rendered *string `json:"rendered"`
}

// Learnables recovers a level's rows from the server-rendered editing
// fragment. There is no structured endpoint for this data, so every markup
// assumption the client makes lives in this one function: if the service
// changes its editing page, this is the only place to fix.
//
// Rows missing the expected text or audio cell are skipped with a warning
// since the service occasionally renders malformed rows for deleted or
// placeholder items.
func (c *Client) Learnables(ctx context.Context, level Level) ([]Learnable, error) {
	ctx, span := tracer.Start(ctx, "client:Learnables")
	defer span.End()
	span.SetAttributes(attribute.String("level_id", level.Id))

	var envelope editingHtml
	err := c.getJSON(ctx, "/ajax/level/editing_html/", map[string]string{
		"level_id": level.Id,
	}, &envelope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch editing html")
		return nil, err
	}
	if envelope.Rendered == nil {
		err := &ParseError{Message: "editing_html response is missing the rendered field"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(*envelope.Rendered))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse rendered html")
		return nil, &ParseError{Message: "failed to parse rendered editing html", Err: err}
	}

	var learnables []Learnable
	doc.Find("tr.thing").Each(func(_ int, row *goquery.Selection) {
		id := row.AttrOr("data-thing-id", "")
		if id == "" {
			slog.WarnContext(ctx, "skipping learnable row without an id", "level_id", level.Id)
			return
		}

		text := htmlutil.CleanText(row.Find("td:nth-child(2) > div > div").First().Text())
		audioCell := row.Find("td.audio").First()
		columnKey := audioCell.AttrOr("data-key", "")
		if text == "" || columnKey == "" {
			slog.WarnContext(
				ctx, "failed to parse learnable row",
				"level_id", level.Id,
				"thing_id", id,
			)
			return
		}

		audioCount := audioCell.Find("div.dropdown-menu").First().ChildrenFiltered("div").Length()

		learnables = append(learnables, Learnable{
			Id:         id,
			Text:       text,
			ColumnKey:  columnKey,
			AudioCount: audioCount,
		})
	})

	span.SetAttributes(attribute.Int("count", len(learnables)))
	return learnables, nil
}
