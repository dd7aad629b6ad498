package memrise

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// number of dashboard entries requested per page. the offset advances by
// this amount, the service's own frontend has historically advanced by
// page size plus one but tolerates either increment.
const coursePageSize = 8

// Course is an immutable snapshot of a course the user can edit. The
// language codes come from the course detail endpoint, TargetLang drives
// voice selection downstream.
type Course struct {
	Id         string
	Name       string
	SourceLang string
	TargetLang string
}

// Level is an ordered grouping of learnables within a course.
type Level struct {
	Id       string
	Index    int
	Title    string
	CourseId string
}

type dashboardCourse struct {
	Id   json.Number `json:"id"`
	Name string      `json:"name"`
}

type dashboardPage struct {
	Courses        *[]dashboardCourse `json:"courses"`
	HasMoreCourses bool               `json:"has_more_courses"`
}

type courseDetail struct {
	Courses *[]struct {
		Source struct {
			LanguageCode string `json:"language_code"`
		} `json:"source"`
		Target struct {
			LanguageCode string `json:"language_code"`
		} `json:"target"`
	} `json:"courses"`
}

// Courses lists every course the user has edit permissions on, paging
// through the dashboard until the service reports no further pages.
// A malformed page aborts the whole listing, a silently truncated course
// list would hide data loss from the caller.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	ctx, span := tracer.Start(ctx, "client:Courses")
	defer span.End()

	var courses []Course
	offset := 0
	for {
		var page dashboardPage
		err := c.getJSON(ctx, "/v1.21/dashboard/courses/", map[string]string{
			"filter": "teaching",
			"offset": fmt.Sprint(offset),
			"limit":  fmt.Sprint(coursePageSize),
		}, &page)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch dashboard page")
			return nil, err
		}
		if page.Courses == nil {
			err := &ParseError{Message: "dashboard page is missing the courses field"}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		// an empty page that still claims more pages would loop forever,
		// treat the flag as malformed and abort
		if len(*page.Courses) == 0 && page.HasMoreCourses {
			err := &ParseError{Message: "dashboard returned an empty page but reports more courses"}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		for _, entry := range *page.Courses {
			if entry.Id.String() == "" || entry.Name == "" {
				err := &ParseError{Message: "dashboard course entry is missing id or name"}
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			course := Course{
				Id:   entry.Id.String(),
				Name: entry.Name,
			}
			course.SourceLang, course.TargetLang, err = c.courseLanguages(ctx, course.Id)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to fetch course languages")
				return nil, err
			}
			courses = append(courses, course)
		}

		if !page.HasMoreCourses {
			break
		}
		offset += coursePageSize
	}

	span.SetAttributes(attribute.Int("count", len(courses)))
	return courses, nil
}

func (c *Client) courseLanguages(ctx context.Context, id string) (source, target string, err error) {
	var detail courseDetail
	err = c.getJSON(ctx, fmt.Sprintf("/v1.21/courses/%s/", id), nil, &detail)
	if err != nil {
		return "", "", err
	}
	if detail.Courses == nil || len(*detail.Courses) == 0 {
		return "", "", &ParseError{Message: "course detail response is missing the course"}
	}
	entry := (*detail.Courses)[0]
	if entry.Target.LanguageCode == "" {
		return "", "", &ParseError{Message: "course detail is missing the target language code"}
	}
	return entry.Source.LanguageCode, entry.Target.LanguageCode, nil
}

type levelListing struct {
	Levels *[]struct {
		Id       json.Number `json:"id"`
		Index    int         `json:"index"`
		Title    string      `json:"title"`
		CourseId json.Number `json:"course_id"`
	} `json:"levels"`
}

// Levels lists a course's levels in one request. Early service revisions
// rendered this listing as HTML, the current one serves structured json.
func (c *Client) Levels(ctx context.Context, course Course) ([]Level, error) {
	ctx, span := tracer.Start(ctx, "client:Levels")
	defer span.End()
	span.SetAttributes(attribute.String("course_id", course.Id))

	var listing levelListing
	err := c.getJSON(ctx, fmt.Sprintf("/v1.21/courses/%s/levels/", course.Id), nil, &listing)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch level listing")
		return nil, err
	}
	if listing.Levels == nil {
		err := &ParseError{Message: "level listing is missing the levels field"}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var levels []Level
	for _, entry := range *listing.Levels {
		if entry.Id.String() == "" || entry.Title == "" {
			err := &ParseError{Message: "level entry is missing id or title"}
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		levels = append(levels, Level{
			Id:       entry.Id.String(),
			Index:    entry.Index,
			Title:    entry.Title,
			CourseId: entry.CourseId.String(),
		})
	}

	return levels, nil
}
