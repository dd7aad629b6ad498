package memrise

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// serves a dashboard whose pages each hold up to coursePageSize of the
// given courses, plus the per-course detail endpoint backing the language
// lookup
func dashboardHandler(t testing.TB, names []string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/dashboard/courses/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "teaching", r.URL.Query().Get("filter"))
		offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
		require.NoError(t, err)
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)

		end := offset + limit
		if end > len(names) {
			end = len(names)
		}
		page := `{"courses": [`
		for i := offset; i < end; i++ {
			if i > offset {
				page += ","
			}
			page += fmt.Sprintf(`{"id": %d, "name": "%s"}`, i+1, names[i])
		}
		page += fmt.Sprintf(`], "has_more_courses": %t}`, end < len(names))
		w.Write([]byte(page))
	})
	mux.HandleFunc("/v1.21/courses/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses": [{"source": {"language_code": "en"}, "target": {"language_code": "ko"}}]}`))
	})
	return mux
}

func TestCoursesPagination(t *testing.T) {
	testCases := []struct {
		name  string
		count int
	}{
		{"empty", 0},
		{"single page", 3},
		{"multiple pages", coursePageSize*2 + 5},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			names := make([]string, test.count)
			for i := range names {
				names[i] = fmt.Sprintf("Course %d", i+1)
			}
			client, _ := setupClient(t, dashboardHandler(t, names))

			courses, err := client.Courses(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			require.Len(t, courses, test.count)
			seen := map[string]bool{}
			for i, course := range courses {
				require.Equal(t, names[i], course.Name)
				require.NotEmpty(t, course.Id)
				require.Equal(t, "ko", course.TargetLang)
				require.False(t, seen[course.Id], "duplicate course id %s", course.Id)
				seen[course.Id] = true
			}
		})
	}
}

func TestCoursesMalformedPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/dashboard/courses/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"to_review_total": 3}`))
	})
	client, _ := setupClient(t, mux)

	_, err := client.Courses(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestCoursesEmptyPageClaimingMore(t *testing.T) {
	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/dashboard/courses/", func(w http.ResponseWriter, r *http.Request) {
		requests++
		// a malformed flag must never trap the listing in an endless loop
		w.Write([]byte(`{"courses": [], "has_more_courses": true}`))
	})
	client, _ := setupClient(t, mux)

	_, err := client.Courses(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 1, requests)
}

func TestCoursesInvalidJson(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/dashboard/courses/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})
	client, _ := setupClient(t, mux)

	_, err := client.Courses(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestCoursesMissingTargetLanguage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/dashboard/courses/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses": [{"id": 1, "name": "Korean Basics"}], "has_more_courses": false}`))
	})
	mux.HandleFunc("/v1.21/courses/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"courses": [{"source": {"language_code": "en"}}]}`))
	})
	client, _ := setupClient(t, mux)

	_, err := client.Courses(context.Background())
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestLevels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/courses/7/levels/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"levels": [
			{"id": 101, "index": 1, "title": "Level 1", "course_id": 7},
			{"id": 102, "index": 2, "title": "Level 2", "course_id": 7}
		]}`))
	})
	client, _ := setupClient(t, mux)

	levels, err := client.Levels(context.Background(), Course{Id: "7", Name: "Korean Basics"})
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, []Level{
		{Id: "101", Index: 1, Title: "Level 1", CourseId: "7"},
		{Id: "102", Index: 2, Title: "Level 2", CourseId: "7"},
	}, levels)
}

func TestLevelsMissingField(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/courses/7/levels/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"levels": [{"index": 1, "course_id": 7}]}`))
	})
	client, _ := setupClient(t, mux)

	_, err := client.Levels(context.Background(), Course{Id: "7"})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}
