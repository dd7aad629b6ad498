package memrise

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func seedCsrfCookie(t testing.TB, client *Client) {
	res, err := client.Http.R().Get("/v1.21/web/ensure_csrf")
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, res.IsError())
	require.Equal(t, "csrf-1", client.csrfToken())
}

type uploadRecord struct {
	fileContentType string
	fileName        string
	fileContents    []byte
	form            map[string]string
	referer         string
}

func TestUploadAudio(t *testing.T) {
	var mu sync.Mutex
	var uploads []uploadRecord

	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/web/ensure_csrf", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "csrf-1"})
	})
	mux.HandleFunc("/ajax/thing/cell/upload_file/", func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseMultipartForm(1 << 20)
		require.NoError(t, err)

		file, header, err := r.FormFile("f")
		require.NoError(t, err)
		defer file.Close()
		contents, err := io.ReadAll(file)
		require.NoError(t, err)

		record := uploadRecord{
			fileContentType: header.Header.Get("Content-Type"),
			fileName:        header.Filename,
			fileContents:    contents,
			form:            map[string]string{},
			referer:         r.Header.Get("Referer"),
		}
		for key := range r.MultipartForm.Value {
			record.form[key] = r.FormValue(key)
		}

		mu.Lock()
		uploads = append(uploads, record)
		mu.Unlock()
	})

	client, _ := setupClient(t, mux)
	seedCsrfCookie(t, client)

	learnable := Learnable{Id: "1001", Text: "안녕", ColumnKey: "3", AudioCount: 0}
	err := client.UploadAudio(context.Background(), learnable, []byte("mp3-bytes"))
	if err != nil {
		t.Fatal(err)
	}

	require.Len(t, uploads, 1)
	upload := uploads[0]
	require.Equal(t, "audio/mp3", upload.fileContentType)
	require.Equal(t, "audio.mp3", upload.fileName)
	require.Equal(t, []byte("mp3-bytes"), upload.fileContents)
	require.Equal(t, "1001", upload.form["thing_id"])
	require.Equal(t, "3", upload.form["cell_id"])
	require.Equal(t, "column", upload.form["cell_type"])
	require.Equal(t, "csrf-1", upload.form["csrfmiddlewaretoken"])
	require.Contains(t, upload.referer, "/course")
}

func TestUploadAudioWithoutSession(t *testing.T) {
	client, _ := setupClient(t, http.NewServeMux())

	err := client.UploadAudio(context.Background(), Learnable{Id: "1", ColumnKey: "3"}, nil)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestRemoveAudio(t *testing.T) {
	var mu sync.Mutex
	var deletedFileIds []int

	mux := http.NewServeMux()
	mux.HandleFunc("/v1.21/web/ensure_csrf", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "csrf-1"})
	})
	mux.HandleFunc("/ajax/thing/column/delete_from/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "1001", r.PostForm.Get("thing_id"))
		require.Equal(t, "3", r.PostForm.Get("column_key"))
		require.Equal(t, "csrf-1", r.PostForm.Get("csrfmiddlewaretoken"))

		fileId, err := strconv.Atoi(r.PostForm.Get("file_id"))
		require.NoError(t, err)

		// the deletion of the second file fails, the loop should skip it
		// and keep going
		if fileId == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		mu.Lock()
		deletedFileIds = append(deletedFileIds, fileId)
		mu.Unlock()
	})

	client, _ := setupClient(t, mux)
	seedCsrfCookie(t, client)

	learnable := Learnable{Id: "1001", Text: "안녕", ColumnKey: "3", AudioCount: 3}
	remaining, err := client.RemoveAudio(context.Background(), &learnable)
	if err != nil {
		t.Fatal(err)
	}

	require.Equal(t, 1, remaining)
	require.Equal(t, 1, learnable.AudioCount)
	require.Equal(t, []int{1, 3}, deletedFileIds)
}

func TestRemoveAudioWithoutSession(t *testing.T) {
	client, _ := setupClient(t, http.NewServeMux())

	learnable := Learnable{Id: "1001", ColumnKey: "3", AudioCount: 0}
	_, err := client.RemoveAudio(context.Background(), &learnable)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
}
