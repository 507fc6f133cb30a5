package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string, chunkSize int64) *GraphClient {
	return NewClient(ClientConfig{
		BaseURL:      serverURL,
		GraphVersion: "v19.0",
		PageID:       "12345",
		AccessToken:  "test-token",
		ChunkSize:    chunkSize,
	}, nil)
}

func TestPostText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/12345/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "hello page", r.PostForm.Get("message"))
		assert.Equal(t, "test-token", r.PostForm.Get("access_token"))
		fmt.Fprint(w, `{"id": "12345_67890"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	id, err := client.PostText(context.Background(), "hello page")
	require.NoError(t, err)
	assert.Equal(t, "12345_67890", id)
}

func TestPostTextGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"message": "Invalid OAuth access token.", "type": "OAuthException", "code": 190}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	_, err := client.PostText(context.Background(), "hello")
	require.Error(t, err)

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
	assert.Equal(t, "Invalid OAuth access token.", graphErr.Message)
	assert.Equal(t, 190, graphErr.Code)
}

func TestPostPhotoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v19.0/12345/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://example.com/pic.jpg", r.PostForm.Get("url"))
		assert.Equal(t, "nice picture", r.PostForm.Get("caption"))
		fmt.Fprint(w, `{"id": "999", "post_id": "12345_999"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	id, err := client.PostPhotoURL(context.Background(), "https://example.com/pic.jpg", "nice picture")
	require.NoError(t, err)
	assert.Equal(t, "12345_999", id)
}

func TestPostPhotoFile(t *testing.T) {
	photo := filepath.Join(t.TempDir(), "pic.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg bytes"), 0600))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "with caption", r.MultipartForm.Value["caption"][0])

		file, header, err := r.FormFile("source")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "pic.jpg", header.Filename)

		fmt.Fprint(w, `{"id": "777"}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)

	id, err := client.PostPhotoFile(context.Background(), photo, "with caption")
	require.NoError(t, err)
	assert.Equal(t, "777", id)
}

func TestPostPhotoFileMissing(t *testing.T) {
	client := newTestClient("http://unused", 0)
	_, err := client.PostPhotoFile(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "cap")
	assert.Error(t, err)
}
