package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type s3Request struct {
	method string
	path   string
	query  string
	body   string
}

// fakeS3 answers PutObject and DeleteObjects with canned responses.
type fakeS3 struct {
	mu          sync.Mutex
	requests    []s3Request
	deleteReply string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, s3Request{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		body:   string(body),
	})
	reply := f.deleteReply
	f.mu.Unlock()

	if r.Method == http.MethodPost {
		w.Header().Set("Content-Type", "application/xml")
		if reply == "" {
			reply = `<?xml version="1.0" encoding="UTF-8"?><DeleteResult></DeleteResult>`
		}
		_, _ = io.WriteString(w, reply)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func newTestClient(t *testing.T, fake *fakeS3) *S3Client {
	t.Helper()

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	client, err := NewS3Client(context.Background(), "attachments", server.URL)
	require.NoError(t, err)
	return client
}

func TestNewS3ClientRequiresBucket(t *testing.T) {
	_, err := NewS3Client(context.Background(), "", "")
	assert.Error(t, err)
}

func TestUploadFile(t *testing.T) {
	fake := &fakeS3{}
	client := newTestClient(t, fake)

	err := client.UploadFile(context.Background(), "posts/a.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.Len(t, fake.requests, 1)
	assert.Equal(t, http.MethodPut, fake.requests[0].method)
	assert.Equal(t, "/attachments/posts/a.png", fake.requests[0].path)
	assert.Contains(t, fake.requests[0].body, "png-bytes")
}

func TestDeleteFilesBatches(t *testing.T) {
	fake := &fakeS3{}
	client := newTestClient(t, fake)

	keys := make([]string, 1001)
	for i := range keys {
		keys[i] = "posts/file"
	}

	require.NoError(t, client.DeleteFiles(context.Background(), keys))

	require.Len(t, fake.requests, 2)
	for _, request := range fake.requests {
		assert.Equal(t, http.MethodPost, request.method)
		assert.Equal(t, "/attachments", request.path)
		assert.Contains(t, request.query, "delete")
	}
	assert.Equal(t, 1000, strings.Count(fake.requests[0].body, "<Key>"))
	assert.Equal(t, 1, strings.Count(fake.requests[1].body, "<Key>"))
}

func TestDeleteFilesNothingToDo(t *testing.T) {
	fake := &fakeS3{}
	client := newTestClient(t, fake)

	require.NoError(t, client.DeleteFiles(context.Background(), nil))
	assert.Empty(t, fake.requests)
}

func TestDeleteFilesReportsPerKeyErrors(t *testing.T) {
	fake := &fakeS3{
		deleteReply: `<?xml version="1.0" encoding="UTF-8"?><DeleteResult>` +
			`<Error><Key>posts/a</Key><Code>AccessDenied</Code><Message>denied</Message></Error>` +
			`</DeleteResult>`,
	}
	client := newTestClient(t, fake)

	err := client.DeleteFiles(context.Background(), []string{"posts/a", "posts/b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posts/a")
	assert.Contains(t, err.Error(), "denied")
}
