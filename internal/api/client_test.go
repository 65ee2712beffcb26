package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "localhost"})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost:5001/"})
	assert.NoError(t, err)
}

func TestUploadSendsMultipartFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "doc.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.7", string(content))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"OK"}`))
	})

	resp, err := client.Upload(context.Background(), "doc.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Message)
	assert.Empty(t, resp.TaskID)
}

func TestUploadAcceptedWithTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"task_id":"abc-123"}`))
	})

	resp, err := client.Upload(context.Background(), "doc.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.TaskID)
}

func TestUploadBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad format"}`))
	})

	_, err := client.Upload(context.Background(), "doc.txt", strings.NewReader("x"))
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	assert.Equal(t, "bad format", backendErr.Message)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestErrorWithoutMessageUsesStatusText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{}`))
	})

	_, err := client.Chat(context.Background(), "q", "doc.pdf")
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "Service Unavailable", backendErr.Message)
}

func TestNonJSONBodyIsTransportError(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte("<html>oops</html>"))
		})

		_, err := client.Upload(context.Background(), "doc.pdf", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrTransport, "status %d", status)
	}
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	srv.Close()

	_, err = client.Chat(context.Background(), "q", "doc.pdf")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestChatSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ChatRequest{Question: "What is X?", Filename: "doc.pdf"}, req)

		w.Write([]byte(`{"answer":"X is Y"}`))
	})

	resp, err := client.Chat(context.Background(), "What is X?", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "X is Y", resp.Answer)
}

func TestChatHonoursContextCancellation(t *testing.T) {
	block := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, "q", "doc.pdf")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTaskStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/abc-123", r.URL.Path)
		w.Write([]byte(`{"status":"processing","progress":25,"message":"Identifying components..."}`))
	})

	status, err := client.TaskStatus(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, TaskStatus{Status: TaskProcessing, Progress: 25, Message: "Identifying components..."}, *status)
}
