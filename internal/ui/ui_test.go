package ui

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsai-uio/IMF-AITool/internal/api"
	"github.com/nsai-uio/IMF-AITool/internal/controller"
	"github.com/nsai-uio/IMF-AITool/internal/session"
)

type countingBackend struct {
	uploads atomic.Int32
	chats   atomic.Int32
}

func (b *countingBackend) Upload(ctx context.Context, filename string, file io.Reader) (*api.UploadResponse, error) {
	b.uploads.Add(1)
	return &api.UploadResponse{Message: "ok"}, nil
}

func (b *countingBackend) Chat(ctx context.Context, question, filename string) (*api.ChatResponse, error) {
	b.chats.Add(1)
	return &api.ChatResponse{Answer: "answer"}, nil
}

func (b *countingBackend) TaskStatus(ctx context.Context, taskID string) (*api.TaskStatus, error) {
	return &api.TaskStatus{Status: api.TaskCompleted}, nil
}

// testUI returns a UI whose queued updates run synchronously under mu, so
// tests can read widgets without the event loop.
func testUI(t *testing.T, state *session.State) (*UI, *countingBackend, *sync.Mutex) {
	t.Helper()
	backend := &countingBackend{}
	u := New(false, "")
	u.Bind(controller.New(backend, state, u, controller.Options{}))
	u.ctx, u.cancel = context.WithCancel(context.Background())
	t.Cleanup(u.cancel)

	var mu sync.Mutex
	u.queue = func(f func()) {
		mu.Lock()
		defer mu.Unlock()
		f()
	}
	return u, backend, &mu
}

func TestCommandsStayLocal(t *testing.T) {
	state := session.NewState()
	state.Activate("doc.pdf")
	u, backend, _ := testUI(t, state)

	u.chatInput.SetText(" /help ")
	u.submitChat()
	assert.Contains(t, u.textView.GetText(true), "/bye or /quit: Exit the application")
	assert.Empty(t, u.chatInput.GetText())

	u.chatInput.SetText("/debug")
	u.submitChat()
	assert.True(t, u.consoleShown)
	u.chatInput.SetText("/debug")
	u.submitChat()
	assert.False(t, u.consoleShown)

	u.chatInput.SetText("/quit")
	u.submitChat()
	assert.Error(t, u.ctx.Err())

	assert.Zero(t, backend.chats.Load())
	assert.Zero(t, backend.uploads.Load())
}

func TestCommandsInDocumentField(t *testing.T) {
	u, backend, _ := testUI(t, session.NewState())

	u.uploadField.SetText("/help")
	u.submitUpload()
	assert.Contains(t, u.textView.GetText(true), "Here are some commands")
	assert.Empty(t, u.uploadField.GetText())

	u.uploadField.SetText("/bye")
	u.submitUpload()
	assert.Error(t, u.ctx.Err())
	assert.Zero(t, backend.uploads.Load())
}

func TestQuestionReachesController(t *testing.T) {
	state := session.NewState()
	state.Activate("doc.pdf")
	u, backend, _ := testUI(t, state)

	u.chatInput.SetText("What is X?")
	u.submitChat()

	require.Eventually(t, func() bool { return backend.chats.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestEmptyUploadPath(t *testing.T) {
	u, backend, mu := testUI(t, session.NewState())

	u.uploadField.SetText("   ")
	u.submitUpload()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return u.status.GetText(true) == controller.MsgNoFileSelected
	}, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, backend.uploads.Load())
}

func TestSetChatEnabled(t *testing.T) {
	u, _, _ := testUI(t, session.NewState())
	assert.True(t, u.sendButton.IsDisabled())

	u.SetChatEnabled(true)
	assert.True(t, u.chatEnabled)
	assert.False(t, u.sendButton.IsDisabled())
	assert.Len(t, u.focusOrder(), 5)

	u.SetChatEnabled(false)
	assert.False(t, u.chatEnabled)
	assert.True(t, u.sendButton.IsDisabled())
	assert.Len(t, u.focusOrder(), 3)
}

func TestViewUpdates(t *testing.T) {
	u, _, _ := testUI(t, session.NewState())

	u.AppendMessage(controller.Message{Sender: controller.SenderBot, Text: "Ready!"})
	assert.Equal(t, "Bot:\nReady!\n\n", u.textView.GetText(true))

	u.SetStatus("Error: bad", controller.StatusError)
	assert.Equal(t, "Error: bad", u.status.GetText(true))

	u.chatInput.SetText("draft")
	u.ClearChatInput()
	assert.Empty(t, u.chatInput.GetText())
}
