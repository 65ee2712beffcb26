// Package controller implements the client side of the document chat: the
// upload and chat submit handlers, the status line and the message log.
//
// The controller never touches a widget directly. Everything visible goes
// through a View, and the only session state lives in an injected
// session.State, so both handlers can be driven from tests.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nsai-uio/IMF-AITool/internal/api"
	"github.com/nsai-uio/IMF-AITool/internal/logger"
	"github.com/nsai-uio/IMF-AITool/internal/session"
)

const (
	MsgNoFileSelected   = "Please select a file to upload."
	MsgUploading        = "Uploading and processing..."
	MsgUploadFailed     = "An unexpected error occurred."
	MsgChatFailed       = "An unexpected error occurred while fetching the answer."
	msgReadyFormat      = "Ready! You can now ask questions about %s."
	msgProcessingFormat = "Processing... %d%% %s"

	defaultPollInterval = time.Second
)

// Backend is the pair of endpoints the controller depends on, plus the
// status endpoint used by asynchronous uploads.
type Backend interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*api.UploadResponse, error)
	Chat(ctx context.Context, question, filename string) (*api.ChatResponse, error)
	TaskStatus(ctx context.Context, taskID string) (*api.TaskStatus, error)
}

// FileSelection is a file picked for upload. Open is called once per
// submission; its error is reported like any other transport failure.
type FileSelection struct {
	Name string
	Open func() (io.ReadCloser, error)
}

type Options struct {
	// PollInterval is the delay between status requests for an
	// asynchronous upload. Zero means one second.
	PollInterval time.Duration
}

type Controller struct {
	backend      Backend
	state        *session.State
	view         View
	pollInterval time.Duration
	log          *logger.Logger

	// renderMu orders message log appends with their View calls.
	renderMu sync.Mutex
	messages []Message
}

func New(backend Backend, state *session.State, view View, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Controller{
		backend:      backend,
		state:        state,
		view:         view,
		pollInterval: opts.PollInterval,
		log:          logger.NewLogger("controller"),
	}
}

// HandleUploadSubmit uploads sel and, on success, makes it the active file.
// Any failure clears the active file.
func (c *Controller) HandleUploadSubmit(ctx context.Context, sel *FileSelection) {
	if sel == nil || sel.Name == "" {
		c.view.SetStatus(MsgNoFileSelected, StatusError)
		return
	}

	c.view.SetStatus(MsgUploading, StatusProgress)

	resp, err := c.upload(ctx, sel)
	if err != nil {
		c.uploadFailed(err)
		return
	}

	message := resp.Message
	if resp.TaskID != "" {
		c.log.Infof("upload of %s accepted as task %s", sel.Name, resp.TaskID)
		message, err = c.waitForTask(ctx, resp.TaskID)
		if err != nil {
			c.uploadFailed(err)
			return
		}
	}

	c.view.SetStatus(message, StatusSuccess)
	c.state.Activate(sel.Name)
	c.view.SetChatEnabled(true)
	c.RenderMessage(SenderBot, fmt.Sprintf(msgReadyFormat, sel.Name))
	c.log.Infof("%s is ready for questions", sel.Name)
}

func (c *Controller) upload(ctx context.Context, sel *FileSelection) (*api.UploadResponse, error) {
	if sel.Open == nil {
		return nil, fmt.Errorf("%w: no reader for %s", api.ErrTransport, sel.Name)
	}
	file, err := sel.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", api.ErrTransport, sel.Name, err)
	}
	defer file.Close()

	return c.backend.Upload(ctx, sel.Name, file)
}

// waitForTask polls an asynchronous upload until it completes and returns the
// final status message.
func (c *Controller) waitForTask(ctx context.Context, taskID string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: waiting for task %s: %w", api.ErrTransport, taskID, ctx.Err())
		case <-ticker.C:
		}

		status, err := c.backend.TaskStatus(ctx, taskID)
		if err != nil {
			return "", err
		}

		switch status.Status {
		case api.TaskCompleted:
			return status.Message, nil
		case api.TaskProcessing:
			c.view.SetStatus(fmt.Sprintf(msgProcessingFormat, status.Progress, status.Message), StatusProgress)
		case api.TaskNotFound:
			return "", &api.BackendError{StatusCode: http.StatusNotFound, Message: "Task not found"}
		default:
			message := status.Message
			if message == "" {
				message = "Processing failed"
			}
			return "", &api.BackendError{StatusCode: http.StatusInternalServerError, Message: message}
		}
	}
}

func (c *Controller) uploadFailed(err error) {
	c.state.Clear()
	c.view.SetChatEnabled(false)

	var backendErr *api.BackendError
	if errors.As(err, &backendErr) {
		c.view.SetStatus("Error: "+backendErr.Message, StatusError)
		return
	}
	c.log.Error("Upload failed: ", err)
	c.view.SetStatus(MsgUploadFailed, StatusError)
}

// HandleChatSubmit sends text as a question about the active file. Blank
// text or a missing active file make it a silent no-op. Concurrent calls are
// not serialised; each appends its own answer when it arrives.
func (c *Controller) HandleChatSubmit(ctx context.Context, text string) {
	question := strings.TrimSpace(text)
	if question == "" {
		return
	}
	filename, ok := c.state.ActiveFilename()
	if !ok {
		return
	}

	c.RenderMessage(SenderUser, question)
	c.view.ClearChatInput()

	resp, err := c.backend.Chat(ctx, question, filename)
	if err != nil {
		var backendErr *api.BackendError
		if errors.As(err, &backendErr) {
			c.RenderMessage(SenderBot, "Error: "+backendErr.Message)
			return
		}
		c.log.Error("Chat failed: ", err)
		c.RenderMessage(SenderBot, MsgChatFailed)
		return
	}

	c.RenderMessage(SenderBot, resp.Answer)
}

// RenderMessage appends a message to the log and shows it.
func (c *Controller) RenderMessage(sender Sender, text string) {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	msg := Message{Sender: sender, Text: text}
	c.messages = append(c.messages, msg)
	c.view.AppendMessage(msg)
}

// Messages returns a copy of the message log in display order.
func (c *Controller) Messages() []Message {
	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}
