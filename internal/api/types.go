package api

import (
	"errors"
	"fmt"
)

// ErrTransport marks failures that never produced a usable backend answer:
// network errors, unreadable bodies and non-JSON payloads.
var ErrTransport = errors.New("transport error")

// BackendError is a non-success HTTP response carrying a JSON error message.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// UploadResponse is the body of POST /upload. A synchronous backend sets
// Message, an asynchronous one answers 202 with TaskID.
type UploadResponse struct {
	Message string `json:"message,omitempty"`
	TaskID  string `json:"task_id,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Question string `json:"question" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the failure body shared by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	TaskProcessing = "processing"
	TaskCompleted  = "completed"
	TaskError      = "error"
	TaskNotFound   = "not_found"
)

// TaskStatus is the body of GET /status/{taskID}.
type TaskStatus struct {
	Status        string `json:"status"`
	Progress      int    `json:"progress,omitempty"`
	Message       string `json:"message,omitempty"`
	ProcessedFile string `json:"processed_file,omitempty"`
}
