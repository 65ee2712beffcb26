package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nsai-uio/IMF-AITool/internal/api"
	"github.com/nsai-uio/IMF-AITool/internal/logger"
)

type Options struct {
	// Async answers uploads with 202 and a task id instead of a message.
	Async bool
	// StepDelay is the time each simulated processing stage takes.
	StepDelay time.Duration
	// MaxUploadBytes caps the request body of an upload.
	MaxUploadBytes int64
	// AllowedExtensions lists accepted extensions without the dot.
	AllowedExtensions []string
}

// processing stages reported by asynchronous uploads
var stages = []api.TaskStatus{
	{Status: api.TaskProcessing, Progress: 5, Message: "Extracting text..."},
	{Status: api.TaskProcessing, Progress: 25, Message: "Identifying components..."},
	{Status: api.TaskProcessing, Progress: 60, Message: "Constructing information model..."},
}

type Handler struct {
	ctx      context.Context
	store    *Store
	answerer Answerer
	opts     Options
	log      *logger.Logger
}

// NewHandler builds the endpoint handlers. ctx bounds background upload
// tasks.
func NewHandler(ctx context.Context, store *Store, answerer Answerer, opts Options) *Handler {
	if answerer == nil {
		answerer = CannedAnswerer{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = []string{"pdf"}
	}
	return &Handler{
		ctx:      ctx,
		store:    store,
		answerer: answerer,
		opts:     opts,
		log:      logger.NewLogger("stub backend"),
	}
}

// UploadHandler accepts a multipart "file" part.
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondWithError(w, newClientError(ErrTooLarge, "File exceeds %d bytes", h.opts.MaxUploadBytes))
			return
		}
		h.respondWithError(w, newClientError(ErrValidation, "No file part"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// An empty filename turns the part into a plain form value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			h.respondWithError(w, newClientError(ErrValidation, "No selected file"))
			return
		}
		h.respondWithError(w, newClientError(ErrValidation, "No file part"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.respondWithError(w, newClientError(ErrValidation, "No selected file"))
		return
	}

	filename := secureFilename(header.Filename)
	if !h.allowed(filename) {
		h.respondWithError(w, newClientError(ErrValidation, "File type not allowed"))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.respondWithError(w, fmt.Errorf("read upload: %w", err))
		return
	}
	doc := Document{Name: filename, Content: content, UploadedAt: time.Now()}
	h.store.PutDocument(doc)
	h.log.Infof("Stored %s (%d bytes)", filename, len(content))

	if h.opts.Async {
		taskID := h.store.NewTask()
		go h.process(taskID, doc)
		h.respondWithJSON(w, http.StatusAccepted, api.UploadResponse{TaskID: taskID})
		return
	}

	h.store.PutProcessed(doc, time.Now())

	h.respondWithJSON(w, http.StatusOK, api.UploadResponse{
		Message: fmt.Sprintf("File '%s' uploaded and processed successfully.", filename),
	})
}

func (h *Handler) allowed(filename string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return false
	}
	for _, allowed := range h.opts.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// process walks a task through the processing stages.
func (h *Handler) process(taskID string, doc Document) {
	for _, stage := range stages {
		h.store.SetTask(taskID, stage)
		select {
		case <-h.ctx.Done():
			h.store.SetTask(taskID, api.TaskStatus{Status: api.TaskError, Message: "Server shutting down"})
			return
		case <-time.After(h.opts.StepDelay):
		}
	}

	h.store.SetTask(taskID, api.TaskStatus{
		Status:        api.TaskCompleted,
		Progress:      100,
		Message:       "Processing complete!",
		ProcessedFile: h.store.PutProcessed(doc, time.Now()),
	})
	h.log.Infof("Task %s for %s completed", taskID, doc.Name)
}

// StatusHandler reports the progress of an asynchronous upload.
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	h.respondWithJSON(w, http.StatusOK, h.store.Task(taskID))
}

// ChatHandler answers a question about an uploaded document.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, newClientError(ErrValidation, "Invalid request body"))
		return
	}
	defer r.Body.Close()

	if err := validateRequest(req); err != nil {
		h.log.Warn("Rejected chat request: ", err)
		h.respondWithError(w, newClientError(ErrValidation, "Missing question or filename"))
		return
	}

	// Clients may refer to the processed .json result instead of the upload.
	filename := req.Filename
	if strings.HasSuffix(filename, ".json") {
		filename = strings.TrimSuffix(filename, ".json") + ".pdf"
	}

	doc, ok := h.store.Document(secureFilename(filename))
	if !ok {
		h.respondWithError(w, newClientError(ErrNotFound, "File \"%s\" not found. Please upload it first.", filename))
		return
	}

	answer, err := h.answerer.Answer(r.Context(), doc, req.Question)
	if err != nil {
		h.respondWithError(w, newClientError(ErrInternal, "Error during question answering: %s", err))
		return
	}

	h.respondWithJSON(w, http.StatusOK, api.ChatResponse{Answer: answer})
}

// ProcessedDataHandler serves the result of a processed upload.
func (h *Handler) ProcessedDataHandler(w http.ResponseWriter, r *http.Request) {
	data, ok := h.store.Processed(secureFilename(chi.URLParam(r, "filename")))
	if !ok {
		h.respondWithError(w, newClientError(ErrNotFound, "Processed data file not found."))
		return
	}
	h.respondWithJSON(w, http.StatusOK, data)
}

// IndexHandler lists the processed result files.
func (h *Handler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string][]string{"processed_files": h.store.ProcessedFiles()})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
