package handlers

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nsai-uio/IMF-AITool/internal/api"
)

// Document is an uploaded file kept in memory.
type Document struct {
	Name       string
	Content    []byte
	UploadedAt time.Time
}

// ProcessedData is the result served for a processed upload. The stand-in
// records what it received instead of an information model.
type ProcessedData struct {
	Document    string    `json:"document"`
	SizeBytes   int       `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Store holds uploaded documents, upload task progress and processing
// results. Nothing is persisted.
type Store struct {
	mu        sync.RWMutex
	documents map[string]Document
	tasks     map[string]api.TaskStatus
	processed map[string]ProcessedData
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]Document),
		tasks:     make(map[string]api.TaskStatus),
		processed: make(map[string]ProcessedData),
	}
}

func (s *Store) PutDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.Name] = doc
}

func (s *Store) Document(name string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[name]
	return doc, ok
}

// NewTask registers a task in the processing state and returns its id.
func (s *Store) NewTask() string {
	id := uuid.NewString()
	s.SetTask(id, api.TaskStatus{Status: api.TaskProcessing, Message: "Queued"})
	return id
}

func (s *Store) SetTask(id string, status api.TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = status
}

// Task returns the task status, or a not_found status for unknown ids.
func (s *Store) Task(id string) api.TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.tasks[id]
	if !ok {
		return api.TaskStatus{Status: api.TaskNotFound}
	}
	return status
}

// PutProcessed records the result for doc and returns its file name.
func (s *Store) PutProcessed(doc Document, at time.Time) string {
	name := processedName(doc.Name)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[name] = ProcessedData{
		Document:    doc.Name,
		SizeBytes:   len(doc.Content),
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: at,
	}
	return name
}

func (s *Store) Processed(name string) (ProcessedData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.processed[name]
	return data, ok
}

// ProcessedFiles lists the result file names in order.
func (s *Store) ProcessedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.processed))
	for name := range s.processed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// processedName maps an upload to its result file: report.pdf -> report.json.
func processedName(upload string) string {
	return strings.TrimSuffix(upload, filepath.Ext(upload)) + ".json"
}

// secureFilename reduces name to a safe base name: path components are
// dropped, whitespace becomes "_" and anything outside [A-Za-z0-9._-] is
// removed, as are leading dots and underscores.
func secureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "._")
}
