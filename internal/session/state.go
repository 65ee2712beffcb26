// Package session holds the client's only piece of session state: the name
// of the file the backend has accepted for questions.
package session

import "sync"

// State tracks the active filename. The zero value is Locked (no file).
type State struct {
	mu             sync.RWMutex
	activeFilename string
	active         bool
}

func NewState() *State {
	return &State{}
}

// ActiveFilename returns the accepted file name and whether one is set.
func (s *State) ActiveFilename() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeFilename, s.active
}

func (s *State) Activate(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeFilename = filename
	s.active = true
}

func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeFilename = ""
	s.active = false
}

// Ready reports whether chat submissions are currently permitted.
func (s *State) Ready() bool {
	_, ok := s.ActiveFilename()
	return ok
}
