// Package roster holds the in-memory collection of student profiles.
// State is session-scoped; nothing is persisted.
package roster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"facemark/internal/avatar"
	"facemark/internal/model"
)

// ErrNotFound is returned for mutations against an unknown student id.
var ErrNotFound = errors.New("student not found")

// ProfileData carries the operator-supplied fields of a student profile.
type ProfileData struct {
	Name        string
	RollNumber  string
	PhoneNumber string
	Image       []byte
	ImageMIME   string
}

// Store is an in-memory roster of students, newest first.
type Store struct {
	mu       sync.RWMutex
	students []model.Student
	index    map[string]int
}

// New creates an empty roster.
func New() *Store {
	return &Store{index: make(map[string]int)}
}

// Add assigns a fresh id, stores the profile and returns it. When no
// reference image is supplied a placeholder avatar is generated so the
// profile always carries a ground-truth image for matching.
func (s *Store) Add(data ProfileData) model.Student {
	st := model.Student{
		ID:          newID(),
		Name:        data.Name,
		RollNumber:  data.RollNumber,
		PhoneNumber: data.PhoneNumber,
		Image:       data.Image,
		ImageMIME:   data.ImageMIME,
	}
	if len(st.Image) == 0 {
		st.Image = avatar.Generate(st.Name)
		st.ImageMIME = avatar.MIME
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = append([]model.Student{st}, s.students...)
	s.reindex()
	return st
}

// Update replaces all fields except the id. Unknown ids are reported
// rather than silently ignored.
func (s *Store) Update(id string, data ProfileData) (model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return model.Student{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	st := model.Student{
		ID:          id,
		Name:        data.Name,
		RollNumber:  data.RollNumber,
		PhoneNumber: data.PhoneNumber,
		Image:       data.Image,
		ImageMIME:   data.ImageMIME,
	}
	if len(st.Image) == 0 {
		st.Image = avatar.Generate(st.Name)
		st.ImageMIME = avatar.MIME
	}
	s.students[i] = st
	return st, nil
}

// Remove deletes a profile and reports whether it existed. Purging the
// student's attendance entries is the caller's responsibility.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.students = append(s.students[:i], s.students[i+1:]...)
	s.reindex()
	return true
}

// Get returns a profile by id.
func (s *Store) Get(id string) (model.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return model.Student{}, false
	}
	return s.students[i], true
}

// List returns all profiles, most recently added first.
func (s *Store) List() []model.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Student, len(s.students))
	copy(out, s.students)
	return out
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.students))
	for i, st := range s.students {
		s.index[st.ID] = i
	}
}

// newID returns an opaque student id. The "s" prefix is the vocabulary
// the recognition oracle replies with, so it is part of the contract.
func newID() string {
	return "s-" + uuid.NewString()
}
