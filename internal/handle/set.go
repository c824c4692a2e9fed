package handle

import "sync"

type setEntry struct {
	mimeType string
	h        *Handle
}

// Set keys handles by record id, for per-item views such as thumbnails.
// Replacing or dropping an entry releases its handle.
type Set struct {
	mu sync.Mutex
	m  map[int64]setEntry
}

func NewSet() *Set {
	return &Set{m: make(map[int64]setEntry)}
}

// Put stores h for id, releasing whatever was there before
func (s *Set) Put(id int64, mimeType string, h *Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.m[id]; ok && old.h != h {
		_ = old.h.Release()
	}
	s.m[id] = setEntry{mimeType: mimeType, h: h}
}

// Get returns the handle for id
func (s *Set) Get(id int64) (*Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	if !ok {
		return nil, false
	}
	return e.h, true
}

// Has reports whether id has a handle created for mimeType
func (s *Set) Has(id int64, mimeType string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[id]
	return ok && e.mimeType == mimeType
}

// Drop releases and forgets the handle for id
func (s *Set) Drop(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.m[id]; ok {
		_ = e.h.Release()
		delete(s.m, id)
	}
}

// Sync keeps only the entries whose id is in want with the same MIME type,
// releasing the rest. It returns how many were released.
func (s *Set) Sync(want map[int64]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for id, e := range s.m {
		if mt, ok := want[id]; ok && mt == e.mimeType {
			continue
		}
		_ = e.h.Release()
		delete(s.m, id)
		released++
	}
	return released
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Close releases every handle in the set
func (s *Set) Close() {
	s.Sync(nil)
}
