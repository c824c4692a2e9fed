package handle

import "sync"

// Slot holds at most one handle. Each Begin or Clear starts a new generation;
// a Fill carrying an older generation is stale, so its handle is released
// and dropped instead of replacing the current one.
type Slot struct {
	mu  sync.Mutex
	gen uint64
	cur *Handle
}

// Begin releases the current handle and returns the generation a pending
// load must present to Fill.
func (s *Slot) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	s.gen++
	return s.gen
}

// Fill installs h if gen is still current. It reports false, after
// releasing h, when the slot has moved on.
func (s *Slot) Fill(gen uint64, h *Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		if h != nil {
			_ = h.Release()
		}
		return false
	}

	if s.cur != nil && s.cur != h {
		_ = s.cur.Release()
	}
	s.cur = h
	return true
}

// Clear releases the current handle and invalidates any pending load
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	s.gen++
}

// Current returns the installed handle, or nil
func (s *Slot) Current() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Generation returns the current generation
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Slot) releaseLocked() {
	if s.cur != nil {
		_ = s.cur.Release()
		s.cur = nil
	}
}
