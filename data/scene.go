package data

import "sync"

// SceneOpener materializes the root composites of a scene document.
type SceneOpener func() ([]*Composite, error)

// Scene is a top-level document unit containing root composites. Roots
// are materialized on Open through the configured opener so closed
// scenes stay cheap; the crawl restores the prior open state afterwards.
type Scene struct {
	ID   ID
	Name string

	// Active marks the scene currently open in the host environment; the
	// crawl never closes it.
	Active bool

	mu     sync.Mutex
	open   bool
	roots  []*Composite
	opener SceneOpener
}

// NewScene creates a closed scene whose roots load through opener.
func NewScene(id ID, name string, opener SceneOpener) *Scene {
	return &Scene{ID: id, Name: name, opener: opener}
}

func (s *Scene) AssetID() ID {
	return s.ID
}

func (s *Scene) AssetName() string {
	return s.Name
}

// Open loads the scene's root composites if they are not resident yet.
func (s *Scene) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	if s.opener != nil {
		roots, err := s.opener()
		if err != nil {
			return err
		}
		s.roots = roots
	}
	s.open = true
	return nil
}

// Close releases the loaded roots.
func (s *Scene) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	s.open = false
	if s.opener != nil {
		s.roots = nil
	}
}

// IsOpen reports whether the scene's roots are resident.
func (s *Scene) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Roots returns the loaded root composites; empty while closed.
func (s *Scene) Roots() []*Composite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roots
}
