package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"quillhouse/internal/workspace/surface"
)

// typingSurface echoes appended text to a terminal as the session writes it.
type typingSurface struct {
	*surface.Memory

	mu      sync.Mutex
	w       io.Writer
	printed string
}

func newTypingSurface(w io.Writer) *typingSurface {
	return &typingSurface{Memory: surface.NewMemory(), w: w}
}

func (s *typingSurface) SetContent(content string) {
	s.Memory.SetContent(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.HasPrefix(content, s.printed) {
		fmt.Fprint(s.w, content[len(s.printed):])
	} else {
		fmt.Fprint(s.w, "\n"+content)
	}
	s.printed = content
}
