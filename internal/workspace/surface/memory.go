// Package surface provides an in-memory editing surface for the workspace session.
package surface

import "sync"

// Memory is a Surface backed by a string. Programmatic SetContent does not fire
// change listeners; Edit and Blur simulate user input.
type Memory struct {
	mu       sync.Mutex
	content  string
	editable bool

	change  map[int]func()
	blur    map[int]func()
	nextID  int
	history []string
}

// NewMemory creates an empty, read-only surface.
func NewMemory() *Memory {
	return &Memory{change: map[int]func(){}, blur: map[int]func(){}}
}

func (m *Memory) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

func (m *Memory) SetContent(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	m.history = append(m.history, content)
}

func (m *Memory) SetEditable(editable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editable = editable
}

// Editable reports the last value passed to SetEditable.
func (m *Memory) Editable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editable
}

// Writes returns every value passed to SetContent, oldest first.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

func (m *Memory) OnChange(fn func()) (detach func()) {
	return m.register(m.change, fn)
}

func (m *Memory) OnBlur(fn func()) (detach func()) {
	return m.register(m.blur, fn)
}

// Edit replaces the content as a user would and fires change listeners.
// Edits to a read-only surface are ignored and return false.
func (m *Memory) Edit(content string) bool {
	m.mu.Lock()
	if !m.editable {
		m.mu.Unlock()
		return false
	}
	m.content = content
	listeners := collect(m.change)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return true
}

// Blur fires blur listeners.
func (m *Memory) Blur() {
	m.mu.Lock()
	listeners := collect(m.blur)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Listeners returns the number of attached change and blur listeners.
func (m *Memory) Listeners() (change, blur int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.change), len(m.blur)
}

func (m *Memory) register(set map[int]func(), fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	set[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(set, id)
			m.mu.Unlock()
		})
	}
}

func collect(set map[int]func()) []func() {
	out := make([]func(), 0, len(set))
	for _, fn := range set {
		out = append(out, fn)
	}
	return out
}
