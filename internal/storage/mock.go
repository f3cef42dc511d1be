package storage

import (
	"fmt"
	"sort"
	"strings"
)

// MockStore is an in-memory Store for tests, with per-path write
// failure injection.
type MockStore struct {
	files      map[string][]byte
	FailWrites map[string]bool
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		files:      make(map[string][]byte),
		FailWrites: make(map[string]bool),
	}
}

func (m *MockStore) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *MockStore) Read(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, nil
}

func (m *MockStore) Write(path string, data []byte) error {
	if m.FailWrites[path] {
		return fmt.Errorf("injected write failure: %s", path)
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *MockStore) Delete(path string) error {
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	delete(m.files, path)
	return nil
}

func (m *MockStore) List(dir string) ([]string, error) {
	prefix := ""
	if dir != "" && dir != "." {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}

	var files []string
	for path := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, "/") {
			continue // not directly under dir
		}
		files = append(files, rest)
	}
	sort.Strings(files)
	return files, nil
}
