package gateway

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// TempStore hands out request-scoped temporary files for payloads that did
// not arrive with a caller-addressable path.
type TempStore struct {
	dir string
}

// NewTempStore returns a store rooted at dir, or the system temp directory
// when dir is empty.
func NewTempStore(dir string) *TempStore {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempStore{dir: dir}
}

// NewScope opens a resource scope for one request. Every file acquired
// through the scope is removed by ReleaseAll, on the success path and on
// every failure path alike.
func (t *TempStore) NewScope() *Scope {
	return &Scope{store: t}
}

type Scope struct {
	store *TempStore
	paths []string
}

// Acquire creates a fresh uniquely-named writable file under the store
// directory and registers it for release. The caller owns closing the file;
// the scope owns deleting it.
func (s *Scope) Acquire(suffix string) (*os.File, error) {
	name := filepath.Join(s.store.dir, fmt.Sprintf("img_%s%s", uuid.NewString(), suffix))
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	s.paths = append(s.paths, name)
	return f, nil
}

// ReleaseAll removes every file acquired in this scope. It is idempotent
// and never fails outward: a file that is already gone is fine, and any
// other deletion error is logged so it cannot mask the request outcome.
func (s *Scope) ReleaseAll() {
	for _, p := range s.paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove temp file %s: %v", p, err)
		}
	}
	s.paths = nil
}
