package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	errs "github.com/zimmermanw84/ts-visio-sub000/pkg/errors"
)

const pageExt = ".json"

// FileStore stores each page as a JSON file in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// An empty dir defaults to ~/.config/tsvisio/pages.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeStore, err, "get home dir")
		}
		dir = filepath.Join(home, ".config", "tsvisio", "pages")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "create page dir")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory pages are written to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(pageID string) (string, error) {
	if err := errs.ValidatePageID(pageID); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, pageID+pageExt), nil
}

func (s *FileStore) Load(ctx context.Context, pageID string) (*Document, error) {
	path, err := s.path(pageID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(pageID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "read page %s", pageID)
	}
	return Unmarshal(data)
}

// Save writes the page to a temporary file and renames it into place, so a
// crash never leaves a half-written page behind.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	path, err := s.path(doc.PageID)
	if err != nil {
		return err
	}
	data, err := Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, "."+doc.PageID+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "write page %s", doc.PageID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrCodeStore, err, "write page %s", doc.PageID)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "write page %s", doc.PageID)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.Wrap(errs.ErrCodeStore, err, "write page %s", doc.PageID)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, pageID string) error {
	path, err := s.path(pageID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(errs.ErrCodeStore, err, "remove page %s", pageID)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStore, err, "read page dir")
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != pageExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, pageExt))
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
