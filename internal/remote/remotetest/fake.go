// Package remotetest provides an in-memory remote.Session for tests.
package remotetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"sftpfetch/internal/models"
	"sftpfetch/internal/remote"
)

type Session struct {
	mu        sync.Mutex
	dir       string
	files     map[string][]byte
	modTime   time.Time
	ListErr   error
	OpenErr   map[string]error
	ReadErr   map[string]error
	Lists     int
	Opens     []string
	CloseHits int
}

var _ remote.Session = (*Session)(nil)

func NewSession(dir string) *Session {
	return &Session{
		dir:     dir,
		files:   make(map[string][]byte),
		modTime: time.Date(2025, 10, 2, 6, 0, 0, 0, time.UTC),
		OpenErr: make(map[string]error),
		ReadErr: make(map[string]error),
	}
}

func (s *Session) Add(name string, content []byte) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = content
	return s
}

func (s *Session) ListDirectory(_ context.Context, dir string) ([]models.RemoteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lists++
	if s.ListErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrListing, dir, s.ListErr)
	}
	if dir != s.dir {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrListing, dir, os.ErrNotExist)
	}

	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	// Reverse order so callers cannot rely on the listing being sorted.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	entries := make([]models.RemoteEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, models.RemoteEntry{
			Path:    remote.JoinPath(dir, name),
			ModTime: s.modTime,
			Name:    name,
			Size:    int64(len(s.files[name])),
		})
	}
	return entries, nil
}

func (s *Session) OpenRead(_ context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opens = append(s.Opens, path)
	if err := s.OpenErr[path]; err != nil {
		return nil, err
	}
	for name, content := range s.files {
		if remote.JoinPath(s.dir, name) != path {
			continue
		}
		if err := s.ReadErr[path]; err != nil {
			half := content[:len(content)/2]
			return io.NopCloser(io.MultiReader(bytes.NewReader(half), errReader{err})), nil
		}
		return io.NopCloser(bytes.NewReader(content)), nil
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseHits++
	return nil
}

type errReader struct {
	err error
}

func (e errReader) Read([]byte) (int, error) {
	return 0, e.err
}
