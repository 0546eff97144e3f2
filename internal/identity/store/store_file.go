package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bitid/internal/identity/models"
)

const (
	usersFileName   = "users.json"
	sessionFileName = "session"
)

// FileStore mirrors the directory to two files under one data directory:
// a JSON document for the collection and a plain-text scalar for the
// session pointer. This is the mock-mode medium.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) usersPath() string   { return filepath.Join(s.dir, usersFileName) }
func (s *FileStore) sessionPath() string { return filepath.Join(s.dir, sessionFileName) }

func (s *FileStore) LoadUsers(ctx context.Context) ([]*models.User, error) {
	data, err := os.ReadFile(s.usersPath())
	if errors.Is(err, fs.ErrNotExist) {
		seed := SeedUsers()
		if err := s.SaveUsers(ctx, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user collection: %w", err)
	}

	var users []*models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode user collection: %w", err)
	}
	return users, nil
}

func (s *FileStore) SaveUsers(_ context.Context, users []*models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode user collection: %w", err)
	}
	return s.writeFile(s.usersPath(), data)
}

func (s *FileStore) LoadSession(context.Context) (string, error) {
	data, err := os.ReadFile(s.sessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session pointer: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) SaveSession(_ context.Context, userID string) error {
	return s.writeFile(s.sessionPath(), []byte(userID))
}

func (s *FileStore) ClearSession(context.Context) error {
	err := os.Remove(s.sessionPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// writeFile goes through a temp file and rename so a crash mid-write never
// leaves a truncated collection behind.
func (s *FileStore) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
