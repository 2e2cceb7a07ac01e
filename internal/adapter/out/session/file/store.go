// Package file keeps the session in a YAML file readable only by its owner.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"gopkg.in/yaml.v3"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

type document struct {
	AccessToken string  `yaml:"access_token"`
	Profile     profile `yaml:"profile,omitempty"`
}

type profile struct {
	Name   string `yaml:"name,omitempty"`
	Email  string `yaml:"email,omitempty"`
	Avatar string `yaml:"avatar,omitempty"`
}

type Store struct {
	mu   sync.Mutex
	path string
}

var _ service.TokenStore = (*Store)(nil)

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return sess.AccessToken, nil
}

// Session reads the file. A missing file is an empty session.
func (s *Store) Session(_ context.Context) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Session{}, nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("read session file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.Session{}, fmt.Errorf("parse session file %s: %w", s.path, err)
	}
	return model.Session{
		AccessToken: doc.AccessToken,
		Profile: model.Profile{
			Name:   doc.Profile.Name,
			Email:  doc.Profile.Email,
			Avatar: doc.Profile.Avatar,
		},
	}, nil
}

func (s *Store) SaveSession(_ context.Context, sess model.Session) error {
	data, err := yaml.Marshal(document{
		AccessToken: sess.AccessToken,
		Profile: profile{
			Name:   sess.Profile.Name,
			Email:  sess.Profile.Email,
			Avatar: sess.Profile.Avatar,
		},
	})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// writeAtomic replaces path so that readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
