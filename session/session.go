// ABOUTME: Durable storage for the authenticated user record
// ABOUTME: File backend under XDG data home and a KV backend for charm

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/harperreed/rankup/charm"
	"github.com/harperreed/rankup/models"
)

// Store persists the session across restarts.
// Load returns nil, nil when nothing is stored.
type Store interface {
	Load() (*models.User, error)
	Save(user *models.User) error
	Clear() error
}

// DefaultPath is the session file location under XDG data home.
func DefaultPath() string {
	return filepath.Join(xdg.DataHome, "rankup", "session.json")
}

// FileStore keeps the session as a JSON file readable only by the owner.
type FileStore struct {
	path string
}

// NewFileStore returns a file store at path, or DefaultPath when empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath()
	}
	return &FileStore{path: path}
}

// Path returns the file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (*models.User, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decode(data)
}

func (f *FileStore) Save(user *models.User) error {
	if user == nil {
		return f.Clear()
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// KV is the key/value surface the KV store needs.
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Key is where KVStore keeps the session.
const Key = "session/user"

// KVStore keeps the session under one key of a KV store.
type KVStore struct {
	kv KV
}

func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Load() (*models.User, error) {
	data, err := s.kv.Get([]byte(Key))
	if err != nil {
		if errors.Is(err, charm.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decode(data)
}

func (s *KVStore) Save(user *models.User) error {
	if user == nil {
		return s.Clear()
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.kv.Set([]byte(Key), data); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (s *KVStore) Clear() error {
	if err := s.kv.Delete([]byte(Key)); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// ErrCorrupt wraps a stored record that could not be decoded.
var ErrCorrupt = errors.New("stored session is corrupt")

func decode(data []byte) (*models.User, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &user, nil
}
