package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/and161185/gamevault/internal/crypto"
)

// StoredToken is the persisted form of a session.
type StoredToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenStore persists the access token between process runs.
type TokenStore interface {
	Save(t StoredToken) error
	// Load returns nil, nil when nothing is stored.
	Load() (*StoredToken, error)
	Clear() error
}

// FileTokenStore keeps the token in a single file sealed with a local key.
type FileTokenStore struct {
	path string
	key  []byte
}

// NewFileTokenStore stores the token under dir. The file key is derived from secret.
func NewFileTokenStore(dir string, secret []byte) (*FileTokenStore, error) {
	key, err := crypto.DeriveKey(secret, "gamevault token file")
	if err != nil {
		return nil, err
	}
	return &FileTokenStore{path: filepath.Join(dir, "session.token"), key: key}, nil
}

// Path returns the token file location.
func (s *FileTokenStore) Path() string { return s.path }

func (s *FileTokenStore) Save(t StoredToken) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	sealed, err := crypto.Seal(s.key, b)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileTokenStore) Load() (*StoredToken, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	plain, err := crypto.Open(s.key, b)
	if err != nil {
		return nil, err
	}
	var t StoredToken
	if err := json.Unmarshal(plain, &t); err != nil {
		return nil, err
	}
	if t.AccessToken == "" {
		return nil, nil
	}
	return &t, nil
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStore keeps the token in process memory only.
type MemoryTokenStore struct {
	mu sync.Mutex
	t  *StoredToken
}

func (m *MemoryTokenStore) Save(t StoredToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = &t
	return nil
}

func (m *MemoryTokenStore) Load() (*StoredToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.t == nil {
		return nil, nil
	}
	t := *m.t
	return &t, nil
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = nil
	return nil
}
