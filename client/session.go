package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/user"
)

// SessionState tracks where a SessionStore is in its lifecycle. A store
// starts out Hydrating and settles into exactly one of Anonymous or
// Authenticated once persisted credentials have been checked.
type SessionState int

const (
	StateHydrating SessionState = iota
	StateAnonymous
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// ErrNoSavedSession is returned by Storage.Load when no session has been
// persisted yet.
var ErrNoSavedSession = errors.New("no saved session")

// Storage persists at most one session record.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// persistedSession is the single record written to Storage.
type persistedSession struct {
	Token string          `json:"token"`
	User  user.PublicUser `json:"user"`
}

// Snapshot is a consistent read of a SessionStore.
type Snapshot struct {
	State SessionState
	User  user.PublicUser
	Token string
}

// SessionStore holds the current session and keeps it in sync with Storage.
type SessionStore struct {
	mu      sync.RWMutex
	state   SessionState
	usr     user.PublicUser
	token   string
	storage Storage
	logger  core.Logger

	hydrated chan struct{}
	once     sync.Once
}

func NewSessionStore(storage Storage, logger core.Logger) *SessionStore {
	return &SessionStore{
		state:    StateHydrating,
		storage:  storage,
		logger:   logger,
		hydrated: make(chan struct{}),
	}
}

// Hydrate loads any persisted session. A corrupt or incomplete record is
// discarded and the store settles into Anonymous; hydration never fails.
func (s *SessionStore) Hydrate() {
	s.once.Do(func() {
		defer close(s.hydrated)

		data, err := s.storage.Load()
		if err != nil {
			if errors.Cause(err) != ErrNoSavedSession {
				s.logger.Warn("loading saved session", err)
			}
			s.settle(StateAnonymous, user.PublicUser{}, "")
			return
		}

		var ps persistedSession
		if err := json.Unmarshal(data, &ps); err != nil || ps.Token == "" {
			s.logger.Warn("discarding unreadable saved session")
			if err := s.storage.Clear(); err != nil {
				s.logger.Warn("clearing saved session", err)
			}
			s.settle(StateAnonymous, user.PublicUser{}, "")
			return
		}

		s.settle(StateAuthenticated, ps.User, ps.Token)
	})
}

// Await blocks until hydration has settled or ctx expires.
func (s *SessionStore) Await(ctx context.Context) error {
	select {
	case <-s.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login records an authenticated session and persists it. Persistence is
// best-effort; the in-memory session is authoritative for this run.
func (s *SessionStore) Login(usr user.PublicUser, token string) {
	s.once.Do(func() { close(s.hydrated) }) // login supersedes hydration
	s.settle(StateAuthenticated, usr, token)

	data, err := json.Marshal(persistedSession{Token: token, User: usr})
	if err != nil {
		s.logger.Warn("encoding session", err)
		return
	}
	if err := s.storage.Save(data); err != nil {
		s.logger.Warn("saving session", err)
	}
}

// Logout drops the session and clears persisted credentials.
func (s *SessionStore) Logout() {
	s.once.Do(func() { close(s.hydrated) })
	s.settle(StateAnonymous, user.PublicUser{}, "")

	if err := s.storage.Clear(); err != nil {
		s.logger.Warn("clearing saved session", err)
	}
}

func (s *SessionStore) settle(state SessionState, usr user.PublicUser, token string) {
	s.mu.Lock()
	s.state = state
	s.usr = usr
	s.token = token
	s.mu.Unlock()
}

func (s *SessionStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, User: s.usr, Token: s.token}
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// FileStorage persists the session under the user's config directory.
type FileStorage struct {
	path string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(appName string) (*FileStorage, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, errors.Wrap(err, "resolving user config dir")
	}
	return &FileStorage{path: filepath.Join(dir, appName, "session.json")}, nil
}

func (fs *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSavedSession
		}
		return nil, errors.Wrap(err, "reading session file")
	}
	return data, nil
}

func (fs *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "creating config dir")
	}
	return errors.Wrap(os.WriteFile(fs.path, data, 0o600), "writing session file")
}

func (fs *FileStorage) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// MemoryStorage is an in-memory Storage for tests.
type MemoryStorage struct {
	mu   sync.Mutex
	data []byte
}

var _ Storage = (*MemoryStorage)(nil)

func (ms *MemoryStorage) Load() ([]byte, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.data == nil {
		return nil, ErrNoSavedSession
	}
	return append([]byte(nil), ms.data...), nil
}

func (ms *MemoryStorage) Save(data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data = append([]byte(nil), data...)
	return nil
}

func (ms *MemoryStorage) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data = nil
	return nil
}
