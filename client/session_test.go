package client

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shulehub/shule/core/user"
	logsvc "github.com/shulehub/shule/services/logger"
)

func newTestStore(storage Storage) *SessionStore {
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	return NewSessionStore(storage, logger)
}

func TestSessionStore_statesBeforeAndAfterHydration(t *testing.T) {
	s := newTestStore(&MemoryStorage{})

	if got := s.Snapshot().State; got != StateHydrating {
		t.Fatalf("state before hydration = %v; want %v", got, StateHydrating)
	}

	s.Hydrate()
	if got := s.Snapshot().State; got != StateAnonymous {
		t.Errorf("state after empty hydration = %v; want %v", got, StateAnonymous)
	}
}

func TestSessionStore_hydratesSavedSession(t *testing.T) {
	storage := &MemoryStorage{}
	usr := user.PublicUser{ID: "u1", Name: "Jane", Email: "jane@test.cd", Role: user.RoleTeacher}
	data, err := json.Marshal(persistedSession{Token: "tok123", User: usr})
	if err != nil {
		t.Fatal(err)
	}
	if err := storage.Save(data); err != nil {
		t.Fatal(err)
	}

	s := newTestStore(storage)
	s.Hydrate()

	snap := s.Snapshot()
	if snap.State != StateAuthenticated {
		t.Fatalf("state = %v; want %v", snap.State, StateAuthenticated)
	}
	if snap.Token != "tok123" || snap.User.Role != user.RoleTeacher {
		t.Errorf("snapshot = %+v; want token tok123 role Teacher", snap)
	}
}

func TestSessionStore_discardsCorruptSession(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("}{ nonsense")},
		{"missing token", []byte(`{"user":{"id":"u1"}}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := &MemoryStorage{}
			if err := storage.Save(tt.data); err != nil {
				t.Fatal(err)
			}

			s := newTestStore(storage)
			s.Hydrate()

			if got := s.Snapshot().State; got != StateAnonymous {
				t.Errorf("state = %v; want %v", got, StateAnonymous)
			}
			// the bad record must be gone
			if _, err := storage.Load(); err != ErrNoSavedSession {
				t.Errorf("Load() after corrupt hydration error = %v; want %v", err, ErrNoSavedSession)
			}
		})
	}
}

func TestSessionStore_loginPersistsSingleRecord(t *testing.T) {
	storage := &MemoryStorage{}
	s := newTestStore(storage)
	s.Hydrate()

	usr := user.PublicUser{ID: "u1", Name: "Sam", Email: "sam@test.cd", Role: user.RoleStudent, Course: "Biology"}
	s.Login(usr, "tok456")

	snap := s.Snapshot()
	if snap.State != StateAuthenticated || snap.Token != "tok456" {
		t.Fatalf("snapshot = %+v; want authenticated with tok456", snap)
	}

	data, err := storage.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	var ps persistedSession
	if err := json.Unmarshal(data, &ps); err != nil {
		t.Fatalf("persisted record is not valid JSON: %v", err)
	}
	if ps.Token != "tok456" || ps.User != usr {
		t.Errorf("persisted record = %+v; want token tok456 user %+v", ps, usr)
	}

	// a second login replaces the record
	s.Login(user.PublicUser{ID: "u2", Role: user.RoleAdmin}, "tok789")
	data, _ = storage.Load()
	if err := json.Unmarshal(data, &ps); err != nil {
		t.Fatal(err)
	}
	if ps.Token != "tok789" || ps.User.ID != "u2" {
		t.Errorf("persisted record = %+v; want token tok789 user u2", ps)
	}
}

func TestSessionStore_logoutClears(t *testing.T) {
	storage := &MemoryStorage{}
	s := newTestStore(storage)
	s.Hydrate()
	s.Login(user.PublicUser{ID: "u1"}, "tok")

	s.Logout()

	if got := s.Snapshot().State; got != StateAnonymous {
		t.Errorf("state = %v; want %v", got, StateAnonymous)
	}
	if _, err := storage.Load(); err != ErrNoSavedSession {
		t.Errorf("Load() after logout error = %v; want %v", err, ErrNoSavedSession)
	}
}

func TestSessionStore_awaitUnblocksOnHydration(t *testing.T) {
	s := newTestStore(&MemoryStorage{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Await(ctx); err != context.DeadlineExceeded {
		t.Errorf("Await() before hydration error = %v; want %v", err, context.DeadlineExceeded)
	}

	s.Hydrate()
	if err := s.Await(context.Background()); err != nil {
		t.Errorf("Await() after hydration error = %v; want nil", err)
	}
}

func TestFileStorage_roundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if _, err := os.UserConfigDir(); err != nil {
		t.Skipf("no user config dir: %v", err)
	}

	fs, err := NewFileStorage("shule-test")
	if err != nil {
		t.Fatalf("NewFileStorage() failed: %v", err)
	}

	if _, err := fs.Load(); err != ErrNoSavedSession {
		t.Errorf("Load() on fresh storage error = %v; want %v", err, ErrNoSavedSession)
	}
	if err := fs.Save([]byte(`{"token":"tok"}`)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	data, err := fs.Load()
	if err != nil || string(data) != `{"token":"tok"}` {
		t.Errorf("Load() = %q, %v; want saved data", data, err)
	}
	if err := fs.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if err := fs.Clear(); err != nil {
		t.Errorf("Clear() on empty storage failed: %v", err)
	}
}
