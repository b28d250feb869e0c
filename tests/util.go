package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/user"
	inmemdb "github.com/shulehub/shule/storage/database/inmem"
)

// NewConfig returns a fixed configuration for tests.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:            true,
		TestMode:         true,
		Env:              "TEST",
		Build:            "test",
		AppName:          "Shule",
		SecretKey:        "test-secret-key",
		DefaultFromEmail: "noreply@test.cd",
		Server: core.ServerConfig{
			Host:               "localhost",
			Addr:               ":0",
			JWTExpirationDelta: 24 * time.Hour,
			ShutdownTimeout:    5 * time.Second,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
	}
	switch role {
	case user.RoleStudent:
		usr.Student = &user.StudentProfile{Course: "Biology", Fees: user.FeesPending}
	case user.RoleTeacher:
		usr.Teacher = &user.TeacherProfile{Subject: "Chemistry"}
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd, 0); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// ResetDB clears all rows before and after a test.
func ResetDB(t *testing.T, db *inmemdb.DB) {
	t.Helper()
	db.Reset()
	t.Cleanup(db.Reset)
}
