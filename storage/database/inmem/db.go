package inmemdb

import (
	"sync"

	"github.com/shulehub/shule/core/user"
)

// DB is an in-memory stand-in for the real database, used in tests and
// local development without Postgres.
type DB struct {
	user *userTable
}

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

func Open() *DB {
	return &DB{
		user: &userTable{table: make(map[string]*user.User)},
	}
}

// Reset drops all rows.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	defer db.user.mutex.Unlock()
	db.user.table = make(map[string]*user.User)
}
