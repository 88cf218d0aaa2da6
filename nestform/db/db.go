package db

import (
	"errors"

	_ "github.com/mattn/go-sqlite3"
	"xorm.io/xorm"
	"xorm.io/xorm/log"
	"xorm.io/xorm/names"
)

// ErrNotFound is returned when a lookup by ID finds no entry.
var ErrNotFound = errors.New("not found")

// Connection wraps the database engine shared by the service, the worker,
// and the save steps of the nested forms.
type Connection struct {
	engine *xorm.Engine
}

// Close the database.
func (conn *Connection) Close() error {
	return conn.engine.Close()
}

// Debug enables or disables logging of every SQL statement.
func (conn *Connection) Debug(on bool) {
	if on {
		conn.engine.Logger().SetLevel(log.LOG_DEBUG)
		conn.engine.ShowSQL(true)
		return
	}
	conn.engine.Logger().SetLevel(log.LOG_WARNING)
	conn.engine.ShowSQL(false)
}

// New returns a database connection for the sqlite db file at the given path.
// If it does not exist it is created.
func New(path string) (*Connection, error) {
	db, err := xorm.NewEngine("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.Logger().SetLevel(log.LOG_WARNING)
	db.SetMapper(names.GonicMapper{})

	if err := db.Sync2(new(Record), new(Job), new(Session)); err != nil {
		return nil, err
	}
	return &Connection{db}, nil
}
