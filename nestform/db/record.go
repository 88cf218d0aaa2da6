package db

import (
	"time"
)

// Record is the stored data of one saved form.  Nested forms saved together
// are linked through ParentID.
type Record struct {
	ID int64 `xorm:"pk autoincr"`
	// Kind names the form the record was saved from.
	Kind string `xorm:"index"`
	// ParentID points to the record this one was saved with (0 for none).
	ParentID int64 `xorm:"index"`
	UserName string
	// Cleaned form values
	ValueMap map[string]string
	Created  time.Time
}

// InsertRecord inserts a new Record.  Upon successful return, the Record has
// a new unique ID.
func (conn *Connection) InsertRecord(rec *Record) error {
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	_, err := conn.engine.Insert(rec)
	return err
}

// UpdateRecord updates an existing Record.
func (conn *Connection) UpdateRecord(rec *Record) error {
	_, err := conn.engine.ID(rec.ID).AllCols().Update(rec)
	return err
}

// GetRecord retrieves a Record given its ID.
func (conn *Connection) GetRecord(id int64) (*Record, error) {
	rec := new(Record)
	if has, err := conn.engine.ID(id).Get(rec); err != nil {
		return nil, err
	} else if !has {
		return nil, ErrNotFound
	}
	return rec, nil
}

// RecordsByKind returns every Record saved from the named form.
func (conn *Connection) RecordsByKind(kind string) ([]Record, error) {
	recs := make([]Record, 0)
	if err := conn.engine.Asc("id").Find(&recs, &Record{Kind: kind}); err != nil {
		return nil, err
	}
	return recs, nil
}

// ChildRecords returns the Records saved with the given parent.
func (conn *Connection) ChildRecords(parentID int64) ([]Record, error) {
	recs := make([]Record, 0)
	if err := conn.engine.Where("parent_id = ?", parentID).Asc("id").Find(&recs); err != nil {
		return nil, err
	}
	return recs, nil
}
