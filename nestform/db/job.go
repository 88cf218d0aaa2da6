package db

import (
	"time"
)

// Job holds all the information for the post-submission job of a saved form.
type Job struct {
	// Job ID (auto)
	ID int64 `xorm:"pk autoincr"`
	// Name of the user who submitted the form
	UserName string
	// Name/label of the job
	Label string
	// ID of the Record returned by the form save
	RecordID int64
	// Form values that created the job
	ValueMap map[string][]string
	// Messages returned from the job action
	Messages []string
	// Error message if the job failed
	Error string
	// Time when the job was submitted to the queue
	SubmitTime time.Time
	// Time when the job finished (0 if ongoing)
	EndTime time.Time
}

// InsertJob inserts a new Job into the database.  Upon successful return, the
// Job has a new unique ID.
func (conn *Connection) InsertJob(job *Job) error {
	_, err := conn.engine.Insert(job) // job ID is assigned on insertion
	return err
}

// UpdateJob updates an existing Job entry in the database.
func (conn *Connection) UpdateJob(job *Job) error {
	_, err := conn.engine.ID(job.ID).AllCols().Update(job)
	return err
}

// GetUserJobs retrieves all the Jobs submitted by the given user.
func (conn *Connection) GetUserJobs(username string) ([]Job, error) {
	userjobs := make([]Job, 0)
	condition := &Job{UserName: username}
	if err := conn.engine.Asc("id").Find(&userjobs, condition); err != nil {
		return nil, err
	}

	return userjobs, nil
}

// IsFinished returns true if the Job has finished (has an EndTime).
func (j Job) IsFinished() bool {
	return !j.EndTime.IsZero()
}

// AllJobs returns all Job entries in the database.
func (conn *Connection) AllJobs() ([]Job, error) {
	alljobs := make([]Job, 0)
	if err := conn.engine.Asc("id").Find(&alljobs); err != nil {
		return nil, err
	}

	return alljobs, nil
}

// GetJob retrieves a Job from the database given its ID.
func (conn *Connection) GetJob(id int64) (*Job, error) {
	job := new(Job)
	if has, err := conn.engine.ID(id).Get(job); err != nil {
		return nil, err
	} else if !has {
		return nil, ErrNotFound
	}
	return job, nil
}
