package worker

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/G-Node/nestform/nestform/db"
)

// JobAction runs after a form was saved, with the values that were
// submitted.  The returned messages are stored with the job.
type JobAction func(values map[string][]string) ([]string, error)

// DefaultQueueLength is used when New is given a non-positive length.
const DefaultQueueLength = 100

// Worker with queue for running the post-submission Jobs asynchronously.
type Worker struct {
	queue  chan *db.Job
	stop   chan bool
	done   chan struct{}
	Action JobAction
	db     *db.Connection
	log    *log.Logger
}

// New returns a Worker that stores its jobs in dbconn.
func New(dbconn *db.Connection, queueLength int) *Worker {
	if queueLength <= 0 {
		queueLength = DefaultQueueLength
	}
	w := new(Worker)
	w.queue = make(chan *db.Job, queueLength)
	w.stop = make(chan bool)
	w.done = make(chan struct{})
	w.db = dbconn
	w.log = log.New(os.Stderr, "", log.LstdFlags)
	return w
}

// SetLogger replaces the logger of the worker.
func (w *Worker) SetLogger(logger *log.Logger) {
	w.log = logger
}

// Enqueue adds the job to the queue and stores it in the database.  A job
// without a label is labelled by its first submitted value (by key order).
func (w *Worker) Enqueue(j *db.Job) {
	j.SubmitTime = time.Now()
	if j.Label == "" {
		j.Label = firstValue(j.ValueMap)
	}
	if err := w.db.InsertJob(j); err != nil {
		w.log.Printf("Error inserting job %+v into db: %v", j, err)
	}
	w.queue <- j
}

func firstValue(values map[string][]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(values[k]) > 0 && values[k][0] != "" {
			return values[k][0]
		}
	}
	return ""
}

// Stop the worker after the job it is running (if any) finishes.  Jobs still
// in the queue stay unfinished in the database.  Stop must only be called
// on a started Worker.
func (w *Worker) Stop() {
	w.stop <- true
	<-w.done
}

func (w *Worker) run(j *db.Job) {
	defer func() {
		// Update job entry in db when done
		if err := w.db.UpdateJob(j); err != nil {
			w.log.Printf("Error updating job [J%d] in db: %v", j.ID, err)
		}
	}()
	w.log.Printf("Starting job %q", j.Label)
	var msgs []string
	var err error
	if w.Action != nil {
		msgs, err = w.safeAction(j.ValueMap)
	}
	j.Messages = msgs
	if err == nil {
		w.log.Printf("Job [J%d] %s finished", j.ID, j.Label)
	} else {
		w.log.Printf("Job [J%d] %s failed: %s", j.ID, j.Label, err)
		j.Error = err.Error()
	}
	j.EndTime = time.Now()
}

func (w *Worker) safeAction(values map[string][]string) (msgs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job action panicked: %v", r)
		}
	}()
	return w.Action(values)
}

// Start running queued jobs in a goroutine.
func (w *Worker) Start() {
	go func() {
		defer close(w.done)
		for {
			select {
			case job := <-w.queue:
				w.run(job)
			case <-w.stop:
				return
			}
		}
	}()
	w.log.Print("Worker started")
}
