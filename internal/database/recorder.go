package database

import (
	"log"
	"sync"
)

// Recorder persists session records fire-and-forget: every call
// returns immediately, failures are logged and never retried, and a
// nil Recorder is a no-op. The progression engine must behave
// identically with or without a reachable database.
//
// Writes go through a single worker so they land in call order; a
// result insert never races ahead of the session row it references.
// When the queue is saturated the newest write is dropped rather than
// blocking the caller.
type Recorder struct {
	db   *DB
	wg   sync.WaitGroup
	jobs chan job
}

type job struct {
	fn   func() error
	what string
}

// NewRecorder wraps a database for fire-and-forget writes. A nil db
// yields a recorder that drops everything.
func NewRecorder(db *DB) *Recorder {
	if db == nil {
		return nil
	}
	r := &Recorder{db: db, jobs: make(chan job, 256)}
	go r.worker()
	return r
}

func (r *Recorder) worker() {
	for j := range r.jobs {
		if err := j.fn(); err != nil {
			log.Printf("recorder: %s failed: %v", j.what, err)
		}
		r.wg.Done()
	}
}

// SessionStarted records a new session.
func (r *Recorder) SessionStarted(s Session) {
	if r == nil {
		return
	}
	r.enqueue(func() error { return r.db.InsertSession(s) }, "session insert")
}

// SessionEnded records a session's terminal status.
func (r *Recorder) SessionEnded(id, status string, endTime string) {
	if r == nil {
		return
	}
	r.enqueue(func() error { return r.db.UpdateSessionStatus(id, status, &endTime) }, "session update")
}

// ResultScored records one step's assessment.
func (r *Recorder) ResultScored(res Result) {
	if r == nil {
		return
	}
	r.enqueue(func() error {
		_, err := r.db.InsertResult(res)
		return err
	}, "result insert")
}

// AlertRaised records a triggered alert.
func (r *Recorder) AlertRaised(a AlertRecord) {
	if r == nil {
		return
	}
	r.enqueue(func() error {
		_, err := r.db.InsertAlert(a)
		return err
	}, "alert insert")
}

// AlertAcknowledged stamps a session's open alerts as acknowledged.
func (r *Recorder) AlertAcknowledged(sessionID, acknowledgedAt string) {
	if r == nil {
		return
	}
	r.enqueue(func() error {
		return r.db.AcknowledgeSessionAlerts(sessionID, acknowledgedAt)
	}, "alert acknowledge")
}

// Flush waits for all queued writes. Used on shutdown and in tests.
func (r *Recorder) Flush() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

func (r *Recorder) enqueue(fn func() error, what string) {
	r.wg.Add(1)
	select {
	case r.jobs <- job{fn: fn, what: what}:
	default:
		// A full queue means the database has fallen far behind.
		// Dropping keeps the progression engine from ever stalling
		// on persistence.
		r.wg.Done()
		log.Printf("recorder: queue full, dropping %s", what)
	}
}
