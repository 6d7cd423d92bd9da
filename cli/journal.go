// ABOUTME: Feeds store lifecycle events into the SQLite operation journal
// ABOUTME: Writes happen on a background goroutine so store subscribers never block
package cli

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/db"
	"github.com/harperreed/rankup/store"
)

const journalBacklog = 256

type journal struct {
	db     *sql.DB
	logger *log.Logger

	mu      sync.Mutex
	idle    *sync.Cond
	closed  bool
	pending int
	events  chan store.Event
	done   chan struct{}
}

func startJournal(database *sql.DB, logger *log.Logger) *journal {
	j := &journal{
		db:     database,
		logger: logger,
		events: make(chan store.Event, journalBacklog),
		done:   make(chan struct{}),
	}
	j.idle = sync.NewCond(&j.mu)
	go j.run()
	return j
}

// record queues e. A full backlog drops the event with a warning.
func (j *journal) record(e store.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	j.pending++
	select {
	case j.events <- e:
	default:
		j.pending--
		j.logger.Warn("journal backlog full, dropping event", "op", e.Op, "phase", e.Phase)
	}
}

func (j *journal) run() {
	defer close(j.done)
	for e := range j.events {
		if err := db.RecordOperation(j.db, e.Slice, e.Op, string(e.Phase), e.Err, e.At); err != nil {
			j.logger.Warn("failed to journal operation", "op", e.Op, "err", err)
		}
		j.mu.Lock()
		j.pending--
		if j.pending == 0 {
			j.idle.Broadcast()
		}
		j.mu.Unlock()
	}
}

// flush waits until every queued event has been written.
func (j *journal) flush() {
	if j == nil {
		return
	}
	j.mu.Lock()
	for j.pending > 0 {
		j.idle.Wait()
	}
	j.mu.Unlock()
}

// close stops accepting events and waits for queued ones to be written.
func (j *journal) close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	j.closed = true
	close(j.events)
	j.mu.Unlock()
	<-j.done
}
