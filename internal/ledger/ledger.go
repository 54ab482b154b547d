// Package ledger keeps the in-memory attendance log. Entries are
// append-mostly, newest first, with at most one entry per student per
// calendar day.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"facemark/internal/model"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("attendance record not found")

// Notifier delivers a (simulated) notification for a record. Dispatch is
// fire-and-forget; delivery is not confirmed.
type Notifier interface {
	Notify(rec model.AttendanceRecord) error
}

// Ledger is the in-memory attendance store.
type Ledger struct {
	mu       sync.RWMutex
	records  []model.AttendanceRecord
	notifier Notifier
	now      func() time.Time
	seq      uint64
}

// New creates an empty ledger. notifier may be nil, in which case Resend
// only logs.
func New(notifier Notifier) *Ledger {
	return &Ledger{notifier: notifier, now: time.Now}
}

// Record inserts a "Present" entry for the student with the current date
// and time. If the student already has an entry for today the call is a
// no-op and the existing record is returned with ok=false.
func (l *Ledger) Record(studentID, studentName string) (model.AttendanceRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	date := now.Format("2006-01-02")
	for _, rec := range l.records {
		if rec.StudentID == studentID && rec.Date == date {
			return rec, false
		}
	}

	l.seq++
	rec := model.AttendanceRecord{
		RecordID:    fmt.Sprintf("att-%d-%d", now.UnixMilli(), l.seq),
		StudentID:   studentID,
		StudentName: studentName,
		Date:        date,
		Time:        now.Format("15:04"),
		Status:      model.StatusPresent,
	}
	l.records = append([]model.AttendanceRecord{rec}, l.records...)
	return rec, true
}

// FilterByDate returns entries whose date equals date exactly; an empty
// date returns everything. Order is newest first.
func (l *Ledger) FilterByDate(date string) []model.AttendanceRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.AttendanceRecord, 0, len(l.records))
	for _, rec := range l.records {
		if date == "" || rec.Date == date {
			out = append(out, rec)
		}
	}
	return out
}

// Purge removes every entry for a student and returns how many were
// dropped. Used by the cascading student delete.
func (l *Ledger) Purge(studentID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.records[:0]
	dropped := 0
	for _, rec := range l.records {
		if rec.StudentID == studentID {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	l.records = kept
	return dropped
}

// Resend looks up a record and hands it to the notifier. Delivery
// failures are not surfaced beyond the error return; there is no retry.
func (l *Ledger) Resend(recordID string) error {
	// Copy under the lock: Purge rewrites the backing array in place,
	// so a retained pointer could be overwritten with another record.
	l.mu.RLock()
	var rec model.AttendanceRecord
	found := false
	for i := range l.records {
		if l.records[i].RecordID == recordID {
			rec = l.records[i]
			found = true
			break
		}
	}
	l.mu.RUnlock()

	if !found {
		return fmt.Errorf("resend %s: %w", recordID, ErrNotFound)
	}
	if l.notifier == nil {
		return nil
	}
	return l.notifier.Notify(rec)
}
