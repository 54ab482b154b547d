package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"facemark/internal/model"
)

type fakeNotifier struct {
	sent []model.AttendanceRecord
	err  error
}

func (f *fakeNotifier) Notify(rec model.AttendanceRecord) error {
	f.sent = append(f.sent, rec)
	return f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecord_SameDayIdempotent(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 15, 0, 0, time.Local))

	first, created := l.Record("s-1", "Ada")
	if !created {
		t.Fatal("first record should be created")
	}

	// Repeated marks for the same student on the same day are dropped.
	for i := 0; i < 3; i++ {
		rec, created := l.Record("s-1", "Ada")
		if created {
			t.Fatal("duplicate same-day record was created")
		}
		if rec.RecordID != first.RecordID {
			t.Errorf("expected existing record back, got %s", rec.RecordID)
		}
	}

	if got := len(l.FilterByDate("")); got != 1 {
		t.Errorf("expected exactly 1 entry, got %d", got)
	}
}

func TestRecord_NewDayAllowed(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")

	l.now = fixedClock(time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local))
	if _, created := l.Record("s-1", "Ada"); !created {
		t.Error("expected a fresh entry on the next calendar day")
	}
	if got := len(l.FilterByDate("")); got != 2 {
		t.Errorf("expected 2 entries, got %d", got)
	}
}

func TestRecord_Fields(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 29, 14, 5, 0, 0, time.Local))

	rec, _ := l.Record("s-7", "Grace")
	if rec.Date != "2026-08-29" {
		t.Errorf("date = %q", rec.Date)
	}
	if rec.Time != "14:05" {
		t.Errorf("time = %q", rec.Time)
	}
	if rec.Status != model.StatusPresent {
		t.Errorf("status = %q", rec.Status)
	}
	if rec.StudentName != "Grace" {
		t.Errorf("name snapshot = %q", rec.StudentName)
	}
}

func TestFilterByDate(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")
	l.Record("s-2", "Lin")

	day := l.FilterByDate("2026-08-29")
	if len(day) != 2 {
		t.Fatalf("expected 2 entries for 2026-08-29, got %d", len(day))
	}
	for _, rec := range day {
		if rec.Date != "2026-08-29" {
			t.Errorf("wrong date in filtered result: %s", rec.Date)
		}
	}

	if got := len(l.FilterByDate("")); got != 3 {
		t.Errorf("expected all 3 entries with no filter, got %d", got)
	}
	if got := len(l.FilterByDate("2020-01-01")); got != 0 {
		t.Errorf("expected no entries for unused date, got %d", got)
	}
}

func TestFilter_NewestFirst(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")
	l.Record("s-2", "Lin")

	all := l.FilterByDate("")
	if all[0].StudentID != "s-2" || all[1].StudentID != "s-1" {
		t.Errorf("expected newest-first order, got %s then %s", all[0].StudentID, all[1].StudentID)
	}
}

func TestPurge(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")
	l.Record("s-2", "Lin")
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))
	l.Record("s-1", "Ada")

	if dropped := l.Purge("s-1"); dropped != 2 {
		t.Errorf("expected 2 purged entries, got %d", dropped)
	}
	for _, rec := range l.FilterByDate("") {
		if rec.StudentID == "s-1" {
			t.Error("purged student still present in ledger")
		}
	}
}

// Deleting a student does not block later direct ledger calls; a purge
// afterwards still clears them.
func TestPurge_OrderIndependent(t *testing.T) {
	l := New(nil)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))

	if _, created := l.Record("s-2", "B"); !created {
		t.Fatal("record after delete should still be created")
	}
	if dropped := l.Purge("s-2"); dropped != 1 {
		t.Errorf("expected 1 purged entry, got %d", dropped)
	}
	if got := len(l.FilterByDate("")); got != 0 {
		t.Errorf("expected empty ledger, got %d entries", got)
	}
}

func TestResend(t *testing.T) {
	n := &fakeNotifier{}
	l := New(n)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))
	rec, _ := l.Record("s-1", "Ada")

	if err := l.Resend(rec.RecordID); err != nil {
		t.Fatalf("resend failed: %v", err)
	}
	if len(n.sent) != 1 || n.sent[0].RecordID != rec.RecordID {
		t.Errorf("notifier not invoked with the record: %+v", n.sent)
	}
}

type concurrentNotifier struct {
	mu   sync.Mutex
	sent []model.AttendanceRecord
}

func (n *concurrentNotifier) Notify(rec model.AttendanceRecord) error {
	n.mu.Lock()
	n.sent = append(n.sent, rec)
	n.mu.Unlock()
	return nil
}

// Resend must hand the notifier a stable copy of the record even while
// Purge rewrites the backing array underneath it.
func TestResend_ConcurrentWithPurge(t *testing.T) {
	n := &concurrentNotifier{}
	l := New(n)
	l.now = fixedClock(time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local))

	target, _ := l.Record("s-keep", "Keeper")
	for i := 0; i < 50; i++ {
		l.Record(fmt.Sprintf("s-fill-%d", i), "Filler")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			l.Purge(fmt.Sprintf("s-fill-%d", i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := l.Resend(target.RecordID); err != nil {
				t.Errorf("resend failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) != 200 {
		t.Fatalf("expected 200 notifications, got %d", len(n.sent))
	}
	for _, rec := range n.sent {
		if rec.RecordID != target.RecordID || rec.StudentID != "s-keep" {
			t.Fatalf("notifier received a foreign record: %+v", rec)
		}
	}
}

func TestResend_UnknownRecord(t *testing.T) {
	l := New(&fakeNotifier{})
	if err := l.Resend("att-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
