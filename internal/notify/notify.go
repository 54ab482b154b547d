// Package notify publishes resend-notification messages. Dispatch is a
// stub by design: messages are queued fire-and-forget and the drainer
// only simulates the WhatsApp send. No retries, no delivery confirmation.
package notify

import (
	"context"
	"encoding/json"
	"log"

	"facemark/internal/metrics"
	"facemark/internal/model"
	"facemark/internal/queue"
)

const messageType = "attendance-notification"

// Payload is the queued notification body.
type Payload struct {
	RecordID    string `json:"record_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Notifier publishes notifications onto a queue.
type Notifier struct {
	q queue.Queue
}

// New creates a notifier over the given queue backend.
func New(q queue.Queue) *Notifier {
	return &Notifier{q: q}
}

// Notify queues one notification for a record. Failures surface to the
// caller for logging only; delivery is never confirmed.
func (n *Notifier) Notify(rec model.AttendanceRecord) error {
	body, err := json.Marshal(Payload{
		RecordID:    rec.RecordID,
		StudentID:   rec.StudentID,
		StudentName: rec.StudentName,
		Date:        rec.Date,
		Time:        rec.Time,
	})
	if err != nil {
		return err
	}
	if err := n.q.Publish(context.Background(), queue.Message{Type: messageType, Body: body}); err != nil {
		return err
	}
	metrics.NotificationsQueued.Inc()
	return nil
}

// Drain consumes queued notifications until ctx is cancelled, logging a
// simulated send for each. Runs as a background goroutine in the server.
func Drain(ctx context.Context, q queue.Queue) {
	messages, err := q.Consume(ctx)
	if err != nil {
		log.Printf("notify: consume init failed: %v", err)
		return
	}
	for msg := range messages {
		if msg.Type != messageType {
			continue
		}
		var p Payload
		if err := json.Unmarshal(msg.Body, &p); err != nil {
			log.Printf("notify: bad payload: %v", err)
			continue
		}
		log.Printf("notify: WhatsApp notification for record %s (%s, %s %s) resent (simulated)",
			p.RecordID, p.StudentName, p.Date, p.Time)
	}
}
