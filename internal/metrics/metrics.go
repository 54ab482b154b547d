// Package metrics defines the Prometheus counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_frames_received_total",
		Help: "Camera frames received over the feed.",
	})
	RecognitionAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_recognition_attempts_total",
		Help: "Identification requests sent to the oracle.",
	})
	RecognitionMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_recognition_matches_total",
		Help: "Identification attempts that named a student.",
	})
	RecognitionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_recognition_failures_total",
		Help: "Oracle errors folded into no-match results.",
	})
	AttendanceMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_attendance_marked_total",
		Help: "Attendance entries created by the capture loop.",
	})
	NotificationsQueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "facemark_notifications_queued_total",
		Help: "Resend notifications published to the queue.",
	})
)
