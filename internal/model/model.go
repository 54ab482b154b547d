package model

// Student represents a registered student profile.
type Student struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	PhoneNumber string `json:"phone_number"`
	// Image is the reference photo used as ground truth for matching.
	// When the operator supplies none, a generated placeholder is stored.
	Image     []byte `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
}

// AttendanceRecord represents a single "present" log entry.
// StudentName is a snapshot taken at record time; it is not kept in
// sync with later roster edits.
type AttendanceRecord struct {
	RecordID    string `json:"record_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Date        string `json:"date"` // YYYY-MM-DD
	Time        string `json:"time"` // local wall clock, display precision
	Status      string `json:"status"`
}

// StatusPresent is the only status this system ever produces.
const StatusPresent = "Present"
