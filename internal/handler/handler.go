package handler

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"facemark/internal/camera"
	"facemark/internal/capture"
	"facemark/internal/ledger"
	"facemark/internal/model"
	"facemark/internal/roster"
)

// Handler exposes the roster, ledger and capture loop over HTTP.
type Handler struct {
	roster *roster.Store
	ledger *ledger.Ledger
	loop   *capture.Loop
	feed   *camera.Feed
}

// New wires the handler.
func New(r *roster.Store, l *ledger.Ledger, loop *capture.Loop, feed *camera.Feed) *Handler {
	return &Handler{roster: r, ledger: l, loop: loop, feed: feed}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ---------- Students ----------

type studentRequest struct {
	Name        string `json:"name" binding:"required"`
	RollNumber  string `json:"roll_number" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Image       string `json:"image"`      // base64, optionally a data URL
	ImageMIME   string `json:"image_mime"` // defaults to image/jpeg when image is set
}

func (r studentRequest) profileData() (roster.ProfileData, error) {
	data := roster.ProfileData{
		Name:        r.Name,
		RollNumber:  r.RollNumber,
		PhoneNumber: r.PhoneNumber,
	}
	if r.Image == "" {
		return data, nil
	}

	raw := r.Image
	mime := r.ImageMIME
	if strings.HasPrefix(raw, "data:") {
		// data:image/jpeg;base64,<payload>
		header, payload, ok := strings.Cut(raw, ",")
		if !ok {
			return data, errors.New("malformed data URL")
		}
		raw = payload
		if mime == "" {
			mime = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		}
	}
	img, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return data, errors.New("image must be base64 encoded")
	}
	if mime == "" {
		mime = "image/jpeg"
	}
	data.Image = img
	data.ImageMIME = mime
	return data, nil
}

// CreateStudent registers a student; a placeholder avatar is generated
// when no photo is supplied.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := req.profileData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st := h.roster.Add(data)
	c.JSON(http.StatusCreated, st)
}

func (h *Handler) ListStudents(c *gin.Context) {
	c.JSON(http.StatusOK, h.roster.List())
}

func (h *Handler) GetStudent(c *gin.Context) {
	st, ok := h.roster.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateStudent replaces every field but the id.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	data, err := req.profileData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.roster.Update(c.Param("id"), data)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// DeleteStudent removes the profile and cascades to the student's
// attendance entries. Deleting an unknown id is a no-op.
func (h *Handler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	removed := h.roster.Remove(id)
	purged := h.ledger.Purge(id)
	c.JSON(http.StatusOK, gin.H{"removed": removed, "purged_records": purged})
}

// ---------- Attendance ----------

// ListAttendance returns the ledger, optionally filtered to one date.
func (h *Handler) ListAttendance(c *gin.Context) {
	records := h.ledger.FilterByDate(c.Query("date"))
	if records == nil {
		records = []model.AttendanceRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ResendNotification re-queues the notification for a record.
func (h *Handler) ResendNotification(c *gin.Context) {
	id := c.Param("id")
	if err := h.ledger.Resend(id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		// Delivery is best-effort; report accepted anyway.
		log.Printf("resend %s: %v", id, err)
	}
	c.JSON(http.StatusAccepted, gin.H{"record_id": id, "status": "queued"})
}

// ---------- Capture ----------

func (h *Handler) StartCapture(c *gin.Context) {
	if err := h.loop.Start(c.Request.Context()); err != nil {
		if errors.Is(err, capture.ErrRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": "capture already running"})
			return
		}
		// Typically: no camera feed connected.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": "idle"})
}

func (h *Handler) StopCapture(c *gin.Context) {
	h.loop.Stop()
	c.JSON(http.StatusOK, gin.H{"state": "off"})
}

func (h *Handler) CaptureStatus(c *gin.Context) {
	state, lastMatched := h.loop.Status()
	c.JSON(http.StatusOK, gin.H{"state": state.String(), "last_matched": lastMatched})
}

// ---------- Camera feed ----------

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Feed accepts a WebSocket connection from a browser publishing camera
// frames as binary JPEG messages.
func (h *Handler) Feed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("feed: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	h.feed.AddPublisher()
	defer h.feed.RemovePublisher()
	log.Printf("feed: camera publisher connected")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("feed: camera publisher disconnected")
			} else {
				log.Printf("feed: read: %v", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		h.feed.Publish(data)
	}
}
