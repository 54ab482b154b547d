package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"facemark/internal/camera"
	"facemark/internal/capture"
	"facemark/internal/config"
	"facemark/internal/handler"
	"facemark/internal/httpmiddleware"
	"facemark/internal/ledger"
	"facemark/internal/metrics"
	"facemark/internal/notify"
	"facemark/internal/queue"
	"facemark/internal/recognize"
	"facemark/internal/roster"
	"facemark/internal/store"
)

func main() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// attendanceRecorder returns the capture loop's match callback: it
// snapshots the student, writes the ledger entry, and counts only the
// entries the ledger actually created.
func attendanceRecorder(students *roster.Store, attendance *ledger.Ledger) func(studentID string) {
	return func(studentID string) {
		st, ok := students.Get(studentID)
		if !ok {
			log.Printf("capture: matched %s no longer on roster, skipping", studentID)
			return
		}
		rec, created := attendance.Record(st.ID, st.Name)
		if !created {
			return
		}
		metrics.AttendanceMarked.Inc()
		log.Printf("attendance marked: %s (%s) at %s", st.Name, st.ID, rec.Time)
	}
}

func run(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Recognition oracle. Without a credential the service short-circuits
	// every attempt to "no match" and never calls out.
	var provider recognize.Provider
	if cfg.GeminiAPIKey != "" {
		gem, err := recognize.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ProbeMaxSize)
		if err != nil {
			return err
		}
		provider = gem
		log.Printf("recognition model: %s", cfg.GeminiModel)
	} else {
		log.Println("WARNING: GEMINI_API_KEY not set, recognition disabled")
	}
	identifier := recognize.NewService(provider)

	// Notification queue: in-memory channel by default, Redis list when
	// configured. Either way dispatch is fire-and-forget.
	var redisClient *store.Redis
	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		redisClient = store.Dial(cfg.RedisAddr)
		defer redisClient.Close()
		q = queue.NewRedisQueue(redisClient.Client, "facemark:notifications")
	} else {
		q = queue.NewInMemory(64)
	}
	go notify.Drain(ctx, q)

	students := roster.New()
	attendance := ledger.New(notify.New(q))
	feed := camera.NewFeed(cfg.FrameMaxAge)

	loop := capture.New(
		feed,
		identifier,
		func() []recognize.Candidate {
			list := students.List()
			out := make([]recognize.Candidate, 0, len(list))
			for _, st := range list {
				out = append(out, recognize.Candidate{ID: st.ID, Image: st.Image, MIME: st.ImageMIME})
			}
			return out
		},
		attendanceRecorder(students, attendance),
		capture.Config{
			Tick:     cfg.CaptureTick,
			Cooldown: cfg.AttemptCooldown,
			Window:   cfg.SuccessWindow,
		},
	)
	defer loop.Stop()

	h := handler.New(students, attendance, loop, feed)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
	}))
	r.Use(httpmiddleware.NewRateLimiter(cfg.RateLimitBurst, cfg.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		redisHealthy := true
		if redisClient != nil {
			redisHealthy = redisClient.Healthy(c.Request.Context())
			if !redisHealthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	api := r.Group("/api")
	{
		api.POST("/students", h.CreateStudent)
		api.GET("/students", h.ListStudents)
		api.GET("/students/:id", h.GetStudent)
		api.PUT("/students/:id", h.UpdateStudent)
		api.DELETE("/students/:id", h.DeleteStudent)

		api.GET("/attendance", h.ListAttendance)
		api.POST("/attendance/:id/resend", h.ResendNotification)

		api.POST("/capture/start", h.StartCapture)
		api.POST("/capture/stop", h.StopCapture)
		api.GET("/capture/status", h.CaptureStatus)
		api.GET("/capture/feed", h.Feed)
	}

	if cfg.FrontendDir != "" {
		r.Static("/app", cfg.FrontendDir)
		r.StaticFile("/", cfg.FrontendDir+"/index.html")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	loop.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
