package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DROWSY_GUARD/go-monitor/internal/capture"
	"DROWSY_GUARD/go-monitor/internal/classifier"
	"DROWSY_GUARD/go-monitor/internal/config"
	"DROWSY_GUARD/go-monitor/internal/database"
	"DROWSY_GUARD/go-monitor/internal/decision"
	"DROWSY_GUARD/go-monitor/internal/handlers"
	"DROWSY_GUARD/go-monitor/internal/ports"
	"DROWSY_GUARD/go-monitor/internal/scheduler"
	"DROWSY_GUARD/go-monitor/internal/services"
)

var httpServer *http.Server

func main() {
	httpPort := flag.String("http-port", "", "HTTP port (overrides env)")
	modelURL := flag.String("model-url", "", "Model sidecar URL (overrides env)")
	flag.Parse()

	cfg := config.LoadConfig()
	if *httpPort != "" {
		cfg.HTTPPort = *httpPort
	}
	if *modelURL != "" {
		cfg.ModelServiceURL = *modelURL
	}

	log.Println("Starting...")
	log.Printf("HTTP port: %s", cfg.HTTPPort)
	log.Printf("Model service: %s", cfg.ModelServiceURL)
	log.Printf("Enviroment: %s", cfg.Environment)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	// Подключение к модели
	modelClient, err := services.NewModelClient(cfg.ModelServiceURL,
		time.Duration(cfg.InferenceTimeoutMS)*time.Millisecond)
	if err != nil {
		log.Printf("Model service unavailable: %v", err)
		log.Println("Continuing in degraded mode")
	}
	if modelClient != nil {
		defer modelClient.Close()
	}

	// база опциональна: без неё окна просто не сохраняются
	var store *database.Store
	if err := database.InitDB(cfg.DSN()); err != nil {
		log.Printf("Database unavailable (%s): %v", cfg.DSNForLog(), err)
		log.Println("Continuing without persistence")
	} else {
		store = database.NewStore(database.DB)
		defer database.CloseDB()
	}

	metrics := services.GetMetrics()
	frameClassifier := classifier.New(modelClient, cfg.ImageSize)

	warmCtx, warmCancel := context.WithCancel(context.Background())
	defer warmCancel()
	go warmUpLoop(warmCtx, frameClassifier)

	device := capture.NewFFMPEGCapture(capture.Config{
		Command: cfg.FFmpegCommand,
		Format:  cfg.CaptureFormat,
		Device:  cfg.CaptureDevice,
		ClipDir: cfg.ClipDir,
	})

	decisionCfg := decision.Config{
		SeverityThreshold:   cfg.SeverityThreshold,
		AlertCountThreshold: cfg.AlertCountThreshold,
		DefaultWaitSeconds:  cfg.DefaultWaitSeconds,
	}
	if cfg.WaitSchedule == "graduated" {
		decisionCfg.Schedule = decision.GraduatedSchedule()
	}

	hub := handlers.NewHub(metrics)
	sinks := ports.Sinks{hub, services.NewMetricsSink(metrics)}

	sched := scheduler.New(device, frameClassifier, summaryStore(store), sinks, scheduler.Config{
		RecordDuration: time.Duration(cfg.RecordDurationSeconds) * time.Second,
		BufferDuration: time.Duration(cfg.BufferSeconds) * time.Second,
		DefaultWait:    time.Duration(cfg.DefaultWaitSeconds) * time.Second,
		SampleInterval: time.Duration(cfg.SampleIntervalMS) * time.Millisecond,
		Decision:       decisionCfg,
	})
	hub.SetAckHandler(sched.Acknowledge)

	if err := sched.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start monitoring loop: %v", err)
	}

	api := handlers.NewAPI(hub, sched, modelClient, metrics, store, cfg.CORSOrigins)

	log.Println("Starting HTTP server...")
	go startHTTPServer(cfg.HTTPPort, api)

	// Ждём сигнала
	<-done
	log.Println("Shutting down...")

	sched.Cancel()
	select {
	case <-sched.Done():
		log.Println("Monitoring loop stopped")
	case <-time.After(10 * time.Second):
		log.Println("Monitoring loop did not stop in time")
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		log.Println("Stopping HTTP server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down HTTP server: %v", err)
		} else {
			log.Println("HTTP server gracefully stopped")
		}
	}

	log.Println("Closing WebSocket connections...")
	hub.CloseAll()
	log.Println("All WebSocket connections closed...")

	log.Println("Goodbye!")
}

// summaryStore avoids handing the scheduler a typed-nil interface when
// the database is down.
func summaryStore(s *database.Store) ports.SummaryStore {
	if s == nil {
		return nil
	}
	return s
}

// warmUpLoop retries model warm-up until it succeeds; the capture loop
// keeps running in degraded mode until then.
func warmUpLoop(ctx context.Context, fc *classifier.FrameClassifier) {
	for {
		warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := fc.WarmUp(warmCtx)
		cancel()
		if err == nil {
			log.Println("Model warmed up, classifier ready")
			return
		}
		log.Printf("Model warm-up failed: %v", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func startHTTPServer(httpPort string, api *handlers.API) {
	port := httpPort
	if len(port) > 0 && port[0] == ':' {
		port = port[1:]
	}

	mux := http.NewServeMux()
	api.Routes(mux)

	httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("HTTP server listening on port %s", port)
	log.Printf("WebSocket:  ws://localhost:%s/ws", port)
	log.Printf("REST API:   http://localhost:%s/api/*", port)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to serve HTTP: %v", err)
	}
}
