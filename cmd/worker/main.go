package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcusoji/Attendms/internal/config"
	"github.com/marcusoji/Attendms/internal/faceclient"
	"github.com/marcusoji/Attendms/internal/identity"
	"github.com/marcusoji/Attendms/internal/queue"
	"github.com/marcusoji/Attendms/internal/store"
)

// Worker consumes enrollment messages, asks the face service whether the
// student's reference image is usable, and records the outcome. Advisory
// only: login never depends on this flag.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendms:enrollments")
	}

	repo := identity.NewRepository(db.Client)
	face := faceclient.New(cfg.FaceServiceURL, !cfg.FaceQC)

	if cfg.FaceQC {
		if err := face.Health(ctx); err != nil {
			log.Printf("WARNING: face service not available: %v", err)
			log.Println("worker will retry when messages arrive")
		} else {
			log.Println("face service connected")
		}
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "enroll" {
			continue
		}

		id := string(msg.Body)
		st, err := repo.GetStudent(ctx, id)
		if err != nil {
			log.Printf("fetch student %s failed: %v", id, err)
			continue
		}

		result, err := face.CheckImage(ctx, st.FaceScanData)
		if err != nil {
			log.Printf("face check failed for %s: %v", id, err)
			continue
		}

		usable := result.Usable && result.FacesDetected == 1
		if err := repo.SetStudentFaceChecked(ctx, id, usable); err != nil {
			log.Printf("record face check for %s failed: %v", id, err)
			continue
		}
		log.Printf("student %s: %d face(s), quality %.2f, usable=%v", st.MatNo, result.FacesDetected, result.Quality, usable)
	}

	log.Println("worker stopped")
}
