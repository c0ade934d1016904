package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollcall/internal/config"
	"rollcall/internal/logger"
	"rollcall/internal/queue"
	"rollcall/internal/roster"
	"rollcall/internal/session"
	"rollcall/internal/store"
)

// Worker consumes registration events and publishes fresh roster
// snapshots on the session's pub/sub channel so API instances can push
// them to connected viewers.
func main() {
	cfg := config.Load()
	slogger := logger.SetupDefault(os.Stdout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slogger.Info("shutdown signal received")
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
		// a memory queue cannot cross processes; the API runs the
		// fan-out in-process in that mode and this worker is idle
		slogger.Warn("QUEUE_BACKEND=memory: worker has nothing to consume")
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	sessRepo := session.NewRepository(db.Client)
	publisher := roster.NewPublisher(redisClient.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	slogger.Info("worker started, waiting for registration events")
	for msg := range messages {
		if msg.Type != queue.TypeRegistration {
			continue
		}

		var evt queue.RegistrationEvent
		if err := json.Unmarshal(msg.Body, &evt); err != nil {
			slogger.Warn("bad registration event", "err", err)
			continue
		}

		records, err := sessRepo.Roster(ctx, evt.SessionID)
		if err != nil {
			slogger.Warn("roster load failed", "session_id", evt.SessionID, "err", err)
			continue
		}

		snap := roster.Snapshot{SessionID: evt.SessionID, Records: records}
		if err := publisher.Publish(ctx, snap); err != nil {
			slogger.Warn("roster publish failed", "session_id", evt.SessionID, "err", err)
			continue
		}
		slogger.Info("roster published", "session_id", evt.SessionID, "records", len(records))
	}

	slogger.Info("worker stopped")
}
