package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quicky-client/internal/models"
)

// StatusChannel is the Redis pub/sub channel carrying backend status
// changes, fanned out to websocket clients.
const StatusChannel = "backend_status"

// HealthService polls the quiz backend with a short timeout and keeps
// the latest status in memory. The backend sleeps when idle, so a
// timeout reads as offline rather than as an error; Wake retries with a
// long timeout to give it time to boot.
type HealthService struct {
	backend      *BackendService
	redis        *redis.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	wakeTimeout  time.Duration

	mu     sync.RWMutex
	status models.BackendStatus

	stop chan struct{}
	done chan struct{}
}

func NewHealthService(backend *BackendService, redisClient *redis.Client, pollInterval, pollTimeout, wakeTimeout time.Duration) *HealthService {
	return &HealthService{
		backend:      backend,
		redis:        redisClient,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		wakeTimeout:  wakeTimeout,
		status:       models.BackendStatus{Message: "Status not checked yet"},
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start launches the polling loop. The first probe fires immediately.
func (s *HealthService) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		s.check(ctx)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.check(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling loop and waits for it to exit.
func (s *HealthService) Stop() {
	close(s.stop)
	<-s.done
}

// Status returns the latest observed backend status.
func (s *HealthService) Status() models.BackendStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Wake probes the backend with the long timeout, giving a sleeping
// instance time to spin up. Returns the resulting status.
func (s *HealthService) Wake(ctx context.Context) models.BackendStatus {
	err := s.backend.Ping(ctx, s.wakeTimeout)
	return s.update(err, "Backend is waking up, try again shortly")
}

func (s *HealthService) check(ctx context.Context) {
	err := s.backend.Ping(ctx, s.pollTimeout)
	s.update(err, "Backend is offline or sleeping")
}

func (s *HealthService) update(err error, offlineMsg string) models.BackendStatus {
	status := models.BackendStatus{
		Online:    err == nil,
		Message:   "Backend is online",
		CheckedAt: time.Now(),
	}
	if err != nil {
		status.Message = offlineMsg
	}

	s.mu.Lock()
	changed := s.status.Online != status.Online
	s.status = status
	s.mu.Unlock()

	if changed {
		s.publish(status)
	}
	return status
}

func (s *HealthService) publish(status models.BackendStatus) {
	msg := models.WSMessage{Type: "backend_status", Payload: status}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := s.redis.Publish(context.Background(), StatusChannel, string(data)).Err(); err != nil {
		log.Printf("status publish failed: %v", err)
	}
}
