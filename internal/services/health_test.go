package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testRedis() *redis.Client {
	// Publishes fail and get logged; status tracking works without a
	// live Redis.
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
}

func TestHealthService_OnlineAndOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, 5*time.Second)
	svc := NewHealthService(backend, testRedis(), time.Minute, time.Second, 2*time.Second)

	status := svc.Status()
	if status.Online {
		t.Error("online before first check")
	}

	svc.check(context.Background())
	status = svc.Status()
	if !status.Online {
		t.Errorf("status after successful check = %+v", status)
	}

	srv.Close()
	svc.check(context.Background())
	status = svc.Status()
	if status.Online {
		t.Errorf("status after failed check = %+v", status)
	}
	if status.Message == "" {
		t.Error("offline status has no message")
	}
}

func TestHealthService_WakeTreatsTimeoutAsOffline(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte("[]"))
	}))
	defer slow.Close()

	backend := NewBackendService(slow.URL, 5*time.Second)

	// Wake timeout shorter than the handler delay: reads as offline.
	svc := NewHealthService(backend, testRedis(), time.Minute, 10*time.Millisecond, 50*time.Millisecond)
	if status := svc.Wake(context.Background()); status.Online {
		t.Error("wake reported online despite timeout")
	}

	// Wake timeout long enough: the slow backend comes through.
	svc = NewHealthService(backend, testRedis(), time.Minute, 10*time.Millisecond, 2*time.Second)
	if status := svc.Wake(context.Background()); !status.Online {
		t.Error("wake reported offline despite eventual response")
	}
}

func TestHealthService_StartStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	backend := NewBackendService(srv.URL, 5*time.Second)
	svc := NewHealthService(backend, testRedis(), 10*time.Millisecond, time.Second, time.Second)

	svc.Start(context.Background())
	deadline := time.After(2 * time.Second)
	for !svc.Status().Online {
		select {
		case <-deadline:
			t.Fatal("poller never observed the backend online")
		case <-time.After(5 * time.Millisecond):
		}
	}
	svc.Stop()
}
