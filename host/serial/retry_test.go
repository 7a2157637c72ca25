package serial

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type fakePort struct {
	bytes.Buffer
}

func (p *fakePort) Close() error { return nil }
func (p *fakePort) Flush() error { return nil }

func withOpener(t *testing.T, fn func(*Config) (Port, error)) {
	t.Helper()
	old := openPort
	openPort = fn
	t.Cleanup(func() { openPort = old })
}

func TestOpenWithRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	withOpener(t, func(cfg *Config) (Port, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("no such device")
		}
		return &fakePort{}, nil
	})

	port, err := OpenWithRetry(context.Background(), DefaultConfig("/dev/ttyACM0"), 5*time.Second)
	if err != nil {
		t.Fatalf("OpenWithRetry failed: %v", err)
	}
	if port == nil {
		t.Fatal("Expected a port")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestOpenWithRetryPermanent(t *testing.T) {
	attempts := 0
	withOpener(t, func(cfg *Config) (Port, error) {
		attempts++
		return nil, os.ErrPermission
	})

	_, err := OpenWithRetry(context.Background(), DefaultConfig("/dev/ttyACM0"), 5*time.Second)
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("Expected permission error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected a single attempt, got %d", attempts)
	}
}

func TestOpenWithRetryCancelled(t *testing.T) {
	withOpener(t, func(cfg *Config) (Port, error) {
		return nil, errors.New("busy")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := OpenWithRetry(ctx, DefaultConfig("/dev/ttyACM0"), time.Minute); err == nil {
		t.Fatal("Expected error with cancelled context")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Cancelled retry took too long")
	}
}

func TestOpenWithRetryNilConfig(t *testing.T) {
	if _, err := OpenWithRetry(context.Background(), nil, time.Second); err == nil {
		t.Error("Expected error for nil config")
	}
}
