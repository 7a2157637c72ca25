package serial

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cenkalti/backoff"
)

// openPort is replaced in tests
var openPort = Open

// OpenWithRetry opens the port, retrying with exponential backoff while the
// device node is missing or busy (a board re-enumerating after reset).
// It gives up after maxWait, when ctx is cancelled, or on a permanent error.
func OpenWithRetry(ctx context.Context, cfg *Config, maxWait time.Duration) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxWait

	var port Port
	op := func() error {
		p, err := openPort(cfg)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return backoff.Permanent(err)
			}
			return err
		}
		port = p
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("serial port %s not available: %w", cfg.Device, err)
	}
	return port, nil
}
