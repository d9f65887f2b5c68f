package notify

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/vk/injurylens/internal/config"
	"github.com/vk/injurylens/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketIO publishes engine events over a socket.io connection.
type SocketIO struct {
	io    *socket.Socket
	event string
}

// NewSocketIO connects to the configured socket.io endpoint and waits for
// the handshake to complete before returning, so a misconfigured endpoint
// fails at startup rather than silently dropping events later.
func NewSocketIO(ctx context.Context, cfg *config.Notify) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)
	logger.Debug("Connecting notifier")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse notify URL: %w", err)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	type result struct{ err error }
	done := make(chan result, 1)
	var once sync.Once

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Notifier connected", "sid", io.Id())
		once.Do(func() { done <- result{} })
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		once.Do(func() {
			if len(errs) > 0 {
				if e, ok := errs[0].(error); ok {
					done <- result{err: e}
					return
				}
			}
			done <- result{err: fmt.Errorf("socket.io connect error")}
		})
	})

	opCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	io.Connect()

	select {
	case <-opCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for notifier connection to %s", cfg.URL)
	case res := <-done:
		if res.err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("notifier connection failed: %w", res.err)
		}
	}

	return &SocketIO{io: io, event: cfg.Event}, nil
}

// Publish emits the configured event with the given payload. Emission is
// fire-and-forget; delivery failures are the transport's concern.
func (s *SocketIO) Publish(ctx context.Context, data map[string]any) {
	ctxlog.FromContext(ctx).Debug("Publishing engine event", "event", s.event)
	s.io.Emit(s.event, data)
}

// Close disconnects the underlying socket.
func (s *SocketIO) Close() {
	s.io.Disconnect()
}
