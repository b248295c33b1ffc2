package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/registry-api/internal/platform/logger"
	"github.com/phrazzld/registry-api/internal/redact"
)

// InMemoryEventEmitter fans person events out to handlers registered in
// process. Dispatch is synchronous and follows registration order.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(l *slog.Logger) *InMemoryEventEmitter {
	if l == nil {
		l = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: l.With(slog.String("component", "event_emitter")),
	}
}

// RegisterHandler subscribes handler to every subsequent event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	e.mu.Unlock()
}

// EmitEvent delivers event to every handler, even after one fails. A
// panicking handler is reported as an error. All failures are returned
// joined.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *PersonEvent) error {
	if event == nil {
		return errors.New("cannot emit nil event")
	}

	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	log := logger.FromContextOrDefault(ctx, e.logger).With(
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.Int64("person_id", event.PersonID))

	var errs []error
	for i, handler := range handlers {
		if err := dispatch(ctx, handler, event); err != nil {
			log.Error("event handler failed", slog.Int("handler_index", i), redact.ErrorAttr(err))
			errs = append(errs, err)
		}
	}
	log.Debug("event dispatched",
		slog.Int("handler_count", len(handlers)),
		slog.Int("failed", len(errs)))

	return errors.Join(errs...)
}

func dispatch(ctx context.Context, handler EventHandler, event *PersonEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
	}()
	return handler.HandleEvent(ctx, event)
}
