package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	event := NewPersonEvent(PersonCreated, 1, time.Now())

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2)

		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failingHandler := &MockEventHandler{HandlerError: errors.New("handler error")}
		successHandler := &MockEventHandler{}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Equal(t, 1, failingHandler.HandledCount)
		assert.Equal(t, 1, successHandler.HandledCount, "later handlers still run")
	})

	t.Run("every failure is reported", func(t *testing.T) {
		errA := errors.New("cache unavailable")
		errB := errors.New("audit unavailable")
		emitter := NewInMemoryEventEmitter(logger)
		emitter.RegisterHandler(&MockEventHandler{HandlerError: errA})
		emitter.RegisterHandler(&MockEventHandler{HandlerError: errB})

		err := emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})

	t.Run("panicking handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		after := &MockEventHandler{}
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *PersonEvent) error {
			panic("boom")
		}))
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), event)
		assert.ErrorContains(t, err, "panicked: boom")
		assert.Equal(t, 1, after.HandledCount)
	})

	t.Run("nil event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.Error(t, emitter.EmitEvent(context.Background(), nil))
	})

	t.Run("handler func adapter", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		var seen []EventType
		emitter.RegisterHandler(EventHandlerFunc(func(ctx context.Context, e *PersonEvent) error {
			seen = append(seen, e.Type)
			return nil
		}))

		_ = emitter.EmitEvent(context.Background(), NewPersonEvent(PersonUpdated, 2, time.Now()))
		_ = emitter.EmitEvent(context.Background(), NewPersonEvent(PersonDeleted, 2, time.Now()))
		assert.Equal(t, []EventType{PersonUpdated, PersonDeleted}, seen)
	})
}
