package worker

import (
	"context"
	"errors"
)

type EventHandler func(ctx context.Context, data []byte) error

// Router fans an event out to every handler registered for it. Events
// without handlers are dropped.
type Router struct {
	handlers map[string][]EventHandler
}

func NewRouter(handlers map[string][]EventHandler) *Router {
	return &Router{handlers: handlers}
}

func (r *Router) Handle(ctx context.Context, event string, data []byte) error {
	var errs []error
	for _, handler := range r.handlers[event] {
		if err := handler(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
