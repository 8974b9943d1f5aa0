// Package coordinator runs the consumers and background workers of one saga
// participant. Each participant reacts to the topics it subscribes to; there
// is no central orchestrator.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/inbox"
	"github.com/jcmexdev/food-ordering-sagas/internal/pkg/messaging"
)

// Route binds a topic to the handler that consumes it. Source names the
// consumer for inbox deduplication.
type Route struct {
	Topic   string
	Source  string
	Handler messaging.Handler
}

// Worker is a long running loop such as the outbox relay. It returns when ctx
// is done.
type Worker func(ctx context.Context) error

type namedWorker struct {
	name string
	run  Worker
}

type Router struct {
	subscriber messaging.Subscriber
	inbox      *inbox.Inbox
	routes     []Route
	workers    []namedWorker
}

// NewRouter returns a Router reading from subscriber. A nil inbox disables
// deduplication.
func NewRouter(subscriber messaging.Subscriber, box *inbox.Inbox) *Router {
	return &Router{subscriber: subscriber, inbox: box}
}

// Handle registers h for topic. The handler runs inside a consumer span and,
// when an inbox is configured, at most once per message id.
func (r *Router) Handle(topic, source string, h messaging.Handler) {
	if r.inbox != nil {
		h = r.inbox.Wrap(source, h)
	}
	r.routes = append(r.routes, Route{Topic: topic, Source: source, Handler: messaging.Traced(h)})
}

// Go registers a background worker.
func (r *Router) Go(name string, w Worker) {
	r.workers = append(r.workers, namedWorker{name: name, run: w})
}

// Routes returns the wrapped handlers in registration order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Run subscribes every route and starts every worker. It blocks until ctx is
// done or one of them fails, which stops the others.
func (r *Router) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, route := range r.routes {
		g.Go(func() error {
			slog.InfoContext(gctx, "consumer started", "topic", route.Topic, "source", route.Source)
			if err := r.subscriber.Subscribe(gctx, route.Topic, route.Handler); err != nil {
				return fmt.Errorf("coordinator: consume %s: %w", route.Topic, err)
			}
			return nil
		})
	}
	for _, w := range r.workers {
		g.Go(func() error {
			slog.InfoContext(gctx, "worker started", "worker", w.name)
			if err := w.run(gctx); err != nil {
				return fmt.Errorf("coordinator: worker %s: %w", w.name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
