package pipeline

import (
	"context"
	"fmt"

	"github.com/jchenga/signalbot/internal/domain"
)

// VenueExecutor executes a fully gated intent on one venue.
type VenueExecutor interface {
	Execute(ctx context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error)
}

// Router dispatches gated intents to the executor registered for their
// venue tag.
type Router struct {
	executors map[domain.Venue]VenueExecutor
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{executors: make(map[domain.Venue]VenueExecutor)}
}

// Register binds an executor to a venue, replacing any previous binding.
func (r *Router) Register(venue domain.Venue, ex VenueExecutor) {
	r.executors[venue] = ex
}

// Route dispatches the intent. An unregistered venue tag is unreachable
// given the parser's enum contract, but fails with domain.ErrRouting as the
// defensive default.
func (r *Router) Route(ctx context.Context, intent domain.TransactionIntent) (domain.ExecutionReport, error) {
	ex, ok := r.executors[intent.Venue]
	if !ok {
		return domain.ExecutionReport{}, fmt.Errorf("pipeline: venue %q: %w", intent.Venue, domain.ErrRouting)
	}
	return ex.Execute(ctx, intent)
}
