package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
)

// Registry stores routes in a dense slice indexed by RouteID.
// Safe for concurrent use: one writer, many readers.
type Registry struct {
	mu      sync.RWMutex
	routes  []domain.Route
	backend SettlementBackend
	logger  logger.LoggerInterface
}

// NewRegistry creates an empty registry validating against backend.
func NewRegistry(backend SettlementBackend, log logger.LoggerInterface) *Registry {
	return &Registry{
		backend: backend,
		logger:  log,
	}
}

// AddRoute validates and appends a route, returning its ID.
func (r *Registry) AddRoute(ctx context.Context, p domain.RouteParams) (domain.RouteID, error) {
	if err := r.validate(p); err != nil {
		return 0, err
	}

	r.mu.Lock()
	id := domain.RouteID(len(r.routes))
	r.routes = append(r.routes, domain.NewRoute(id, p))
	r.mu.Unlock()

	r.logger.Debug(ctx, "route added", "route_id", id, "venue_a", p.VenueA, "venue_b", p.VenueB, "hops", len(p.Path)-1)
	return id, nil
}

// AddRoutesBatch validates every entry before inserting any. On error
// nothing is inserted and the entry's code and kind are kept.
func (r *Registry) AddRoutesBatch(ctx context.Context, params []domain.RouteParams) ([]domain.RouteID, error) {
	for i, p := range params {
		if err := r.validate(p); err != nil {
			return nil, apperror.New(apperror.GetCode(err),
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("batch entry %d", i)),
				apperror.WithKind(apperror.GetKind(err)))
		}
	}

	r.mu.Lock()
	ids := make([]domain.RouteID, len(params))
	for i, p := range params {
		id := domain.RouteID(len(r.routes))
		r.routes = append(r.routes, domain.NewRoute(id, p))
		ids[i] = id
	}
	r.mu.Unlock()

	r.logger.Debug(ctx, "routes added", "count", len(ids))
	return ids, nil
}

// UpdateRoute replaces the route at id after validating the new definition.
func (r *Registry) UpdateRoute(ctx context.Context, id domain.RouteID, p domain.RouteParams) error {
	if err := r.validate(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if uint64(id) >= uint64(len(r.routes)) {
		return invalidRouteID(id, len(r.routes))
	}
	r.routes[id] = domain.NewRoute(id, p)

	r.logger.Debug(ctx, "route updated", "route_id", id)
	return nil
}

// DeleteRoute removes the route at id by moving the last route into its
// slot and shrinking. The moved route takes over id.
func (r *Registry) DeleteRoute(ctx context.Context, id domain.RouteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.routes)
	if uint64(id) >= uint64(n) {
		return invalidRouteID(id, n)
	}

	last := n - 1
	if int(id) != last {
		moved := r.routes[last]
		moved.ID = id
		r.routes[id] = moved
		r.logger.Debug(ctx, "route moved on delete", "from", last, "to", id)
	}
	r.routes[last] = domain.Route{}
	r.routes = r.routes[:last]

	r.logger.Debug(ctx, "route deleted", "route_id", id, "remaining", last)
	return nil
}

// GetRoute returns a copy of the route at id.
func (r *Registry) GetRoute(id domain.RouteID) (domain.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if uint64(id) >= uint64(len(r.routes)) {
		return domain.Route{}, invalidRouteID(id, len(r.routes))
	}
	return r.routes[id].Clone(), nil
}

// Count returns the number of routes.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// GetAllRoutes returns up to limit routes starting at offset. It fails when
// offset is past the end and returns fewer than limit near the end.
func (r *Registry) GetAllRoutes(offset, limit uint64) ([]domain.Route, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := uint64(len(r.routes))
	if offset >= n {
		return nil, apperror.Validation(apperror.CodeInvalidRouteID,
			fmt.Sprintf("offset %d, count %d", offset, n))
	}
	end := n
	if limit < n-offset {
		end = offset + limit
	}

	out := make([]domain.Route, 0, end-offset)
	for _, route := range r.routes[offset:end] {
		out = append(out, route.Clone())
	}
	return out, nil
}

// Snapshot returns a copy of every route in ID order.
func (r *Registry) Snapshot() []domain.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Route, len(r.routes))
	for i, route := range r.routes {
		out[i] = route.Clone()
	}
	return out
}

// InitiateSettlement hands a registered route to the settlement backend.
func (r *Registry) InitiateSettlement(ctx context.Context, id domain.RouteID, amount *uint256.Int) (domain.SettlementResult, error) {
	route, err := r.GetRoute(id)
	if err != nil {
		return domain.SettlementResult{}, err
	}
	return r.backend.InitiateSettlement(ctx, route.BorrowAsset(), amount, id)
}

func (r *Registry) validate(p domain.RouteParams) error {
	if err := domain.ValidatePath(p.Path, r.backend.IsTokenSupported); err != nil {
		return err
	}
	for _, v := range []domain.Venue{p.VenueA, p.VenueB} {
		if !v.Valid() || !r.backend.VenueRouterConfigured(v) {
			return apperror.Validation(apperror.CodeVenueNotConfigured, "venue "+v.String())
		}
	}
	return nil
}

func invalidRouteID(id domain.RouteID, count int) error {
	return apperror.Validation(apperror.CodeInvalidRouteID,
		fmt.Sprintf("route %d, count %d", id, count))
}
