// Package dashboard composes loading, filtering and aggregation into the
// views the dashboard renders. A local manager only ever sees records of
// their own location; the location filter is ignored for them.
package dashboard

import (
	"context"
	"fmt"

	"cafedash/internal/aggregate"
	"cafedash/internal/filter"
	"cafedash/internal/logger"
	"cafedash/pkg/models"
)

// Loader provides the datasets a dashboard reads.
type Loader interface {
	Orders(ctx context.Context) ([]models.OrderRecord, error)
	Invoices(ctx context.Context) ([]models.InvoiceRecord, error)
	Managers(ctx context.Context) ([]models.Manager, error)
	ItemsOf(ctx context.Context, invoiceID string) ([]models.InvoiceLineItem, error)
}

// OrdersView is everything the orders dashboard shows.
type OrdersView struct {
	Scope   Scope                  `json:"scope"`
	Filters filter.OrderFilters    `json:"filters"`
	Summary aggregate.OrderSummary `json:"summary"`
	Charts  aggregate.OrderCharts  `json:"charts"`
	Options filter.OrderOptions    `json:"options"`
	Orders  []models.OrderRecord   `json:"orders"`
}

// InvoicesView is everything the invoices dashboard shows.
type InvoicesView struct {
	Scope    Scope                    `json:"scope"`
	Filters  filter.InvoiceFilters    `json:"filters"`
	Summary  aggregate.InvoiceSummary `json:"summary"`
	Charts   aggregate.InvoiceCharts  `json:"charts"`
	Options  filter.InvoiceOptions    `json:"options"`
	Invoices []models.InvoiceRecord   `json:"invoices"`
}

// Service builds dashboard views.
type Service struct {
	loader Loader
}

// NewService creates a dashboard Service.
func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Scope resolves the scope of the manager with the given email.
func (s *Service) Scope(ctx context.Context, email string) (Scope, error) {
	const op = "dashboard.Scope"

	managers, err := s.loader.Managers(ctx)
	if err != nil {
		return Scope{}, fmt.Errorf("%s: %w", op, err)
	}

	scope, err := ResolveScope(managers, email)
	if err != nil {
		// Carries the request id when called from a handler.
		logger.WithContext(ctx).Warn().Str("component", "dashboard").Str("email", email).Err(err).Msg("Dashboard access refused")
		return Scope{}, err
	}
	return scope, nil
}

// OrdersView loads the orders and builds the view for scope and filters.
func (s *Service) OrdersView(ctx context.Context, scope Scope, f filter.OrderFilters) (*OrdersView, error) {
	const op = "dashboard.OrdersView"

	orders, err := s.loader.Orders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return BuildOrdersView(orders, scope, f), nil
}

// BuildOrdersView applies scope and filters to orders and aggregates the
// result. Options describe the scoped records before filtering.
func BuildOrdersView(orders []models.OrderRecord, scope Scope, f filter.OrderFilters) *OrdersView {
	if scope.Local() {
		orders = filter.Apply(orders, filter.OneOf([]string{scope.Location}, func(o models.OrderRecord) string { return o.Location }))
		f.Locations = nil
	}

	matched := filter.Orders(orders, f)
	return &OrdersView{
		Scope:   scope,
		Filters: f,
		Summary: aggregate.SummarizeOrders(matched),
		Charts:  aggregate.BuildOrderCharts(matched),
		Options: filter.OrderOptionsOf(orders),
		Orders:  matched,
	}
}

// InvoicesView loads the invoices and builds the view for scope and filters.
func (s *Service) InvoicesView(ctx context.Context, scope Scope, f filter.InvoiceFilters) (*InvoicesView, error) {
	const op = "dashboard.InvoicesView"

	invoices, err := s.loader.Invoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return BuildInvoicesView(invoices, scope, f), nil
}

// BuildInvoicesView applies scope and filters to invoices and aggregates the
// result.
func BuildInvoicesView(invoices []models.InvoiceRecord, scope Scope, f filter.InvoiceFilters) *InvoicesView {
	if scope.Local() {
		invoices = filter.Apply(invoices, filter.OneOf([]string{scope.Location}, func(r models.InvoiceRecord) string { return r.Location }))
		f.Locations = nil
	}

	matched := filter.Invoices(invoices, f)
	return &InvoicesView{
		Scope:    scope,
		Filters:  f,
		Summary:  aggregate.SummarizeInvoices(matched),
		Charts:   aggregate.BuildInvoiceCharts(matched),
		Options:  filter.InvoiceOptionsOf(invoices),
		Invoices: matched,
	}
}

// InvoiceItems returns the line items of one invoice. A local scope only
// reaches invoices of its location; any other id is ErrUnknownInvoice.
func (s *Service) InvoiceItems(ctx context.Context, scope Scope, invoiceID string) ([]models.InvoiceLineItem, error) {
	const op = "dashboard.InvoiceItems"

	if scope.Local() {
		invoices, err := s.loader.Invoices(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		visible := false
		for _, inv := range invoices {
			if inv.ID == invoiceID && scope.Allows(inv.Location) {
				visible = true
				break
			}
		}
		if !visible {
			return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownInvoice, invoiceID)
		}
	}

	items, err := s.loader.ItemsOf(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
