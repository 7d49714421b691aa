// Package dataset loads the logical datasets of the spreadsheet. Each
// dataset is fetched and normalized on its own; a failure in one never
// affects another.
package dataset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"cafedash/internal/cell"
	"cafedash/internal/config"
	"cafedash/internal/logger"
	"cafedash/internal/normalize"
	"cafedash/internal/sheets"
	"cafedash/pkg/models"
)

// Kind names a logical dataset.
type Kind string

const (
	Orders    Kind = "orders"
	Invoices  Kind = "invoices"
	LineItems Kind = "invoice_items"
	Providers Kind = "providers"
	Managers  Kind = "managers"
)

// AllKinds lists every dataset in display order.
var AllKinds = []Kind{Orders, Invoices, LineItems, Providers, Managers}

// ParseKind resolves a dataset name.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
}

// Loader fetches sheets and normalizes them into records. Concurrent loads
// of the same sheet share one upstream read.
type Loader struct {
	reader  sheets.Reader
	norm    *normalize.Normalizer
	names   config.SheetNames
	metrics *Metrics
	group   singleflight.Group
	log     zerolog.Logger
}

// NewLoader creates a Loader. metrics may be nil.
func NewLoader(reader sheets.Reader, norm *normalize.Normalizer, names config.SheetNames, metrics *Metrics) *Loader {
	return &Loader{
		reader:  reader,
		norm:    norm,
		names:   names,
		metrics: metrics,
		log:     logger.WithComponent("dataset"),
	}
}

// Sheet returns the sheet name a dataset is read from.
func (l *Loader) Sheet(kind Kind) string {
	switch kind {
	case Orders:
		return l.names.Orders
	case Invoices:
		return l.names.Invoices
	case LineItems:
		return l.names.InvoiceItems
	case Providers:
		return l.names.Providers
	case Managers:
		return l.names.Managers
	default:
		return ""
	}
}

// fetch reads a sheet once for all concurrent callers. The shared read is
// detached from the caller that started it; each caller stops waiting when
// its own context ends.
func (l *Loader) fetch(ctx context.Context, sheet string) ([]cell.Row, error) {
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(sheet, func() (interface{}, error) {
		return l.reader.ReadRows(shared, sheet)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			l.log.Debug().Str("sheet", sheet).Msg("Shared in-flight sheet read")
		}
		return res.Val.([]cell.Row), nil
	}
}

func (l *Loader) done(kind Kind, start time.Time, stats normalize.Stats, err error) {
	l.metrics.observe(kind, start, stats, err)
	log := logger.WithDataset("dataset", string(kind))
	if err != nil {
		log.Error().Err(err).Msg("Dataset load failed")
		return
	}
	log.Info().
		Int("rows", stats.Rows).
		Int("records", stats.Kept).
		Int("skipped", stats.Skipped).
		Dur("took", time.Since(start)).
		Msg("Dataset loaded")
}

// Orders loads the purchase orders.
func (l *Loader) Orders(ctx context.Context) ([]models.OrderRecord, error) {
	const op = "Orders"
	start := time.Now()
	sheet := l.names.Orders

	rows, err := l.fetch(ctx, sheet)
	if err != nil {
		err = wrapLoadError(Orders, sheet, op, err)
		l.done(Orders, start, normalize.Stats{}, err)
		return nil, err
	}

	orders, stats := l.norm.Orders(rows)
	l.done(Orders, start, stats, nil)
	return orders, nil
}

// Invoices loads the supplier invoices.
func (l *Loader) Invoices(ctx context.Context) ([]models.InvoiceRecord, error) {
	const op = "Invoices"
	start := time.Now()
	sheet := l.names.Invoices

	rows, err := l.fetch(ctx, sheet)
	if err != nil {
		err = wrapLoadError(Invoices, sheet, op, err)
		l.done(Invoices, start, normalize.Stats{}, err)
		return nil, err
	}

	invoices, stats := l.norm.Invoices(rows)
	l.done(Invoices, start, stats, nil)
	return invoices, nil
}

// LineItems loads every invoice line item.
func (l *Loader) LineItems(ctx context.Context) ([]models.InvoiceLineItem, error) {
	const op = "LineItems"
	start := time.Now()
	sheet := l.names.InvoiceItems

	rows, err := l.fetch(ctx, sheet)
	if err != nil {
		err = wrapLoadError(LineItems, sheet, op, err)
		l.done(LineItems, start, normalize.Stats{}, err)
		return nil, err
	}

	items, stats := l.norm.LineItems(rows)
	l.done(LineItems, start, stats, nil)
	return items, nil
}

// ItemsOf loads the line items of one invoice.
func (l *Loader) ItemsOf(ctx context.Context, invoiceID string) ([]models.InvoiceLineItem, error) {
	items, err := l.LineItems(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.InvoiceLineItem{}
	for _, it := range items {
		if it.InvoiceID == invoiceID {
			out = append(out, it)
		}
	}
	return out, nil
}

// Providers loads the provider catalogue. Both the providers and the
// products sheet are needed, so either failing fails the dataset.
func (l *Loader) Providers(ctx context.Context) ([]models.Provider, error) {
	const op = "Providers"
	start := time.Now()

	var providerRows, productRows []cell.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := l.fetch(gctx, l.names.Providers)
		providerRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := l.fetch(gctx, l.names.Products)
		if err != nil {
			return fmt.Errorf("products sheet %q: %w", l.names.Products, err)
		}
		productRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		err = wrapLoadError(Providers, l.names.Providers, op, err)
		l.done(Providers, start, normalize.Stats{}, err)
		return nil, err
	}

	providers, stats := l.norm.Providers(providerRows, productRows)
	l.done(Providers, start, stats, nil)
	return providers, nil
}

// Provider finds one provider of the catalogue by id.
func (l *Loader) Provider(ctx context.Context, id string) (models.Provider, error) {
	providers, err := l.Providers(ctx)
	if err != nil {
		return models.Provider{}, err
	}
	for _, p := range providers {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Provider{}, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
}

// Managers loads the location managers.
func (l *Loader) Managers(ctx context.Context) ([]models.Manager, error) {
	const op = "Managers"
	start := time.Now()
	sheet := l.names.Managers

	rows, err := l.fetch(ctx, sheet)
	if err != nil {
		err = wrapLoadError(Managers, sheet, op, err)
		l.done(Managers, start, normalize.Stats{}, err)
		return nil, err
	}

	managers, stats := l.norm.Managers(rows)
	l.done(Managers, start, stats, nil)
	return managers, nil
}

// Snapshot is the result of loading several datasets at once. A dataset
// whose load failed has no records and an entry in Errors.
type Snapshot struct {
	Orders    []models.OrderRecord
	Invoices  []models.InvoiceRecord
	LineItems []models.InvoiceLineItem
	Providers []models.Provider
	Managers  []models.Manager
	Errors    map[Kind]error
}

// Err returns the load error of one dataset, or nil.
func (s *Snapshot) Err(kind Kind) error {
	return s.Errors[kind]
}

// Count returns the number of records loaded for kind.
func (s *Snapshot) Count(kind Kind) int {
	switch kind {
	case Orders:
		return len(s.Orders)
	case Invoices:
		return len(s.Invoices)
	case LineItems:
		return len(s.LineItems)
	case Providers:
		return len(s.Providers)
	case Managers:
		return len(s.Managers)
	}
	return 0
}

// Load loads the given datasets concurrently, every dataset when none are
// named. Each load records its own error; none cancels the others.
func (l *Loader) Load(ctx context.Context, kinds ...Kind) *Snapshot {
	if len(kinds) == 0 {
		kinds = AllKinds
	}

	snap := &Snapshot{Errors: make(map[Kind]error)}
	var mu sync.Mutex
	var g errgroup.Group

	for _, kind := range kinds {
		g.Go(func() error {
			err := l.loadInto(ctx, kind, snap, &mu)
			if err != nil {
				mu.Lock()
				snap.Errors[kind] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return snap
}

func (l *Loader) loadInto(ctx context.Context, kind Kind, snap *Snapshot, mu *sync.Mutex) error {
	switch kind {
	case Orders:
		v, err := l.Orders(ctx)
		mu.Lock()
		snap.Orders = v
		mu.Unlock()
		return err
	case Invoices:
		v, err := l.Invoices(ctx)
		mu.Lock()
		snap.Invoices = v
		mu.Unlock()
		return err
	case LineItems:
		v, err := l.LineItems(ctx)
		mu.Lock()
		snap.LineItems = v
		mu.Unlock()
		return err
	case Providers:
		v, err := l.Providers(ctx)
		mu.Lock()
		snap.Providers = v
		mu.Unlock()
		return err
	case Managers:
		v, err := l.Managers(ctx)
		mu.Lock()
		snap.Managers = v
		mu.Unlock()
		return err
	default:
		return &LoadError{Dataset: kind, Op: "Load", Err: ErrUnknownDataset}
	}
}
