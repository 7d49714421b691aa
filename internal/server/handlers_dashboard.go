package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"cafedash/internal/dashboard"
	"cafedash/internal/export"
)

// UserEmailHeader carries the signed-in manager's email. Authentication
// happens in front of this service.
const UserEmailHeader = "X-User-Email"

type scopeKey struct{}

// identify resolves the caller's dashboard scope and stores it in the
// request context.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope, err := s.deps.Dashboard.Scope(r.Context(), r.Header.Get(UserEmailHeader))
		if err != nil {
			fail(w, r, err)
			return
		}
		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("manager", scope.Manager.Email)
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), scopeKey{}, scope)))
	})
}

func scopeFrom(ctx context.Context) dashboard.Scope {
	if scope, ok := ctx.Value(scopeKey{}).(dashboard.Scope); ok {
		return scope
	}
	return dashboard.Scope{}
}

func (s *Server) handleOrdersDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	view, err := s.deps.Dashboard.OrdersView(r.Context(), scopeFrom(r.Context()), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

func (s *Server) handleInvoicesDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := invoiceFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	view, err := s.deps.Dashboard.InvoicesView(r.Context(), scopeFrom(r.Context()), f)
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendWorkbook(w http.ResponseWriter, name string, buf *bytes.Buffer) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleOrdersExport downloads the filtered orders as a workbook.
func (s *Server) handleOrdersExport(w http.ResponseWriter, r *http.Request) {
	f, err := orderFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	view, err := s.deps.Dashboard.OrdersView(r.Context(), scopeFrom(r.Context()), f)
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Orders(&buf, view.Orders); err != nil {
		fail(w, r, err)
		return
	}
	sendWorkbook(w, "ordenes", &buf)
}

// handleInvoicesExport downloads the filtered invoices as a workbook.
func (s *Server) handleInvoicesExport(w http.ResponseWriter, r *http.Request) {
	f, err := invoiceFilters(r.URL.Query())
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	view, err := s.deps.Dashboard.InvoicesView(r.Context(), scopeFrom(r.Context()), f)
	if err != nil {
		fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Invoices(&buf, view.Invoices); err != nil {
		fail(w, r, err)
		return
	}
	sendWorkbook(w, "facturas", &buf)
}

// handleInvoiceItems lists the line items of one invoice. Local managers
// only reach invoices of their location.
func (s *Server) handleInvoiceItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Dashboard.InvoiceItems(r.Context(), scopeFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, items)
}
