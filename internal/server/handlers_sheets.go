package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/hlog"

	"cafedash/internal/cell"
	"cafedash/internal/ordering"
	"cafedash/internal/sheets"
	"cafedash/pkg/models"
)

// maxBody caps request bodies read by the handlers.
const maxBody = 1 << 20

type sheetDataRequest struct {
	SheetID   string `json:"sheetId"`
	SheetName string `json:"sheetName"`
}

type sheetDataResponse struct {
	Rows []cell.Row `json:"rows"`
}

// handleGetSheetData returns the rows of one tab, keyed by header. The
// spreadsheet defaults to the configured one.
func (s *Server) handleGetSheetData(w http.ResponseWriter, r *http.Request) {
	var req sheetDataRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
			badRequest(w, r, "request body must be JSON with sheetName")
			return
		}
	} else {
		req.SheetID = r.URL.Query().Get("sheetId")
		req.SheetName = r.URL.Query().Get("sheetName")
	}

	req.SheetName = strings.TrimSpace(req.SheetName)
	if req.SheetName == "" {
		badRequest(w, r, "missing required parameter: sheetName")
		return
	}

	rows, err := s.readSheet(r, strings.TrimSpace(req.SheetID), req.SheetName)
	if err != nil {
		fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []cell.Row{}
	}
	render.JSON(w, r, sheetDataResponse{Rows: rows})
}

func (s *Server) readSheet(r *http.Request, ref, sheetName string) ([]cell.Row, error) {
	if ref == "" {
		return s.deps.Reader.ReadRows(r.Context(), sheetName)
	}

	id, err := sheets.SpreadsheetID(ref)
	if err != nil {
		return nil, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err.Error())
	}
	if s.deps.Remote == nil {
		return nil, newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", "sheetId is not supported by the configured sheet source")
	}
	if id == s.deps.Remote.SpreadsheetID() {
		return s.deps.Reader.ReadRows(r.Context(), sheetName)
	}
	return s.deps.Remote.ReadSpreadsheetRows(r.Context(), id, sheetName)
}

// handleSendOrder forwards the body to the order webhook and mirrors its
// status and body back.
func (s *Server) handleSendOrder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Webhook == nil {
		fail(w, r, newAPIError(http.StatusInternalServerError, "NOT_CONFIGURED", "missing ORDER_WEBHOOK_URL"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		badRequest(w, r, "failed to read request body")
		return
	}
	if !json.Valid(body) {
		badRequest(w, r, "request body must be JSON")
		return
	}

	resp, err := s.deps.Webhook.Forward(r.Context(), body)
	if err != nil {
		fail(w, r, err)
		return
	}
	if resp.OK() {
		s.invalidateOrders(r)
	}
	mirror(w, resp)
}

// invalidator is implemented by caching readers.
type invalidator interface {
	Invalidate(ctx context.Context, sheetNames ...string) error
}

// invalidateOrders drops cached order rows after the webhook accepted an
// order, since the webhook appends it to the orders sheet.
func (s *Server) invalidateOrders(r *http.Request) {
	inv, ok := s.deps.Reader.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(r.Context(), s.cfg.Sheets.Orders); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to invalidate cached orders")
	}
}

func mirror(w http.ResponseWriter, resp *ordering.Response) {
	contentType := "text/plain; charset=utf-8"
	if json.Valid(resp.Body) {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// handleProviders returns the provider catalogue for the order form.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := s.deps.Loader.Providers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, providers)
}

func (s *Server) decodeOrder(w http.ResponseWriter, r *http.Request) (ordering.OrderRequest, bool) {
	var req ordering.OrderRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, r, "invalid order JSON: "+err.Error())
		return req, false
	}
	return req, true
}

// handleQuote prices an order request without submitting it.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}
	if err := s.deps.Composer.Validate(req); err != nil {
		fail(w, r, err)
		return
	}

	provider, err := s.deps.Loader.Provider(r.Context(), req.ProviderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	quote, err := s.deps.Composer.Quote(req, provider)
	if err != nil {
		fail(w, r, err)
		return
	}
	render.JSON(w, r, quote)
}

type createOrderResponse struct {
	Order         *models.PurchaseOrder `json:"order"`
	WebhookStatus int                   `json:"webhook_status"`
}

// handleCreateOrder prices the request server side and submits it.
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if s.deps.Webhook == nil {
		fail(w, r, newAPIError(http.StatusInternalServerError, "NOT_CONFIGURED", "missing ORDER_WEBHOOK_URL"))
		return
	}

	req, ok := s.decodeOrder(w, r)
	if !ok {
		return
	}
	if err := s.deps.Composer.Validate(req); err != nil {
		fail(w, r, err)
		return
	}

	provider, err := s.deps.Loader.Provider(r.Context(), req.ProviderID)
	if err != nil {
		fail(w, r, err)
		return
	}
	order, err := s.deps.Composer.Compose(req, provider)
	if err != nil {
		fail(w, r, err)
		return
	}

	resp, err := s.deps.Webhook.Submit(r.Context(), order)
	if err != nil {
		if errors.Is(err, ordering.ErrWebhookRejected) && resp != nil {
			e := apiError(err)
			e.Details = map[string]interface{}{"webhook_status": resp.Status}
			fail(w, r, e)
			return
		}
		fail(w, r, err)
		return
	}

	s.invalidateOrders(r)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, createOrderResponse{Order: order, WebhookStatus: resp.Status})
}
