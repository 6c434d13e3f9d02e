package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

// Ledger: то, что API читает у трекера. Записи через HTTP не принимаются.
type Ledger interface {
	Products() []catalog.ParentItem
	Variants(parentID catalog.ProductID) ([]catalog.PacketVariant, error)
	Summary() []analytics.ProductSummary
	Valuation() decimal.Decimal
	ValueLines() []analytics.ValueLine
	Alerts() []analytics.Alert
	Transactions(f inventory.Filter) iter.Seq[inventory.Transaction]
	DailySales(f inventory.Filter) []analytics.DaySales
	SalesByProduct(f inventory.Filter) []analytics.ProductSales
	Today() inventory.Date
}

// Exporter пишет xlsx-отчёт.
type Exporter func(w io.Writer) error

type Server struct {
	srv *http.Server
}

func New(addr string, exposeMetrics bool, l Ledger, export Exporter, log *slog.Logger) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           Handler(exposeMetrics, l, export, log),
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func Handler(exposeMetrics bool, l Ledger, export Exporter, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if exposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if l == nil {
		return r
	}
	h := &handlers{l: l, export: export, log: log}
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.products)
		r.Get("/summary", h.summary)
		r.Get("/valuation", h.valuation)
		r.Get("/alerts", h.alerts)
		r.Get("/transactions", h.transactions)
		r.Get("/sales/daily", h.dailySales)
		r.Get("/sales/products", h.productSales)
		if export != nil {
			r.Get("/export.xlsx", h.exportXLSX)
		}
	})
	return r
}

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type handlers struct {
	l      Ledger
	export Exporter
	log    *slog.Logger
}

type productView struct {
	catalog.ParentItem
	Variants []catalog.PacketVariant `json:"variants"`
}

func (h *handlers) products(w http.ResponseWriter, _ *http.Request) {
	out := make([]productView, 0)
	for _, p := range h.l.Products() {
		vs, err := h.l.Variants(p.ID)
		if err != nil {
			continue
		}
		out = append(out, productView{ParentItem: p, Variants: vs})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.l.Summary())
}

func (h *handlers) valuation(w http.ResponseWriter, _ *http.Request) {
	total := h.l.Valuation()
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"formatted": analytics.FormatMoney(total),
		"lines":     h.l.ValueLines(),
	})
}

func (h *handlers) alerts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.l.Alerts())
}

func (h *handlers) transactions(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
	}
	out := make([]inventory.Transaction, 0)
	for tx := range h.l.Transactions(f) {
		out = append(out, tx)
	}
	// limit: последние N записей
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) dailySales(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.l.DailySales(f))
}

func (h *handlers) productSales(w http.ResponseWriter, r *http.Request) {
	f, err := h.filter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.l.SalesByProduct(f))
}

func (h *handlers) exportXLSX(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stock_report.xlsx"`)
	if err := h.export(w); err != nil {
		h.log.Error("export failed", "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("export failed"))
	}
}

// filter: ?range=last 7 days | ?from=2025-01-01&to=2025-01-31, kind=sale (повторяемый), product, variant.
func (h *handlers) filter(r *http.Request) (inventory.Filter, error) {
	q := r.URL.Query()
	var f inventory.Filter
	if name := q.Get("range"); name != "" {
		dr, err := analytics.FindRange(h.l.Today(), name)
		if err != nil {
			return f, err
		}
		f = dr.Filter()
	}
	if s := q.Get("from"); s != "" {
		d, err := inventory.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.From = d
	}
	if s := q.Get("to"); s != "" {
		d, err := inventory.ParseDate(s)
		if err != nil {
			return f, err
		}
		f.To = d
	}
	for _, k := range q["kind"] {
		kind := inventory.Kind(k)
		if !kind.Valid() {
			return f, errors.New("unknown kind " + strconv.Quote(k))
		}
		if !slices.Contains(f.Kinds, kind) {
			f.Kinds = append(f.Kinds, kind)
		}
	}
	f.ParentID = catalog.ProductID(q.Get("product"))
	f.VariantID = catalog.VariantID(q.Get("variant"))
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
