package checkout

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediastorehq/storefront-go/pkg/config"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
)

// ReturnParams are the query parameters the payment gateway appends when it
// redirects back after a payment attempt.
type ReturnParams struct {
	Status  string
	OrderID string
}

// ParseReturnParams extracts the return parameters from a redirect query.
// Missing or empty parameters are reported as an unconfirmed return rather
// than a validation failure, since the user may land here by accident.
func ParseReturnParams(values url.Values) (ReturnParams, error) {
	params := ReturnParams{
		Status:  values.Get("status"),
		OrderID: values.Get("order_id"),
	}
	if params.Status == "" || params.OrderID == "" {
		return params, pkgerrors.New(pkgerrors.CodeUnconfirmed, "payment return parameters missing")
	}
	return params, nil
}

// Confirmed reports whether the return parameters carry a success outcome.
func (p ReturnParams) Confirmed() bool {
	return p.Status == "success" && p.OrderID != ""
}

type reconciler interface {
	Reconcile(ctx context.Context, params ReturnParams) error
}

// ReturnListener serves the local HTTP endpoint the payment gateway
// redirects to after a payment attempt.
type ReturnListener struct {
	cfg    config.ReturnConfig
	orch   reconciler
	logg   *logger.Logger
	server *http.Server
}

// NewReturnListener wires the return endpoint to the checkout orchestrator.
// A nil registry disables the metrics endpoint.
func NewReturnListener(cfg config.ReturnConfig, orch reconciler, logg *logger.Logger, registry *prometheus.Registry) (*ReturnListener, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	l := &ReturnListener{cfg: cfg, orch: orch, logg: logg}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get(cfg.Path, l.handleReturn)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	l.server = &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}
	return l, nil
}

func (l *ReturnListener) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := ParseReturnParams(r.URL.Query())
	if err != nil {
		l.logg.Warn(ctx, "payment return with missing parameters")
		writeReturn(w, http.StatusOK, "Payment result could not be confirmed yet. Your order, if placed, remains pending.")
		return
	}

	if err := l.orch.Reconcile(ctx, params); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeUnconfirmed) {
			l.logg.Warn(l.logg.WithOrderID(ctx, params.OrderID), "payment return unconfirmed")
			writeReturn(w, http.StatusOK, "Payment was not completed. You can retry payment for your order.")
			return
		}
		l.logg.Error(l.logg.WithOrderID(ctx, params.OrderID), "payment return reconciliation failed", err)
		writeReturn(w, http.StatusInternalServerError, "Something went wrong while confirming your payment.")
		return
	}

	writeReturn(w, http.StatusOK, fmt.Sprintf("Payment confirmed. Order %s is pending processing.", params.OrderID))
}

func writeReturn(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// Start serves until the listener is shut down. It returns nil on graceful
// shutdown.
func (l *ReturnListener) Start() error {
	l.logg.Info(context.Background(), fmt.Sprintf("return listener on %s%s", l.cfg.Addr, l.cfg.Path))
	if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains the listener within the configured timeout.
func (l *ReturnListener) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.ShutdownTimeout)
	defer cancel()
	return l.server.Shutdown(ctx)
}
