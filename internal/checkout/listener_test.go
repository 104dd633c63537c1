package checkout

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mediastorehq/storefront-go/pkg/config"
	pkgerrors "github.com/mediastorehq/storefront-go/pkg/errors"
	"github.com/mediastorehq/storefront-go/pkg/logger"
)

type stubReconciler struct {
	calls  int
	params ReturnParams
	err    error
}

func (s *stubReconciler) Reconcile(_ context.Context, params ReturnParams) error {
	s.calls++
	s.params = params
	return s.err
}

func newTestListener(t *testing.T, rec *stubReconciler) *httptest.Server {
	t.Helper()

	cfg := config.ReturnConfig{Addr: ":0", Path: "/checkout/return"}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	listener, err := NewReturnListener(cfg, rec, logg, nil)
	if err != nil {
		t.Fatalf("NewReturnListener: %v", err)
	}

	server := httptest.NewServer(listener.server.Handler)
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestParseReturnParams(t *testing.T) {
	t.Parallel()

	params, err := ParseReturnParams(url.Values{"status": {"success"}, "order_id": {"ord-1"}})
	if err != nil {
		t.Fatalf("ParseReturnParams: %v", err)
	}
	if !params.Confirmed() {
		t.Fatalf("expected confirmed params, got %+v", params)
	}

	if _, err := ParseReturnParams(url.Values{"status": {"success"}}); !pkgerrors.HasCode(err, pkgerrors.CodeUnconfirmed) {
		t.Fatalf("expected unconfirmed for missing order id, got %v", err)
	}
	if _, err := ParseReturnParams(url.Values{}); !pkgerrors.HasCode(err, pkgerrors.CodeUnconfirmed) {
		t.Fatalf("expected unconfirmed for empty query, got %v", err)
	}

	failed, err := ParseReturnParams(url.Values{"status": {"failed"}, "order_id": {"ord-1"}})
	if err != nil {
		t.Fatalf("ParseReturnParams: %v", err)
	}
	if failed.Confirmed() {
		t.Fatal("failed status must not be confirmed")
	}
}

func TestReturnHandlerSuccess(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{}
	server := newTestListener(t, rec)

	status, body := get(t, server.URL+"/checkout/return?status=success&order_id=ord-1")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "ord-1") {
		t.Fatalf("confirmation body missing order id: %q", body)
	}
	if rec.calls != 1 || rec.params.OrderID != "ord-1" || rec.params.Status != "success" {
		t.Fatalf("reconciler not invoked correctly: %d %+v", rec.calls, rec.params)
	}
}

func TestReturnHandlerMissingParams(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{}
	server := newTestListener(t, rec)

	status, body := get(t, server.URL+"/checkout/return")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "could not be confirmed") {
		t.Fatalf("unexpected body %q", body)
	}
	if rec.calls != 0 {
		t.Fatal("reconciler must not run without parameters")
	}
}

func TestReturnHandlerUnconfirmed(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeUnconfirmed, "payment return not confirmed")}
	server := newTestListener(t, rec)

	status, body := get(t, server.URL+"/checkout/return?status=failed&order_id=ord-1")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !strings.Contains(body, "retry") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestReturnHandlerReconcileFailure(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeInternal, "boom")}
	server := newTestListener(t, rec)

	status, _ := get(t, server.URL+"/checkout/return?status=success&order_id=ord-1")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestListener(t, &stubReconciler{})

	status, body := get(t, server.URL+"/healthz")
	if status != http.StatusOK || body != "ok" {
		t.Fatalf("healthz: %d %q", status, body)
	}
}
