package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoststack/concierge/internal/channels"
)

type okHandler struct{}

func (okHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestHealthz(t *testing.T) {
	srv := New(0, false, channels.Routes{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestChannelRoutesMounted(t *testing.T) {
	srv := New(0, false, channels.Routes{
		WhatsApp: okHandler{},
		SMS:      okHandler{},
	}, nil)

	for _, path := range []string{"/webhooks/whatsapp", "/webhooks/sms"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("POST %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestUnmountedChannelIs404(t *testing.T) {
	srv := New(0, false, channels.Routes{WhatsApp: okHandler{}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/sms", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := New(0, false, channels.Routes{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
