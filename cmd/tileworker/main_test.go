package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/nwillc/raydist/pkg/fixedscene"
	"github.com/nwillc/raydist/pkg/rlog"
)

func newTestRouter() *mux.Router {
	sc := fixedscene.New()
	r := mux.NewRouter()
	r.HandleFunc("/ping", handlePing).Methods(http.MethodGet)
	r.HandleFunc("/{x}/{y}/{w}/{h}/{camera_w}/{camera_h}/{n_samples}/{n_recursion}", renderHandler(sc, rlog.New())).Methods(http.MethodGet)
	return r
}

func TestPingReturnsPong(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "pong" {
		t.Fatalf("body = %q, want pong", rec.Body.String())
	}
}

func TestRenderTileReturnsPNG(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/0/0/4/4/8/8/1/2", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("Content-Type = %q, want image/png", ct)
	}
	if acao := rec.Header().Get("Access-Control-Allow-Origin"); acao != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", acao)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected non-empty PNG body")
	}
}

func TestRenderTileRejectsInvalidSegment(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x/0/4/4/8/8/1/2", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRenderTileRejectsInvariantViolation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/0/0/0/4/8/8/1/2", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for w=0 invariant violation", rec.Code)
	}
}
