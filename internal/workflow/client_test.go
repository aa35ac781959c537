package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSubmitPostsBodyAndDecodesHandle(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/webhook/generer/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"executionUrl":"http://engine/exec/1"}`))
	}))
	defer srv.Close()

	c := NewClient(mustTestLogger(t), ClientConfig{Timeout: time.Second})
	h, err := c.Submit(context.Background(), srv.URL+"/webhook/generer/messages", map[string]any{"id": "camp-1", "mode": "generate"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	p, ok := h.(Pending)
	if !ok || p.Continuation != "http://engine/exec/1" {
		t.Fatalf("unexpected handle %#v", h)
	}
	if gotBody["id"] != "camp-1" || gotBody["mode"] != "generate" {
		t.Fatalf("unexpected body %#v", gotBody)
	}
}

func TestClientStatusReportsHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(mustTestLogger(t), ClientConfig{Timeout: time.Second})
	if _, err := c.Status(context.Background(), srv.URL+"/webhook-waiting/1"); err == nil {
		t.Fatal("expected error for 502")
	}
}

func TestClientStatusFinished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"finished":true,"data":{"count":5}}`))
	}))
	defer srv.Close()

	c := NewClient(mustTestLogger(t), ClientConfig{Timeout: time.Second})
	h, err := c.Status(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !h.Done() {
		t.Fatalf("expected finished handle, got %#v", h)
	}
}

func TestClientExecutionSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/executions/77" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-N8N-API-KEY") != "k-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"77","status":"success"}`))
	}))
	defer srv.Close()

	c := NewClient(mustTestLogger(t), ClientConfig{APIBaseURL: srv.URL + "/api/v1/", APIKey: "k-1", Timeout: time.Second})
	rec, err := c.Execution(context.Background(), "77")
	if err != nil {
		t.Fatalf("Execution: %v", err)
	}
	if rec["status"] != "success" {
		t.Fatalf("unexpected record %#v", rec)
	}
	if _, err := c.Execution(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty execution id")
	}
}
