package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRestyClientDoSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
			t.Errorf("unexpected content type %q", got)
		}
		if got := r.URL.Query().Get("dc"); got != "dc1" {
			t.Errorf("expected dc=dc1, got %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"Node":"n1"`) {
			t.Errorf("body missing node: %s", raw)
		}
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`true`))
	}))
	defer srv.Close()

	c := NewRestyClient(2 * time.Second)
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPut,
		URL:    srv.URL + "/v1/catalog/register",
		Query:  map[string]string{"dc": "dc1"},
		Body:   map[string]string{"Node": "n1"},
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK || !resp.IsSuccess() {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Test") != "yes" {
		t.Fatalf("response header not propagated: %v", resp.Header)
	}
	var ok bool
	if err := resp.JSON(&ok); err != nil || !ok {
		t.Fatalf("JSON decode: ok=%v err=%v", ok, err)
	}
}

func TestRestyClientDoSendsRawMessageVerbatim(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got <- string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewRestyClient(time.Second).Do(context.Background(), Request{
		Method: http.MethodPut,
		URL:    srv.URL,
		Body:   json.RawMessage(`"node-1"`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if body := <-got; body != `"node-1"` {
		t.Fatalf("expected body %q, got %q", `"node-1"`, body)
	}
}

func TestRestyClientDoPassesThroughNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Permission denied", http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Do(context.Background(), Request{
		Method: http.MethodGet,
		URL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("expected no error for 403, got %v", err)
	}
	if resp.StatusCode != http.StatusForbidden || resp.IsSuccess() {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(resp.Body), "Permission denied") {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestRestyClientDoHonoursRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewRestyClient(0).Do(context.Background(), Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestResponseJSONEmptyBody(t *testing.T) {
	resp := &Response{StatusCode: http.StatusNoContent}
	var v any
	if err := resp.JSON(&v); err == nil {
		t.Fatalf("expected error for empty body")
	}
}
