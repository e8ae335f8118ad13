package numbers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSourceFetch(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[1, 2, 3, 4, 5, 6, 82, 82, 83, 83, 86, 57, 10, 81, 53, 93, 50, 54, 31, 88, 15, 43, 79, 32, 43]`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	got, err := src.Fetch(context.Background(), 25, 1, 99)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 25 {
		t.Fatalf("fetched %d values, want 25", len(got))
	}
	if got[0] != 1 || got[24] != 43 {
		t.Fatalf("payload order not preserved: %v", got)
	}

	if gotPath != "/api/v1.0/random" {
		t.Fatalf("path = %q, want /api/v1.0/random", gotPath)
	}
	if gotQuery != "count=25&max=99&min=1" {
		t.Fatalf("query = %q, want count=25&max=99&min=1", gotQuery)
	}
}

func TestHTTPSourceNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.Client(), srv.URL, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}

	if _, err := src.Fetch(context.Background(), 25, 1, 99); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestHTTPSourceMalformedPayload(t *testing.T) {
	payloads := []string{
		`{"numbers": [1, 2, 3]}`,
		`[1, 2, "three"]`,
		`not json at all`,
	}
	for _, payload := range payloads {
		payload := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(payload))
		}))

		src, err := NewHTTPSource(srv.Client(), srv.URL, nil)
		if err != nil {
			srv.Close()
			t.Fatalf("new source: %v", err)
		}
		if _, err := src.Fetch(context.Background(), 25, 1, 99); !errors.Is(err, ErrSourceUnavailable) {
			srv.Close()
			t.Fatalf("payload %q: err = %v, want ErrSourceUnavailable", payload, err)
		}
		srv.Close()
	}
}

func TestHTTPSourceConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	src, err := NewHTTPSource(nil, srv.URL, nil)
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := src.Fetch(context.Background(), 25, 1, 99); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestNewHTTPSourceRequiresEndpoint(t *testing.T) {
	if _, err := NewHTTPSource(nil, "   ", nil); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
