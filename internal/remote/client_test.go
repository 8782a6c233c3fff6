package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"konsole/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientAttachesAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", testLogger())
	if _, err := client.ListConfigGroups(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("API key header not attached, got %q", gotKey)
	}
}

func TestClientMissingCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request reached backend despite missing API key")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", testLogger())
	_, err := client.ListConfigGroups(context.Background())
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "404 maps to not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "500 maps to remote error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var remoteErr *domain.RemoteError
				if !errors.As(err, &remoteErr) {
					t.Fatalf("expected RemoteError, got %v", err)
				}
				if remoteErr.Status != http.StatusInternalServerError {
					t.Errorf("expected upstream status 500, got %d", remoteErr.Status)
				}
				if remoteErr.StatusCode() != http.StatusBadGateway {
					t.Errorf("expected 502 surface status, got %d", remoteErr.StatusCode())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "key", testLogger())
			_, err := client.GetJob(context.Background(), "job-1")
			if err == nil {
				t.Fatal("expected error")
			}
			tt.check(t, err)
		})
	}
}

func TestListConfigGroupsSkipsEntriesWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": "cfg-1", "name": "baseline", "updated_at": "2026-08-01T10:00:00Z"},
			{"name": "orphan without id"},
			{"id": "cfg-2", "name": "tuned"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	groups, err := client.ListConfigGroups(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].ID != "cfg-1" || groups[1].ID != "cfg-2" {
		t.Errorf("unexpected group ids: %v", groups)
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if !groups[0].UpdatedAt.Equal(want) {
		t.Errorf("timestamp not parsed: %v", groups[0].UpdatedAt)
	}
	// Missing timestamp defaults to zero instead of failing the listing
	if !groups[1].UpdatedAt.IsZero() {
		t.Errorf("expected zero time for missing updated_at, got %v", groups[1].UpdatedAt)
	}
}

func TestGetVersionDetailConversion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/configs/cfg-1/versions/3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "ver-3",
			"version": 3,
			"inserted_at": "2026-07-15T09:30:00.123Z",
			"provider": "anthropic",
			"model": "claude-sonnet-4-5",
			"temperature": 0.2,
			"instructions": "Transcribe verbatim.",
			"tools": [
				{"type": "file_search", "resource_ids": ["store-1"]},
				{"type": ""}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	detail, err := client.GetVersionDetail(context.Background(), "cfg-1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// config_id omitted by the backend falls back to the requested id
	if detail.ConfigID != "cfg-1" {
		t.Errorf("config id not defaulted: %q", detail.ConfigID)
	}
	if detail.Version != 3 || detail.ID != "ver-3" {
		t.Errorf("unexpected identity: %+v", detail)
	}
	if detail.Payload.Provider != "anthropic" || detail.Payload.Model != "claude-sonnet-4-5" {
		t.Errorf("payload not converted: %+v", detail.Payload)
	}
	if detail.Payload.Temperature == nil || *detail.Payload.Temperature != 0.2 {
		t.Errorf("temperature not converted: %v", detail.Payload.Temperature)
	}
	// Tool rows without a type are dropped at the boundary
	if len(detail.Payload.Tools) != 1 || detail.Payload.Tools[0].Type != "file_search" {
		t.Errorf("tools not filtered: %+v", detail.Payload.Tools)
	}
}

func TestUploadDatasetMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not a multipart request: %v", err)
			return
		}
		if got := r.FormValue("name"); got != "regression-set" {
			t.Errorf("name field = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file part missing: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "rows.jsonl" {
			t.Errorf("filename = %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != "{\"input\":\"hi\"}\n" {
			t.Errorf("file content = %q", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "ds-1", "name": "regression-set", "row_count": 1, "uploaded_at": "2026-08-20T00:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", testLogger())
	ds, err := client.UploadDataset(context.Background(), "regression-set", "rows.jsonl", strings.NewReader("{\"input\":\"hi\"}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.ID != "ds-1" || ds.RowCount != 1 {
		t.Errorf("unexpected dataset: %+v", ds)
	}
}
