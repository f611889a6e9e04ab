package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestDownloader(t *testing.T, srv *httptest.Server) (*downloader, string) {
	t.Helper()
	dir := t.TempDir()
	d := newDownloader("secret", dir, newLoaderMetrics(prometheus.NewRegistry()), zap.NewNop())
	d.apiBase = srv.URL + "/api/datasets"
	d.client = srv.Client()
	return d, dir
}

func TestDownloadPlaces(t *testing.T) {
	const payload = "PAR1-fake-parquet"
	var srvURL string
	var fileHits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/parquet/places/train"):
			_ = json.NewEncoder(w).Encode([]hfParquetInfo{
				{URL: srvURL + "/files/0.parquet", Filename: "0.parquet", Size: int64(len(payload))},
				{URL: srvURL + "/files/1.parquet", Filename: "1.parquet", Size: int64(len(payload))},
				{URL: srvURL + "/files/README.md", Filename: "README.md"},
			})
		case strings.HasPrefix(r.URL.Path, "/files/"):
			fileHits.Add(1)
			_, _ = w.Write([]byte(payload))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	d, dir := newTestDownloader(t, srv)

	paths, err := d.DownloadPlaces(context.Background(), 1)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "places", "places-00000.parquet") {
		t.Fatalf("unexpected paths: %v", paths)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil || string(data) != payload {
		t.Fatalf("unexpected file content %q: %v", data, err)
	}

	// Complete files are not fetched again.
	if _, err := d.DownloadPlaces(context.Background(), 0); err != nil {
		t.Fatalf("second download: %v", err)
	}
	if n := fileHits.Load(); n != 2 {
		t.Errorf("file requests = %d, want 2", n)
	}
}

func TestDownloadFile_ResumesWithRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "bytes=4-" {
			t.Errorf("unexpected range %q", r.Header.Get("Range"))
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("5678"))
	}))
	defer srv.Close()

	d, dir := newTestDownloader(t, srv)
	out := filepath.Join(dir, "f.parquet")
	if err := os.WriteFile(out+".tmp", []byte("1234"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := d.downloadFile(context.Background(), srv.URL+"/f", out); err != nil {
		t.Fatalf("download: %v", err)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "12345678" {
		t.Errorf("content = %q, want 12345678", data)
	}
}

func TestListParquetFiles_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gated", http.StatusForbidden)
	}))
	defer srv.Close()

	d, _ := newTestDownloader(t, srv)
	_, err := d.listParquetFiles(context.Background(), "places", "train")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
