package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	hfAPIBase = "https://huggingface.co/api/datasets"
	hfDataset = "foursquare/fsq-os-places"
)

// downloader fetches dataset parquet files from the HuggingFace Hub.
// Partial downloads resume with HTTP Range requests.
type downloader struct {
	apiBase string
	token   string
	dataDir string
	client  *http.Client
	metrics *loaderMetrics
	logger  *zap.Logger
}

func newDownloader(token, dataDir string, metrics *loaderMetrics, logger *zap.Logger) *downloader {
	return &downloader{
		apiBase: hfAPIBase,
		token:   token,
		dataDir: dataDir,
		client:  &http.Client{Timeout: 30 * time.Minute},
		metrics: metrics,
		logger:  logger,
	}
}

// hfParquetInfo is one entry of the HF parquet listing.
type hfParquetInfo struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// DownloadPlaces stores up to maxFiles places parquet files in dataDir/places.
// maxFiles=0 downloads all; complete files are skipped.
func (d *downloader) DownloadPlaces(ctx context.Context, maxFiles int) ([]string, error) {
	outDir := filepath.Join(d.dataDir, "places")
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", outDir, err)
	}

	files, err := d.listParquetFiles(ctx, "places", "train")
	if err != nil {
		return nil, fmt.Errorf("list parquet files: %w", err)
	}
	if maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
	}

	d.logger.Info("Downloading parquet files", zap.Int("count", len(files)), zap.String("dir", outDir))

	paths := make([]string, 0, len(files))
	for i, info := range files {
		name := fmt.Sprintf("places-%05d.parquet", i)
		outPath := filepath.Join(outDir, name)
		paths = append(paths, outPath)

		if st, err := os.Stat(outPath); err == nil && st.Size() == info.Size {
			d.logger.Info("Already downloaded", zap.String("file", name), zap.Int64("bytes", st.Size()))
			continue
		}
		if err := d.downloadFile(ctx, info.URL, outPath); err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}
	}
	return paths, nil
}

func (d *downloader) listParquetFiles(ctx context.Context, config, split string) ([]hfParquetInfo, error) {
	url := fmt.Sprintf("%s/%s/parquet/%s/%s", d.apiBase, hfDataset, config, split)

	resp, err := d.get(ctx, url, 0)
	if err != nil {
		return nil, fmt.Errorf("HF API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("HF API: status %d: %s", resp.StatusCode, string(body))
	}

	var files []hfParquetInfo
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("parse HF response: %w", err)
	}

	parquets := files[:0]
	for _, f := range files {
		if strings.HasSuffix(f.Filename, ".parquet") || strings.HasSuffix(f.URL, ".parquet") {
			parquets = append(parquets, f)
		}
	}
	return parquets, nil
}

func (d *downloader) downloadFile(ctx context.Context, url, outPath string) error {
	tmpPath := filepath.Clean(outPath) + ".tmp"

	var offset int64
	if st, err := os.Stat(tmpPath); err == nil {
		offset = st.Size()
	}

	resp, err := d.get(ctx, url, offset)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	flags := os.O_WRONLY | os.O_CREATE
	switch resp.StatusCode {
	case http.StatusPartialContent:
		flags |= os.O_APPEND
		d.logger.Info("Resuming download", zap.String("file", filepath.Base(outPath)), zap.Int64("offset", offset))
	case http.StatusOK:
		flags |= os.O_TRUNC
		offset = 0
	default:
		return fmt.Errorf("download: HTTP %d", resp.StatusCode)
	}

	f, err := os.OpenFile(tmpPath, flags, 0o600)
	if err != nil {
		return fmt.Errorf("open tmp: %w", err)
	}

	written, err := io.Copy(f, &progressReader{
		reader:  resp.Body,
		total:   resp.ContentLength + offset,
		current: offset,
		name:    filepath.Base(outPath),
		metrics: d.metrics,
		logger:  d.logger,
	})
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	d.logger.Info("Downloaded", zap.String("file", filepath.Base(outPath)), zap.Int64("bytes", offset+written))

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (d *downloader) get(ctx context.Context, url string, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	return d.client.Do(req)
}

// progressReader logs download progress and counts bytes.
type progressReader struct {
	reader  io.Reader
	total   int64
	current int64
	name    string
	metrics *loaderMetrics
	logger  *zap.Logger
	lastLog time.Time
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.current += int64(n)
	pr.metrics.downloadBytes.Add(float64(n))

	if pr.total > 0 && time.Since(pr.lastLog) > 5*time.Second {
		pr.lastLog = time.Now()
		pr.logger.Info("Download progress",
			zap.String("file", pr.name),
			zap.Float64("percent", float64(pr.current)/float64(pr.total)*100),
			zap.Int64("mb", pr.current/1024/1024),
		)
	}
	return n, err //nolint:wrapcheck // io.Copy expects io.EOF unwrapped
}
