package statcan

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sekarsister/cropstats/internal/config"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrNoCSV            = errors.New("no CSV file found in ZIP archive")
)

// Provider returns the raw CSV content of a table.
type Provider interface {
	TableCSV(ctx context.Context, tableID string) ([]byte, error)
}

// Client talks to the Web Data Service getFullTableDownloadCSV endpoint.
type Client struct {
	baseURL         string
	language        string
	requestTimeout  time.Duration
	downloadTimeout time.Duration
	http            *http.Client
	logger          *slog.Logger
}

func NewClient(cfg config.StatCanConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		language:        cfg.Language,
		requestTimeout:  cfg.RequestTimeout,
		downloadTimeout: cfg.DownloadTimeout,
		http:            &http.Client{},
		logger:          logger,
	}
}

type downloadResponse struct {
	Status string `json:"status"`
	Object string `json:"object"`
}

// TableCSV resolves the table's download URL, fetches the ZIP archive and
// returns the data CSV inside it.
func (c *Client) TableCSV(ctx context.Context, tableID string) ([]byte, error) {
	url := fmt.Sprintf("%s/getFullTableDownloadCSV/%s/%s", c.baseURL, tableID, c.language)
	c.logger.Info("fetching table", "table", tableID, "url", url)

	body, err := c.get(ctx, url, c.requestTimeout)
	if err != nil {
		return nil, fmt.Errorf("resolve download URL: %w", err)
	}

	var resp downloadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode download response: %w", err)
	}
	if resp.Object == "" || (resp.Status != "" && resp.Status != "SUCCESS") {
		return nil, fmt.Errorf("%w: status %q, object %q", ErrUnexpectedStatus, resp.Status, resp.Object)
	}

	c.logger.Info("downloading archive", "table", tableID, "url", resp.Object)
	archive, err := c.get(ctx, resp.Object, c.downloadTimeout)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	name, content, err := ExtractCSV(archive)
	if err != nil {
		return nil, err
	}
	c.logger.Info("extracted table", "table", tableID, "file", name, "bytes", len(content))
	return content, nil
}

func (c *Client) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, res.Status, url)
	}
	return io.ReadAll(res.Body)
}

// ExtractCSV returns the first data CSV in a table archive, skipping the
// *_MetaData.csv companion.
func ExtractCSV(archive []byte) (string, []byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", nil, fmt.Errorf("open archive: %w", err)
	}

	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if !strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, "_metadata.csv") {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		return f.Name, bytes.TrimPrefix(content, []byte("\ufeff")), nil
	}

	return "", nil, ErrNoCSV
}

// FileProvider serves a local CSV regardless of the table requested.
type FileProvider struct {
	Path string
}

func (p FileProvider) TableCSV(_ context.Context, _ string) ([]byte, error) {
	content, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading table file: %w", err)
	}
	return content, nil
}
