// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"

	"github.com/staranto/bfomaster/internal/aws"
	"github.com/staranto/bfomaster/internal/symbol"
)

// DefaultURL is the published BFO symbol master archive.
const DefaultURL = "https://api.shoonya.com/BFO_symbols.txt.zip"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "bfomaster (+https://github.com/staranto/bfomaster)"
)

var (
	// ErrUnsupportedFormat is returned when the archive's first entry is not a
	// txt or csv file.
	ErrUnsupportedFormat = errors.New("unsupported master file type")
	// ErrEmptyArchive is returned for an archive with no entries.
	ErrEmptyArchive = errors.New("master archive is empty")
	// ErrStatus is returned for a non-2xx HTTP response.
	ErrStatus = errors.New("unexpected http status")
)

// Fetcher downloads and decodes the master archive. Sources may be http(s),
// s3://bucket/key or file://path; all of them must hold the same zip.
type Fetcher struct {
	URL       string
	Client    *http.Client
	UserAgent string
	S3        aws.ObjectGetter
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.Client = c }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.Client.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with HTTP requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.UserAgent = ua
		}
	}
}

// WithS3Client sets the client used for s3:// sources. Without it one is
// built from the shell's AWS configuration on first use.
func WithS3Client(g aws.ObjectGetter) Option {
	return func(f *Fetcher) { f.S3 = g }
}

// New returns a Fetcher for rawURL, or DefaultURL when rawURL is empty.
func New(rawURL string, opts ...Option) *Fetcher {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	f := &Fetcher{
		URL:       rawURL,
		Client:    &http.Client{Timeout: defaultTimeout},
		UserAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the archive and returns its table as published, without
// normalization.
func (f *Fetcher) Fetch(ctx context.Context) (symbol.Table, error) {
	start := time.Now()

	archive, err := f.download(ctx)
	if err != nil {
		return nil, err
	}
	log.Debugf("downloaded %s from %s in %s", humanize.Bytes(uint64(len(archive))), f.URL, time.Since(start))

	return Decode(archive)
}

func (f *Fetcher) download(ctx context.Context) ([]byte, error) {
	u, err := url.Parse(f.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse master url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return f.httpGet(ctx)
	case "s3":
		return f.s3Get(ctx)
	case "file":
		b, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read master archive: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported master url scheme %q", u.Scheme)
	}
}

func (f *Fetcher) httpGet(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, f.URL)
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return doc.Bytes(), nil
}

func (f *Fetcher) s3Get(ctx context.Context) ([]byte, error) {
	bucket, key, err := aws.ParseS3URL(f.URL)
	if err != nil {
		return nil, err
	}

	if f.S3 == nil {
		cfg, err := aws.LoadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		f.S3 = aws.NewS3(cfg)
	}

	return aws.ReadObject(ctx, f.S3, bucket, key)
}

// Decode opens a master archive and parses its first entry. Only txt and csv
// entries are accepted.
func Decode(archive []byte) (symbol.Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("failed to open master archive: %w", err)
	}
	if len(zr.File) == 0 {
		return nil, ErrEmptyArchive
	}

	first := zr.File[0]
	ext := extension(first.Name)
	if ext != "txt" && ext != "csv" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	rc, err := first.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", first.Name, err)
	}
	defer rc.Close()

	table, err := symbol.ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", first.Name, err)
	}

	log.Debugf("decoded %d rows from %s", len(table), first.Name)
	return table, nil
}

// extension returns whatever follows the last dot of the entry's base name.
func extension(name string) string {
	base := path.Base(name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return strings.ToLower(base[i+1:])
	}
	return strings.ToLower(base)
}
