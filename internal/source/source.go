// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source acquires bibliography text from a local file or an
// http(s) URL. It is the only part of the render path that performs I/O;
// callers substitute Fallback for the output when Load fails.
package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/bibcite/internal/httputil"
	"github.com/pdiddy/bibcite/pkg/types"
)

// Fallback is the user-visible message shown in place of citations when the
// source cannot be loaded.
const Fallback = "Error loading publications."

// maxBodyBytes bounds how much of a remote bibliography is read.
const maxBodyBytes = 32 << 20

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load returns the text at location. URLs are fetched with retry on 429 and
// 503; anything else is read from disk.
func Load(ctx context.Context, client *http.Client, location string, cfg types.HTTPConfig, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if IsURL(location) {
		return fetch(ctx, client, location, cfg, log)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("reading bibliography %s: %w", location, err)
	}
	log.Debug("loaded bibliography", zap.String("path", location), zap.Int("bytes", len(data)))
	return string(data), nil
}

func fetch(ctx context.Context, client *http.Client, location string, cfg types.HTTPConfig, log *zap.Logger) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", location, err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	req.Header.Set("Accept", "application/x-bibtex, text/plain;q=0.9, */*;q=0.1")

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries, log)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: HTTP %d", location, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading response from %s: %w", location, err)
	}
	log.Debug("fetched bibliography", zap.String("url", location), zap.Int("bytes", len(data)))
	return string(data), nil
}

// Fingerprint returns a hex SHA-256 digest of text, used to detect
// unchanged sources.
func Fingerprint(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h[:])
}
