// File: internal/assets/fetch.go
// Brief: Downloads stack configuration templates into the install directory.

// Package assets fetches the static configuration files the services mount:
// database init scripts and the gateway's declarative config. Content is
// written as received; the stack images validate it themselves on boot.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL is where the pinned template bundle lives.
const DefaultBaseURL = "https://raw.githubusercontent.com/supabase/supabase/master/docker"

// Asset names one remote template and its destination relative to the
// install directory.
type Asset struct {
	RemotePath string
	LocalPath  string
}

// Templates is the set of files the stack mounts at bring-up.
var Templates = []Asset{
	{RemotePath: "volumes/db/roles.sql", LocalPath: "volumes/db/roles.sql"},
	{RemotePath: "volumes/db/jwt.sql", LocalPath: "volumes/db/jwt.sql"},
	{RemotePath: "volumes/api/kong.yml", LocalPath: "volumes/api/kong.yml"},
}

// Fetcher downloads assets over HTTP.
type Fetcher struct {
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

// NewFetcher builds a fetcher against baseURL (DefaultBaseURL when empty).
func NewFetcher(baseURL string, log *zap.SugaredLogger) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// FetchAll downloads every template into installDir, creating directories as
// needed. An already-present file is left alone so local edits survive a
// re-run.
func (f *Fetcher) FetchAll(ctx context.Context, installDir string) error {
	for _, a := range Templates {
		if err := f.fetch(ctx, installDir, a); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, installDir string, a Asset) error {
	dest := filepath.Join(installDir, filepath.FromSlash(a.LocalPath))
	if _, err := os.Stat(dest); err == nil {
		f.log.Debugw("asset already present", "path", dest)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("assets: mkdir for %s: %w", dest, err)
	}

	url := f.baseURL + "/" + a.RemotePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("assets: build request for %s: %w", url, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("assets: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("assets: fetch %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("assets: create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("assets: write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("assets: close %s: %w", dest, err)
	}
	f.log.Debugw("asset downloaded", "url", url, "path", dest)
	return nil
}
