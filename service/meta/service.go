// Package meta loads settings and other metadata documents from any
// afs-supported location (file, embed, s3, ...) with ${env.X} expansion
// applied before decoding.
package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service resolves and decodes metadata documents.
type Service struct {
	fs      afs.Service
	baseURL string
}

// New creates a meta service; baseURL anchors relative URLs and may be
// empty.
func New(fs afs.Service, baseURL string) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL}
}

// Load downloads the document at URL, expands ${env.X} expressions and
// decodes YAML (or JSON, as a YAML subset) into target.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	expanded := expandEnvExpr(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", URL, err)
	}
	return nil
}

// Download fetches the raw document bytes at URL, resolving relative URLs
// against the base URL.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	resolved := s.resolveURL(URL)
	data, err := s.fs.DownloadWithURL(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", resolved, err)
	}
	return data, nil
}

// Exists reports whether the document at URL is present.
func (s *Service) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, s.resolveURL(URL))
}

func (s *Service) resolveURL(URL string) string {
	if s.baseURL == "" || !url.IsRelative(URL) {
		return URL
	}
	return url.Join(s.baseURL, strings.TrimPrefix(URL, "/"))
}
