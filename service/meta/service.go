package meta

import (
	"context"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads YAML metadata documents from any afs-addressable location.
// Relative URIs resolve against the base URL; ${env.KEY} expressions in the
// document expand before decoding.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// Load downloads the document at URI and decodes it into target
func (s *Service) Load(ctx context.Context, URI string, target interface{}) error {
	URL := URI
	if s.baseURL != "" && !strings.Contains(URI, "://") && !strings.HasPrefix(URI, "/") {
		URL = url.Join(s.baseURL, URI)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return err
	}
	expanded := expandEnvExpr(string(data))
	return yaml.Unmarshal([]byte(expanded), target)
}

// New creates a new metadata service
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, options: options}
}
