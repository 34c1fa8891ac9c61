package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/pluginrelease/pkg/httputil"
)

// HTTPSource reads the snapshot published on an update site.
type HTTPSource struct {
	url    string
	client *httputil.Client
}

// NewHTTPSource creates a source for url. A nil client uses
// httputil.NewClient with the default User-Agent.
func NewHTTPSource(url string, client *httputil.Client) *HTTPSource {
	if client == nil {
		client = httputil.NewClient("")
	}
	return &HTTPSource{url: url, client: client}
}

// Load implements Source. A 404 answer means no snapshot was published yet.
func (s *HTTPSource) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.url)
	if err != nil {
		if errors.Is(err, httputil.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("download snapshot: %w", err)
	}
	return data, true, nil
}

var _ Source = (*HTTPSource)(nil)
