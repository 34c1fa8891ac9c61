// Package snapshot persists the registry between release runs.
//
// A snapshot is the serialized registry as an opaque blob. Stores only move
// bytes; decoding and validation belong to the registry package. A missing
// snapshot is not an error: [Source.Load] reports it with found == false so
// the first release of a line can bootstrap an empty registry.
//
// Backends are selected by URI with [Open]:
//
//	plugins.json, file:///srv/site/plugins.json   FileStore
//	https://plugins.example.org/plugins.json      HTTPSource (read-only)
//	redis://localhost:6379/0?key=registry         RedisStore
//	mongodb://localhost:27017/site?snapshot=main  MongoStore
//	null:                                         NullStore
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/pluginrelease/pkg/observability"
)

// ErrReadOnly is returned by Save on stores that cannot be written.
var ErrReadOnly = errors.New("snapshot store is read-only")

// Source reads a snapshot.
type Source interface {
	// Load returns the snapshot. found is false when none exists yet.
	Load(ctx context.Context) (data []byte, found bool, err error)
}

// Sink writes a snapshot.
type Sink interface {
	Save(ctx context.Context, data []byte) error
}

// Store is a readable and writable snapshot backend.
type Store interface {
	Source
	Sink
	Close() error
}

// Open returns the store for uri. See the package documentation for the
// supported schemes. The store reports load and save events to the
// registered observability hooks.
func Open(ctx context.Context, uri string) (Store, error) {
	backend, store, err := open(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &observed{Store: store, backend: backend}, nil
}

func open(ctx context.Context, uri string) (string, Store, error) {
	if uri == "" {
		return "", nil, fmt.Errorf("empty snapshot uri")
	}
	if uri == "null:" || uri == "null" {
		return "null", NullStore{}, nil
	}

	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return "file", NewFileStore(uri), nil
	}

	switch strings.ToLower(scheme) {
	case "file":
		u, err := url.Parse(uri)
		if err != nil {
			return "", nil, fmt.Errorf("parse snapshot uri: %w", err)
		}
		return "file", NewFileStore(u.Path), nil
	case "http", "https":
		return "http", ReadOnly(NewHTTPSource(uri, nil)), nil
	case "redis", "rediss":
		s, err := NewRedisStore(uri)
		return "redis", s, err
	case "mongodb", "mongodb+srv":
		s, err := NewMongoStore(ctx, uri)
		return "mongodb", s, err
	default:
		return "", nil, fmt.Errorf("unsupported snapshot scheme %q", scheme)
	}
}

// Pair combines a source and a sink, such as the published snapshot on the
// update site and a local output file.
type Pair struct {
	Source Source
	Sink   Sink
}

// Load implements Source.
func (p Pair) Load(ctx context.Context) ([]byte, bool, error) {
	if p.Source == nil {
		return nil, false, nil
	}
	return p.Source.Load(ctx)
}

// Save implements Sink.
func (p Pair) Save(ctx context.Context, data []byte) error {
	if p.Sink == nil {
		return ErrReadOnly
	}
	return p.Sink.Save(ctx, data)
}

// Close closes both halves when they hold resources.
func (p Pair) Close() error {
	var errs []error
	if c, ok := p.Source.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.Sink.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// ReadOnly turns a source into a Store whose Save fails with ErrReadOnly.
func ReadOnly(src Source) Store {
	return readOnly{src}
}

type readOnly struct{ Source }

func (readOnly) Save(context.Context, []byte) error { return ErrReadOnly }
func (readOnly) Close() error                       { return nil }

type observed struct {
	Store
	backend string
}

func (o *observed) Load(ctx context.Context) ([]byte, bool, error) {
	start := time.Now()
	data, found, err := o.Store.Load(ctx)
	size := len(data)
	if !found {
		size = -1
	}
	observability.Snapshot().OnLoad(ctx, o.backend, size, time.Since(start), err)
	return data, found, err
}

func (o *observed) Save(ctx context.Context, data []byte) error {
	start := time.Now()
	err := o.Store.Save(ctx, data)
	observability.Snapshot().OnSave(ctx, o.backend, len(data), time.Since(start), err)
	return err
}
