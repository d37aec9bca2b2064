package main

import (
	"fmt"

	"github.com/nblockd/pagecached/internal/config"
	"github.com/nblockd/pagecached/internal/store"
	"github.com/nblockd/pagecached/internal/store/boltstore"
	"github.com/nblockd/pagecached/internal/store/filestore"
	"github.com/nblockd/pagecached/internal/store/policy"
	"github.com/nblockd/pagecached/internal/store/sqlstore"
)

// buildBackend recursively resolves a config.Backend descriptor into a
// concrete store.Store, composing nested parts under the requested
// policy for a "multi" backend.
func buildBackend(b config.Backend, pageSize uint64) (store.Store, error) {
	size := b.SizeMB * 1024 * 1024

	switch b.Kind {
	case config.BackendNull:
		return store.NewNull(size, pageSize), nil

	case config.BackendFile:
		return filestore.Open(b.Path, size, pageSize)

	case config.BackendSQL:
		return sqlstore.Open(b.Path, size, pageSize)

	case config.BackendBolt:
		return boltstore.Open(b.Path, size, pageSize)

	case config.BackendMulti:
		parts := make([]store.Store, 0, len(b.Parts))
		for i, part := range b.Parts {
			s, err := buildBackend(part, pageSize)
			if err != nil {
				return nil, fmt.Errorf("backend part %d: %w", i, err)
			}
			parts = append(parts, s)
		}
		switch b.Policy {
		case config.PolicyConcat:
			return policy.NewConcat(parts)
		case config.PolicyStrip:
			return policy.NewStrip(parts)
		case config.PolicyMirror:
			return policy.NewMirror(parts)
		default:
			return nil, fmt.Errorf("multi backend: unknown policy %q", b.Policy)
		}

	default:
		return nil, fmt.Errorf("unknown backend kind %q", b.Kind)
	}
}
