package cli

import (
	"fmt"
	"os"

	"github.com/idilsaglam/tada/internal/store"
	"github.com/idilsaglam/tada/internal/store/boltstore"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/memstore"
)

// openStore returns the adapter for backend rooted at dataDir.
func openStore(backend, dataDir string) (store.Store, error) {
	if backend != store.BackendMemory {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	switch backend {
	case store.BackendJSON:
		return jsonstore.New(dataDir), nil
	case store.BackendBolt:
		st, err := boltstore.Open(dataDir)
		if err != nil {
			return nil, err
		}
		return st, nil
	case store.BackendMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}
