package ports

import "context"

// StorageBackend is the only boundary the core depends on: synchronous get/set
// of serialized records by string key. Implementations exist for an in-memory
// map, a file directory, Redis and MongoDB; swapping one for another never
// touches core logic.
type StorageBackend interface {
	// Get returns the raw value stored at key. found is false when the key was
	// never written; that is not an error.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set fully overwrites the value at key. A rejected write (quota, broken
	// medium) comes back as an error; the backend does not retry.
	Set(ctx context.Context, key string, value []byte) error

	// Ping verifies the medium is reachable, for readiness probes.
	Ping(ctx context.Context) error
}
