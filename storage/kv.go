package storage

import "context"

// KV is the durable key-value persistence the meal collection lives in.
// Put has overwrite semantics; repeated saves of the same key never grow
// storage. Get reports ok=false when the key has never been written.
type KV interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}
