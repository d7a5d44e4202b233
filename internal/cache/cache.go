// Package cache memoizes calculator responses.
//
// Calculations are cheap, but the site recomputes on every keystroke; caching
// the encoded responses keeps repeated identical requests off the service
// path. Entries are immutable, so there is no invalidation besides TTL and
// eviction.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Cache stores encoded calculation results by key.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key derives a cache key from a procedure name and its normalized input.
// Inputs are JSON-encoded, so struct field order determines the key.
func Key(procedure string, input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key input: %w", err)
	}

	d := xxhash.New()
	_, _ = d.WriteString(procedure)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(data)
	return procedure + ":" + strconv.FormatUint(d.Sum64(), 16), nil
}

// Nop is a Cache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte) error { return nil }
