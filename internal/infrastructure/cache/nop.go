// Package cache holds cache backends that need no external service.
package cache

import (
	"context"
	"time"
)

// Nop never stores anything; every Get is a miss.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
