// Package ratelimit throttles repeated failed login attempts per account.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a throttle check.
type Decision struct {
	Locked    bool
	Remaining time.Duration
}

// Limiter counts failures per key inside a window. Once a key reaches the
// limit it stays locked until the window expires or Reset is called.
type Limiter interface {
	Check(ctx context.Context, key string) (Decision, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

const keyPrefix = "login_failures:"

// Nop never locks anyone out.
type Nop struct{}

func (Nop) Check(context.Context, string) (Decision, error) { return Decision{}, nil }
func (Nop) RecordFailure(context.Context, string) error     { return nil }
func (Nop) Reset(context.Context, string) error             { return nil }
