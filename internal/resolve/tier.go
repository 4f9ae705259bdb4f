// Package resolve implements the tiered source chains that turn a date into
// normalized facts. Each category declares an ordered list of tiers; the chain
// tries them in order and stops at the first success. The last tier of every
// production chain is static and cannot fail.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbrown/retroday/internal/calendar"
)

// Tier names used in attempts and events.
const (
	TierKnowledge = "knowledge"
	TierScrape    = "scrape"
	TierMovieAPI  = "movie_api"
	TierStatic    = "static"
)

// ErrChainExhausted means every tier of a chain failed. A chain ending in a
// static tier never returns it.
var ErrChainExhausted = errors.New("resolve: all tiers failed")

// Tier produces one category's data for a date. Implementations return a
// *Failure for every upstream problem and must not panic on upstream faults.
type Tier[T any] interface {
	Name() string
	Attempt(ctx context.Context, d calendar.Date) (T, error)
}

// Failure is the error a tier reports when it cannot produce data. The chain
// records it and moves on to the next tier.
type Failure struct {
	Tier   string
	Reason string
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s tier: %s: %v", f.Tier, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s tier: %s", f.Tier, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

func failure(tier, reason string, err error) *Failure {
	return &Failure{Tier: tier, Reason: reason, Err: err}
}

// TierFunc adapts a plain function into a Tier.
type TierFunc[T any] struct {
	TierName string
	Fn       func(ctx context.Context, d calendar.Date) (T, error)
}

func (t TierFunc[T]) Name() string { return t.TierName }

func (t TierFunc[T]) Attempt(ctx context.Context, d calendar.Date) (T, error) {
	return t.Fn(ctx, d)
}
