package resolve

import (
	"context"
	"errors"
	"time"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/facts"
	"github.com/abelbrown/retroday/internal/otel"
)

// Chain runs a category's tiers in declared order.
type Chain[T any] struct {
	category facts.Category
	tiers    []Tier[T]
	logger   *otel.Logger
}

// NewChain builds a chain for category. A nil logger discards events.
func NewChain[T any](category facts.Category, logger *otel.Logger, tiers ...Tier[T]) *Chain[T] {
	if logger == nil {
		logger = otel.NewNullLogger()
	}
	return &Chain[T]{category: category, tiers: tiers, logger: logger}
}

// Category returns the category this chain resolves.
func (c *Chain[T]) Category() facts.Category { return c.category }

// Tiers returns the tier names in order.
func (c *Chain[T]) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name()
	}
	return names
}

// Resolve tries each tier until one succeeds. The returned attempts cover
// every tier that was invoked, in order. Later tiers are never invoked once
// one succeeds.
func (c *Chain[T]) Resolve(ctx context.Context, d calendar.Date) (T, []facts.Attempt, error) {
	var zero T
	attempts := make([]facts.Attempt, 0, len(c.tiers))

	for _, t := range c.tiers {
		name := t.Name()
		c.logger.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindTierAttempt, Comp: "resolve",
			Date: d.ISO(), Category: string(c.category), Tier: name})

		start := time.Now()
		v, err := t.Attempt(ctx, d)
		dur := time.Since(start)

		if err == nil {
			attempts = append(attempts, facts.Attempt{Category: c.category, Tier: name, Succeeded: true})
			c.logger.Tier(d.ISO(), string(c.category), name, dur, nil)
			return v, attempts, nil
		}

		var f *Failure
		if !errors.As(err, &f) {
			f = failure(name, "unexpected error", err)
		}
		attempts = append(attempts, facts.Attempt{Category: c.category, Tier: name, Reason: f.Error()})
		c.logger.Tier(d.ISO(), string(c.category), name, dur, f)
	}
	return zero, attempts, ErrChainExhausted
}
