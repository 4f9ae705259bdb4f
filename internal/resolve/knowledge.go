package resolve

import (
	"context"
	"errors"

	"github.com/abelbrown/retroday/internal/calendar"
	"github.com/abelbrown/retroday/internal/extract"
	"github.com/abelbrown/retroday/internal/otel"
	"github.com/abelbrown/retroday/internal/wiki"
)

// ArticleSource returns the plain text of a day article such as "July_20".
// Satisfied by *wiki.Client.
type ArticleSource interface {
	Article(ctx context.Context, key string) (string, error)
}

// KnowledgeTier extracts events from the encyclopedia article for the day.
type KnowledgeTier struct {
	source ArticleSource
	logger *otel.Logger
}

// NewKnowledgeTier creates the primary events tier.
func NewKnowledgeTier(source ArticleSource, logger *otel.Logger) *KnowledgeTier {
	if logger == nil {
		logger = otel.NewNullLogger()
	}
	return &KnowledgeTier{source: source, logger: logger}
}

func (t *KnowledgeTier) Name() string { return TierKnowledge }

// Attempt fetches the article and runs extraction. A missing page and a
// transport failure are both tier failures, but they are logged as different
// event kinds.
func (t *KnowledgeTier) Attempt(ctx context.Context, d calendar.Date) ([]string, error) {
	key := d.PageKey()
	text, err := t.source.Article(ctx, key)
	if err != nil {
		if errors.Is(err, wiki.ErrPageNotFound) {
			t.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindWikiNotFound, Comp: "resolve",
				Date: d.ISO(), Source: key, Err: err.Error()})
			return nil, failure(TierKnowledge, "article not found", err)
		}
		t.logger.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindWikiTransport, Comp: "resolve",
			Date: d.ISO(), Source: key, Err: err.Error()})
		return nil, failure(TierKnowledge, "article unavailable", err)
	}

	events, strategy := extract.Article(text, d.Year())
	if strategy == extract.StrategyNone || len(events) == 0 {
		return nil, failure(TierKnowledge, "no matching events in article", nil)
	}
	t.logger.Debug(otel.KindTierAttempt, "extract", key+" matched by "+string(strategy))
	return events, nil
}
