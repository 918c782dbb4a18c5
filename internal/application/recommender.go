package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ChainRecommender asks each recommender in order and returns the first non-empty answer.
type ChainRecommender struct {
	chain  []Recommender
	logger *slog.Logger
}

func NewChainRecommender(logger *slog.Logger, chain ...Recommender) *ChainRecommender {
	return &ChainRecommender{chain: chain, logger: logger}
}

func (c *ChainRecommender) Name() string {
	names := make([]string, len(c.chain))
	for i, r := range c.chain {
		names[i] = r.Name()
	}
	return strings.Join(names, ",")
}

func (c *ChainRecommender) Recommend(ctx context.Context, prompt string) (string, error) {
	if len(c.chain) == 0 {
		return "", fmt.Errorf("no recommender configured")
	}

	var errs []error
	for _, r := range c.chain {
		text, err := r.Recommend(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("empty reply")
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("recommender failed, trying next", "provider", r.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
	}
	return "", errors.Join(errs...)
}
