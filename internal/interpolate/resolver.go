package interpolate

import (
	"context"
	"fmt"
	"log/slog"

	"geotag/internal/imagemeta"
	"geotag/internal/logging"
)

// Resolver is one inference strategy. Resolve returns (nil, nil) when the
// strategy has nothing to offer for the image; an error means the attempt
// itself failed.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, img *imagemeta.ImageMetadata) (Result, error)
}

// Chain runs resolvers in priority order and returns the first result that
// passes validation. A resolver error aborts the chain; a miss or an invalid
// result moves on to the next strategy.
type Chain struct {
	resolvers []Resolver
	logger    *slog.Logger
}

// NewChain builds a chain over the given resolvers. Order is priority order.
func NewChain(logger *slog.Logger, resolvers ...Resolver) *Chain {
	return &Chain{
		resolvers: resolvers,
		logger:    logging.NewComponentLogger(logger, "interpolate"),
	}
}

// Resolve walks the chain for one image. Returns (nil, nil) when no strategy
// produced a valid result.
func (c *Chain) Resolve(ctx context.Context, img *imagemeta.ImageMetadata) (Result, error) {
	for _, resolver := range c.resolvers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := resolver.Resolve(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resolver.Name(), err)
		}
		if result == nil {
			continue
		}
		if !Validate(result) {
			c.logger.Warn("resolver produced invalid result, skipping",
				logging.String("resolver", resolver.Name()),
				logging.String(logging.FieldFile, img.FilePath))
			continue
		}
		return result, nil
	}
	return nil, nil
}
