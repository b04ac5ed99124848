package market

import (
	"context"
	"errors"
)

// ErrNoData indicates the source has no current value for the asset.
var ErrNoData = errors.New("no market data")

// Source yields the current numeric value for an asset identifier.
type Source interface {
	CurrentValue(ctx context.Context, asset string) (float64, error)
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func(ctx context.Context, asset string) (float64, error)

func (f SourceFunc) CurrentValue(ctx context.Context, asset string) (float64, error) {
	return f(ctx, asset)
}
