package in

import (
	"context"

	"trackboard/internal/modules/catalog/dto"
)

type Usecase interface {
	Tracks(ctx context.Context) []dto.TrackOutput
	Ordered(ctx context.Context, input dto.OrderInput) (dto.OrderOutput, error)
	Resolve(ctx context.Context, query string) (string, error)
	Contains(ctx context.Context, name string) bool
	Codes(ctx context.Context, completionOrder []string) string
	Progress(completed int) int
	NormalizeSortMode(mode string) (string, error)
}
