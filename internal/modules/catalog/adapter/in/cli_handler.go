package in

import (
	"context"

	catalogdto "trackboard/internal/modules/catalog/dto"
	catalogin "trackboard/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Tracks(ctx context.Context) []catalogdto.TrackOutput {
	return h.usecase.Tracks(ctx)
}

func (h CLIHandler) Ordered(ctx context.Context, mode string, favorites []string) (catalogdto.OrderOutput, error) {
	return h.usecase.Ordered(ctx, catalogdto.OrderInput{Mode: mode, Favorites: favorites})
}

func (h CLIHandler) Resolve(ctx context.Context, query string) (string, error) {
	return h.usecase.Resolve(ctx, query)
}

func (h CLIHandler) Codes(ctx context.Context, completionOrder []string) string {
	return h.usecase.Codes(ctx, completionOrder)
}

func (h CLIHandler) Progress(completed int) int {
	return h.usecase.Progress(completed)
}

func (h CLIHandler) NormalizeSortMode(mode string) (string, error) {
	return h.usecase.NormalizeSortMode(mode)
}
