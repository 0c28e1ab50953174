package usecase

import (
	"context"

	"trackboard/internal/modules/catalog/domain"
	catalogdto "trackboard/internal/modules/catalog/dto"
	catalogin "trackboard/internal/modules/catalog/port/in"
	"trackboard/internal/modules/catalog/service"
)

type Interactor struct {
	catalog *service.Catalog
}

func NewInteractor(catalog *service.Catalog) catalogin.Usecase {
	return &Interactor{catalog: catalog}
}

func (i *Interactor) Tracks(_ context.Context) []catalogdto.TrackOutput {
	return toOutputs(i.catalog.Tracks())
}

func (i *Interactor) Ordered(_ context.Context, input catalogdto.OrderInput) (catalogdto.OrderOutput, error) {
	mode, err := domain.ParseSortMode(input.Mode)
	if err != nil {
		return catalogdto.OrderOutput{}, err
	}
	starred := make(map[string]bool, len(input.Favorites))
	for _, name := range input.Favorites {
		starred[name] = true
	}
	ordered := domain.Order(i.catalog.Tracks(), mode, func(name string) bool { return starred[name] })
	return catalogdto.OrderOutput{Mode: string(mode), Tracks: toOutputs(ordered)}, nil
}

func (i *Interactor) Resolve(_ context.Context, query string) (string, error) {
	return i.catalog.Resolve(query)
}

func (i *Interactor) Contains(_ context.Context, name string) bool {
	return i.catalog.Contains(name)
}

func (i *Interactor) Codes(_ context.Context, completionOrder []string) string {
	return domain.Codes(i.catalog.Tracks(), completionOrder)
}

func (i *Interactor) Progress(completed int) int {
	return domain.Progress(completed)
}

func (i *Interactor) NormalizeSortMode(mode string) (string, error) {
	parsed, err := domain.ParseSortMode(mode)
	return string(parsed), err
}

func toOutputs(tracks []domain.Track) []catalogdto.TrackOutput {
	out := make([]catalogdto.TrackOutput, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, catalogdto.TrackOutput{Name: t.Name, Image: t.Image, Code: t.Code})
	}
	return out
}
