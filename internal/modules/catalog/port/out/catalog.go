package out

import (
	"context"

	"trackboard/internal/modules/catalog/domain"
)

type Source interface {
	Load(ctx context.Context) ([]domain.Track, error)
}
