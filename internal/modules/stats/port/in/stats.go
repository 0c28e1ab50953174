package in

import (
	"context"

	"trackboard/internal/modules/stats/dto"
)

type Usecase interface {
	Report(ctx context.Context) (dto.ReportOutput, error)
}
