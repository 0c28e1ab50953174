package in

import (
	"context"

	statsdto "trackboard/internal/modules/stats/dto"
	statsin "trackboard/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Report(ctx context.Context) (statsdto.ReportOutput, error) {
	return h.usecase.Report(ctx)
}
