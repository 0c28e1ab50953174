package in

import (
	sessiondto "trackboard/internal/modules/session/dto"
	sessionin "trackboard/internal/modules/session/port/in"
)

// TUIHandler adds change notifications on top of the CLI surface; the TUI
// redraws from them instead of polling.
type TUIHandler struct {
	CLIHandler
	usecase sessionin.Usecase
}

func NewTUIHandler(usecase sessionin.Usecase) TUIHandler {
	return TUIHandler{CLIHandler: NewCLIHandler(usecase), usecase: usecase}
}

func (h TUIHandler) Subscribe(fn func(sessiondto.ChangeOutput)) func() {
	return h.usecase.Subscribe(fn)
}
