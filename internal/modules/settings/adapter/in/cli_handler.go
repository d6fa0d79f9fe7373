package in

import (
	"context"

	"daing/internal/modules/settings/dto"
	settingsin "daing/internal/modules/settings/port/in"
)

type CLIHandler struct {
	usecase settingsin.Usecase
}

func NewCLIHandler(usecase settingsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Show(ctx context.Context) (dto.SettingsOutput, error) {
	return h.usecase.Get(ctx)
}

func (h CLIHandler) SetServerURL(ctx context.Context, url string) (dto.SettingsOutput, error) {
	return h.usecase.SetServerURL(ctx, dto.SetServerURLInput{URL: url})
}

func (h CLIHandler) SetAutoSave(ctx context.Context, enabled bool) (dto.SettingsOutput, error) {
	return h.usecase.SetAutoSave(ctx, dto.SetAutoSaveInput{Enabled: enabled})
}
