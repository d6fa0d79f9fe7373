package in

import (
	"context"

	"daing/internal/modules/settings/dto"
)

type Usecase interface {
	Get(ctx context.Context) (dto.SettingsOutput, error)
	SetServerURL(ctx context.Context, input dto.SetServerURLInput) (dto.SettingsOutput, error)
	SetAutoSave(ctx context.Context, input dto.SetAutoSaveInput) (dto.SettingsOutput, error)
}
