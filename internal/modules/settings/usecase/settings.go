package usecase

import (
	"context"

	"daing/internal/modules/settings/dto"
	settingsin "daing/internal/modules/settings/port/in"
	"daing/internal/modules/settings/service"
	"daing/internal/platform/config"
)

type Interactor struct {
	svc *service.SettingsService
}

func NewInteractor(svc *service.SettingsService) settingsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Get(context.Context) (dto.SettingsOutput, error) {
	return i.toOutput(i.svc.Current()), nil
}

func (i *Interactor) SetServerURL(ctx context.Context, input dto.SetServerURLInput) (dto.SettingsOutput, error) {
	cfg, err := i.svc.SetServerURL(ctx, input.URL)
	if err != nil {
		return dto.SettingsOutput{}, err
	}
	return i.toOutput(cfg), nil
}

func (i *Interactor) SetAutoSave(ctx context.Context, input dto.SetAutoSaveInput) (dto.SettingsOutput, error) {
	cfg, err := i.svc.SetAutoSave(ctx, input.Enabled)
	if err != nil {
		return dto.SettingsOutput{}, err
	}
	return i.toOutput(cfg), nil
}

func (i *Interactor) toOutput(cfg config.Config) dto.SettingsOutput {
	endpoints := cfg.Endpoints()
	return dto.SettingsOutput{
		ServerURL:       cfg.ServerURL,
		AutoSaveDataset: cfg.AutoSaveDataset,
		Path:            i.svc.StorePath(),
		Analyze:         endpoints.Analyze(cfg.AutoSaveDataset),
		History:         endpoints.History(),
		AutoDataset:     endpoints.AutoDataset(),
	}
}
