package dto

type SettingsOutput struct {
	ServerURL       string
	AutoSaveDataset bool
	Path            string
	Analyze         string
	History         string
	AutoDataset     string
}

type SetServerURLInput struct {
	URL string
}

type SetAutoSaveInput struct {
	Enabled bool
}
