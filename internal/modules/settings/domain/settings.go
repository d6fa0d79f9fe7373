package domain

// Settings are the user-editable values kept between runs.
type Settings struct {
	ServerURL       string
	AutoSaveDataset bool
}
