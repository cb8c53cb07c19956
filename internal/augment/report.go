package augment

// Report summarizes one augmentation run.
type Report struct {
	ImagesProcessed int `json:"imagesProcessed"`
	ImagesWithGPS   int `json:"imagesWithGps"`

	NewRecords            int `json:"newRecords"`
	ExtensionPlaceholders int `json:"extensionPlaceholders"`

	ExactDuplicatesSkipped     int `json:"exactDuplicatesSkipped"`
	ProximityDuplicatesSkipped int `json:"proximityDuplicatesSkipped"`

	// ConsolidationSavings is the number of would-be placeholder entries
	// avoided by grouping candidates that share a timestamp.
	ConsolidationSavings int `json:"consolidationSavings"`

	// UnknownTimestampEdits counts edits that could not be ordered during the
	// final sort; they are preserved at the end of the document.
	UnknownTimestampEdits int `json:"unknownTimestampEdits,omitempty"`

	BackupPath string `json:"backupPath,omitempty"`
}

// Changed reports whether the run produced anything worth writing back.
func (r Report) Changed() bool {
	return r.NewRecords > 0 || r.ExtensionPlaceholders > 0
}
