package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/TobiSchelling/seagull/internal/database"
)

// fileRecord mirrors the JSON export format of the review collectors.
type fileRecord struct {
	ReviewID string  `json:"review_id"`
	Source   string  `json:"source"`
	Rating   int     `json:"rating"`
	Text     *string `json:"text"`
	Date     string  `json:"date"`
	Username string  `json:"username"`
	ThumbsUp int     `json:"thumbs_up"`
}

// FileSupplier reads reviews from a JSON export file: a single array of
// review records as written by the collectors.
type FileSupplier struct {
	Path string
}

// NewFileSupplier creates a supplier for a JSON export file.
func NewFileSupplier(path string) *FileSupplier {
	return &FileSupplier{Path: path}
}

// Reviews reads and decodes all records from the export file.
func (f *FileSupplier) Reviews() ([]database.Review, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing export file %s: %w", f.Path, err)
	}

	reviews := make([]database.Review, len(records))
	for i, rec := range records {
		reviews[i] = database.Review{
			ReviewID: rec.ReviewID,
			Source:   rec.Source,
			Rating:   rec.Rating,
			Text:     rec.Text,
			Date:     rec.Date,
			Username: rec.Username,
			ThumbsUp: rec.ThumbsUp,
		}
	}
	return reviews, nil
}
