package manifest

import "github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"

// Manifest is the persisted summary of one crawl run. It is written fresh
// each run; a later run at the same path replaces it wholesale.
type Manifest struct {
	Source          string         `json:"source"`
	GeneratedAt     string         `json:"generated_at"`
	TotalDiscovered int            `json:"total_discovered"`
	TotalDownloaded int            `json:"total_downloaded"`
	TotalErrors     int            `json:"total_errors"`
	CategoryCounts  map[string]int `json:"by_category"`
	Forms           []FormRecord   `json:"forms"`
}

// FormRecord is one descriptor snapshot in discovery order.
type FormRecord struct {
	Identifier string `json:"form_number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Category   string `json:"category"`
	Status     string `json:"status"`
	Digest     string `json:"sha256,omitempty"`
	Error      string `json:"error,omitempty"`
}

func newFormRecord(f models.FormDescriptor) FormRecord {
	return FormRecord{
		Identifier: f.Identifier,
		Title:      f.Title,
		URL:        f.URL,
		Category:   f.Category,
		Status:     f.Status.String(),
		Digest:     f.Digest,
		Error:      f.Error,
	}
}
