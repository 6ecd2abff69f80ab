// Package models defines data structures for configuration and crawl results.
package models

// FetchStatus tracks the lifecycle of a discovered form.
type FetchStatus int

const (
	// StatusPending means the form has been discovered but not yet fetched.
	StatusPending FetchStatus = iota
	StatusDownloaded
	StatusFailed
)

// String returns the manifest representation of the status.
func (s FetchStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// UnknownIdentifier is the sentinel used when no form number pattern matches.
const UnknownIdentifier = "unknown"

// MaxTitleLength bounds display text so malformed markup can't blow up memory.
const MaxTitleLength = 200

// FormDescriptor represents one discovered candidate document.
//
// Digest and Error are mutually exclusive: Digest is set only on a
// Downloaded form, Error only on a Failed one, and both are empty while
// Pending. Use MarkDownloaded/MarkFailed rather than writing the fields
// directly so the invariant holds.
type FormDescriptor struct {
	Identifier string      `json:"form_number"`
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	Category   string      `json:"category"`
	Status     FetchStatus `json:"-"`
	Digest     string      `json:"sha256,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// MarkDownloaded transitions the form to Downloaded with its content digest.
func (f *FormDescriptor) MarkDownloaded(digest string) {
	f.Status = StatusDownloaded
	f.Digest = digest
	f.Error = ""
}

// MarkFailed transitions the form to Failed with a short diagnostic.
func (f *FormDescriptor) MarkFailed(err error) {
	f.Status = StatusFailed
	f.Error = err.Error()
	f.Digest = ""
}
