package model

type SourceType string

const (
	SourcePDF  SourceType = "pdf"
	SourceURL  SourceType = "url"
	SourceText SourceType = "text"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourcePDF, SourceURL, SourceText:
		return true
	}
	return false
}

// Document is the ephemeral ingestion payload. It is consumed by the
// normalizer and never persisted as-is.
type Document struct {
	SourceType SourceType
	// Data holds the raw payload for pdf and text sources.
	Data []byte
	// URL is the fetch target for url sources.
	URL string
}

// Version is an immutable normalized-text snapshot of a contract.
type Version struct {
	ID            string     `json:"id"`
	ContractID    string     `json:"contract_id"`
	VersionNumber int        `json:"version_number"`
	SourceType    SourceType `json:"source_type"`
	SourceURL     string     `json:"source_url,omitempty"`
	RawText       string     `json:"raw_text,omitempty"`
	// ContentHash is the sha256 hex digest of RawText. The watch job uses it
	// to skip re-ingesting an unchanged page.
	ContentHash string `json:"content_hash"`
	// SnapshotKey locates the archived original bytes in the file store.
	// Empty when no snapshot was kept (e.g. url sources store text only).
	SnapshotKey string `json:"snapshot_key,omitempty"`
	Ctime       int64  `json:"ctime"`
}
