package domain

// RawDocument is case text as read from a source, before normalisation.
type RawDocument struct {
	// SourceID identifies where the text came from (file path, bundle segment).
	SourceID string

	// Content is the raw bytes.
	Content []byte
}

// ChangeType represents the type of source change.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed file.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SourceChange is a change event reported by a watched source.
type SourceChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Path is the affected file.
	Path string
}
