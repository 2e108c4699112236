package models

// DocStatus represents the indexing status of a document in the database
type DocStatus string

const (
	DocStatusUnset    DocStatus = ""          // Zero value = unset/unknown
	DocStatusIndexed  DocStatus = "indexed"   // Document split and stored successfully
	DocStatusSkipped  DocStatus = "skipped"   // Content hash unchanged, left as-is
	DocStatusFailed   DocStatus = "failed"    // Ingestion or storage failed
	DocStatusNotFound DocStatus = "not_found" // Document not in database
	DocStatusDBError  DocStatus = "db_error"  // Database error occurred
)

// String implements fmt.Stringer for logging
func (s DocStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s DocStatus) IsValid() bool {
	switch s {
	case DocStatusIndexed, DocStatusSkipped, DocStatusFailed:
		return true
	}
	return false
}
