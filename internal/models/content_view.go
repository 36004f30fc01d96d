package models

// ContentViewCount is a per-slug view total for metrics export.
type ContentViewCount struct {
	Slug  string
	Type  string
	Count int64
}
