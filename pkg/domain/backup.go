package domain

import "time"

// CollectionBackup captures one collection's documents and index descriptors
type CollectionBackup struct {
	DocumentCount int               `json:"documentCount" msgpack:"documentCount"`
	Size          int64             `json:"size" msgpack:"size"`
	Indexes       []IndexDefinition `json:"indexes" msgpack:"indexes"`
	Data          []Document        `json:"data,omitempty" msgpack:"data,omitempty"`
}

// BackupSet is a portable, point-in-time (non-atomic) snapshot of one or
// more collections
type BackupSet struct {
	DatabaseName string                      `json:"databaseName" msgpack:"databaseName"`
	Timestamp    time.Time                   `json:"timestamp" msgpack:"timestamp"`
	Collections  map[string]CollectionBackup `json:"collections" msgpack:"collections"`
}

// RestoreResult reports the outcome of restoring a single collection.
// Restore is not atomic across collections, so callers receive one result
// per collection attempted up to the first failure.
type RestoreResult struct {
	Collection        string `json:"collection"`
	DocumentsRestored int    `json:"documentsRestored"`
	IndexesRestored   int    `json:"indexesRestored"`
	Error             string `json:"error,omitempty"`
}

// BulkItemResult reports the outcome of one item in a bulk operation
type BulkItemResult struct {
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResult itemizes the outcome of a bulk operation rather than
// collapsing partial failure to a single pass/fail
type BulkResult struct {
	Operation string           `json:"operation"`
	Requested int              `json:"requested"`
	Succeeded int              `json:"succeeded"`
	Items     []BulkItemResult `json:"items"`
}

// FieldFrequency is one entry in a collection's top-field statistics
type FieldFrequency struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// CollectionStats summarizes a collection for introspection
type CollectionStats struct {
	Collection    string           `json:"collection"`
	DocumentCount int              `json:"documentCount"`
	AvgSize       float64          `json:"avgSize"`
	TopFields     []FieldFrequency `json:"topFields"`
}
