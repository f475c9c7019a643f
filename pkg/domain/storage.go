package domain

// StorageEngine defines the document-level operations the access layer
// consumes from the underlying store
type StorageEngine interface {
	// Insert assigns an identifier and stores the document, creating the
	// collection if needed. Returns the persisted document.
	Insert(collName string, doc Document) (Document, error)
	// InsertWithID stores a document under a caller-supplied identifier
	// (restore path). Fails with ConflictError if the ID is taken.
	InsertWithID(collName, docID string, doc Document) error
	GetById(collName, docID string) (Document, error)
	// UpdateById merges the given fields into an existing document
	UpdateById(collName, docID string, updates Document) (Document, error)
	// ReplaceById swaps the full document body, keeping its identifier
	ReplaceById(collName, docID string, doc Document) (Document, error)
	DeleteById(collName, docID string) error
	// DeleteAll removes every document in the collection, returning the
	// number removed. Missing collections yield zero, not an error.
	DeleteAll(collName string) (int, error)
	// Scan returns a snapshot of all documents in the collection. Missing
	// collections yield an empty slice.
	Scan(collName string) ([]Document, error)
	CreateCollection(collName string) error
	CollectionNames() []string
	SaveToFile(filename string) error
	LoadFromFile(filename string) error
}

// IndexEngine defines secondary index maintenance and lookup
type IndexEngine interface {
	EnsureIndex(collName string, def IndexDefinition) error
	DropIndex(collName, indexName string) error
	ListIndexes(collName string) []IndexDefinition
	// Lookup returns candidate document IDs for an equality match on an
	// indexed field; ok is false when no usable index exists
	Lookup(collName, field string, value interface{}) (ids []string, ok bool)
}

// DatabaseEngine combines StorageEngine and IndexEngine
type DatabaseEngine interface {
	StorageEngine
	IndexEngine
}
