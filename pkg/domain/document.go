package domain

// Document represents an arbitrary-shape record in a collection
type Document map[string]interface{}

// ID returns the document's primary identifier, if assigned
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	copied := make(Document, len(d))
	for k, v := range d {
		copied[k] = v
	}
	return copied
}

// Collection represents a named collection of documents keyed by ID
type Collection struct {
	Name      string              `json:"name"`
	Documents map[string]Document `json:"documents"`
}

// NewCollection creates a new collection
func NewCollection(name string) *Collection {
	return &Collection{
		Name:      name,
		Documents: make(map[string]Document),
	}
}
