package docstore

import (
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/schemadb/schemadb/pkg/domain"
)

// statsSampleSize bounds how many documents stats inspects
const statsSampleSize = 100

// Stats summarizes a collection: document count, average encoded size, and
// the most frequent top-level field names across a bounded sample. Used for
// introspection, not correctness-critical.
func (s *DocumentStore) Stats(collName string) (*domain.CollectionStats, error) {
	docs, err := s.engine.Scan(collName)
	if err != nil {
		return nil, err
	}

	stats := &domain.CollectionStats{
		Collection:    collName,
		DocumentCount: len(docs),
	}

	sample := docs
	if len(sample) > statsSampleSize {
		sample = sample[:statsSampleSize]
	}

	var totalSize int
	frequencies := make(map[string]int)
	for _, doc := range sample {
		if encoded, err := msgpack.Marshal(doc); err == nil {
			totalSize += len(encoded)
		}
		for field := range doc {
			frequencies[field]++
		}
	}
	if len(sample) > 0 {
		stats.AvgSize = float64(totalSize) / float64(len(sample))
	}

	for field, count := range frequencies {
		stats.TopFields = append(stats.TopFields, domain.FieldFrequency{Field: field, Count: count})
	}
	sort.Slice(stats.TopFields, func(i, j int) bool {
		if stats.TopFields[i].Count != stats.TopFields[j].Count {
			return stats.TopFields[i].Count > stats.TopFields[j].Count
		}
		return stats.TopFields[i].Field < stats.TopFields[j].Field
	})
	if len(stats.TopFields) > 10 {
		stats.TopFields = stats.TopFields[:10]
	}

	return stats, nil
}
