package backup

import (
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/schemadb/schemadb/pkg/domain"
)

// Engine serializes collections (raw documents plus index descriptors) into
// portable backup sets and restores them. It works below the typed model
// layer: documents travel verbatim, schema-independent.
type Engine struct {
	engine       domain.DatabaseEngine
	logger       *zap.SugaredLogger
	databaseName string
}

// New creates a backup/restore engine
func New(engine domain.DatabaseEngine, databaseName string, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{engine: engine, logger: logger, databaseName: databaseName}
}

// Export captures a point-in-time snapshot of the named collections, or of
// every non-reserved collection when names is empty. Reserved collections
// (leading underscore) are included only when named explicitly.
func (e *Engine) Export(names []string, includeData bool) (*domain.BackupSet, error) {
	targets := names
	if len(targets) == 0 {
		for _, name := range e.engine.CollectionNames() {
			if !strings.HasPrefix(name, "_") {
				targets = append(targets, name)
			}
		}
	}

	set := &domain.BackupSet{
		DatabaseName: e.databaseName,
		Timestamp:    time.Now().UTC(),
		Collections:  make(map[string]domain.CollectionBackup, len(targets)),
	}

	for _, collName := range targets {
		docs, err := e.engine.Scan(collName)
		if err != nil {
			return nil, domain.NewStoreError("export", err)
		}

		var size int64
		for _, doc := range docs {
			if encoded, err := msgpack.Marshal(doc); err == nil {
				size += int64(len(encoded))
			}
		}

		entry := domain.CollectionBackup{
			DocumentCount: len(docs),
			Size:          size,
			Indexes:       e.engine.ListIndexes(collName),
		}
		if includeData {
			entry.Data = docs
		}
		set.Collections[collName] = entry

		e.logger.Infow("collection exported",
			"collection", collName, "documents", entry.DocumentCount, "bytes", size)
	}

	return set, nil
}

// Restore replaces the contents of each selected collection with the
// backup's documents and recreates its non-default indexes. It is not
// atomic across collections: a failure partway leaves earlier collections
// restored, and the returned results itemize every collection attempted up
// to that point.
func (e *Engine) Restore(set *domain.BackupSet, names []string) ([]domain.RestoreResult, error) {
	targets := names
	if len(targets) == 0 {
		for name := range set.Collections {
			targets = append(targets, name)
		}
	}

	results := make([]domain.RestoreResult, 0, len(targets))
	for _, collName := range targets {
		entry, present := set.Collections[collName]
		if !present {
			continue
		}
		result := domain.RestoreResult{Collection: collName}

		if _, err := e.engine.DeleteAll(collName); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			return results, domain.NewStoreError("restore", err)
		}

		for _, ix := range entry.Indexes {
			// the primary identifier index is always implicit
			if ix.Name() == "_id_1" {
				continue
			}
			if err := e.engine.EnsureIndex(collName, ix); err != nil {
				// index creation failures (e.g. already exists) are
				// tolerated and do not abort the restore
				e.logger.Warnw("failed to recreate index",
					"collection", collName, "index", ix.Name(), "error", err)
				continue
			}
			result.IndexesRestored++
		}

		for _, doc := range entry.Data {
			docID := doc.ID()
			body := doc.Clone()
			delete(body, "_id")

			var err error
			if docID != "" {
				err = e.engine.InsertWithID(collName, docID, body)
			} else {
				_, err = e.engine.Insert(collName, body)
			}
			if err != nil {
				result.Error = err.Error()
				results = append(results, result)
				return results, domain.NewStoreError("restore", err)
			}
			result.DocumentsRestored++
		}

		results = append(results, result)
		e.logger.Infow("collection restored",
			"collection", collName,
			"documents", result.DocumentsRestored, "indexes", result.IndexesRestored)
	}

	return results, nil
}
