package indexing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/indexing"
)

func TestEnsureIndexAndLookup(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)

	err := ie.EnsureIndex("users", domain.IndexDefinition{Fields: map[string]int{"email": 1}})
	require.NoError(t, err)

	ie.UpdateDocument("users", "u1", nil, domain.Document{"_id": "u1", "email": "a@example.com"})
	ie.UpdateDocument("users", "u2", nil, domain.Document{"_id": "u2", "email": "b@example.com"})
	ie.UpdateDocument("users", "u3", nil, domain.Document{"_id": "u3", "email": "a@example.com"})

	ids, covered := ie.Lookup("users", "email", "a@example.com")
	require.True(t, covered)
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)

	_, covered = ie.Lookup("users", "age", 30)
	assert.False(t, covered)
}

func TestEnsureIndexIdempotent(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	def := domain.IndexDefinition{Fields: map[string]int{"email": 1}}

	require.NoError(t, ie.EnsureIndex("users", def))
	ie.UpdateDocument("users", "u1", nil, domain.Document{"email": "a@example.com"})

	// re-ensuring under the same name keeps the built data
	require.NoError(t, ie.EnsureIndex("users", def))
	ids, covered := ie.Lookup("users", "email", "a@example.com")
	require.True(t, covered)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestEnsureIndexNoFields(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	err := ie.EnsureIndex("users", domain.IndexDefinition{})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestNumericKeysNormalized(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	require.NoError(t, ie.EnsureIndex("products", domain.IndexDefinition{Fields: map[string]int{"price": 1}}))

	ie.UpdateDocument("products", "p1", nil, domain.Document{"price": 42})

	// int-valued inserts are found by float64 lookups and vice versa
	ids, covered := ie.Lookup("products", "price", 42.0)
	require.True(t, covered)
	assert.Equal(t, []string{"p1"}, ids)

	ids, covered = ie.Lookup("products", "price", int64(42))
	require.True(t, covered)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestUniqueIndexConflict(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	require.NoError(t, ie.EnsureIndex("users", domain.IndexDefinition{
		Fields: map[string]int{"email": 1},
		Unique: true,
	}))

	first := domain.Document{"email": "a@example.com"}
	require.NoError(t, ie.CheckUnique("users", "u1", first))
	ie.UpdateDocument("users", "u1", nil, first)

	err := ie.CheckUnique("users", "u2", domain.Document{"email": "a@example.com"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))

	// the holder itself may rewrite its own value
	assert.NoError(t, ie.CheckUnique("users", "u1", first))

	// documents missing the field do not participate
	assert.NoError(t, ie.CheckUnique("users", "u3", domain.Document{"name": "no email"}))
}

func TestUniqueReleasedOnDelete(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	require.NoError(t, ie.EnsureIndex("users", domain.IndexDefinition{
		Fields: map[string]int{"email": 1},
		Unique: true,
	}))

	doc := domain.Document{"email": "a@example.com"}
	ie.UpdateDocument("users", "u1", nil, doc)
	ie.UpdateDocument("users", "u1", doc, nil)

	assert.NoError(t, ie.CheckUnique("users", "u2", domain.Document{"email": "a@example.com"}))
}

func TestUpdateDocumentMovesEntries(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	require.NoError(t, ie.EnsureIndex("users", domain.IndexDefinition{Fields: map[string]int{"city": 1}}))

	old := domain.Document{"city": "london"}
	ie.UpdateDocument("users", "u1", nil, old)
	ie.UpdateDocument("users", "u1", old, domain.Document{"city": "paris"})

	ids, _ := ie.Lookup("users", "city", "london")
	assert.Empty(t, ids)
	ids, _ = ie.Lookup("users", "city", "paris")
	assert.Equal(t, []string{"u1"}, ids)
}

func TestDropIndex(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	def := domain.IndexDefinition{Fields: map[string]int{"email": 1}}
	require.NoError(t, ie.EnsureIndex("users", def))

	require.NoError(t, ie.DropIndex("users", def.Name()))
	_, covered := ie.Lookup("users", "email", "a@example.com")
	assert.False(t, covered)

	err := ie.DropIndex("users", def.Name())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRebuildCollection(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	require.NoError(t, ie.EnsureIndex("users", domain.IndexDefinition{Fields: map[string]int{"email": 1}}))

	docs := map[string]domain.Document{
		"u1": {"email": "a@example.com"},
		"u2": {"email": "b@example.com"},
	}
	ie.RebuildCollection("users", docs)

	ids, covered := ie.Lookup("users", "email", "b@example.com")
	require.True(t, covered)
	assert.Equal(t, []string{"u2"}, ids)
}

func TestExportImportDescriptors(t *testing.T) {
	ie := indexing.NewIndexEngine(nil)
	def := domain.IndexDefinition{Fields: map[string]int{"email": 1}, Unique: true}
	require.NoError(t, ie.EnsureIndex("users", def))

	descriptors := ie.ExportDescriptors()
	require.Contains(t, descriptors, "users")
	require.Len(t, descriptors["users"], 1)

	restored := indexing.NewIndexEngine(nil)
	restored.ImportDescriptors(descriptors)

	defs := restored.ListIndexes("users")
	require.Len(t, defs, 1)
	assert.True(t, defs[0].Unique)
	assert.Equal(t, def.Name(), defs[0].Name())
}
