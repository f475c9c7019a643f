package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/storage"
)

func TestInsertAssignsID(t *testing.T) {
	engine := storage.NewEngine()

	stored, err := engine.Insert("users", domain.Document{"name": "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID())
	assert.Equal(t, "alice", stored["name"])

	fetched, err := engine.GetById("users", stored.ID())
	require.NoError(t, err)
	assert.Equal(t, stored, fetched)
}

func TestInsertDoesNotAliasCaller(t *testing.T) {
	engine := storage.NewEngine()

	doc := domain.Document{"name": "alice"}
	stored, err := engine.Insert("users", doc)
	require.NoError(t, err)

	// mutating either copy leaves the stored document untouched
	doc["name"] = "mallory"
	stored["name"] = "eve"

	fetched, err := engine.GetById("users", stored.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice", fetched["name"])
}

func TestGetByIdNotFound(t *testing.T) {
	engine := storage.NewEngine()

	_, err := engine.GetById("users", "missing")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdateByIdMerges(t *testing.T) {
	engine := storage.NewEngine()
	stored, err := engine.Insert("users", domain.Document{"name": "alice", "city": "london"})
	require.NoError(t, err)

	updated, err := engine.UpdateById("users", stored.ID(), domain.Document{
		"city": "paris",
		"_id":  "must-not-change",
	})
	require.NoError(t, err)

	assert.Equal(t, stored.ID(), updated.ID())
	assert.Equal(t, "alice", updated["name"])
	assert.Equal(t, "paris", updated["city"])
}

func TestReplaceByIdSwapsBody(t *testing.T) {
	engine := storage.NewEngine()
	stored, err := engine.Insert("users", domain.Document{"name": "alice", "city": "london"})
	require.NoError(t, err)

	replaced, err := engine.ReplaceById("users", stored.ID(), domain.Document{"name": "bob"})
	require.NoError(t, err)

	assert.Equal(t, stored.ID(), replaced.ID())
	assert.Equal(t, "bob", replaced["name"])
	_, hasCity := replaced["city"]
	assert.False(t, hasCity)
}

func TestDeleteById(t *testing.T) {
	engine := storage.NewEngine()
	stored, err := engine.Insert("users", domain.Document{"name": "alice"})
	require.NoError(t, err)

	require.NoError(t, engine.DeleteById("users", stored.ID()))

	_, err = engine.GetById("users", stored.ID())
	assert.True(t, domain.IsNotFound(err))

	err = engine.DeleteById("users", stored.ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteAll(t *testing.T) {
	engine := storage.NewEngine()
	for i := 0; i < 3; i++ {
		_, err := engine.Insert("users", domain.Document{"n": i})
		require.NoError(t, err)
	}

	removed, err := engine.DeleteAll("users")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	docs, err := engine.Scan("users")
	require.NoError(t, err)
	assert.Empty(t, docs)

	removed, err = engine.DeleteAll("never-existed")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestInsertWithIDConflict(t *testing.T) {
	engine := storage.NewEngine()

	require.NoError(t, engine.InsertWithID("users", "u1", domain.Document{"name": "alice"}))

	err := engine.InsertWithID("users", "u1", domain.Document{"name": "bob"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestUniqueIndexEnforcedOnInsert(t *testing.T) {
	engine := storage.NewEngine()
	require.NoError(t, engine.EnsureIndex("users", domain.IndexDefinition{
		Fields: map[string]int{"email": 1},
		Unique: true,
	}))

	_, err := engine.Insert("users", domain.Document{"email": "a@example.com"})
	require.NoError(t, err)

	_, err = engine.Insert("users", domain.Document{"email": "a@example.com"})
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestEnsureIndexBuildsFromExistingDocuments(t *testing.T) {
	engine := storage.NewEngine()
	stored, err := engine.Insert("users", domain.Document{"email": "a@example.com"})
	require.NoError(t, err)

	require.NoError(t, engine.EnsureIndex("users", domain.IndexDefinition{
		Fields: map[string]int{"email": 1},
	}))

	ids, covered := engine.Lookup("users", "email", "a@example.com")
	require.True(t, covered)
	assert.Equal(t, []string{stored.ID()}, ids)
}

func TestCollectionNamesSorted(t *testing.T) {
	engine := storage.NewEngine()
	require.NoError(t, engine.CreateCollection("zebras"))
	require.NoError(t, engine.CreateCollection("apples"))
	require.NoError(t, engine.CreateCollection("mangos"))

	assert.Equal(t, []string{"apples", "mangos", "zebras"}, engine.CollectionNames())
}

func TestScanMissingCollection(t *testing.T) {
	engine := storage.NewEngine()
	docs, err := engine.Scan("nothing")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
