package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/schema"
	"github.com/schemadb/schemadb/pkg/storage"
)

func newRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	return schema.NewRegistry(storage.NewEngine(), nil)
}

func productSchema() *domain.SchemaDefinition {
	return &domain.SchemaDefinition{
		CollectionName: "Products",
		DisplayName:    "Products",
		Fields: []domain.FieldDefinition{
			{Name: "name", Type: domain.FieldTypeString, Required: true},
			{Name: "sku", Type: domain.FieldTypeString, Unique: true},
			{Name: "price", Type: domain.FieldTypeNumber},
		},
	}
}

func TestCreateNormalizesAndStamps(t *testing.T) {
	registry := newRegistry(t)

	created, err := registry.Create(productSchema())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "products", created.CollectionName)
	assert.True(t, created.IsActive)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	registry := newRegistry(t)

	_, err := registry.Create(productSchema())
	require.NoError(t, err)

	// duplicate detection is case-insensitive
	dup := productSchema()
	dup.CollectionName = "PRODUCTS"
	_, err = registry.Create(dup)
	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
}

func TestCreateRejectsReservedAndEmptyNames(t *testing.T) {
	registry := newRegistry(t)

	reserved := productSchema()
	reserved.CollectionName = "_schemas"
	_, err := registry.Create(reserved)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	empty := productSchema()
	empty.CollectionName = "   "
	_, err = registry.Create(empty)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestCreateRejectsUnnamedFields(t *testing.T) {
	registry := newRegistry(t)

	def := productSchema()
	def.Fields = append(def.Fields, domain.FieldDefinition{Type: domain.FieldTypeString})
	_, err := registry.Create(def)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestGetByCollectionName(t *testing.T) {
	registry := newRegistry(t)

	created, err := registry.Create(productSchema())
	require.NoError(t, err)

	def, err := registry.GetByCollectionName("PRODUCTS")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, created.ID, def.ID)
	require.Len(t, def.Fields, 3)
	assert.Equal(t, domain.FieldTypeNumber, def.Fields[2].Type)

	missing, err := registry.GetByCollectionName("nothing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateMergesAndKeepsNameImmutable(t *testing.T) {
	registry := newRegistry(t)
	created, err := registry.Create(productSchema())
	require.NoError(t, err)

	updated, err := registry.Update(created.ID, domain.Document{
		"description":    "catalogue items",
		"collectionName": "renamed",
	})
	require.NoError(t, err)

	assert.Equal(t, "catalogue items", updated.Description)
	assert.Equal(t, "products", updated.CollectionName)
	assert.Equal(t, "Products", updated.DisplayName)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt) || updated.UpdatedAt.Equal(created.CreatedAt))

	// the old name still resolves
	def, err := registry.GetByCollectionName("products")
	require.NoError(t, err)
	require.NotNil(t, def)
}

func TestUpdateMissingSchema(t *testing.T) {
	registry := newRegistry(t)
	_, err := registry.Update("missing", domain.Document{"description": "x"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestSoftDelete(t *testing.T) {
	registry := newRegistry(t)
	created, err := registry.Create(productSchema())
	require.NoError(t, err)

	deleted, err := registry.SoftDelete(created.ID)
	require.NoError(t, err)
	assert.False(t, deleted.IsActive)

	// no longer resolvable by collection name
	def, err := registry.GetByCollectionName("products")
	require.NoError(t, err)
	assert.Nil(t, def)

	// still retrievable by ID for audit
	byID, err := registry.Get(created.ID)
	require.NoError(t, err)
	assert.False(t, byID.IsActive)

	// idempotent
	again, err := registry.SoftDelete(created.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
}

func TestSoftDeleteFreesNameForReuse(t *testing.T) {
	registry := newRegistry(t)
	created, err := registry.Create(productSchema())
	require.NoError(t, err)
	_, err = registry.SoftDelete(created.ID)
	require.NoError(t, err)

	replacement, err := registry.Create(productSchema())
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, replacement.ID)
	assert.True(t, replacement.IsActive)
}

func TestListActiveSorted(t *testing.T) {
	registry := newRegistry(t)

	for _, name := range []string{"zebras", "apples"} {
		def := productSchema()
		def.CollectionName = name
		_, err := registry.Create(def)
		require.NoError(t, err)
	}
	inactive := productSchema()
	inactive.CollectionName = "mangos"
	created, err := registry.Create(inactive)
	require.NoError(t, err)
	_, err = registry.SoftDelete(created.ID)
	require.NoError(t, err)

	defs, err := registry.ListActive()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "apples", defs[0].CollectionName)
	assert.Equal(t, "zebras", defs[1].CollectionName)
}

func TestCreateProvisionsDeclaredIndexes(t *testing.T) {
	engine := storage.NewEngine()
	registry := schema.NewRegistry(engine, nil)

	_, err := registry.Create(productSchema())
	require.NoError(t, err)

	defs := engine.ListIndexes("products")
	require.Len(t, defs, 1)
	assert.True(t, defs[0].Unique)
	assert.Equal(t, []string{"sku"}, defs[0].FieldNames())
}

func TestOnMutateHook(t *testing.T) {
	registry := newRegistry(t)

	var mutated []string
	registry.SetOnMutate(func(name string) { mutated = append(mutated, name) })

	created, err := registry.Create(productSchema())
	require.NoError(t, err)
	_, err = registry.Update(created.ID, domain.Document{"description": "x"})
	require.NoError(t, err)
	_, err = registry.SoftDelete(created.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"products", "products", "products"}, mutated)
}
