package docstore_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadb/schemadb/pkg/docstore"
	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/model"
	"github.com/schemadb/schemadb/pkg/query"
	"github.com/schemadb/schemadb/pkg/schema"
	"github.com/schemadb/schemadb/pkg/storage"
)

type fixture struct {
	engine   *storage.Engine
	registry *schema.Registry
	store    *docstore.DocumentStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine := storage.NewEngine()
	registry := schema.NewRegistry(engine, nil)
	models := model.NewCache(registry)
	registry.SetOnMutate(models.Invalidate)
	return &fixture{
		engine:   engine,
		registry: registry,
		store:    docstore.New(engine, models, nil),
	}
}

func floatPtr(v float64) *float64 { return &v }

func registerOrders(t *testing.T, fx *fixture) {
	t.Helper()
	_, err := fx.registry.Create(&domain.SchemaDefinition{
		CollectionName: "orders",
		Fields: []domain.FieldDefinition{
			{Name: "customer", Type: domain.FieldTypeString, Required: true},
			{Name: "amount", Type: domain.FieldTypeNumber, Required: true, Min: floatPtr(0)},
			{Name: "status", Type: domain.FieldTypeString, Default: "pending"},
		},
	})
	require.NoError(t, err)
}

func translate(t *testing.T, raw string) *domain.ParsedQuery {
	t.Helper()
	params, err := url.ParseQuery(raw)
	require.NoError(t, err)
	parsed, err := query.Translate(params)
	require.NoError(t, err)
	return parsed
}

func TestCreateValidatesAgainstSchema(t *testing.T) {
	fx := newFixture(t)
	registerOrders(t, fx)

	created, err := fx.store.Create("orders", domain.Document{"customer": "alice", "amount": 12.5})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())
	assert.Equal(t, "pending", created["status"])
	assert.NotNil(t, created["createdAt"])

	_, err = fx.store.Create("orders", domain.Document{"customer": "bob", "amount": -3.0})
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Fields, 1)
	assert.Equal(t, "amount", validationErr.Fields[0].Field)
}

func TestCreateSchemalessCollection(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.store.Create("scratch", domain.Document{"anything": []interface{}{1, "two"}})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID())
}

func TestCreateIgnoresClientSuppliedID(t *testing.T) {
	fx := newFixture(t)

	created, err := fx.store.Create("scratch", domain.Document{"_id": "client-pick", "n": 1})
	require.NoError(t, err)
	assert.NotEqual(t, "client-pick", created.ID())
}

func TestSchemaMutationTakesEffectWithoutRestart(t *testing.T) {
	fx := newFixture(t)

	// schemaless at first, anything goes
	_, err := fx.store.Create("orders", domain.Document{"amount": -100.0})
	require.NoError(t, err)

	registerOrders(t, fx)

	_, err = fx.store.Create("orders", domain.Document{"customer": "carol", "amount": -1.0})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestGetByIdRejectsMalformedID(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.store.GetById("orders", "not-hex")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPatchValidatesMergedDocument(t *testing.T) {
	fx := newFixture(t)
	registerOrders(t, fx)

	created, err := fx.store.Create("orders", domain.Document{"customer": "alice", "amount": 10.0})
	require.NoError(t, err)

	patched, err := fx.store.Patch("orders", created.ID(), domain.Document{"status": "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", patched["status"])
	assert.Equal(t, "alice", patched["customer"])
	assert.Equal(t, created["createdAt"], patched["createdAt"])

	// a patch that breaks a constraint on an untouched field path still fails
	_, err = fx.store.Patch("orders", created.ID(), domain.Document{"amount": -1.0})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPatchCannotChangeIdentityFields(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.store.Create("scratch", domain.Document{"n": 1.0})
	require.NoError(t, err)

	patched, err := fx.store.Patch("scratch", created.ID(), domain.Document{
		"_id":       "hijack",
		"createdAt": "1970-01-01T00:00:00Z",
		"n":         2.0,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID(), patched.ID())
	assert.Equal(t, created["createdAt"], patched["createdAt"])
	assert.Equal(t, 2.0, patched["n"])
}

func TestReplacePreservesCreatedAt(t *testing.T) {
	fx := newFixture(t)
	registerOrders(t, fx)

	created, err := fx.store.Create("orders", domain.Document{"customer": "alice", "amount": 10.0})
	require.NoError(t, err)

	replaced, err := fx.store.Replace("orders", created.ID(), domain.Document{"customer": "bob", "amount": 20.0})
	require.NoError(t, err)
	assert.Equal(t, created["createdAt"], replaced["createdAt"])
	assert.Equal(t, "bob", replaced["customer"])
	// defaults re-apply on replace
	assert.Equal(t, "pending", replaced["status"])
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	fx := newFixture(t)
	created, err := fx.store.Create("scratch", domain.Document{"n": 1})
	require.NoError(t, err)

	require.NoError(t, fx.store.Delete("scratch", created.ID()))
	err = fx.store.Delete("scratch", created.ID())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestListFiltersSortsAndPaginates(t *testing.T) {
	fx := newFixture(t)
	for i := 1; i <= 20; i++ {
		_, err := fx.store.Create("products", domain.Document{
			"name":  fmt.Sprintf("product-%02d", i),
			"price": float64(i * 50),
		})
		require.NoError(t, err)
	}

	parsed := translate(t, "price=%3E100&price=%3C%3D500&sort=price&limit=5")
	docs, total, err := fx.store.List("products", parsed)
	require.NoError(t, err)

	// prices 150..500 match
	assert.Equal(t, 8, total)
	require.Len(t, docs, 5)
	assert.Equal(t, 150.0, docs[0]["price"])
	assert.Equal(t, 350.0, docs[4]["price"])

	parsed = translate(t, "price=%3E100&price=%3C%3D500&sort=price&limit=5&page=2")
	docs, total, err = fx.store.List("products", parsed)
	require.NoError(t, err)
	assert.Equal(t, 8, total)
	require.Len(t, docs, 3)
	assert.Equal(t, 400.0, docs[0]["price"])
	assert.Equal(t, 500.0, docs[2]["price"])
}

func TestListPaginationCoversEveryDocumentOnce(t *testing.T) {
	fx := newFixture(t)
	for i := 0; i < 12; i++ {
		_, err := fx.store.Create("items", domain.Document{"n": float64(i)})
		require.NoError(t, err)
	}

	seen := make(map[string]int)
	for page := 1; page <= 3; page++ {
		parsed := translate(t, fmt.Sprintf("sort=n&limit=5&page=%d", page))
		docs, total, err := fx.store.List("items", parsed)
		require.NoError(t, err)
		assert.Equal(t, 12, total)
		for _, doc := range docs {
			seen[doc.ID()]++
		}
	}

	assert.Len(t, seen, 12)
	for id, count := range seen {
		assert.Equalf(t, 1, count, "document %s appeared %d times", id, count)
	}
}

func TestListPageBeyondEnd(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.store.Create("items", domain.Document{"n": 1.0})
	require.NoError(t, err)

	parsed := translate(t, "page=9&limit=10")
	docs, total, err := fx.store.List("items", parsed)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Empty(t, docs)
}

func TestListProjection(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.store.Create("products", domain.Document{"name": "widget", "price": 9.5, "secret": "x"})
	require.NoError(t, err)

	parsed := translate(t, "fields=name")
	docs, _, err := fx.store.List("products", parsed)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Contains(t, docs[0], "_id")
	assert.Contains(t, docs[0], "name")
	assert.NotContains(t, docs[0], "price")
	assert.NotContains(t, docs[0], "secret")
}

func TestListUsesIndexCandidates(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.engine.EnsureIndex("users", domain.IndexDefinition{
		Fields: map[string]int{"city": 1},
	}))

	for _, city := range []string{"london", "paris", "london"} {
		_, err := fx.store.Create("users", domain.Document{"city": city})
		require.NoError(t, err)
	}

	parsed := translate(t, "city=london")
	docs, total, err := fx.store.List("users", parsed)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, docs, 2)
}

func TestBulkInsertItemized(t *testing.T) {
	fx := newFixture(t)
	registerOrders(t, fx)

	result, err := fx.store.BulkInsert("orders", []domain.Document{
		{"customer": "alice", "amount": 1.0},
		{"customer": "bob", "amount": -2.0},
		{"customer": "carol", "amount": 3.0},
	})
	require.NoError(t, err)

	assert.Equal(t, "insert", result.Operation)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Items, 3)

	assert.True(t, result.Items[0].OK)
	assert.NotEmpty(t, result.Items[0].ID)
	assert.False(t, result.Items[1].OK)
	assert.Contains(t, result.Items[1].Error, "amount")
	assert.True(t, result.Items[2].OK)
}

func TestBulkUpdate(t *testing.T) {
	fx := newFixture(t)
	registerOrders(t, fx)

	first, err := fx.store.Create("orders", domain.Document{"customer": "alice", "amount": 1.0})
	require.NoError(t, err)

	result, err := fx.store.BulkUpdate("orders", []domain.Document{
		{"_id": first.ID(), "status": "paid"},
		{"status": "orphaned"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].OK)
	assert.False(t, result.Items[1].OK)

	updated, err := fx.store.GetById("orders", first.ID())
	require.NoError(t, err)
	assert.Equal(t, "paid", updated["status"])
}

func TestBulkDeleteReportsActualCount(t *testing.T) {
	fx := newFixture(t)

	first, err := fx.store.Create("items", domain.Document{"n": 1})
	require.NoError(t, err)
	second, err := fx.store.Create("items", domain.Document{"n": 2})
	require.NoError(t, err)

	// one of the three IDs does not exist
	result, err := fx.store.BulkDelete("items", []string{
		first.ID(), second.ID(), "507f1f77bcf86cd799439011",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	require.Len(t, result.Items, 3)
	assert.True(t, result.Items[0].OK)
	assert.True(t, result.Items[1].OK)
	assert.False(t, result.Items[2].OK)
}

func TestStats(t *testing.T) {
	fx := newFixture(t)

	for i := 0; i < 5; i++ {
		doc := domain.Document{"name": fmt.Sprintf("p%d", i)}
		if i < 2 {
			doc["discount"] = 0.1
		}
		_, err := fx.store.Create("products", doc)
		require.NoError(t, err)
	}

	stats, err := fx.store.Stats("products")
	require.NoError(t, err)

	assert.Equal(t, "products", stats.Collection)
	assert.Equal(t, 5, stats.DocumentCount)
	assert.Greater(t, stats.AvgSize, 0.0)

	counts := make(map[string]int, len(stats.TopFields))
	for _, ff := range stats.TopFields {
		counts[ff.Field] = ff.Count
	}
	assert.Equal(t, 5, counts["name"])
	assert.Equal(t, 2, counts["discount"])
}

func TestStatsEmptyCollection(t *testing.T) {
	fx := newFixture(t)

	stats, err := fx.store.Stats("nothing")
	require.NoError(t, err)
	assert.Zero(t, stats.DocumentCount)
	assert.Zero(t, stats.AvgSize)
	assert.Empty(t, stats.TopFields)
}
