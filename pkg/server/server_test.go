package server_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadb/schemadb/pkg/domain"
	"github.com/schemadb/schemadb/pkg/server"
)

func TestPreloadSchemasSkipsExisting(t *testing.T) {
	srv := server.NewServer()

	def := domain.SchemaDefinition{
		CollectionName: "products",
		Fields: []domain.FieldDefinition{
			{Name: "name", Type: domain.FieldTypeString, Required: true},
		},
	}
	srv.PreloadSchemas([]domain.SchemaDefinition{def})

	first, err := srv.Registry().GetByCollectionName("products")
	require.NoError(t, err)
	require.NotNil(t, first)

	// preloading again must not clobber the registered definition
	srv.PreloadSchemas([]domain.SchemaDefinition{def})
	second, err := srv.Registry().GetByCollectionName("products")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}

func TestSchemasSurviveRestart(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "data.sdb")

	srv := server.NewServer()
	srv.PreloadSchemas([]domain.SchemaDefinition{{
		CollectionName: "products",
		Fields: []domain.FieldDefinition{
			{Name: "name", Type: domain.FieldTypeString, Required: true},
		},
	}})
	srv.SaveDB(dataFile)

	restarted := server.NewServer()
	restarted.InitDB(dataFile)

	def, err := restarted.Registry().GetByCollectionName("products")
	require.NoError(t, err)
	require.NotNil(t, def)
	require.Len(t, def.Fields, 1)
	assert.True(t, def.Fields[0].Required)
}

func TestRequestIDHeader(t *testing.T) {
	srv := server.NewServer()
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}
