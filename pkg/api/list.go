package api

import (
	"math"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/query"
)

// HandleList handles GET requests to list documents with the URL-parameter
// query grammar (filters, sort, fields, page, limit)
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	parsed, err := query.Translate(r.URL.Query())
	if err != nil {
		h.logger.Warnw("query translation failed", "collection", collName, "error", err)
		writeError(w, err)
		return
	}

	docs, total, err := h.store.List(collName, parsed)
	if err != nil {
		h.logger.Errorw("list failed", "collection", collName, "error", err)
		writeError(w, err)
		return
	}

	pagination := &Pagination{
		Page:  parsed.Page,
		Limit: parsed.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(parsed.Limit))),
	}
	h.logger.Infow("list", "collection", collName, "returned", len(docs), "total", total)
	writeList(w, docs, pagination)
}
