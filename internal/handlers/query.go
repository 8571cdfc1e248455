// Package handlers exposes the bunquery service over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"github.com/kartikbazzad/bunbase/bunquery"
	"github.com/kartikbazzad/bunbase/bunquery/internal/httperr"
)

// DocumentCollection is what a backend must offer beyond the query contract
// for the document endpoints.
type DocumentCollection interface {
	bunquery.Collection
	Insert(ctx context.Context, doc bunquery.Document) (uuid.UUID, error)
	Get(ctx context.Context, id string) (bunquery.Document, error)
}

// CollectionResolver resolves a collection name to its backend handle.
type CollectionResolver func(name string) DocumentCollection

// QueryHandler serves the query and document endpoints.
type QueryHandler struct {
	service *bunquery.Service
	resolve CollectionResolver
	schema  *gojsonschema.Schema
}

// NewQueryHandler builds a handler around the given service and backend.
func NewQueryHandler(service *bunquery.Service, resolve CollectionResolver) (*QueryHandler, error) {
	schema, err := compileQuerySchema()
	if err != nil {
		return nil, err
	}
	return &QueryHandler{service: service, resolve: resolve, schema: schema}, nil
}

// Query handles POST /v1/collections/:collection/query.
func (h *QueryHandler) Query(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := validateQueryBody(h.schema, body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req bunquery.Request
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	coll := h.resolve(c.Param("collection"))
	resp, err := h.service.FetchPage(c.Request.Context(), req, coll)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Insert handles POST /v1/collections/:collection/documents.
func (h *QueryHandler) Insert(c *gin.Context) {
	var doc bunquery.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document body must be a JSON object"})
		return
	}
	// Stored documents must stay queryable: reject operator-shaped keys the
	// same way filter values are rejected.
	if err := (bunquery.Validator{}).ValidateValue(doc); err != nil {
		respondError(c, err)
		return
	}

	coll := h.resolve(c.Param("collection"))
	id, err := coll.Insert(c.Request.Context(), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id.String()})
}

// Get handles GET /v1/collections/:collection/documents/:docID.
func (h *QueryHandler) Get(c *gin.Context) {
	coll := h.resolve(c.Param("collection"))
	doc, err := coll.Get(c.Request.Context(), c.Param("docID"))
	if err != nil {
		if errors.Is(err, bunquery.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bunquery.MapDocument(doc))
}

// Health handles GET /health.
func (h *QueryHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondError(c *gin.Context, err error) {
	appErr := httperr.FromError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Message})
}
