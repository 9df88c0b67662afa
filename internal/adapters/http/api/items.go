package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	repository "github.com/okian/shoplist/internal/adapters/repository"
	"github.com/okian/shoplist/internal/domain/model"
	"github.com/okian/shoplist/pkg/logger"
	"github.com/okian/shoplist/pkg/metrics"
)

// ItemsHandler serves the /items resource.
type ItemsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps Dependencies, l logger.Logger) *ItemsHandler {
	return &ItemsHandler{deps: deps, logger: l}
}

// HandleList handles GET /items.
func (h *ItemsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.List(r.Context())
	if err != nil {
		fail(h.logger, w, r, Wrap("list items", err))
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleCreate handles POST /items.
func (h *ItemsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeItemRequest(w, r)
	if err != nil {
		metrics.RecordValidationFailure()
		fail(h.logger, w, r, WrapKind("create item", ErrBadRequest, err))
		return
	}

	item, err := h.deps.Create(r.Context(), req.Name)
	if err != nil {
		fail(h.logger, w, r, Wrap("create item", err))
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdate handles PUT /items/{id}. The id is checked before the body.
func (h *ItemsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		fail(h.logger, w, r, WrapKind("update item", ErrNotFound, err))
		return
	}

	req, err := decodeItemRequest(w, r)
	if err != nil {
		metrics.RecordValidationFailure()
		fail(h.logger, w, r, WrapKind("update item "+id, ErrBadRequest, err))
		return
	}

	item, err := h.deps.Update(r.Context(), id, req.Name)
	if err != nil {
		fail(h.logger, w, r, Wrap("update item "+id, err))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// HandleDelete handles DELETE /items/{id} and returns the removed item.
func (h *ItemsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		fail(h.logger, w, r, WrapKind("delete item", ErrNotFound, err))
		return
	}

	item, err := h.deps.Delete(r.Context(), id)
	if err != nil {
		fail(h.logger, w, r, Wrap("delete item "+id, err))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// itemID returns the {id} path segment if it is a well-formed item id.
func itemID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", NewKind("item id", ErrNotFound)
	}
	if _, err := repository.ParseID(id); err != nil {
		return "", err
	}
	return id, nil
}
