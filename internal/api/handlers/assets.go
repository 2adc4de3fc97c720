package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quarryfs/quarry/pkg/catalog"
	catalogerrors "github.com/quarryfs/quarry/pkg/catalog/errors"
)

// CatalogHandler serves read access to folders and assets.
type CatalogHandler struct {
	store catalog.Store
}

// NewCatalogHandler creates a catalog handler over the store.
func NewCatalogHandler(store catalog.Store) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// GetAsset returns one asset by id.
func (h *CatalogHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteBadRequest(w, "invalid asset id")
		return
	}

	asset, err := h.store.GetAsset(r.Context(), id)
	if err != nil {
		if catalogerrors.IsNotFound(err) {
			WriteNotFound(w, "asset not found")
			return
		}
		WriteInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse(asset))
}

// GetFolder returns one folder by id.
func (h *CatalogHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteBadRequest(w, "invalid folder id")
		return
	}

	folder, err := h.store.GetFolder(r.Context(), id)
	if err != nil {
		if catalogerrors.IsNotFound(err) {
			WriteNotFound(w, "folder not found")
			return
		}
		WriteInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse(folder))
}
