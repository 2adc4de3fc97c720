package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/field"
)

// FieldHandler serves upload and target-resolution requests for the
// configured asset fields.
type FieldHandler struct {
	registry *field.Registry
}

// NewFieldHandler creates a field handler over the registry.
func NewFieldHandler(registry *field.Registry) *FieldHandler {
	return &FieldHandler{registry: registry}
}

// fieldInfo is the public view of a configured field.
type fieldInfo struct {
	ID              int64    `json:"id"`
	Handle          string   `json:"handle"`
	UseSingleFolder bool     `json:"use_single_folder"`
	RestrictFiles   bool     `json:"restrict_files"`
	AllowedKinds    []string `json:"allowed_kinds,omitempty"`
}

// List returns the configured fields.
func (h *FieldHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := make([]fieldInfo, 0, h.registry.Len())
	for _, handle := range h.registry.Handles() {
		f, _ := h.registry.Lookup(handle)
		infos = append(infos, fieldInfo{
			ID:              f.ID,
			Handle:          f.Handle,
			UseSingleFolder: f.Config.UseSingleFolder,
			RestrictFiles:   f.Config.RestrictFiles,
			AllowedKinds:    f.Config.AllowedKinds,
		})
	}
	writeJSON(w, http.StatusOK, okResponse(infos))
}

// uploadRequest is the JSON body for inline uploads. Multipart requests
// carry the same data as form values plus file parts.
type uploadRequest struct {
	// ElementID is empty for elements that have not been saved yet.
	ElementID string `json:"element_id"`

	// Actor identifies the uploading user; required when ElementID is
	// empty and the field routes through a scratch folder.
	Actor string `json:"actor"`

	// Context supplies values for subpath template tokens.
	Context map[string]any `json:"context"`

	// AssetIDs is the element's current selection.
	AssetIDs []string `json:"asset_ids"`

	// InlineData holds base64 data URIs; Filenames supplies optional
	// per-entry filename hints by position.
	InlineData []string `json:"inline_data"`
	Filenames  []string `json:"filenames"`
}

// uploadResponse reports the outcome of an upload request.
type uploadResponse struct {
	ElementID string   `json:"element_id,omitempty"`
	AssetIDs  []string `json:"asset_ids"`
	Rejected  []string `json:"rejected,omitempty"`
	Messages  []string `json:"messages,omitempty"`
}

// Upload ingests files posted for a field.
//
// Accepts either application/json (inline data URIs) or
// multipart/form-data (file parts plus element_id/actor/context form
// values). Any rejected file suppresses ingestion for the whole
// request and yields 422 with per-file messages.
func (h *FieldHandler) Upload(w http.ResponseWriter, r *http.Request) {
	f, ok := h.registry.Lookup(chi.URLParam(r, "handle"))
	if !ok {
		WriteNotFound(w, "unknown field")
		return
	}

	req, posted, cleanup, err := parseUploadRequest(r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	element, err := newAPIElement(req)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	rejected, err := f.BeforeSave(ctx, element, req.Actor, posted)
	if err != nil {
		logger.Error("Upload ingestion failed",
			logger.Field(f.Handle),
			logger.Err(err),
		)
		// Assets persisted before the failure stay selected
		writeJSON(w, http.StatusInternalServerError, Response{
			Status: "error",
			Data:   uploadResult(element, rejected, nil),
			Error:  "some files could not be ingested",
		})
		return
	}

	if len(rejected) > 0 {
		messages, verr := f.Validate(ctx, element, rejected)
		if verr != nil {
			WriteInternalError(w, verr.Error())
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, Response{
			Status: "error",
			Data:   uploadResult(element, rejected, messages),
			Error:  "rejected files",
		})
		return
	}

	// Persisted elements settle immediately; uploads for unsaved
	// elements stay parked until the element is saved.
	if !field.IsNew(element) {
		if err := f.AfterSave(ctx, element); err != nil {
			logger.Error("Asset relocation failed",
				logger.Field(f.Handle),
				logger.Err(err),
			)
			WriteInternalError(w, "failed to relocate assets")
			return
		}
	}

	writeJSON(w, http.StatusCreated, okResponse(uploadResult(element, nil, nil)))
}

// Target resolves and returns the folder uploads for this field and
// element would currently land in.
func (h *FieldHandler) Target(w http.ResponseWriter, r *http.Request) {
	f, ok := h.registry.Lookup(chi.URLParam(r, "handle"))
	if !ok {
		WriteNotFound(w, "unknown field")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid JSON body")
		return
	}

	element, err := newAPIElement(&req)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	folder, err := f.ResolveUploadFolder(r.Context(), element, req.Actor)
	if err != nil {
		if field.IsInvalidSubpath(err) || field.IsVolumeNotFound(err) {
			WriteUnprocessable(w, err.Error())
			return
		}
		WriteInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse(folder))
}

// uploadResult builds the response payload from the element's state
// after BeforeSave wrote back the id union.
func uploadResult(element *apiElement, rejected, messages []string) uploadResponse {
	ids := element.AssetIDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return uploadResponse{
		ElementID: element.ID(),
		AssetIDs:  out,
		Rejected:  rejected,
		Messages:  messages,
	}
}

// parseUploadRequest decodes the request body into the upload request
// plus the field-level posted value. For multipart requests the file
// parts are spooled to temp files; cleanup removes any that were not
// consumed by ingestion.
func parseUploadRequest(r *http.Request) (*uploadRequest, field.PostedValue, func(), error) {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, field.PostedValue{}, nil, fmt.Errorf("invalid content type: %w", err)
	}

	if contentType == "multipart/form-data" {
		return parseMultipartUpload(r)
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, field.PostedValue{}, nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	posted := field.PostedValue{
		InlineData: req.InlineData,
		Filenames:  req.Filenames,
	}
	return &req, posted, nil, nil
}

// parseMultipartUpload spools the "files" parts to temp files and
// collects the form values.
func parseMultipartUpload(r *http.Request) (*uploadRequest, field.PostedValue, func(), error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, field.PostedValue{}, nil, fmt.Errorf("invalid multipart body: %w", err)
	}

	req := &uploadRequest{
		ElementID: r.FormValue("element_id"),
		Actor:     r.FormValue("actor"),
	}
	if raw := r.FormValue("context"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Context); err != nil {
			return nil, field.PostedValue{}, nil, fmt.Errorf("invalid context JSON: %w", err)
		}
	}
	if raw := r.FormValue("asset_ids"); raw != "" {
		req.AssetIDs = strings.Split(raw, ",")
	}

	var posted field.PostedValue
	var tempPaths []string
	cleanup := func() {
		for _, p := range tempPaths {
			// Consumed uploads were already moved by the stager
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove upload temp file", logger.Path(p), logger.Err(err))
			}
		}
	}

	for _, header := range r.MultipartForm.File["files"] {
		part, err := header.Open()
		if err != nil {
			return req, posted, cleanup, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
		}

		temp, err := os.CreateTemp("", "quarry-upload-*")
		if err != nil {
			part.Close()
			return req, posted, cleanup, fmt.Errorf("failed to spool upload: %w", err)
		}
		tempPaths = append(tempPaths, temp.Name())

		_, copyErr := io.Copy(temp, part)
		part.Close()
		temp.Close()
		if copyErr != nil {
			return req, posted, cleanup, fmt.Errorf("failed to spool upload %q: %w", header.Filename, copyErr)
		}

		posted.Uploads = append(posted.Uploads, field.Upload{
			Filename: header.Filename,
			TempPath: temp.Name(),
		})
	}

	return req, posted, cleanup, nil
}

// apiElement is the request-scoped element view the field pipeline
// operates on.
type apiElement struct {
	id      string
	context map[string]any
	assets  []uuid.UUID
}

var _ field.Element = (*apiElement)(nil)

func newAPIElement(req *uploadRequest) (*apiElement, error) {
	assets := make([]uuid.UUID, 0, len(req.AssetIDs))
	for _, raw := range req.AssetIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid asset id %q", raw)
		}
		assets = append(assets, id)
	}
	return &apiElement{
		id:      req.ElementID,
		context: req.Context,
		assets:  assets,
	}, nil
}

func (e *apiElement) ID() string                    { return e.id }
func (e *apiElement) RenderContext() map[string]any { return e.context }
func (e *apiElement) AssetIDs() []uuid.UUID         { return e.assets }
func (e *apiElement) SetAssetIDs(ids []uuid.UUID)   { e.assets = ids }
