package handler

import (
	"net/http"
	"strconv"

	"bistro/internal/media"
	"bistro/internal/model"
	"bistro/internal/service"

	"github.com/rs/zerolog"
)

const maxCSVBytes = 5 << 20

// MenuHandler serves the public menu and its dashboard management.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// Menu handles GET /api/menu.
func (h *MenuHandler) Menu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.ListMenu(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// Dish handles GET /api/menu/{slug}.
func (h *MenuHandler) Dish(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetDish(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListItems handles GET /api/dashboard/menu?category=&search=&available=.
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.MenuFilter{
		CategoryID: int64(queryInt(r, "category", 0)),
		Search:     q.Get("search"),
	}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, model.NewValidationError("available must be true or false"), h.logger)
			return
		}
		filter.Available = &available
	}

	listing, err := h.service.ListItems(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// GetItem handles GET /api/dashboard/menu/{id}.
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateItem handles POST /api/dashboard/menu.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var in model.MenuItemInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	item, err := h.service.CreateItem(r.Context(), &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/dashboard/menu/{id}.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var in model.MenuItemInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	item, err := h.service.UpdateItem(r.Context(), id, &in)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/dashboard/menu/{id}.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleAvailability handles POST /api/dashboard/menu/{id}/toggle.
func (h *MenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	item, err := h.service.ToggleAvailability(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// UploadImage handles POST /api/dashboard/menu/{id}/image as multipart field "image".
func (h *MenuHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+(1<<20))
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, r, model.NewValidationError("An image file is required"), h.logger)
		return
	}
	defer file.Close()

	item, err := h.service.UploadImage(r.Context(), id, file, header.Filename, header.Size)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// AddAddOn handles POST /api/dashboard/menu/{id}/addons.
func (h *MenuHandler) AddAddOn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	var req model.AddOnRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	addOn, err := h.service.AddAddOn(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, addOn)
}

// RemoveAddOn handles DELETE /api/dashboard/menu/{id}/addons/{addon}.
func (h *MenuHandler) RemoveAddOn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	addOnID, err := pathID(r, "addon")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.service.RemoveAddOn(r.Context(), id, addOnID); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /api/dashboard/categories.
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/dashboard/categories.
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	category, err := h.service.CreateCategory(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/dashboard/categories/{id}. An optional body names
// the category that receives the remaining items.
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.CategoryDelete
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	if err := h.service.DeleteCategory(r.Context(), id, req.ReassignTo); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTags handles GET /api/dashboard/tags.
func (h *MenuHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// ImportCSV handles POST /api/dashboard/menu/import as multipart field "file".
func (h *MenuHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, model.NewValidationError("A CSV file is required"), h.logger)
		return
	}
	defer file.Close()

	result, err := h.service.ImportCSV(r.Context(), file)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CSVTemplate handles GET /api/dashboard/menu/import/template.
func (h *MenuHandler) CSVTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="menu_import_template.csv"`)
	if err := h.service.WriteCSVTemplate(w); err != nil {
		h.logger.Error().Err(err).Msg("failed to write csv template")
	}
}
