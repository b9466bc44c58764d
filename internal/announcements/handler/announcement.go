package handler

import (
	"encoding/json"
	"net/http"

	"parkease/internal/announcements/service"
	apperrors "parkease/pkg/errors"
	httputil "parkease/pkg/http"
	"parkease/pkg/logger"
	"parkease/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AnnouncementHandler struct {
	service service.AnnouncementService
	log     *logger.Logger
}

func NewAnnouncementHandler(service service.AnnouncementService, log *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		log:     log,
	}
}

func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var announcement model.Announcement
	if err := json.NewDecoder(r.Body).Decode(&announcement); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), &announcement)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AnnouncementHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	announcement, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, announcement); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", apperrors.InvalidInput(err.Error()))
		return
	}

	sortAsc := r.URL.Query().Get("sort") == "asc"

	announcements, total, err := h.service.GetAll(r.Context(), limit, offset, sortAsc)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, announcements, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *AnnouncementHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	announcements, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, announcements); err != nil {
		h.log.Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AnnouncementUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	announcement, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, announcement); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AnnouncementHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AnnouncementHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/announcements", h.Create)
	router.GET("/api/v1/announcements", h.GetAll)
	router.GET("/api/v1/announcements/search", h.Search)
	router.GET("/api/v1/announcements/id/:id", h.GetByID)
	router.PUT("/api/v1/announcements/id/:id", h.Update)
	router.DELETE("/api/v1/announcements/id/:id", h.Delete)
}
