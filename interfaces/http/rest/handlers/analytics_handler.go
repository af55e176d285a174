package handlers

import (
	"net/http"
	"strconv"

	"audiolytics/application/ports"
	"audiolytics/pkg/common"
	pkgerrors "audiolytics/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultQueryLimit = 100

// AnalyticsHandler serves stored event timelines from the row store.
type AnalyticsHandler struct {
	repository ports.EventRepository
	logger     *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(repository ports.EventRepository, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		repository: repository,
		logger:     logger,
	}
}

// GetUserEvents handles GET /analytics/users/{userID}/events.
func (h *AnalyticsHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "user ID is required")
		return
	}

	records, err := h.repository.GetEventsByUser(r.Context(), userID, queryLimit(r))
	if err != nil {
		h.logger.Error("Failed to query user events",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		h.respondRepositoryError(w, err, "failed to query user events")
		return
	}

	common.RespondJSON(w, http.StatusOK, records)
}

// GetBookEvents handles GET /analytics/books/{bookID}/events.
func (h *AnalyticsHandler) GetBookEvents(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	if bookID == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "book ID is required")
		return
	}

	records, err := h.repository.GetEventsByBook(r.Context(), bookID, queryLimit(r))
	if err != nil {
		h.logger.Error("Failed to query book events",
			zap.String("book_id", bookID),
			zap.Error(err),
		)
		h.respondRepositoryError(w, err, "failed to query book events")
		return
	}

	common.RespondJSON(w, http.StatusOK, records)
}

// respondRepositoryError maps repository failures onto HTTP responses,
// preserving the error taxonomy the persistence layer reports.
func (h *AnalyticsHandler) respondRepositoryError(w http.ResponseWriter, err error, fallback string) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL", fallback)
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return defaultQueryLimit
}
