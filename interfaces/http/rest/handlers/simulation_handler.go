package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"audiolytics/application/services"
	"audiolytics/domain/core/entities"
	"audiolytics/pkg/common"
	pkgerrors "audiolytics/pkg/errors"

	"go.uber.org/zap"
)

// SimulationHandler exposes the event generator over HTTP: one-shot batch
// generation, an NDJSON stream, and the simulated population.
type SimulationHandler struct {
	service *services.SimulationService
	logger  *zap.Logger
}

// NewSimulationHandler creates a simulation handler.
func NewSimulationHandler(service *services.SimulationService, logger *zap.Logger) *SimulationHandler {
	return &SimulationHandler{
		service: service,
		logger:  logger,
	}
}

// GenerateEvents handles POST /simulations: generate a batch of events
// and return it as JSON.
func (h *SimulationHandler) GenerateEvents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with a count field")
		return
	}

	records, err := h.service.GenerateRecords(req.Count)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(records),
		"events": records,
	})
}

// StreamEvents handles GET /events/stream?count=N: generate events and
// write them as newline-delimited JSON, flushing per record so consumers
// see an incremental feed.
func (h *SimulationHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	count := 100
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "INVALID_REQUEST", "count must be an integer")
			return
		}
		count = parsed
	}

	records, err := h.service.GenerateRecords(count)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			h.logger.Warn("Client disconnected mid-stream", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// respondServiceError maps generator failures onto HTTP responses.
func (h *SimulationHandler) respondServiceError(w http.ResponseWriter, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondError(w, appErr.HTTPStatus, string(appErr.Type), appErr.Message)
		return
	}

	h.logger.Error("Simulation failed", zap.Error(err))
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "failed to generate events")
}

// PopulationHandler exposes the generator's user and book populations.
type PopulationHandler struct {
	users  []*entities.User
	books  []*entities.AudioBook
	logger *zap.Logger
}

// NewPopulationHandler creates a population handler.
func NewPopulationHandler(users []*entities.User, books []*entities.AudioBook, logger *zap.Logger) *PopulationHandler {
	return &PopulationHandler{
		users:  users,
		books:  books,
		logger: logger,
	}
}

// ListUsers handles GET /users.
func (h *PopulationHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]interface{}, 0, len(h.users))
	for _, user := range h.users {
		out = append(out, map[string]interface{}{
			"user_id":     user.ID(),
			"preferences": user.Preferences(),
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// ListBooks handles GET /books.
func (h *PopulationHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	out := make([]map[string]interface{}, 0, len(h.books))
	for _, book := range h.books {
		out = append(out, map[string]interface{}{
			"book_id":  book.ID(),
			"title":    book.Title(),
			"author":   book.Author(),
			"duration": book.Duration(),
			"chapters": book.Chapters(),
			"genre":    book.Genre(),
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}
