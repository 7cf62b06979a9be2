package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"capirelay/internal/events/pipeline"
	"capirelay/internal/events/service"
	apperrors "capirelay/pkg/errors"
	httputil "capirelay/pkg/http"
	"capirelay/pkg/logger"
	"capirelay/pkg/middleware"
	"capirelay/pkg/model"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const (
	HeaderPixelID     = "X-Meta-Pixel-Id"
	HeaderAccessToken = "X-Meta-Access-Token"

	ProcessEventPath = "/v1/process-event"
)

type EventHandler struct {
	service service.EventService
	log     *logger.Logger
}

func NewEventHandler(service service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(ProcessEventPath, h.Process)
}

func (h *EventHandler) Process(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := middleware.RequestIDFromContext(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	pixelID, err := httputil.RequiredHeader(r, HeaderPixelID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	accessToken, err := httputil.RequiredHeader(r, HeaderAccessToken)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var event model.RawEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, apperrors.PayloadTooLarge(maxErr.Limit))
			return
		}
		h.log.Warn("Invalid request body", "request_id", requestID, "error", err)
		h.writeError(w, apperrors.InvalidInput("Invalid request body").WithDetail("request_id", requestID))
		return
	}

	result, err := h.service.Process(r.Context(), service.ProcessRequest{
		Event:         &event,
		DestinationID: pixelID,
		AccessToken:   accessToken,
		Transport: pipeline.Transport{
			RemoteAddr:   httputil.RemoteHost(r),
			ForwardedFor: r.Header.Get(httputil.HeaderForwardedFor),
			UserAgent:    r.Header.Get(httputil.HeaderUserAgent),
		},
		CorrelationID: requestID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, result); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Process", "operation", "WriteJSON", "error", err)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := apperrors.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Process", "operation", "WriteError", "error", writeErr)
	}
}
