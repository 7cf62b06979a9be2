package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	eventerrors "capirelay/internal/events/errors"
	"capirelay/internal/events/pipeline"
	"capirelay/internal/events/validator"
	"capirelay/pkg/capi"
	apperrors "capirelay/pkg/errors"
	"capirelay/pkg/logger"
	"capirelay/pkg/metrics"
	"capirelay/pkg/model"
)

const (
	StatusSuccess = "success"

	successMessage  = "Event processed and sent to the Conversions API successfully"
	upstreamMessage = "Failed to send event to the Conversions API"
)

type ProcessRequest struct {
	Event         *model.RawEvent
	DestinationID string
	AccessToken   string
	Transport     pipeline.Transport
	CorrelationID string
}

type ProcessResult struct {
	RequestID    string          `json:"request_id"`
	Status       string          `json:"status"`
	Message      string          `json:"message"`
	MetaResponse json.RawMessage `json:"meta_response"`
}

type EventService interface {
	// Process normalizes one event and forwards it exactly once. Returned errors are *apperrors.AppError.
	Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error)
}

type eventService struct {
	validator *validator.EventValidator
	pipeline  *pipeline.Pipeline
	forwarder capi.Forwarder
	log       *logger.Logger
}

type Options struct {
	NormalizePhone bool
}

func NewEventService(
	validator *validator.EventValidator,
	forwarder capi.Forwarder,
	opts Options,
	log *logger.Logger,
) EventService {
	return &eventService{
		validator: validator,
		pipeline:  pipeline.New(validator, pipeline.HashOptions{NormalizePhone: opts.NormalizePhone}, log),
		forwarder: forwarder,
		log:       log,
	}
}

func (s *eventService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	log := s.log.WithRequestID(req.CorrelationID)

	if err := s.checkRequest(req); err != nil {
		metrics.RecordOutcome(metrics.OutcomeInvalid)
		return nil, err
	}

	log.Info("Processing event",
		"event_name", req.Event.EventName,
		"destination_id", req.DestinationID,
	)

	if err := s.validator.Validate(req.Event); err != nil {
		log.Warn("Event validation failed", "error", err)
		metrics.RecordOutcome(metrics.OutcomeInvalid)
		return nil, apperrors.Validation("Event validation failed", map[string]any{
			"request_id": req.CorrelationID,
			"errors":     err,
		})
	}

	result, _, err := s.pipeline.Run(pipeline.Input{
		Event:         req.Event,
		Transport:     req.Transport,
		CorrelationID: req.CorrelationID,
	})
	if err != nil {
		metrics.RecordOutcome(metrics.OutcomeRejected)
		return nil, mapPipelineError(err, req.CorrelationID)
	}
	for _, c := range result.Corrections {
		metrics.RecordCorrection(c.Field)
	}

	start := time.Now()
	resp, err := s.forwarder.Send(ctx, req.DestinationID, req.AccessToken, result.Document)
	metrics.ObserveForward(start)
	if err != nil {
		log.Error("Forwarding to the Conversions API failed",
			"destination_id", req.DestinationID,
			"error", err,
		)
		metrics.RecordOutcome(metrics.OutcomeUpstreamError)
		return nil, mapUpstreamError(err, req.CorrelationID)
	}

	log.Info("Event sent to the Conversions API",
		"event_name", req.Event.EventName,
		"upstream_status", resp.StatusCode,
	)
	metrics.RecordOutcome(metrics.OutcomeForwarded)

	return &ProcessResult{
		RequestID:    req.CorrelationID,
		Status:       StatusSuccess,
		Message:      successMessage,
		MetaResponse: resp.Body,
	}, nil
}

func (s *eventService) checkRequest(req ProcessRequest) error {
	if req.Event == nil {
		return apperrors.InvalidInput("Event payload is required")
	}
	if req.DestinationID == "" {
		return apperrors.Wrap(eventerrors.ErrMissingDestination, apperrors.CodeInvalidInput,
			"Destination (pixel) ID is required", http.StatusBadRequest)
	}
	if req.AccessToken == "" {
		return apperrors.Wrap(eventerrors.ErrMissingCredential, apperrors.CodeInvalidInput,
			"Access token is required", http.StatusBadRequest)
	}
	return nil
}

func mapPipelineError(err error, correlationID string) error {
	var vErr *eventerrors.ValidationError
	if errors.As(err, &vErr) {
		appErr := apperrors.Validation(vErr.Message(), map[string]any{
			"request_id": correlationID,
			"field":      vErr.Field,
		})
		appErr.Err = err
		return appErr
	}
	return apperrors.Internal("Event processing failed", err)
}

func mapUpstreamError(err error, correlationID string) error {
	appErr := apperrors.Upstream(upstreamMessage, err).
		WithDetail("request_id", correlationID).
		WithDetail("error", err.Error())

	var statusErr *capi.StatusError
	if errors.As(err, &statusErr) {
		appErr.WithDetail("upstream_status", statusErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		appErr.WithDetail("timeout", true)
	}
	return appErr
}
