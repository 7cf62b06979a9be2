package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"capirelay/internal/events/pipeline"
	"capirelay/internal/events/service"
	"capirelay/pkg/capi"
	apperrors "capirelay/pkg/errors"
	"capirelay/pkg/kafka"
	"capirelay/pkg/logger"
	"capirelay/pkg/model"

	"github.com/google/uuid"
)

// Delivery report statuses.
const (
	ReportForwarded     = "forwarded"
	ReportRejected      = "rejected"
	ReportUpstreamError = "upstream_error"
	ReportFailed        = "failed"

	EventTypeDeliveryReport = "capi.delivery_report"
	reportSchemaVersion     = "1"
	source                  = "capi-consumer"
)

var ErrEmptyEnvelope = errors.New("envelope has no event")

// Envelope is the Kafka ingress record. The transport fields stand in for
// what the HTTP layer reads from the connection and headers.
type Envelope struct {
	DestinationID string          `json:"destination_id"`
	ClientIP      string          `json:"client_ip,omitempty"`
	ForwardedFor  string          `json:"forwarded_for,omitempty"`
	UserAgent     string          `json:"user_agent,omitempty"`
	Event         *model.RawEvent `json:"event"`
}

type DeliveryReport struct {
	RequestID     string          `json:"request_id"`
	DestinationID string          `json:"destination_id"`
	EventName     string          `json:"event_name"`
	Status        string          `json:"status"`
	Error         string          `json:"error,omitempty"`
	MetaResponse  json.RawMessage `json:"meta_response,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type EventConsumer struct {
	service     service.EventService
	publisher   Publisher
	accessToken string
	log         *logger.Logger
}

// NewEventConsumer builds the ingress handler. publisher may be nil when no
// deliveries topic is configured.
func NewEventConsumer(svc service.EventService, publisher Publisher, accessToken string, log *logger.Logger) *EventConsumer {
	return &EventConsumer{
		service:     svc,
		publisher:   publisher,
		accessToken: accessToken,
		log:         log,
	}
}

// Handle processes one envelope. Malformed envelopes and upstream failures
// return an error so the message lands on the dead letter topic; rejected
// events are reported and committed.
func (c *EventConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var env Envelope
	if err := msg.DecodeValue(&env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.Event == nil {
		return ErrEmptyEnvelope
	}
	if env.DestinationID == "" {
		env.DestinationID = msg.Key
	}

	correlationID := msg.GetCorrelationID()
	if correlationID == "" {
		correlationID = uuid.New().String()
	}

	result, err := c.service.Process(ctx, service.ProcessRequest{
		Event:         env.Event,
		DestinationID: env.DestinationID,
		AccessToken:   c.accessToken,
		Transport: pipeline.Transport{
			RemoteAddr:   env.ClientIP,
			ForwardedFor: env.ForwardedFor,
			UserAgent:    env.UserAgent,
		},
		CorrelationID: correlationID,
	})

	report := DeliveryReport{
		RequestID:     correlationID,
		DestinationID: env.DestinationID,
		EventName:     env.Event.EventName,
	}

	var failure error
	if err != nil {
		report.Status, report.Error, report.MetaResponse = describeFailure(err)
		if report.Status != ReportRejected {
			failure = err
		}
	} else {
		report.Status = ReportForwarded
		report.MetaResponse = result.MetaResponse
	}

	c.publish(ctx, report)
	return failure
}

func (c *EventConsumer) publish(ctx context.Context, report DeliveryReport) {
	if c.publisher == nil {
		return
	}

	key := report.DestinationID
	if key == "" {
		key = report.RequestID
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(report).
		WithEventType(EventTypeDeliveryReport).
		WithCorrelationID(report.RequestID).
		WithSchemaVersion(reportSchemaVersion).
		WithSource(source).
		Build()

	if err := c.publisher.Publish(ctx, msg); err != nil {
		c.log.Error("Failed to publish delivery report",
			logger.RequestID, report.RequestID,
			"status", report.Status,
			"error", err,
		)
	}
}

func describeFailure(err error) (status, message string, metaResponse json.RawMessage) {
	appErr := apperrors.AsAppError(err)
	message = appErr.Message
	switch {
	case appErr.Code == apperrors.CodeUpstream:
		status = ReportUpstreamError
	case appErr.StatusCode() >= http.StatusInternalServerError:
		status = ReportFailed
	default:
		status = ReportRejected
	}

	var statusErr *capi.StatusError
	if errors.As(err, &statusErr) {
		metaResponse = upstreamBody(statusErr.Body)
	}
	return status, message, metaResponse
}

func upstreamBody(body string) json.RawMessage {
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	encoded, _ := json.Marshal(body)
	return encoded
}
