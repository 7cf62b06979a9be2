package pipeline

import (
	"strings"

	"capirelay/pkg/logger"
	"capirelay/pkg/model"
)

type Stage string

// Hashing and assembly cannot fail, so a run ends either at sanitize or done.
const (
	StageSanitize Stage = "sanitize"
	StageDone     Stage = "done"
)

type Input struct {
	Event         *model.RawEvent
	Transport     Transport
	CorrelationID string
}

type Result struct {
	Document    model.OutboundDocument
	Signals     RequestSignals
	Corrections []Correction
	Hashed      []string
}

// Pipeline turns a client event into an outbound document:
// sanitize, then hash, then assemble. A failed stage ends the run.
// It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	fields FieldValidator
	opts   HashOptions
	log    *logger.Logger
}

func New(fields FieldValidator, opts HashOptions, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fields: fields,
		opts:   opts,
		log:    log,
	}
}

// Run returns the stage it stopped at alongside the result. On error the stage
// is the one that failed and the result is nil.
func (p *Pipeline) Run(in Input) (*Result, Stage, error) {
	log := p.log.WithRequestID(in.CorrelationID)

	signals := ExtractSignals(in.Transport, in.Event.UserData.UserAgent)

	sanitized, err := Sanitize(p.fields, in.Event, signals, in.CorrelationID)
	if err != nil {
		log.Warn("Event rejected during sanitization",
			"event_name", in.Event.EventName,
			"error", err,
		)
		return nil, StageSanitize, err
	}
	for _, c := range sanitized.Corrections {
		log.Warn("Field corrected, removing from payload",
			"field", c.Field,
			"value", c.Value,
			"reason", c.Reason,
		)
	}

	hashed := HashIdentity(in.Event.UserData, p.opts)
	present := hashed.Present()
	log.Info("PII processed", "fields", piiSummary(present))

	doc := Assemble(in.Event, sanitized, hashed)

	return &Result{
		Document:    doc,
		Signals:     signals,
		Corrections: sanitized.Corrections,
		Hashed:      present,
	}, StageDone, nil
}

func piiSummary(keys []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":present"
	}
	return strings.Join(parts, ", ")
}
