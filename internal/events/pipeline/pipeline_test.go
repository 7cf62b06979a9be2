package pipeline

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	eventerrors "capirelay/internal/events/errors"
	"capirelay/pkg/logger"
	"capirelay/pkg/model"
)

func newPipeline() *Pipeline {
	return New(newFields(), HashOptions{}, logger.Discard())
}

func decodeEvent(t *testing.T, body string) *model.RawEvent {
	t.Helper()
	var ev model.RawEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		t.Fatalf("bad event fixture: %v", err)
	}
	return &ev
}

func TestRun_EndToEndPurchase(t *testing.T) {
	ev := decodeEvent(t, `{
		"event_name": "Purchase",
		"event_time": 1703980800,
		"action_source": "website",
		"user_data": {"email": "A@B.com"},
		"custom_data": {"currency": "USD", "value": 99.99}
	}`)

	res, stage, err := newPipeline().Run(Input{
		Event:         ev,
		Transport:     Transport{RemoteAddr: "203.0.113.7", UserAgent: "curl/8.0"},
		CorrelationID: "req-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stage != StageDone {
		t.Errorf("expected stage %s, got %s", StageDone, stage)
	}

	out, err := json.Marshal(res.Document)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc struct {
		Data []struct {
			UserData   map[string]any `json:"user_data"`
			CustomData map[string]any `json:"custom_data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Data) != 1 {
		t.Fatalf("expected one event, got %d", len(doc.Data))
	}

	event := doc.Data[0]
	if event.CustomData["value"] != 99.99 {
		t.Errorf("expected value 99.99, got %v", event.CustomData["value"])
	}
	if event.UserData["em"] != digest("a@b.com") {
		t.Errorf("expected em digest of a@b.com, got %v", event.UserData["em"])
	}
	if _, ok := event.UserData["fbp"]; ok {
		t.Error("fbp must be absent")
	}
	if _, ok := event.UserData["fbc"]; ok {
		t.Error("fbc must be absent")
	}
	if event.UserData["client_ip_address"] != "203.0.113.7" {
		t.Errorf("unexpected client ip %v", event.UserData["client_ip_address"])
	}
	if event.UserData["client_user_agent"] != "curl/8.0" {
		t.Errorf("unexpected user agent %v", event.UserData["client_user_agent"])
	}
	if len(res.Hashed) != 1 || res.Hashed[0] != "em" {
		t.Errorf("expected only em to be hashed, got %v", res.Hashed)
	}
}

func TestRun_CurrencyRequiredStopsAtSanitize(t *testing.T) {
	ev := decodeEvent(t, `{"event_name":"Purchase","event_time":1,"action_source":"website","custom_data":{"value":10}}`)

	res, stage, err := newPipeline().Run(Input{Event: ev, CorrelationID: "req-9"})
	if !errors.Is(err, eventerrors.ErrCurrencyRequired) {
		t.Fatalf("expected CurrencyRequired, got %v", err)
	}
	if stage != StageSanitize {
		t.Errorf("expected failure at %s, got %s", StageSanitize, stage)
	}
	if res != nil {
		t.Error("expected no result on failure")
	}
}

func TestRun_CorrectionsReported(t *testing.T) {
	ev := decodeEvent(t, `{"event_name":"Lead","event_time":1,"action_source":"website","user_data":{"fbp":"not-a-cookie"}}`)

	res, _, err := newPipeline().Run(Input{
		Event:     ev,
		Transport: Transport{RemoteAddr: "999.999.999.999"},
	})
	if err != nil {
		t.Fatalf("corrections must not fail the pipeline: %v", err)
	}
	if len(res.Corrections) != 2 {
		t.Fatalf("expected 2 corrections, got %v", res.Corrections)
	}
	ud := res.Document.Data[0].UserData
	if ud.ClientIPAddress != "" || ud.FBP != "" {
		t.Errorf("expected corrected fields to be empty, got %+v", ud)
	}
}

func TestRun_ConcurrentInvocations(t *testing.T) {
	p := newPipeline()
	ev := decodeEvent(t, `{"event_name":"Purchase","event_time":1,"action_source":"website","user_data":{"email":"x@y.z"},"custom_data":{"currency":"EUR","value":"3"}}`)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _, err := p.Run(Input{Event: ev, Transport: Transport{RemoteAddr: "192.0.2.1"}})
			if err != nil {
				errs <- err
				return
			}
			if v, _ := res.Document.Data[0].CustomData.Get("value"); v != 3.0 {
				errs <- errors.New("unexpected coerced value")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if v, _ := ev.CustomData.Get("value"); v != json.Number("3") && v != "3" {
		t.Errorf("shared input must not be modified, got %v (%T)", v, v)
	}
}
