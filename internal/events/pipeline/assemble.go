package pipeline

import "capirelay/pkg/model"

// Assemble builds the one-event document the ingestion endpoint expects.
func Assemble(ev *model.RawEvent, sc SanitizedContext, hashed model.HashedIdentity) model.OutboundDocument {
	event := model.ServerEvent{
		EventName:      ev.EventName,
		EventTime:      ev.EventTime,
		ActionSource:   ev.ActionSource,
		EventSourceURL: ev.EventSourceURL,
		UserData: model.OutboundUserData{
			ClientIPAddress: sc.ClientIP,
			ClientUserAgent: sc.ClientUserAgent,
			FBC:             sc.FBC,
			FBP:             sc.FBP,
			HashedIdentity:  hashed,
		},
		CustomData: sc.CustomData,
	}

	return model.OutboundDocument{
		Data:          []model.ServerEvent{event},
		TestEventCode: ev.TestEventCode,
	}
}
