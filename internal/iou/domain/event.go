package domain

import (
	engineDomain "github.com/allisson/iou/internal/engine/domain"
)

// EventType enumerates what happened to an IOU.
type EventType string

const (
	EventTypeIouComplete EventType = "IouComplete"
	EventTypePayment     EventType = "Payment"

	eventTypeName     = "/seed/Event"
	eventTypeEnumName = "/seed/EventType"
)

// Event is recorded on an IOU through the registerEvent action.
type Event struct {
	Type      EventType
	Amount    float64
	Remaining float64
}

// Value encodes the event as the struct argument of registerEvent.
func (e Event) Value() engineDomain.Value {
	return engineDomain.Struct(eventTypeName, map[string]engineDomain.Value{
		"type":      engineDomain.Enum(eventTypeEnumName, string(e.Type)),
		"amount":    engineDomain.Number(e.Amount),
		"remaining": engineDomain.Number(e.Remaining),
	})
}
