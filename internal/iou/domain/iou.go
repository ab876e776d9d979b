// Package domain defines the IOU protocol as seen by the facade: its prototype,
// actions, notifications and the details returned to callers.
package domain

import (
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/allisson/iou/internal/auth/domain"
	engineDomain "github.com/allisson/iou/internal/engine/domain"
)

const (
	PrototypeID = "/seed/Iou"

	ActionGetAmountOwed = "getAmountOwed"
	ActionPay           = "pay"
	ActionForgive       = "forgive"
	ActionRegisterEvent = "registerEvent"

	NotificationIouComplete = "/seed/IouComplete"
	NotificationPayment     = "/seed/Payment"

	IssuerParty = "issuer"
	PayeeParty  = "payee"

	forAmountField = "forAmount"
)

// IouDetails describes one IOU protocol instance.
type IouDetails struct {
	ID     uuid.UUID `json:"id"`
	Payee  string    `json:"payee"`
	Issuer string    `json:"issuer"`
	Amount float64   `json:"amount"`
}

// DetailsFromState reads IouDetails out of an IOU protocol state.
func DetailsFromState(state *engineDomain.ProtocolState) (*IouDetails, error) {
	payee, err := partyUsername(state, PayeeParty)
	if err != nil {
		return nil, err
	}
	issuer, err := partyUsername(state, IssuerParty)
	if err != nil {
		return nil, err
	}

	field, ok := state.Fields[forAmountField]
	if !ok {
		return nil, fmt.Errorf("iou %s: no field %q", state.ID, forAmountField)
	}
	amount, err := field.AsNumber()
	if err != nil {
		return nil, fmt.Errorf("iou %s: %w", state.ID, err)
	}

	return &IouDetails{
		ID:     state.ID,
		Payee:  payee,
		Issuer: issuer,
		Amount: amount,
	}, nil
}

func partyUsername(state *engineDomain.ProtocolState, name string) (string, error) {
	party, ok := state.Parties[name]
	if !ok {
		return "", fmt.Errorf("iou %s: no party %q", state.ID, name)
	}
	username, ok := authDomain.PartyFromEngine(party).Username()
	if !ok {
		return "", fmt.Errorf("iou %s: party %q has no single %s", state.ID, name, authDomain.UsernameClaim)
	}
	return username, nil
}
