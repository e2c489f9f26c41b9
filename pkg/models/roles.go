package models

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleClient  Role = "client"
	RoleCreator Role = "creator"
)

var ErrUnknownRole = errors.New("unknown viewer role")

func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleClient:
		return RoleClient, nil
	case RoleCreator:
		return RoleCreator, nil
	default:
		return "", ErrUnknownRole
	}
}

// RoleView carries the per-role wording and capabilities for the shared
// thread/call/payment surfaces. Clients pay out to creators; creators compose
// payment requests that the client side can activate.
type RoleView struct {
	Role               Role   `json:"role"`
	CounterpartTitle   string `json:"counterpart_title"`
	PaymentActionLabel string `json:"payment_action_label"`
	PaysOut            bool   `json:"pays_out"`
}

var roleViews = map[Role]RoleView{
	RoleClient: {
		Role:               RoleClient,
		CounterpartTitle:   "Creator",
		PaymentActionLabel: "Pay",
		PaysOut:            true,
	},
	RoleCreator: {
		Role:               RoleCreator,
		CounterpartTitle:   "Client",
		PaymentActionLabel: "Request Payment",
		PaysOut:            false,
	},
}

func ViewForRole(role Role) (RoleView, error) {
	view, ok := roleViews[role]
	if !ok {
		return RoleView{}, ErrUnknownRole
	}
	return view, nil
}
