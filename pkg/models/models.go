package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarRef   string `json:"avatar_ref,omitempty"`
}

type Contact struct {
	ID             string    `json:"id"`
	DisplayName    string    `json:"display_name"`
	AvatarRef      string    `json:"avatar_ref,omitempty"`
	LastPreview    string    `json:"last_preview"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Unread         bool      `json:"unread"`
}

type MessageAuthor string

const (
	AuthorSelf         MessageAuthor = "self"
	AuthorCounterparty MessageAuthor = "counterparty"
	AuthorSystem       MessageAuthor = "system"
)

type Message struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Author         MessageAuthor `json:"author"`
	Body           string        `json:"body"`
	SentAt         time.Time     `json:"sent_at"`
	Own            bool          `json:"own"`
}

type CallState string

const (
	CallIdle      CallState = "idle"
	CallRinging   CallState = "ringing"
	CallConnected CallState = "connected"
	CallEnded     CallState = "ended"
)

type CallSession struct {
	SessionID      string    `json:"session_id"`
	ConversationID string    `json:"conversation_id"`
	State          CallState `json:"state"`
	StartedAt      time.Time `json:"started_at,omitempty"`
	EndedAt        time.Time `json:"ended_at,omitempty"`
}

type PaymentStatus string

const (
	PaymentDraft      PaymentStatus = "draft"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSettled    PaymentStatus = "settled"
)

type PaymentTransaction struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	PayerID        string          `json:"payer_id"`
	PayeeID        string          `json:"payee_id"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	FeeRate        decimal.Decimal `json:"fee_rate"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	ProjectLabel   string          `json:"project_label"`
	Status         PaymentStatus   `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	SettledAt      time.Time       `json:"settled_at,omitempty"`
}

type Review struct {
	SessionID   string    `json:"session_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type OperationMetric struct {
	Count         int   `json:"count"`
	Errors        int   `json:"errors"`
	AvgLatencyMs  int64 `json:"avg_latency_ms"`
	MaxLatencyMs  int64 `json:"max_latency_ms"`
	LastLatencyMs int64 `json:"last_latency_ms"`
}

type MetricsSnapshot struct {
	ErrorCounters map[string]int             `json:"error_counters"`
	Operations    map[string]OperationMetric `json:"operations"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}

// PanelView is what the active conversation pane currently shows. While a
// call is connected the thread is replaced by the call surface, and an ended
// call hands the pane to the review form until it is submitted or skipped.
type PanelView string

const (
	ViewThread PanelView = "thread"
	ViewCall   PanelView = "call"
	ViewReview PanelView = "review"
)
