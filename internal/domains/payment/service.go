package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/pkg/models"
)

type Deps struct {
	GenerateID func(prefix string) string
	Now        func() time.Time

	// ScheduleSettlement keys the settlement timer to the transaction, so
	// a submitted payment settles even if the panel has moved to another
	// conversation in the meantime.
	ScheduleSettlement func(transactionID string, fn func())

	// OnSettled fires after a transaction reaches settled, carrying the
	// finalized record back to the coordinator.
	OnSettled func(tx models.PaymentTransaction)
	Notify    func(method string, payload any)
}

// Service tracks the single open payment draft plus every submitted
// transaction. Drafts are per-panel (at most one form is on screen);
// submitted transactions are keyed by ID and outlive the draft.
type Service struct {
	deps  Deps
	draft *models.PaymentTransaction
	txs   map[string]models.PaymentTransaction
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps, txs: make(map[string]models.PaymentTransaction)}
}

// Open starts a draft transaction for the conversation, pre-filled with the
// suggested amount and project label or the platform defaults. An existing
// draft is replaced.
func (s *Service) Open(conversationID, payerID, payeeID, suggestedAmount, projectLabel string) (models.PaymentTransaction, error) {
	if conversationID == "" {
		return models.PaymentTransaction{}, contracts.NotFound("no conversation selected")
	}
	if suggestedAmount == "" {
		suggestedAmount = DefaultAmount
	}
	if projectLabel == "" {
		projectLabel = DefaultProjectLabel
	}
	gross, err := ParseAmount(suggestedAmount)
	if err != nil {
		gross, _ = ParseAmount(DefaultAmount)
	}
	fee, net := SplitFee(gross)
	tx := models.PaymentTransaction{
		ID:             s.deps.GenerateID("tx"),
		ConversationID: conversationID,
		PayerID:        payerID,
		PayeeID:        payeeID,
		GrossAmount:    gross,
		FeeRate:        PlatformFeeRate,
		FeeAmount:      fee,
		NetAmount:      net,
		ProjectLabel:   projectLabel,
		Status:         models.PaymentDraft,
		CreatedAt:      s.deps.Now().UTC(),
	}
	s.draft = &tx
	return tx, nil
}

// Draft returns the open draft, if any.
func (s *Service) Draft() (models.PaymentTransaction, bool) {
	if s.draft == nil {
		return models.PaymentTransaction{}, false
	}
	return *s.draft, true
}

// Submit validates the form's final amount, moves the draft to processing
// and starts the settlement timer. Both fields may differ from the
// suggestions the form opened with; an empty projectLabel keeps the draft's
// label, and an invalid amount leaves the draft open for correction.
func (s *Service) Submit(amountRaw, projectLabel string) (models.PaymentTransaction, error) {
	if s.draft == nil {
		return models.PaymentTransaction{}, contracts.InvalidState("no payment form is open")
	}
	gross, err := ParseAmount(amountRaw)
	if err != nil {
		return models.PaymentTransaction{}, err
	}

	tx := *s.draft
	if projectLabel = strings.TrimSpace(projectLabel); projectLabel != "" {
		tx.ProjectLabel = projectLabel
	}
	tx.GrossAmount = gross
	tx.FeeAmount, tx.NetAmount = SplitFee(gross)
	tx.Status = models.PaymentProcessing
	s.draft = nil
	s.txs[tx.ID] = tx

	s.notify("notify.payment.processing", tx)
	txID := tx.ID
	s.deps.ScheduleSettlement(txID, func() {
		s.settle(txID)
	})
	return tx, nil
}

// Cancel discards the open draft. Cancelling with no form open is a no-op;
// submitted transactions are never cancelled here.
func (s *Service) Cancel() {
	s.draft = nil
}

// Transaction looks up a submitted transaction by ID.
func (s *Service) Transaction(transactionID string) (models.PaymentTransaction, bool) {
	tx, ok := s.txs[transactionID]
	return tx, ok
}

// Transactions returns every submitted transaction, unordered.
func (s *Service) Transactions() []models.PaymentTransaction {
	out := make([]models.PaymentTransaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	return out
}

// settle runs from the delay scheduler once the processing window elapses.
func (s *Service) settle(transactionID string) {
	tx, ok := s.txs[transactionID]
	if !ok || tx.Status != models.PaymentProcessing {
		return
	}
	tx.Status = models.PaymentSettled
	tx.SettledAt = s.deps.Now().UTC()
	s.txs[transactionID] = tx

	s.notify("notify.payment.settled", tx)
	if s.deps.OnSettled != nil {
		s.deps.OnSettled(tx)
	}
}

func (s *Service) notify(method string, tx models.PaymentTransaction) {
	if s.deps.Notify == nil {
		return
	}
	s.deps.Notify(method, map[string]any{
		"transaction_id":  tx.ID,
		"conversation_id": tx.ConversationID,
		"status":          tx.Status,
	})
}

// SettlementSummary renders the system message appended to the originating
// conversation once a transaction settles. Payers see what they paid; the
// receiving side sees what was credited after the platform fee.
func SettlementSummary(tx models.PaymentTransaction, paysOut bool, counterpartName string) string {
	if paysOut {
		return fmt.Sprintf("You paid %s %s MMK for %s. A %s%% platform fee (%s MMK) was included.",
			counterpartName,
			FormatAmount(tx.GrossAmount),
			tx.ProjectLabel,
			feePercent(tx.FeeRate),
			FormatAmount(tx.FeeAmount),
		)
	}
	return fmt.Sprintf("%s paid you %s MMK for %s. %s MMK was credited after the %s%% platform fee.",
		counterpartName,
		FormatAmount(tx.GrossAmount),
		tx.ProjectLabel,
		FormatAmount(tx.NetAmount),
		feePercent(tx.FeeRate),
	)
}

func feePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String()
}
