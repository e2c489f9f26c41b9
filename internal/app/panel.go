package app

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"craftlink/go-backend/internal/config"
	"craftlink/go-backend/internal/domains/call"
	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/internal/domains/conversation"
	"craftlink/go-backend/internal/domains/payment"
	"craftlink/go-backend/internal/domains/review"
	"craftlink/go-backend/internal/domains/thread"
	"craftlink/go-backend/internal/platform/identgen"
	"craftlink/go-backend/internal/sched"
	"craftlink/go-backend/pkg/models"
)

// Timer kinds on the delay scheduler. Replies and the call ring phase are
// scoped to their conversation so switching away revokes them; settlement
// timers are scoped to their transaction and keep running regardless.
const (
	timerReply   = "reply"
	timerConnect = "connect"
	timerSettle  = "settle"
)

var ErrNotAuthenticated = errors.New("no authenticated user")

type PanelOptions struct {
	Config    config.Config
	Logger    *slog.Logger
	Clock     clock.Clock
	Identity  contracts.IdentityProvider
	Roles     contracts.RoleDirectory
	Navigator contracts.Navigator
	Hub       *NotificationHub
	Counters  *PanelCounters
	Ops       *OpMetricsState

	// Rand drives the reply delay jitter. Nil gets a time-seeded source.
	Rand *rand.Rand

	// SkipSeed leaves the roster empty instead of loading the demo
	// contacts.
	SkipSeed bool
}

// Panel is the conversation panel coordinator: one selected conversation,
// one call slot, one payment form, one review form. All state behind a
// single mutex; scheduled callbacks re-enter through the same lock.
type Panel struct {
	mu  sync.Mutex
	cfg config.Config
	log *slog.Logger
	rng *rand.Rand

	user models.Account
	role models.RoleView
	nav  contracts.Navigator

	hub      *NotificationHub
	counters *PanelCounters
	ops      *OpMetricsState
	timers   *sched.Scheduler

	roster   *conversation.Roster
	thread   *thread.Service
	call     *call.Session
	payments *payment.Service
	reviews  *review.Collector

	selected string
}

func NewPanel(opts PanelOptions) (*Panel, error) {
	if opts.Logger == nil {
		opts.Logger = DefaultLogger()
	}
	if opts.Hub == nil {
		opts.Hub = NewNotificationHub(opts.Config.NotificationBacklog)
	}
	if opts.Counters == nil {
		opts.Counters = NewPanelCounters(nil)
	}
	if opts.Ops == nil {
		opts.Ops = NewOpMetricsState()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	user, ok := opts.Identity.CurrentUser()
	if !ok {
		if opts.Navigator != nil {
			opts.Navigator.RedirectToLogin()
		}
		return nil, ErrNotAuthenticated
	}
	role, err := opts.Roles.ViewerRole(user.ID)
	if err != nil {
		return nil, err
	}
	view, err := models.ViewForRole(role)
	if err != nil {
		return nil, err
	}

	p := &Panel{
		cfg:      opts.Config,
		log:      opts.Logger,
		rng:      opts.Rand,
		user:     user,
		role:     view,
		nav:      opts.Navigator,
		hub:      opts.Hub,
		counters: opts.Counters,
		ops:      opts.Ops,
		timers:   sched.New(opts.Clock),
		roster:   conversation.NewRoster(),
		call:     call.NewSession(),
		reviews:  review.NewCollector(),
	}
	p.thread = thread.NewService(thread.Deps{
		Logs:          thread.NewLogState(),
		GenerateID:    identgen.NewID,
		Now:           p.now,
		ScheduleReply: p.scheduleReply,
		ComposeReply:  p.composeReply,
		Ingest:        p.ingest,
		Notify:        p.publish,
	})
	p.payments = payment.NewService(payment.Deps{
		GenerateID:         identgen.NewID,
		Now:                p.now,
		ScheduleSettlement: p.scheduleSettlement,
		OnSettled:          p.onSettled,
		Notify:             p.publish,
	})

	if !opts.SkipSeed {
		p.seedDemo()
	}
	return p, nil
}

func (p *Panel) now() time.Time {
	return p.timers.Clock().Now().UTC()
}

// Account returns the authenticated user the panel was opened for.
func (p *Panel) Account() models.Account {
	return p.user
}

// RoleView returns the viewer's role together with its presentation labels.
func (p *Panel) RoleView() models.RoleView {
	return p.role
}

// GoHome hands navigation back to the surrounding application.
func (p *Panel) GoHome() {
	if p.nav != nil {
		p.nav.RedirectHome()
	}
}

// Conversations lists the roster, most recent activity first, optionally
// filtered by a search term.
func (p *Panel) Conversations(searchTerm string) []models.Contact {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roster.List(searchTerm)
}

// Select makes a conversation the active one. Switching away revokes the
// previous conversation's pending reply and ring timers, tears down any call
// and discards an open review form; the new conversation's unread mark is
// cleared. Selecting an unknown ID changes nothing.
func (p *Panel) Select(conversationID string) ([]models.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.roster.Has(conversationID) {
		return nil, contracts.NotFound("unknown conversation %q", conversationID)
	}
	if p.selected != conversationID {
		if p.selected != "" {
			p.timers.CancelScope(p.selected)
			p.counters.SelectionSwitches.Inc()
		}
		p.call.Reset()
		p.reviews.Skip()
		p.payments.Cancel()
		p.selected = conversationID
	}
	p.roster.ClearUnread(conversationID)
	p.publish("notify.conversation.selected", map[string]any{
		"conversation_id": conversationID,
	})
	p.log.Info("conversation selected", "conversation_id", conversationID)
	return p.thread.History(conversationID), nil
}

// SelectedID returns the active conversation's ID, empty when none.
func (p *Panel) SelectedID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// History returns the active conversation's message log.
func (p *Panel) History() []models.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.thread.History(p.selected)
}

// SendMessage sends a message in the active conversation. The composer is
// suspended only while a call is connected; a ringing call still lets
// messages through.
func (p *Panel) SendMessage(body string) (models.Message, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.call.State() == models.CallConnected {
		return models.Message{}, false, contracts.InvalidState("composer is suspended during a call")
	}
	msg, sent, err := p.thread.Send(p.selected, body)
	if err != nil {
		return models.Message{}, false, err
	}
	if sent {
		p.counters.MessagesSent.Inc()
	}
	return msg, sent, nil
}

// StartCall rings the counterparty of the active conversation. The connect
// delay runs on the conversation's timer scope, so switching away while
// ringing abandons the call.
func (p *Panel) StartCall() (models.CallSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.selected == "" {
		return models.CallSession{}, contracts.NotFound("no conversation selected")
	}
	cs, err := p.call.Initiate(identgen.NewID("call"), p.selected)
	if err != nil {
		return cs, err
	}
	sessionID := cs.SessionID
	p.timers.Schedule(sched.Key(p.selected, timerConnect), p.cfg.ConnectDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		connected, err := p.call.Connect(sessionID, p.now())
		if err != nil {
			return
		}
		p.counters.CallsConnected.Inc()
		p.publish("notify.call.connected", connected)
	})
	p.publish("notify.call.ringing", cs)
	return cs, nil
}

// EndCall hangs up and opens the review form for the finished session.
func (p *Panel) EndCall() (models.CallSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cs, err := p.call.End(p.now())
	if err != nil {
		return cs, err
	}
	p.timers.Cancel(sched.Key(cs.ConversationID, timerConnect))
	if err := p.reviews.Begin(cs.SessionID); err != nil {
		return cs, err
	}
	p.publish("notify.call.ended", cs)
	return cs, nil
}

// CallSession returns the call slot as it stands.
func (p *Panel) CallSession() models.CallSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.call.Snapshot()
}

// OpenPaymentForm opens the payment form for the active conversation. When
// messageID names a message carrying a payment-request marker, the form is
// pre-filled from the marker; otherwise the platform defaults apply.
func (p *Panel) OpenPaymentForm(messageID string) (models.PaymentTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.selected == "" {
		return models.PaymentTransaction{}, contracts.NotFound("no conversation selected")
	}
	suggestedAmount, projectLabel := "", ""
	if messageID != "" {
		msg, ok := p.thread.Message(p.selected, messageID)
		if !ok {
			return models.PaymentTransaction{}, contracts.NotFound("unknown message %q", messageID)
		}
		req, ok := thread.DetectPaymentRequest(msg.Body)
		if !ok {
			return models.PaymentTransaction{}, contracts.InvalidInput("message carries no payment request")
		}
		suggestedAmount = req.SuggestedAmount
		projectLabel = req.ProjectLabel
	}

	payerID, payeeID := p.user.ID, p.selected
	if !p.role.PaysOut {
		payerID, payeeID = p.selected, p.user.ID
	}
	tx, err := p.payments.Open(p.selected, payerID, payeeID, suggestedAmount, projectLabel)
	if err != nil {
		return tx, err
	}
	p.publish("notify.payment.opened", map[string]any{
		"transaction_id":  tx.ID,
		"conversation_id": tx.ConversationID,
	})
	return tx, nil
}

// SubmitPayment finalizes the open payment form with the amount and, when
// edited, the project label the user entered, then starts the settlement
// window.
func (p *Panel) SubmitPayment(amount, projectLabel string) (models.PaymentTransaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payments.Submit(amount, projectLabel)
}

// CancelPayment discards the open payment form.
func (p *Panel) CancelPayment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payments.Cancel()
}

// PaymentDraft returns the open payment form, if any.
func (p *Panel) PaymentDraft() (models.PaymentTransaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payments.Draft()
}

// Transaction looks up a submitted payment by ID.
func (p *Panel) Transaction(transactionID string) (models.PaymentTransaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payments.Transaction(transactionID)
}

// RequestPayment sends the payment-request message creators use to invite a
// payment from the client side.
func (p *Panel) RequestPayment(amount, projectLabel string) (models.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.role.PaysOut {
		return models.Message{}, contracts.InvalidState("only the receiving side can request a payment")
	}
	if p.selected == "" {
		return models.Message{}, contracts.NotFound("no conversation selected")
	}
	if amount == "" {
		amount = payment.DefaultAmount
	}
	if projectLabel == "" {
		projectLabel = payment.DefaultProjectLabel
	}
	gross, err := payment.ParseAmount(amount)
	if err != nil {
		return models.Message{}, err
	}
	body := thread.BuildPaymentRequestBody(gross.String(), projectLabel)
	msg, _, err := p.thread.Send(p.selected, body)
	if err != nil {
		return models.Message{}, err
	}
	p.counters.MessagesSent.Inc()
	return msg, nil
}

// RateReview records the star rating on the open review form.
func (p *Panel) RateReview(rating int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reviews.SetRating(rating)
}

// CommentReview records the comment on the open review form.
func (p *Panel) CommentReview(comment string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reviews.SetComment(comment)
}

// SubmitReview finalizes the review and hands the pane back to the thread.
func (p *Panel) SubmitReview() (models.Review, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	rev, err := p.reviews.Submit(p.now())
	if err != nil {
		return rev, err
	}
	p.call.Reset()
	p.counters.ReviewsSubmitted.Inc()
	p.publish("notify.review.submitted", rev)
	return rev, nil
}

// SkipReview closes the review form without keeping anything.
func (p *Panel) SkipReview() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reviews.Skip()
	p.call.Reset()
	p.publish("notify.review.skipped", nil)
}

// PanelSnapshot is the pane state handed to the transport layer.
type PanelSnapshot struct {
	User        models.Account            `json:"user"`
	Role        models.RoleView           `json:"role"`
	SelectedID  string                    `json:"selected_id"`
	Pane        models.PanelView          `json:"pane"`
	Call        models.CallSession        `json:"call"`
	PaymentOpen bool                      `json:"payment_open"`
	Payment     models.PaymentTransaction `json:"payment,omitempty"`
	ReviewOpen  bool                      `json:"review_open"`
	Review      models.Review             `json:"review,omitempty"`
}

// View reports what the active pane currently shows. An active call owns the
// pane; after it ends the review form does, until submitted or skipped.
func (p *Panel) View() PanelSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := PanelSnapshot{
		User:       p.user,
		Role:       p.role,
		SelectedID: p.selected,
		Pane:       models.ViewThread,
		Call:       p.call.Snapshot(),
	}
	if draft, ok := p.payments.Draft(); ok {
		snap.PaymentOpen = true
		snap.Payment = draft
	}
	if form, ok := p.reviews.Open(); ok {
		snap.ReviewOpen = true
		snap.Review = form
	}
	switch {
	case p.call.Active():
		snap.Pane = models.ViewCall
	case snap.ReviewOpen:
		snap.Pane = models.ViewReview
	}
	return snap
}

// Metrics returns the operation metrics snapshot.
func (p *Panel) Metrics() models.MetricsSnapshot {
	return p.ops.Snapshot()
}

// Hub exposes the notification hub for transport subscriptions.
func (p *Panel) Hub() *NotificationHub {
	return p.hub
}

// Ops exposes the operation metrics recorder for the transport layer.
func (p *Panel) Ops() *OpMetricsState {
	return p.ops
}

func (p *Panel) publish(method string, payload any) {
	p.hub.Publish(method, payload)
}

// scheduleReply arms a simulated counterparty reply on the sending
// conversation's timer scope. Each triggering message gets its own key, so
// rapid sends stack their replies instead of replacing them, while a scope
// cancel on selection change still revokes them all. The callback re-enters
// through the panel lock.
func (p *Panel) scheduleReply(conversationID, replyID string, fn func()) {
	p.timers.Schedule(sched.Key(conversationID, timerReply+"/"+replyID), p.replyDelay(), func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		fn()
		p.counters.RepliesDelivered.Inc()
	})
}

func (p *Panel) scheduleSettlement(transactionID string, fn func()) {
	p.timers.Schedule(sched.Key(transactionID, timerSettle), p.cfg.SettleDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		fn()
	})
}

func (p *Panel) replyDelay() time.Duration {
	delay := p.cfg.ReplyDelay
	if jitter := p.cfg.ReplyJitter; jitter > 0 {
		delay += time.Duration(p.rng.Int63n(int64(2*jitter)+1)) - jitter
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

func (p *Panel) composeReply(conversationID, inbound string) string {
	return thread.ComposeReply(p.role.Role, inbound)
}

// ingest folds a new message into the roster. Counterparty messages landing
// outside the active conversation mark it unread.
func (p *Panel) ingest(conversationID, preview string, at time.Time, fromCounterparty bool) {
	markUnread := fromCounterparty && conversationID != p.selected
	p.roster.Ingest(conversationID, preview, at, markUnread)
}

// onSettled appends the settlement summary to the transaction's own
// conversation, wherever the panel has moved since.
func (p *Panel) onSettled(tx models.PaymentTransaction) {
	counterpartName := p.role.CounterpartTitle
	if contact, ok := p.roster.Get(tx.ConversationID); ok {
		counterpartName = contact.DisplayName
	}
	summary := payment.SettlementSummary(tx, p.role.PaysOut, counterpartName)
	p.thread.AppendSettlement(tx.ConversationID, summary)
	p.counters.PaymentsSettled.Inc()
	p.log.Info("payment settled",
		"transaction_id", tx.ID,
		"conversation_id", tx.ConversationID,
	)
}
