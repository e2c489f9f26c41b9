package app

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"craftlink/go-backend/internal/config"
	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/pkg/models"
)

type staticIdentity struct {
	account models.Account
	ok      bool
}

func (s staticIdentity) CurrentUser() (models.Account, bool) {
	return s.account, s.ok
}

type staticRoles struct {
	role models.Role
}

func (s staticRoles) ViewerRole(string) (models.Role, error) {
	return s.role, nil
}

type recordingNavigator struct {
	logins int
	homes  int
}

func (n *recordingNavigator) RedirectToLogin() { n.logins++ }
func (n *recordingNavigator) RedirectHome()    { n.homes++ }

func newTestPanel(t *testing.T, role models.Role) (*Panel, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	cfg := config.Default()
	cfg.ReplyJitter = 0

	p, err := NewPanel(PanelOptions{
		Config: cfg,
		Clock:  mock,
		Identity: staticIdentity{
			account: models.Account{ID: "user_1", DisplayName: "Alex"},
			ok:      true,
		},
		Roles: staticRoles{role: role},
		Rand:  rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("new panel: %v", err)
	}
	return p, mock
}

func TestUnauthenticatedUserIsRedirected(t *testing.T) {
	nav := &recordingNavigator{}
	_, err := NewPanel(PanelOptions{
		Config:    config.Default(),
		Identity:  staticIdentity{},
		Roles:     staticRoles{role: models.RoleClient},
		Navigator: nav,
	})
	if err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if nav.logins != 1 {
		t.Fatalf("login redirects: %d", nav.logins)
	}
}

func TestSeededRosterByRole(t *testing.T) {
	creator, _ := newTestPanel(t, models.RoleCreator)
	list := creator.Conversations("")
	if len(list) != 2 {
		t.Fatalf("creator roster size: %d", len(list))
	}
	if list[0].ID != SeedJaneDoe || list[1].ID != SeedJohnSmith {
		t.Fatalf("creator roster order: %s, %s", list[0].ID, list[1].ID)
	}
	if !list[1].Unread {
		t.Fatal("new inquiry not marked unread")
	}

	client, _ := newTestPanel(t, models.RoleClient)
	if got := client.Conversations(""); len(got) != 1 || got[0].ID != SeedJaneDoe {
		t.Fatalf("client roster: %+v", got)
	}
}

func TestSelectClearsUnreadAndReturnsHistory(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleCreator)

	history, err := p.Select(SeedJohnSmith)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(history) != 1 || history[0].Author != models.AuthorCounterparty {
		t.Fatalf("seeded history: %+v", history)
	}
	for _, c := range p.Conversations("") {
		if c.ID == SeedJohnSmith && c.Unread {
			t.Fatal("selection did not clear unread")
		}
	}
}

func TestSelectUnknownConversationMutatesNothing(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)

	if _, err := p.Select("conv_ghost"); !contracts.IsNotFound(err) {
		t.Fatalf("expected not-found class, got %v", err)
	}
	if p.SelectedID() != SeedJaneDoe {
		t.Fatalf("failed select moved the selection: %q", p.SelectedID())
	}
}

func TestSendAndScheduledReply(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	before := len(p.History())

	msg, sent, err := p.SendMessage("Can we talk tomorrow?")
	if err != nil || !sent {
		t.Fatalf("send: sent=%v err=%v", sent, err)
	}
	if !msg.Own {
		t.Fatalf("sent message not own: %+v", msg)
	}
	if got := len(p.History()); got != before+1 {
		t.Fatalf("history after send: %d", got)
	}

	mock.Add(time.Second)
	history := p.History()
	if got := len(history); got != before+2 {
		t.Fatalf("history after reply window: %d", got)
	}
	if last := history[len(history)-1]; last.Author != models.AuthorCounterparty {
		t.Fatalf("no counterparty reply: %+v", last)
	}
}

func TestSwitchingAwayRevokesPendingReply(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleCreator)
	p.Select(SeedJaneDoe)
	janeLen := len(p.History())
	p.SendMessage("One moment please")

	p.Select(SeedJohnSmith)
	johnLen := len(p.History())
	mock.Add(5 * time.Second)

	if got := len(p.History()); got != johnLen {
		t.Fatalf("reply leaked into the newly selected conversation: %d messages", got)
	}
	p.Select(SeedJaneDoe)
	if got := len(p.History()); got != janeLen+1 {
		t.Fatalf("revoked reply still landed: %d messages", got)
	}
}

func TestRapidSendsEachDrawReply(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleCreator)
	p.Select(SeedJaneDoe)
	before := len(p.History())

	p.SendMessage("First question")
	p.SendMessage("Second question")
	mock.Add(10 * time.Second)

	if got := len(p.History()); got != before+4 {
		t.Fatalf("history length after two sends and replies: got=%d want=%d", got, before+4)
	}
}

func TestCallLifecycleOwnsThePane(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)

	cs, err := p.StartCall()
	if err != nil {
		t.Fatalf("start call: %v", err)
	}
	if cs.State != models.CallRinging {
		t.Fatalf("state after start: %v", cs.State)
	}
	if view := p.View(); view.Pane != models.ViewCall {
		t.Fatalf("pane while ringing: %v", view.Pane)
	}
	if _, sent, err := p.SendMessage("still there?"); err != nil || !sent {
		t.Fatalf("composer blocked while ringing: sent=%v err=%v", sent, err)
	}

	mock.Add(1500 * time.Millisecond)
	if got := p.CallSession().State; got != models.CallConnected {
		t.Fatalf("state after connect delay: %v", got)
	}
	if _, _, err := p.SendMessage("hello?"); !contracts.IsInvalidState(err) {
		t.Fatalf("composer active during connected call: %v", err)
	}

	mock.Add(30 * time.Second)
	ended, err := p.EndCall()
	if err != nil {
		t.Fatalf("end call: %v", err)
	}
	if ended.State != models.CallEnded {
		t.Fatalf("state after end: %v", ended.State)
	}
	if view := p.View(); view.Pane != models.ViewReview {
		t.Fatalf("pane after call end: %v", view.Pane)
	}

	if err := p.RateReview(5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if err := p.CommentReview("Smooth call."); err != nil {
		t.Fatalf("comment: %v", err)
	}
	rev, err := p.SubmitReview()
	if err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if rev.SessionID != cs.SessionID || rev.Rating != 5 {
		t.Fatalf("unexpected review: %+v", rev)
	}
	if view := p.View(); view.Pane != models.ViewThread {
		t.Fatalf("pane after review: %v", view.Pane)
	}
}

func TestSwitchingAwayAbandonsRingingCall(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleCreator)
	p.Select(SeedJaneDoe)
	p.StartCall()

	p.Select(SeedJohnSmith)
	mock.Add(5 * time.Second)

	if got := p.CallSession().State; got != models.CallIdle {
		t.Fatalf("abandoned call connected anyway: %v", got)
	}
	if view := p.View(); view.Pane != models.ViewThread {
		t.Fatalf("pane after switch: %v", view.Pane)
	}
}

func TestOpenReviewGatesTheNextCall(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	p.StartCall()
	mock.Add(1500 * time.Millisecond)
	if _, err := p.EndCall(); err != nil {
		t.Fatalf("end call: %v", err)
	}

	if _, err := p.StartCall(); !contracts.IsInvalidState(err) {
		t.Fatalf("call started with the review still open: %v", err)
	}

	p.RateReview(5)
	if _, err := p.SubmitReview(); err != nil {
		t.Fatalf("submit review: %v", err)
	}
	if _, err := p.StartCall(); err != nil {
		t.Fatalf("call after review: %v", err)
	}
}

func TestEndCallWhileRingingRejected(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	p.StartCall()

	if _, err := p.EndCall(); !contracts.IsInvalidState(err) {
		t.Fatalf("ended a call that never connected: %v", err)
	}
	if got := p.CallSession().State; got != models.CallRinging {
		t.Fatalf("failed end changed the session: %v", got)
	}
}

func TestSkippedReviewLeavesNoRecord(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	p.StartCall()
	mock.Add(1500 * time.Millisecond)
	p.EndCall()

	p.RateReview(4)
	p.SkipReview()
	if view := p.View(); view.Pane != models.ViewThread || view.ReviewOpen {
		t.Fatalf("pane after skip: %+v", view)
	}
}

func TestPaymentSettlesIntoOriginatingConversation(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	janeLen := len(p.History())

	draft, err := p.OpenPaymentForm("")
	if err != nil {
		t.Fatalf("open form: %v", err)
	}
	if draft.PayerID != "user_1" || draft.PayeeID != SeedJaneDoe {
		t.Fatalf("client payment direction: %+v", draft)
	}

	tx, err := p.SubmitPayment("100", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tx.Status != models.PaymentProcessing {
		t.Fatalf("status after submit: %v", tx.Status)
	}

	mock.Add(1500 * time.Millisecond)
	settled, _ := p.Transaction(tx.ID)
	if settled.Status != models.PaymentSettled {
		t.Fatalf("transaction did not settle: %+v", settled)
	}

	history := p.History()
	if len(history) != janeLen+1 {
		t.Fatalf("history after settlement: %d", len(history))
	}
	summary := history[len(history)-1]
	if summary.Author != models.AuthorSystem {
		t.Fatalf("summary author: %v", summary.Author)
	}
	if !strings.Contains(summary.Body, "You paid Jane Doe 100.00 MMK") {
		t.Fatalf("summary body: %q", summary.Body)
	}
}

func TestSettlementSurvivesConversationSwitch(t *testing.T) {
	p, mock := newTestPanel(t, models.RoleCreator)
	p.Select(SeedJaneDoe)
	janeLen := len(p.History())

	p.OpenPaymentForm("")
	tx, err := p.SubmitPayment("200", "")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	p.Select(SeedJohnSmith)
	johnLen := len(p.History())
	mock.Add(1500 * time.Millisecond)

	settled, _ := p.Transaction(tx.ID)
	if settled.Status != models.PaymentSettled {
		t.Fatalf("switch cancelled the settlement: %+v", settled)
	}
	if got := len(p.History()); got != johnLen {
		t.Fatalf("summary leaked into the active conversation: %d messages", got)
	}
	p.Select(SeedJaneDoe)
	if got := len(p.History()); got != janeLen+1 {
		t.Fatalf("summary missing from originating conversation: %d messages", got)
	}
}

func TestPaymentRequestMarkerRoundTrip(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleCreator)
	p.Select(SeedJaneDoe)

	msg, err := p.RequestPayment("250", "Logo Design")
	if err != nil {
		t.Fatalf("request payment: %v", err)
	}

	draft, err := p.OpenPaymentForm(msg.ID)
	if err != nil {
		t.Fatalf("open from marker: %v", err)
	}
	if draft.GrossAmount.String() != "250" || draft.ProjectLabel != "Logo Design" {
		t.Fatalf("marker prefill: %+v", draft)
	}
	if draft.PayerID != SeedJaneDoe || draft.PayeeID != "user_1" {
		t.Fatalf("creator payment direction: %+v", draft)
	}
}

func TestRequestPaymentGuards(t *testing.T) {
	client, _ := newTestPanel(t, models.RoleClient)
	client.Select(SeedJaneDoe)
	if _, err := client.RequestPayment("100", ""); !contracts.IsInvalidState(err) {
		t.Fatalf("paying side requested a payment: %v", err)
	}

	creator, _ := newTestPanel(t, models.RoleCreator)
	creator.Select(SeedJaneDoe)
	if _, err := creator.RequestPayment("nonsense", ""); !contracts.IsInvalidInput(err) {
		t.Fatalf("bad amount accepted: %v", err)
	}
}

func TestOpenPaymentFormFromPlainMessage(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	msg, _, _ := p.SendMessage("just words")

	if _, err := p.OpenPaymentForm(msg.ID); !contracts.IsInvalidInput(err) {
		t.Fatalf("plain message opened the form: %v", err)
	}
	if _, err := p.OpenPaymentForm("msg_ghost"); !contracts.IsNotFound(err) {
		t.Fatalf("unknown message: %v", err)
	}
}

func TestNotificationHubReplaysBySequence(t *testing.T) {
	p, _ := newTestPanel(t, models.RoleClient)
	p.Select(SeedJaneDoe)
	p.SendMessage("first")

	replay, _, cancel := p.Hub().Subscribe(0)
	defer cancel()
	if len(replay) == 0 {
		t.Fatal("no events replayed")
	}
	var sawSend bool
	for _, ev := range replay {
		if ev.Method == "notify.message.new" {
			sawSend = true
		}
	}
	if !sawSend {
		t.Fatal("send event missing from replay")
	}
	for i := 1; i < len(replay); i++ {
		if replay[i].Seq <= replay[i-1].Seq {
			t.Fatalf("sequence not increasing: %d then %d", replay[i-1].Seq, replay[i].Seq)
		}
	}
}
