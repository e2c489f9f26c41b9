package app

import (
	"time"

	"craftlink/go-backend/internal/domains/conversation"
	"craftlink/go-backend/pkg/models"
)

// Stable conversation IDs for the demo roster. The IDs double as the
// counterparty contact IDs on payment transactions.
const (
	SeedJaneDoe   = "conv_jane_doe"
	SeedJohnSmith = "conv_john_smith"
)

const seedGreeting = "Hello! I saw your portfolio and I'm interested in hiring you for a web design project. Do you have availability in the next few weeks?"

const seedGreetingReply = "Hi! Thanks for reaching out. Yes, I have availability. Could you tell me a bit more about the project?"

const seedProspectPreview = "I was impressed by your portfolio and would like to discuss a project opportunity."

// seedDemo loads the demo roster. Jane Doe carries an ongoing exchange for
// either role; John Smith is the unread new inquiry shown to creators.
func (p *Panel) seedDemo() {
	now := p.now()

	greetingAt := now.Add(-45 * time.Minute)
	replyAt := now.Add(-42 * time.Minute)
	p.roster.Add(models.Contact{
		ID:             SeedJaneDoe,
		DisplayName:    "Jane Doe",
		LastPreview:    conversation.PreviewOf(seedGreetingReply),
		LastActivityAt: replyAt,
	})
	p.thread.SeedCounterparty(SeedJaneDoe, seedGreeting, greetingAt)
	p.thread.SeedOwn(SeedJaneDoe, seedGreetingReply, replyAt)

	if p.role.Role == models.RoleCreator {
		prospectAt := now.Add(-2 * time.Hour)
		p.roster.Add(models.Contact{
			ID:             SeedJohnSmith,
			DisplayName:    "John Smith",
			LastPreview:    conversation.PreviewOf(seedProspectPreview),
			LastActivityAt: prospectAt,
			Unread:         true,
		})
		p.thread.SeedCounterparty(SeedJohnSmith, seedProspectPreview, prospectAt)
	}
}
