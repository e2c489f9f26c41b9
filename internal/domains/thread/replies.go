package thread

import (
	"strings"

	"craftlink/go-backend/pkg/models"
)

// Canned counterparty replies for the simulated delivery channel. The
// keyword table mirrors the platform's support responder; anything that does
// not match falls back to the generic interested-in-the-project reply.

const DefaultReply = "Thanks for your response! I'm interested in discussing this project further."

const SettlementAck = "Thank you! The payment just came through on my end."

func ComposeReply(role models.Role, inbound string) string {
	lower := strings.ToLower(inbound)

	if strings.Contains(lower, "help") || strings.Contains(lower, "how") {
		if role == models.RoleCreator {
			return "As a creator, you can check our guide on how to showcase your portfolio and set your rates. Is there anything specific you'd like help with?"
		}
		return "As a client, you can browse creators, post jobs, and communicate through our messaging system. What would you like to know more about?"
	}
	if strings.Contains(lower, "payment") || strings.Contains(lower, "pricing") {
		return "Our payment system is secure and supports multiple currencies including MMK. All transactions have a 5% platform fee. Would you like more details?"
	}
	if strings.Contains(lower, "problem") || strings.Contains(lower, "issue") {
		return "I'm sorry you're experiencing problems. Could you provide more details about the issue so I can help troubleshoot?"
	}
	return DefaultReply
}
