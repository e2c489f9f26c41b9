package contracts

import "craftlink/go-backend/pkg/models"

// Ports to the collaborators that live outside the conversation orchestrator.
// All of them are consumed, never implemented, by the panel; the in-tree
// implementations exist for the daemon binary and tests.

// IdentityProvider supplies the signed-in user. A false return routes the
// caller to the login flow instead of constructing a panel.
type IdentityProvider interface {
	CurrentUser() (models.Account, bool)
}

// RoleDirectory resolves the viewer's marketplace role, fetched once per
// panel construction.
type RoleDirectory interface {
	ViewerRole(userID string) (models.Role, error)
}

// Navigator performs fire-and-forget redirects; results are never awaited.
type Navigator interface {
	RedirectToLogin()
	RedirectHome()
}
