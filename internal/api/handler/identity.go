package handler

import (
	"net/http"

	"github.com/mcoot/gameofchests/internal/api/middleware"
	"github.com/mcoot/gameofchests/internal/api/response"
	"github.com/mcoot/gameofchests/internal/services/identity"
)

// IdentityHandler handles identity endpoints
type IdentityHandler struct {
	provider identity.Provider
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(provider identity.Provider) *IdentityHandler {
	return &IdentityHandler{provider: provider}
}

// Issue handles POST /api/v1/identity
func (h *IdentityHandler) Issue(w http.ResponseWriter, r *http.Request) {
	creds, err := h.provider.Issue(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.CredentialsFromModel(creds))
}

// Me handles GET /api/v1/identity
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.MustGetIdentity(r.Context())
	response.JSON(w, http.StatusOK, response.IdentityFromModel(id))
}
