package httpapi

import (
	"net/http"
	"strings"
	"time"

	"tindo.app/internal/audit"
	"tindo.app/internal/auth"
	"tindo.app/internal/obs"
	"tindo.app/internal/owner"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Staff        auth.Profile `json:"staff"`
	SessionToken string       `json:"session_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

type ownerTokenRequest struct {
	OwnerID    string `json:"owner_id"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type ownerTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	staff, token, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		obs.ObserveLogin("failure")
		_ = audit.LogEvent(r.Context(), "staff.login.failed", map[string]any{
			"email": auth.NormalizeEmail(req.Email),
		})
		handleAuthError(w, r, err)
		return
	}
	obs.ObserveLogin("success")
	_ = audit.LogEvent(r.Context(), "staff.login", map[string]any{
		"staff_id": staff.ID,
		"owner_id": staff.OwnerID,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Staff:        staff.Profile(),
		SessionToken: token,
		ExpiresAt:    staff.SessionExpiry,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	identity, r, ok := a.authenticate(w, r)
	if !ok {
		return
	}
	if identity.Kind != auth.IdentityStaff || identity.Staff == nil {
		writeError(w, r, http.StatusBadRequest, "no staff session to close")
		return
	}
	if err := a.svc.Logout(r.Context(), identity.Staff.ID); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "staff.logout", map[string]any{
		"staff_id": identity.Staff.ID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	identity, r, ok := a.authenticate(w, r)
	if !ok {
		return
	}
	if identity.IsOwner() {
		writeJSON(w, http.StatusOK, map[string]any{
			"kind":     "owner",
			"owner_id": identity.OwnerID,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":       "staff",
		"owner_id":   identity.OwnerID,
		"staff":      identity.Staff.Profile(),
		"expires_at": identity.Staff.SessionExpiry,
	})
}

// handleOwnerToken mints an owner bearer token. In production owner
// identity comes from the upstream account system; this endpoint exists
// for local development and smoke runs.
func (a *API) handleOwnerToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req ownerTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if req.OwnerID == "" {
		writeError(w, r, http.StatusBadRequest, "owner_id is required")
		return
	}
	ttl := time.Hour
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}
	token, err := owner.GenerateToken(req.OwnerID, ttl)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "owner.token.issued", map[string]any{
		"owner_id": req.OwnerID,
	})
	writeJSON(w, http.StatusOK, ownerTokenResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
	})
}
