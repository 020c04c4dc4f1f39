package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"tindo.app/internal/audit"
	"tindo.app/internal/auth"
)

type createStaffRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type setGrantRequest struct {
	PermissionKey string `json:"permission_key"`
	Enabled       bool   `json:"is_enabled"`
}

func (a *API) handleStaffCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.handleStaffCreate(w, r)
	case http.MethodGet:
		a.handleStaffList(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleStaffCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
	if !ok {
		return
	}
	var req createStaffRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	staff, err := a.svc.CreateStaff(r.Context(), ownerID, req.Email, req.Password, req.Name, req.Phone)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "staff.created", map[string]any{
		"staff_id": staff.ID,
		"email":    staff.Email,
	})
	w.Header().Set("Location", fmt.Sprintf("/v1/staff/%s", staff.ID))
	writeJSON(w, http.StatusCreated, staff.Profile())
}

func (a *API) handleStaffList(w http.ResponseWriter, r *http.Request) {
	ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
	if !ok {
		return
	}
	list, err := a.svc.ListStaff(r.Context(), ownerID)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	profiles := make([]auth.Profile, 0, len(list))
	for _, s := range list {
		profiles = append(profiles, s.Profile())
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": profiles})
}

func (a *API) handleStaffResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/staff/")
	path = strings.Trim(path, "/")
	if path == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	parts := strings.Split(path, "/")
	staffID := parts[0]
	switch {
	case len(parts) == 1:
		a.handleStaffItem(w, r, staffID)
	case len(parts) == 2 && parts[1] == "grants":
		a.handleStaffGrants(w, r, staffID)
	case len(parts) == 2 && parts[1] == "active":
		a.handleStaffActive(w, r, staffID)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleStaffItem(w http.ResponseWriter, r *http.Request, staffID string) {
	switch r.Method {
	case http.MethodGet:
		ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
		if !ok {
			return
		}
		staff, err := a.svc.GetStaff(r.Context(), ownerID, staffID)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, staff.Profile())
	case http.MethodDelete:
		ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
		if !ok {
			return
		}
		if err := a.svc.DeleteStaff(r.Context(), ownerID, staffID); err != nil {
			handleAuthError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "staff.deleted", map[string]any{
			"staff_id": staffID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

func (a *API) handleStaffActive(w http.ResponseWriter, r *http.Request, staffID string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, r, http.MethodPut)
		return
	}
	ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
	if !ok {
		return
	}
	var req setActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.svc.SetStaffActive(r.Context(), ownerID, staffID, req.Active); err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "staff.active.updated", map[string]any{
		"staff_id": staffID,
		"active":   req.Active,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleStaffGrants(w http.ResponseWriter, r *http.Request, staffID string) {
	switch r.Method {
	case http.MethodGet:
		ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
		if !ok {
			return
		}
		grants, err := a.svc.StaffGrants(r.Context(), ownerID, staffID)
		if err != nil {
			handleAuthError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"grants": grants})
	case http.MethodPut:
		ownerID, r, ok := a.authorize(w, r, auth.PermStaffManage)
		if !ok {
			return
		}
		var req setGrantRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := a.svc.SetGrant(r.Context(), ownerID, staffID, req.PermissionKey, req.Enabled); err != nil {
			handleAuthError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "grant.updated", map[string]any{
			"staff_id":       staffID,
			"permission_key": req.PermissionKey,
			"is_enabled":     req.Enabled,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// handlePermissions serves the catalog. Without a resolvable identity
// the list degrades to empty instead of erroring, so UI shells can
// render before login.
func (a *API) handlePermissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.svc.Authenticate(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"permissions": []auth.PermissionDefinition{}})
		return
	}
	defs, err := a.svc.Permissions(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": defs})
}
