package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"tindo.app/internal/audit"
	"tindo.app/internal/auth"
	"tindo.app/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth stashes the bearer credential in the request context without
// judging it. The same opaque value may be an owner token or a staff
// session token; handlers resolve it through the service when they need
// an identity, so public endpoints stay reachable without one.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err == nil && token != "" {
			ctx := auth.ContextWithBearerToken(r.Context(), token)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate resolves the caller or writes the error response.
// On success the identity rides on the returned request's context so
// downstream audit entries name the caller.
func (a *API) authenticate(w http.ResponseWriter, r *http.Request) (auth.Identity, *http.Request, bool) {
	identity, err := a.svc.Authenticate(r.Context())
	if err != nil {
		handleAuthError(w, r, err)
		return auth.Identity{}, r, false
	}
	ctx := auth.ContextWithIdentity(r.Context(), identity)
	return identity, r.WithContext(ctx), true
}

// authorize resolves the caller and checks one permission key, writing
// the error response on failure. Returns the owner id whose data the
// request may touch.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, permissionKey string) (string, *http.Request, bool) {
	_, r, ok := a.authenticate(w, r)
	if !ok {
		return "", r, false
	}
	ownerID, err := a.svc.Authorize(r.Context(), permissionKey)
	if err != nil {
		if errors.Is(err, auth.ErrPermissionDenied) {
			obs.ObserveAuthz("deny")
			_ = audit.LogEvent(r.Context(), "authz.denied", map[string]any{
				"permission_key": permissionKey,
			})
		}
		handleAuthError(w, r, err)
		return "", r, false
	}
	obs.ObserveAuthz("allow")
	return ownerID, r, true
}

func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="tindo"`)
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
