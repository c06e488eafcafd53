// Package httpapi exposes the storage services over JSON. It is an
// administrative surface, not the OAuth protocol flow; codes and tokens are
// issued and exchanged here as opaque strings.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"oneauth.org/internal/demographics"
	"oneauth.org/internal/events"
	"oneauth.org/internal/identity"
	"oneauth.org/internal/oauth"
	"oneauth.org/internal/obs"
	"oneauth.org/internal/org"
	"oneauth.org/internal/pg"
	"oneauth.org/internal/recovery"
)

// ReadyProbe pings the database for /readyz.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the API serves.
type Deps struct {
	Identity      *identity.Service
	IdentityStore identity.Store
	Recovery      *recovery.Service
	RecoveryStore recovery.Store
	OAuth         *oauth.Service
	OAuthStore    oauth.Store
	Orgs          org.Store
	Demographics  demographics.Store
	Events        events.Store
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	deps       Deps
	readyProbe ReadyProbe
	version    string
}

func New(deps Deps, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		deps:       deps,
		readyProbe: rp,
		version:    version,
	}

	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("GET /readyz", a.ready)
	a.mux.Handle("GET /metrics", obs.Handler())

	a.mux.HandleFunc("POST /v1/users", a.createUser)
	a.mux.HandleFunc("GET /v1/users", a.listUsers)
	a.mux.HandleFunc("GET /v1/users/{id}", a.getUser)
	a.mux.HandleFunc("PATCH /v1/users/{id}", a.updateUser)
	a.mux.HandleFunc("DELETE /v1/users/{id}", a.deleteUser)
	a.mux.HandleFunc("POST /v1/users/{id}/providers/{provider}", a.attachProvider)
	a.mux.HandleFunc("DELETE /v1/users/{id}/providers/{provider}", a.detachProvider)

	a.mux.HandleFunc("POST /v1/users/{id}/resetpassword", a.issueResetKey)
	a.mux.HandleFunc("POST /v1/users/{id}/verifyemail", a.issueEmailKey)
	a.mux.HandleFunc("POST /v1/users/{id}/verifymobile", a.requestMobileVerification)
	a.mux.HandleFunc("POST /v1/otp", a.issueOTP)
	a.mux.HandleFunc("POST /v1/otp/consume", a.consumeOTP)

	a.mux.HandleFunc("POST /v1/clients", a.registerClient)
	a.mux.HandleFunc("GET /v1/clients/{id}", a.getClient)
	a.mux.HandleFunc("DELETE /v1/clients/{id}", a.deleteClient)
	a.mux.HandleFunc("POST /v1/grantcodes", a.issueGrantCode)
	a.mux.HandleFunc("POST /v1/grantcodes/{code}/exchange", a.exchangeGrantCode)
	a.mux.HandleFunc("POST /v1/authtokens", a.issueAuthToken)
	a.mux.HandleFunc("DELETE /v1/authtokens/{token}", a.revokeAuthToken)

	a.mux.HandleFunc("POST /v1/organisations", a.createOrganisation)
	a.mux.HandleFunc("GET /v1/organisations", a.listOrganisations)
	a.mux.HandleFunc("DELETE /v1/organisations/{id}", a.deleteOrganisation)
	a.mux.HandleFunc("POST /v1/organisations/{id}/admins", a.addAdmin)
	a.mux.HandleFunc("DELETE /v1/organisations/{id}/admins/{userID}", a.removeAdmin)
	a.mux.HandleFunc("GET /v1/organisations/{id}/admins", a.listAdmins)
	a.mux.HandleFunc("POST /v1/organisations/{id}/members", a.addMember)
	a.mux.HandleFunc("DELETE /v1/organisations/{id}/members/{userID}", a.removeMember)
	a.mux.HandleFunc("GET /v1/organisations/{id}/members", a.listMembers)

	a.mux.HandleFunc("POST /v1/demographics", a.createDemographic)
	a.mux.HandleFunc("GET /v1/users/{id}/demographic", a.getDemographicByUser)
	a.mux.HandleFunc("POST /v1/demographics/{id}/addresses", a.createAddress)
	a.mux.HandleFunc("GET /v1/demographics/{id}/addresses", a.listAddresses)
	a.mux.HandleFunc("POST /v1/demographics/{id}/addresses/{addressID}/primary", a.makePrimary)
	a.mux.HandleFunc("GET /v1/countries", a.listCountries)
	a.mux.HandleFunc("GET /v1/countries/{id}/states", a.listStates)

	a.mux.HandleFunc("POST /v1/subscriptions", a.createSubscription)
	a.mux.HandleFunc("GET /v1/clients/{id}/subscriptions", a.listSubscriptions)
	a.mux.HandleFunc("DELETE /v1/subscriptions/{id}", a.deleteSubscription)

	return a
}

// Handler wraps the mux with the shared middleware chain.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RequestID(h)
	h = Logging(h)
	return h
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "oneauth",
		"version": a.version,
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]any{"error": err.Error()})
}

// statusOf maps the storage error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, pg.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pg.ErrUniqueViolation), errors.Is(err, pg.ErrDeleteConflict):
		return http.StatusConflict
	case errors.Is(err, pg.ErrForeignKeyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pg.ErrNotNullViolation),
		errors.Is(err, identity.ErrInvalidGender),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, identity.ErrInvalidProvider),
		errors.Is(err, events.ErrInvalidModel),
		errors.Is(err, events.ErrInvalidChangeType):
		return http.StatusBadRequest
	case errors.Is(err, recovery.ErrOTPRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, oauth.ErrWrongClient):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
