package httpapi

import (
	"net/http"

	"oneauth.org/internal/events"
	"oneauth.org/internal/ids"
	"oneauth.org/internal/oauth"
)

func (a *API) registerClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		Secret      string   `json:"secret"`
		Domain      []string `json:"domain"`
		CallbackURL []string `json:"callback_url"`
		WebhookURL  string   `json:"webhook_url"`
		Trusted     bool     `json:"trusted"`
		DefaultURL  string   `json:"default_url"`
		UserID      int64    `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	c := &oauth.Client{
		ID:          req.ID,
		Name:        req.Name,
		Secret:      req.Secret,
		Domain:      req.Domain,
		CallbackURL: req.CallbackURL,
		WebhookURL:  req.WebhookURL,
		Trusted:     req.Trusted,
		DefaultURL:  req.DefaultURL,
		UserID:      req.UserID,
	}
	if err := a.deps.OAuth.RegisterClient(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": c.ID, "default_url": c.DefaultURL})
}

func (a *API) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	c, err := a.deps.OAuthStore.Clients(r.Context()).Find(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"domain":       c.Domain,
		"callback_url": c.CallbackURL,
		"webhook_url":  c.WebhookURL,
		"trusted":      c.Trusted,
		"default_url":  c.DefaultURL,
		"user_id":      c.UserID,
	})
}

func (a *API) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.OAuthStore.Clients(r.Context()).Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) issueGrantCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   int64 `json:"user_id"`
		ClientID int64 `json:"client_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	gc := &oauth.GrantCode{Code: ids.NewKey(), UserID: req.UserID, ClientID: req.ClientID}
	if err := a.deps.OAuthStore.GrantCodes(r.Context()).Issue(r.Context(), gc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"code": gc.Code})
}

func (a *API) exchangeGrantCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID int64 `json:"client_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	gc, err := a.deps.OAuth.ExchangeGrantCode(r.Context(), r.PathValue("code"), req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": gc.UserID, "client_id": gc.ClientID})
}

func (a *API) issueAuthToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Scope    []string `json:"scope"`
		Explicit bool     `json:"explicit"`
		UserID   int64    `json:"user_id"`
		ClientID int64    `json:"client_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	tok := &oauth.AuthToken{
		Token:    ids.NewKey(),
		Scope:    req.Scope,
		Explicit: req.Explicit,
		UserID:   req.UserID,
		ClientID: req.ClientID,
	}
	if err := a.deps.OAuthStore.AuthTokens(r.Context()).Issue(r.Context(), tok); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": tok.Token})
}

func (a *API) revokeAuthToken(w http.ResponseWriter, r *http.Request) {
	if err := a.deps.OAuth.RevokeToken(r.Context(), r.PathValue("token")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) createSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID int64  `json:"client_id"`
		Model    string `json:"model"`
		Type     string `json:"type"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	sub := &events.Subscription{
		ClientID: req.ClientID,
		Model:    events.Model(req.Model),
		Type:     events.ChangeType(req.Type),
	}
	if err := a.deps.Events.Create(r.Context(), sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": sub.ID})
}

func (a *API) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	subs, err := a.deps.Events.ListByClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(subs))
	for _, s := range subs {
		out = append(out, map[string]any{
			"id":        s.ID,
			"client_id": s.ClientID,
			"model":     string(s.Model),
			"type":      string(s.Type),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": out})
}

func (a *API) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Events.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
