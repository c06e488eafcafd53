package httpapi

import (
	"net/http"
	"strconv"

	"oneauth.org/internal/identity"
)

type userRequest struct {
	Username     string `json:"username"`
	FirstName    string `json:"firstname"`
	LastName     string `json:"lastname"`
	Gender       string `json:"gender"`
	Photo        string `json:"photo"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`
}

type userResponse struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"firstname,omitempty"`
	LastName       string `json:"lastname,omitempty"`
	Gender         string `json:"gender"`
	Photo          string `json:"photo,omitempty"`
	Email          string `json:"email,omitempty"`
	MobileNumber   string `json:"mobile_number,omitempty"`
	Role           string `json:"role,omitempty"`
	VerifiedEmail  string `json:"verifiedemail,omitempty"`
	VerifiedMobile string `json:"verifiedmobile,omitempty"`
	Deleted        bool   `json:"deleted,omitempty"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Gender:         string(u.Gender),
		Photo:          u.Photo,
		Email:          u.Email,
		MobileNumber:   u.MobileNumber,
		Role:           string(u.Role),
		VerifiedEmail:  u.VerifiedEmail,
		VerifiedMobile: u.VerifiedMobile,
		Deleted:        u.DeletedAt != nil,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	u := &identity.User{
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       identity.Gender(req.Gender),
		Photo:        req.Photo,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		Role:         identity.Role(req.Role),
	}
	if err := a.deps.Identity.CreateAccount(r.Context(), u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	u, err := a.deps.IdentityStore.Users(r.Context()).Find(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.deps.IdentityStore.Users(r.Context()).List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		FirstName      *string `json:"firstname"`
		LastName       *string `json:"lastname"`
		Gender         *string `json:"gender"`
		Photo          *string `json:"photo"`
		Email          *string `json:"email"`
		MobileNumber   *string `json:"mobile_number"`
		Role           *string `json:"role"`
		VerifiedEmail  *string `json:"verifiedemail"`
		VerifiedMobile *string `json:"verifiedmobile"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	upd := identity.UserUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Photo:          req.Photo,
		Email:          req.Email,
		MobileNumber:   req.MobileNumber,
		VerifiedEmail:  req.VerifiedEmail,
		VerifiedMobile: req.VerifiedMobile,
	}
	if req.Gender != nil {
		g := identity.Gender(*req.Gender)
		upd.Gender = &g
	}
	if req.Role != nil {
		role := identity.Role(*req.Role)
		upd.Role = &role
	}
	u, err := a.deps.IdentityStore.Users(r.Context()).Update(r.Context(), id, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Identity.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) attachProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	provider := identity.Provider(r.PathValue("provider"))

	if provider == identity.ProviderLocal {
		var req struct {
			Password string `json:"password"`
		}
		if err := decode(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		ident := &identity.LocalIdentity{UserID: id, Password: req.Password}
		if err := a.deps.Identity.AttachLocal(r.Context(), ident); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": ident.ID})
		return
	}

	var req struct {
		AccountID    string `json:"account_id"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	ident := &identity.SocialIdentity{
		UserID:       id,
		AccountID:    req.AccountID,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}
	if err := a.deps.Identity.AttachProvider(r.Context(), provider, ident); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": ident.ID})
}

func (a *API) detachProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	provider := identity.Provider(r.PathValue("provider"))
	if err := a.deps.Identity.DetachProvider(r.Context(), provider, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) issueResetKey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	rp, err := a.deps.Recovery.IssueResetKey(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": rp.Key})
}

func (a *API) issueEmailKey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		ReturnTo string `json:"return_to"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	ve, err := a.deps.Recovery.IssueEmailKey(r.Context(), id, req.ReturnTo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": ve.Key})
}

func (a *API) requestMobileVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		MobileNumber string `json:"mobile_number"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	vm, err := a.deps.Recovery.RequestMobileVerification(r.Context(), id, req.MobileNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": vm.Key})
}

func (a *API) issueOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       int64  `json:"user_id"`
		MobileNumber string `json:"mobile_number"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	otp, err := a.deps.Recovery.IssueLoginOTP(r.Context(), req.UserID, req.MobileNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	// The code itself goes out via SMS, never in the response.
	writeJSON(w, http.StatusCreated, map[string]any{"id": otp.ID})
}

func (a *API) consumeOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MobileNumber string `json:"mobile_number"`
		OTP          string `json:"otp"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	otp, err := a.deps.Recovery.ConsumeLoginOTP(r.Context(), req.MobileNumber, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": otp.UserID})
}
