package httpapi

import (
	"net/http"

	"oneauth.org/internal/demographics"
	"oneauth.org/internal/org"
)

func (a *API) createOrganisation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64    `json:"id"`
		Name     string   `json:"name"`
		FullName string   `json:"full_name"`
		Domain   []string `json:"domain"`
		Website  string   `json:"website"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	o := &org.Organisation{
		ID:       req.ID,
		Name:     req.Name,
		FullName: req.FullName,
		Domain:   req.Domain,
		Website:  req.Website,
	}
	if err := a.deps.Orgs.Create(r.Context(), o); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": o.ID})
}

func (a *API) listOrganisations(w http.ResponseWriter, r *http.Request) {
	orgs, err := a.deps.Orgs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, map[string]any{
			"id":        o.ID,
			"name":      o.Name,
			"full_name": o.FullName,
			"domain":    o.Domain,
			"website":   o.Website,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"organisations": out})
}

func (a *API) deleteOrganisation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Orgs.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) addAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	admin, err := a.deps.Orgs.AddAdmin(r.Context(), id, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": admin.ID})
}

func (a *API) removeAdmin(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r, "id")
	userID, ok2 := pathID(r, "userID")
	if !ok || !ok2 {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Orgs.RemoveAdmin(r.Context(), orgID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAdmins(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	admins, err := a.deps.Orgs.ListAdmins(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(admins))
	for _, adm := range admins {
		out = append(out, map[string]any{"id": adm.ID, "user_id": adm.UserID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"admins": out})
}

func (a *API) addMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		UserID int64  `json:"user_id"`
		Email  string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	m, err := a.deps.Orgs.AddMember(r.Context(), id, req.UserID, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": m.ID})
}

func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	orgID, ok := pathID(r, "id")
	userID, ok2 := pathID(r, "userID")
	if !ok || !ok2 {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Orgs.RemoveMember(r.Context(), orgID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	members, err := a.deps.Orgs.ListMembers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(members))
	for _, m := range members {
		out = append(out, map[string]any{"id": m.ID, "user_id": m.UserID, "email": m.Email})
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": out})
}

func (a *API) createDemographic(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int64  `json:"user_id"`
		CollegeID *int64 `json:"college_id"`
		CompanyID *int64 `json:"company_id"`
		BranchID  *int64 `json:"branch_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	d := &demographics.Demographic{
		UserID:    req.UserID,
		CollegeID: req.CollegeID,
		CompanyID: req.CompanyID,
		BranchID:  req.BranchID,
	}
	if err := a.deps.Demographics.CreateDemographic(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": d.ID})
}

func (a *API) getDemographicByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	d, err := a.deps.Demographics.FindDemographicByUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         d.ID,
		"user_id":    d.UserID,
		"college_id": d.CollegeID,
		"company_id": d.CompanyID,
		"branch_id":  d.BranchID,
	})
}

func (a *API) createAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Line1     string `json:"line1"`
		Line2     string `json:"line2"`
		City      string `json:"city"`
		Pincode   string `json:"pincode"`
		StateID   *int64 `json:"state_id"`
		CountryID *int64 `json:"country_id"`
		Primary   bool   `json:"primary"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	addr := &demographics.Address{
		DemographicID: id,
		Line1:         req.Line1,
		Line2:         req.Line2,
		City:          req.City,
		Pincode:       req.Pincode,
		StateID:       req.StateID,
		CountryID:     req.CountryID,
		Primary:       req.Primary,
	}
	if err := a.deps.Demographics.CreateAddress(r.Context(), addr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": addr.ID})
}

func (a *API) listAddresses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	addrs, err := a.deps.Demographics.ListAddresses(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(addrs))
	for _, addr := range addrs {
		out = append(out, map[string]any{
			"id":      addr.ID,
			"line1":   addr.Line1,
			"line2":   addr.Line2,
			"city":    addr.City,
			"pincode": addr.Pincode,
			"primary": addr.Primary,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": out})
}

func (a *API) makePrimary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	addressID, ok2 := pathID(r, "addressID")
	if !ok || !ok2 {
		http.NotFound(w, r)
		return
	}
	if err := a.deps.Demographics.MakePrimary(r.Context(), id, addressID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := a.deps.Demographics.ListCountries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(countries))
	for _, c := range countries {
		out = append(out, map[string]any{"id": c.ID, "name": c.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": out})
}

func (a *API) listStates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	states, err := a.deps.Demographics.ListStates(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(states))
	for _, st := range states {
		out = append(out, map[string]any{"id": st.ID, "name": st.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"states": out})
}
