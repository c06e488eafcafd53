package httpapi

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"oneauth.org/internal/demographics"
	"oneauth.org/internal/events"
	"oneauth.org/internal/identity"
	"oneauth.org/internal/oauth"
	"oneauth.org/internal/org"
	"oneauth.org/internal/recovery"
)

func newTestAPI(t *testing.T) (*API, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	identityStore := identity.NewPGStore(db)
	recoveryStore := recovery.NewPGStore(db)
	oauthStore := oauth.NewPGStore(db)

	return New(Deps{
		Identity:      identity.NewService(identityStore),
		IdentityStore: identityStore,
		Recovery:      recovery.NewService(recoveryStore, recovery.NewOTPLimiter(rate.Limit(1.0/3600), 1)),
		RecoveryStore: recoveryStore,
		OAuth:         oauth.NewService(oauthStore),
		OAuthStore:    oauthStore,
		Orgs:          org.NewPGStore(db),
		Demographics:  demographics.NewPGStore(db),
		Events:        events.NewPGStore(db),
	}, ReadyProbe{}, "test"), mock
}

func do(t *testing.T, api *API, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateUserEndpoint(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery("insert into users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(1, time.Now(), time.Now()))

	rec := do(t, api, http.MethodPost, "/v1/users", `{"username":"champak"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), `"username":"champak"`)

	// Username collision surfaces as a conflict.
	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	rec = do(t, api, http.MethodPost, "/v1/users", `{"username":"champak"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	// Empty username is rejected before the database sees it.
	rec = do(t, api, http.MethodPost, "/v1/users", `{"username":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserNotFound(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery("from users where id").
		WillReturnError(sql.ErrNoRows)

	rec := do(t, api, http.MethodGet, "/v1/users/7", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttachUnknownProvider(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/v1/users/1/providers/myspace", `{"account_id":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionValidation(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/v1/subscriptions", `{"client_id":10,"model":"organisation","type":"create"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOTPRateLimit(t *testing.T) {
	api, mock := newTestAPI(t)

	mock.ExpectQuery("insert into usermobileotps").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(1, time.Now(), time.Now()))

	body := `{"user_id":1,"mobile_number":"+911234567890"}`
	rec := do(t, api, http.MethodPost, "/v1/otp", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Burst of one: the second request in the hour is limited.
	rec = do(t, api, http.MethodPost, "/v1/otp", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestClientRegistrationRequiresID(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodPost, "/v1/clients", `{"name":"app","secret":"s","user_id":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := do(t, api, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
