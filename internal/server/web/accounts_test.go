package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/auth"
	"github.com/dmitrijs2005/dealership/internal/server/config"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/dmitrijs2005/dealership/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_RejectionsAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	form := url.Values{"account_email": {"ada@example.com"}, "account_password": {testPassword + "!"}}

	unknown, unknownBody := h.post(h.client(), "/account/login", form)

	h.register("ada@example.com", models.AccountClient)
	wrong, wrongBody := h.post(h.client(), "/account/login", form)

	assert.Equal(t, http.StatusBadRequest, unknown.StatusCode)
	assert.Equal(t, http.StatusBadRequest, wrong.StatusCode)
	assert.Equal(t, unknownBody, wrongBody)
	assert.Contains(t, wrongBody, services.MsgLoginRejected)
	assert.Nil(t, cookieNamed(unknown, common.AccessTokenCookieName))
	assert.Nil(t, cookieNamed(wrong, common.AccessTokenCookieName))
}

func TestLogin_InvalidForm(t *testing.T) {
	h := newHarness(t)

	resp, body := h.post(h.client(), "/account/login", url.Values{"account_email": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please provide a valid email address.")
	assert.Contains(t, body, "Password is required.")
}

func TestLogin_SetsIdentityCookie(t *testing.T) {
	h := newHarness(t)
	snap := h.register("ada@example.com", models.AccountClient)

	c := h.client()
	resp, _ := h.post(c, "/account/login", url.Values{"account_email": {"ADA@example.com"}, "account_password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/account/", resp.Header.Get("Location"))

	ck := cookieNamed(resp, common.AccessTokenCookieName)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.False(t, ck.Secure, "development cookies are not Secure")
	assert.Equal(t, 3600, ck.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	claims, err := h.tokens.Verify(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, claims.ID)

	resp, body := h.get(c, "/account/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome Ada")
	assert.NotContains(t, body, "Manage inventory")
}

func TestLogin_SecureCookieOutsideDevelopment(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config, _ *Deps) {
		cfg.Environment = common.EnvProduction
	})
	h.register("ada@example.com", models.AccountClient)

	req := httptest.NewRequest(http.MethodPost, "/account/login",
		strings.NewReader(url.Values{"account_email": {"ada@example.com"}, "account_password": {testPassword}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	ck := cookieNamed(rr.Result(), common.AccessTokenCookieName)
	require.NotNil(t, ck)
	assert.True(t, ck.Secure)
	assert.True(t, ck.HttpOnly)
}

func TestIdentity_SoftFailsOnBadToken(t *testing.T) {
	h := newHarness(t)
	snap := h.register("ada@example.com", models.AccountClient)

	past := auth.NewTokenIssuer(testSecret, time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	expired, err := past.Issue(*snap)
	require.NoError(t, err)

	forged, err := auth.NewTokenIssuer([]byte("some-other-secret-some-other-secret"), time.Hour).Issue(*snap)
	require.NoError(t, err)

	for name, token := range map[string]string{"garbage": "not-a-jwt", "expired": expired, "wrong key": forged} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: common.AccessTokenCookieName, Value: token})
			rr := httptest.NewRecorder()
			h.server.Handler().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "My Account")

			ck := cookieNamed(rr.Result(), common.AccessTokenCookieName)
			require.NotNil(t, ck, "bad cookie should be cleared")
			assert.Negative(t, ck.MaxAge)
		})
	}
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	c := h.client()

	form := url.Values{
		"account_firstname": {"Ada"},
		"account_lastname":  {"Lovelace"},
		"account_email":     {"Ada@Example.com"},
		"account_password":  {testPassword},
	}
	resp, body := h.post(c, "/account/register", form)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "Please log in.")

	resp, body = h.post(c, "/account/register", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Email exists. Please log in or use a different email.")
	assert.Contains(t, body, `value="ada@example.com"`)
	assert.NotContains(t, body, testPassword)

	form.Set("account_email", "grace@example.com")
	form.Set("account_password", "weak")
	resp, body = h.post(c, "/account/register", form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Password does not meet requirements.")
}

func TestAccountManagement_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.get(h.client(), "/account/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/account/login", resp.Header.Get("Location"))
	assert.NotNil(t, cookieNamed(resp, common.NoticeCookieName))
}

func TestUpdateAccount_OwnerOnly(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.loggedIn("boss@example.com", models.AccountAdmin)
	grace := h.register("grace@example.com", models.AccountClient)

	t.Run("update page of another account", func(t *testing.T) {
		resp, _ := h.get(admin, "/account/update/"+strconv.FormatInt(grace.ID, 10))
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/account/", resp.Header.Get("Location"))

		_, body := h.get(admin, "/account/")
		assert.Contains(t, body, "You are not authorized to update that account.")
	})

	t.Run("profile post for another account", func(t *testing.T) {
		resp, _ := h.post(admin, "/account/update", url.Values{
			"account_id":        {strconv.FormatInt(grace.ID, 10)},
			"account_firstname": {"Hacked"},
			"account_lastname":  {"Hacked"},
			"account_email":     {"hacked@example.com"},
		})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/account/", resp.Header.Get("Location"))

		still, err := h.accounts.GetByID(context.Background(), grace.ID)
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", still.Email)
	})

	t.Run("password post for another account", func(t *testing.T) {
		resp, _ := h.post(admin, "/account/update-password", url.Values{
			"account_id":       {strconv.FormatInt(grace.ID, 10)},
			"account_password": {"N3w$ecretPassword"},
		})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

		out, err := h.accounts.Login(context.Background(), "grace@example.com", testPassword)
		require.NoError(t, err)
		assert.Equal(t, services.Authenticated, out.State)
	})

	t.Run("anonymous", func(t *testing.T) {
		resp, _ := h.get(h.client(), "/account/update/"+strconv.FormatInt(grace.ID, 10))
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/account/login", resp.Header.Get("Location"))
	})
}

func TestUpdateAccount_Own(t *testing.T) {
	h := newHarness(t)
	c, ada := h.loggedIn("ada@example.com", models.AccountClient)
	id := strconv.FormatInt(ada.ID, 10)

	resp, body := h.get(c, "/account/update/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="ada@example.com"`)

	resp, _ = h.post(c, "/account/update", url.Values{
		"account_id":        {id},
		"account_firstname": {"Augusta"},
		"account_lastname":  {"King"},
		"account_email":     {"ada@example.com"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	ck := cookieNamed(resp, common.AccessTokenCookieName)
	require.NotNil(t, ck, "token is re-issued")
	claims, err := h.tokens.Verify(ck.Value)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", claims.FirstName)

	_, body = h.get(c, "/account/")
	assert.Contains(t, body, "Welcome Augusta")
	assert.Contains(t, body, "Account information updated successfully.")

	resp, body = h.post(c, "/account/update-password", url.Values{"account_id": {id}, "account_password": {"short"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Password does not meet requirements.")

	resp, _ = h.post(c, "/account/update-password", url.Values{"account_id": {id}, "account_password": {"N3w$ecretPassword"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	out, err := h.accounts.Login(context.Background(), "ada@example.com", "N3w$ecretPassword")
	require.NoError(t, err)
	assert.Equal(t, services.Authenticated, out.State)
}

func TestLogout_ClearsCookie(t *testing.T) {
	h := newHarness(t)
	c, _ := h.loggedIn("ada@example.com", models.AccountClient)

	resp, _ := h.get(c, "/account/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	ck := cookieNamed(resp, common.AccessTokenCookieName)
	require.NotNil(t, ck)
	assert.Negative(t, ck.MaxAge)

	resp, _ = h.get(c, "/account/")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}
