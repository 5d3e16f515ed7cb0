package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"userhub/admin-api/internal"
	"userhub/admin-api/internal/model"
	"userhub/admin-api/internal/service"
	"userhub/admin-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMailer records outgoing mail instead of talking to SMTP
type fakeMailer struct {
	verifications []string
	resets        []string
	tempPasswords []string
	err           error
}

func (m *fakeMailer) SendVerification(to, token, firstName string) error {
	if m.err != nil {
		return m.err
	}
	m.verifications = append(m.verifications, token)
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, token, firstName string) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, token)
	return nil
}

func (m *fakeMailer) SendTemporaryPassword(to, tempPassword, firstName string) error {
	if m.err != nil {
		return m.err
	}
	m.tempPasswords = append(m.tempPasswords, tempPassword)
	return nil
}

func newTestDeps(t *testing.T) (*internal.Deps, *fakeMailer) {
	t.Helper()

	viper.Set("jwt.ttl_hours", 24)
	viper.Set("tokens.verify_ttl_hours", 24)
	viper.Set("tokens.reset_ttl_minutes", 60)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.AccountToken{}))

	mailer := &fakeMailer{}

	return &internal.Deps{
		DB:     db,
		Argon:  security.NewArgon(),
		Issuer: security.NewIssuer([]byte("test-secret")),
		Tokens: service.NewTokens(db),
		Mailer: mailer,
	}, mailer
}

func seedUser(t *testing.T, d *internal.Deps, password string, mutate func(*model.User)) *model.User {
	t.Helper()

	hash, err := d.Argon.GenerateFromPassword(password)
	require.NoError(t, err)

	u := &model.User{
		ID:            "user-" + t.Name(),
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         t.Name() + "@example.com",
		PasswordHash:  hash,
		Role:          model.RoleUser,
		IsActive:      true,
		EmailVerified: true,
	}

	if mutate != nil {
		mutate(u)
	}
	wantActive := u.IsActive

	require.NoError(t, d.DB.Create(u).Error)
	if !wantActive {
		// gorm skips zero-valued fields carrying a default tag on insert,
		// so a false IsActive has to be written separately
		require.NoError(t, d.DB.Model(u).Update("is_active", false).Error)
		u.IsActive = false
	}
	return u
}

func postJSON(t *testing.T, handler func(*gin.Context, *internal.Deps), d *internal.Deps, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/", func(c *gin.Context) { handler(c, d) })

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, Login, d, gin.H{"email": u.Email, "password": "Sup3rSecret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string           `json:"token"`
		User  model.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, u.ID, resp.User.ID)

	claims, err := d.Issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, Login, d, gin.H{"email": u.Email, "password": "WrongPass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	d, _ := newTestDeps(t)

	// Unknown email and wrong password must be indistinguishable
	w := postJSON(t, Login, d, gin.H{"email": "nobody@example.com", "password": "Sup3rSecret"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginInactiveAccount(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", func(u *model.User) { u.IsActive = false })

	w := postJSON(t, Login, d, gin.H{"email": u.Email, "password": "Sup3rSecret"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "account_inactive")
}

func TestLoginEmptyFields(t *testing.T) {
	d, _ := newTestDeps(t)

	w := postJSON(t, Login, d, gin.H{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestVerificationSendsToken(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", func(u *model.User) { u.EmailVerified = false })

	w := postJSON(t, RequestVerification, d, gin.H{"email": u.Email})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.verifications, 1)

	// The mailed token must actually redeem
	w = postJSON(t, Verify, d, gin.H{"token": mailer.verifications[0]})
	assert.Equal(t, http.StatusOK, w.Code)

	var live model.User
	require.NoError(t, d.DB.First(&live, "id = ?", u.ID).Error)
	assert.True(t, live.EmailVerified)
}

func TestRequestVerificationAlreadyVerified(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, RequestVerification, d, gin.H{"email": u.Email})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already_verified")
}

func TestRequestVerificationCooldown(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", func(u *model.User) { u.EmailVerified = false })
	mailer.err = service.ErrMailCooldown

	w := postJSON(t, RequestVerification, d, gin.H{"email": u.Email})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestVerifyBadToken(t *testing.T) {
	d, _ := newTestDeps(t)

	w := postJSON(t, Verify, d, gin.H{"token": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "token_invalid")
}

func TestRequestResetUnknownEmailLooksLikeSuccess(t *testing.T) {
	d, mailer := newTestDeps(t)

	w := postJSON(t, RequestReset, d, gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resetRequestedMsg)
	assert.Empty(t, mailer.resets)
}

func TestRequestResetKnownEmailSameResponse(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, RequestReset, d, gin.H{"email": u.Email})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resetRequestedMsg)
	assert.Len(t, mailer.resets, 1)
}

func TestRequestResetCooldownLooksLikeSuccess(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)
	mailer.err = service.ErrMailCooldown

	// The cooldown response must be indistinguishable from the normal one,
	// otherwise it betrays that the address exists
	w := postJSON(t, RequestReset, d, gin.H{"email": u.Email})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resetRequestedMsg)
}

func TestRequestResetUnverifiedEmail(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", func(u *model.User) { u.EmailVerified = false })

	w := postJSON(t, RequestReset, d, gin.H{"email": u.Email})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "email_not_verified")
}

func TestResetFlow(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, RequestReset, d, gin.H{"email": u.Email})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.resets, 1)

	w = postJSON(t, Reset, d, gin.H{"token": mailer.resets[0], "newPassword": "N3wPassword"})
	require.Equal(t, http.StatusOK, w.Code)

	// Old password out, new password in
	var live model.User
	require.NoError(t, d.DB.First(&live, "id = ?", u.ID).Error)

	ok, err := d.Argon.VerifyPassword("N3wPassword", live.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Argon.VerifyPassword("Sup3rSecret", live.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NotNil(t, live.PasswordChangedAt)

	// The token is spent
	w = postJSON(t, Reset, d, gin.H{"token": mailer.resets[0], "newPassword": "An0therPass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "token_used")
}

// postJSONAs runs the handler with the signed-in user preloaded the way the
// auth gate would do it
func postJSONAs(t *testing.T, handler func(*gin.Context, *internal.Deps), d *internal.Deps, u *model.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		c.Set("userID", u.ID)
		c.Set("user", u)
		handler(c, d)
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChangePassword(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSONAs(t, ChangePassword, d, u, gin.H{
		"currentPassword": "Sup3rSecret",
		"newPassword":     "N3wPassword",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	var live model.User
	require.NoError(t, d.DB.First(&live, "id = ?", u.ID).Error)
	require.NotNil(t, live.PasswordChangedAt)

	ok, err := d.Argon.VerifyPassword("N3wPassword", live.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	// The re-issued token carries the new change stamp so it survives the
	// staleness check
	claims, err := d.Issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.NotNil(t, claims.PasswordChangedAt)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	d, _ := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSONAs(t, ChangePassword, d, u, gin.H{
		"currentPassword": "WrongPass1",
		"newPassword":     "N3wPassword",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Current password is incorrect")

	// Password must be untouched
	var live model.User
	require.NoError(t, d.DB.First(&live, "id = ?", u.ID).Error)

	ok, err := d.Argon.VerifyPassword("Sup3rSecret", live.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetWeakPassword(t *testing.T) {
	d, mailer := newTestDeps(t)
	u := seedUser(t, d, "Sup3rSecret", nil)

	w := postJSON(t, RequestReset, d, gin.H{"email": u.Email})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mailer.resets, 1)

	w = postJSON(t, Reset, d, gin.H{"token": mailer.resets[0], "newPassword": "weak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
