package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"tdls-api/config"
	"tdls-api/db"
	"tdls-api/internal"
	"tdls-api/internal/friends"
	"tdls-api/internal/model"
	"tdls-api/internal/service"
	"tdls-api/internal/testdb"
	"tdls-api/internal/verification"
	"tdls-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var codeRe = regexp.MustCompile(`<strong>(\d{6})</strong>`)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *fakeMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.codes[to] = codeRe.FindStringSubmatch(body)[1]
	return nil
}

func (m *fakeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.codes[to]
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStorage) Put(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = b
	return nil
}

func (s *memStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

type testApp struct {
	router  *gin.Engine
	deps    *internal.Deps
	mailer  *fakeMailer
	storage *memStorage
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Reset()
	t.Cleanup(viper.Reset)

	config.SetDefaults()
	viper.Set("jwt.secret", "test-secret")
	viper.Set("security.rate_limit", 10000)

	database := testdb.New(t)
	mailer := &fakeMailer{codes: map[string]string{}}
	storage := &memStorage{objects: map[string][]byte{}}

	d := &internal.Deps{
		DB:       database,
		Argon:    &security.ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		Verifier: verification.New(verification.NewMemoryStore(), mailer),
		Friends:  friends.NewEngine(database),
		Storage:  storage,
	}
	t.Cleanup(func() { d.Verifier.Close() })

	return &testApp{
		router:  NewEngine(t.Context(), d),
		deps:    d,
		mailer:  mailer,
		storage: storage,
	}
}

func (a *testApp) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers a user through the API and returns its uuid
func (a *testApp) signup(t *testing.T, login, nick, email string) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/users", gin.H{
		"user_id":  login,
		"password": "password123",
		"nickname": nick,
		"email":    email,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return decode[map[string]string](t, w)["user_uuid"]
}

// verifiedUser registers a user, marks it verified and returns its uuid and a token
func (a *testApp) verifiedUser(t *testing.T, login, nick string) (string, string) {
	t.Helper()

	id := a.signup(t, login, nick, login+"@example.com")
	require.NoError(t, a.deps.DB.Model(&model.User{}).Where("id = ?", id).Update("verified", true).Error)

	token, _, err := security.MakeAuthToken(id, time.Now())
	require.NoError(t, err)

	return id, token
}

func TestNewRouterClosesDatabaseOnError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	config.SetDefaults()
	viper.Set("cleanup.schedule", "every tuesday")

	var opened *gorm.DB
	openDatabase = func() (*gorm.DB, error) {
		opened = testdb.New(t)
		return opened, nil
	}
	t.Cleanup(func() { openDatabase = db.New })

	router, shutdown, err := NewRouter()
	require.Error(t, err)
	assert.Nil(t, router)
	assert.Nil(t, shutdown)

	require.NotNil(t, opened)
	sqlDB, err := opened.DB()
	require.NoError(t, err)
	assert.ErrorContains(t, sqlDB.Ping(), "closed")
}

func TestHeartbeat(t *testing.T) {
	a := newTestApp(t)

	w := a.do(t, http.MethodHead, "/api/heartbeat", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSignupVerifyLogin(t *testing.T) {
	a := newTestApp(t)

	id := a.signup(t, "alice01", "alice", "Alice@Example.com")
	require.NotEmpty(t, id)

	var stored model.User
	require.NoError(t, a.deps.DB.Where("id = ?", id).First(&stored).Error)
	assert.Equal(t, "alice@example.com", stored.Email)
	assert.False(t, stored.Verified)
	require.NotNil(t, stored.ExpiresAt)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	// Every unique field is checked
	w := a.do(t, http.MethodPost, "/api/users", gin.H{
		"user_id": "bob0001", "password": "password123", "nickname": "alice", "email": "bob@example.com",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "nickname", decode[map[string]string](t, w)["field"])

	w = a.do(t, http.MethodGet, "/api/users/check?field=user_id&value=alice01", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["available"])

	w = a.do(t, http.MethodGet, "/api/users/check?field=nickname&value=free", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["available"])

	w = a.do(t, http.MethodGet, "/api/users/check?field=password&value=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Never issued
	w = a.do(t, http.MethodPost, "/api/verify", gin.H{"email": "alice@example.com", "code": "123456"}, "")
	assert.Equal(t, http.StatusRequestTimeout, w.Code)

	w = a.do(t, http.MethodPost, "/api/verify/send", gin.H{"email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(300), decode[map[string]any](t, w)["expiresIn"])

	code := a.mailer.code("alice@example.com")
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}

	w = a.do(t, http.MethodPost, "/api/verify", gin.H{"email": "alice@example.com", "code": wrong}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/verify", gin.H{"email": "ALICE@example.com", "code": code}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["userVerified"])

	// Consumed
	w = a.do(t, http.MethodPost, "/api/verify", gin.H{"email": "alice@example.com", "code": code}, "")
	assert.Equal(t, http.StatusRequestTimeout, w.Code)

	require.NoError(t, a.deps.DB.Where("id = ?", id).First(&stored).Error)
	assert.True(t, stored.Verified)
	assert.Nil(t, stored.ExpiresAt)

	w = a.do(t, http.MethodPost, "/api/users/login", gin.H{"user_id": "alice01", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/users/login", gin.H{"user_id": "nobody", "password": "password123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/users/login", gin.H{"user_id": "alice01", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	login := decode[map[string]any](t, w)
	assert.Equal(t, id, login["user_uuid"])
	assert.Equal(t, true, login["verified"])

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	token := login["access_token"].(string)

	w = a.do(t, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "alice01", me["user_id"])
	assert.NotContains(t, me, "PasswordHash")
	assert.NotContains(t, me, "password_hash")

	w = a.do(t, http.MethodGet, "/api/validate", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupValidation(t *testing.T) {
	a := newTestApp(t)

	for _, body := range []gin.H{
		{"user_id": "ab", "password": "password123", "nickname": "n", "email": "a@example.com"},
		{"user_id": "abcd", "password": "short", "nickname": "n", "email": "a@example.com"},
		{"user_id": "abcd", "password": "password123", "nickname": "", "email": "a@example.com"},
		{"user_id": "abcd", "password": "password123", "nickname": "n", "email": "nope"},
	} {
		w := a.do(t, http.MethodPost, "/api/users", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestFetchProfile(t *testing.T) {
	a := newTestApp(t)

	_, token := a.verifiedUser(t, "alice01", "alice")
	bobID, _ := a.verifiedUser(t, "bob0001", "bob")

	w := a.do(t, http.MethodGet, "/api/users/"+bobID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	p := decode[map[string]any](t, w)
	assert.Equal(t, "bob", p["nickname"])
	assert.NotContains(t, p, "email")

	w = a.do(t, http.MethodGet, "/api/users/does-not-exist", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodGet, "/api/users/"+bobID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	a := newTestApp(t)

	aliceID, token := a.verifiedUser(t, "alice01", "alice")
	a.verifiedUser(t, "bob0001", "bob")

	w := a.do(t, http.MethodPatch, "/api/users/me", gin.H{"nickname": "bob"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodPatch, "/api/users/me", gin.H{"nickname": "ally", "email": "new@example.com"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	updated := decode[map[string]any](t, w)
	assert.Equal(t, "ally", updated["nickname"])
	assert.Equal(t, "new@example.com", updated["email"])
	assert.Equal(t, false, updated["verified"])

	w = a.do(t, http.MethodPatch, "/api/users/me", gin.H{"password": "another-pass"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodPost, "/api/users/login", gin.H{"user_id": "alice01", "password": "another-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var stored model.User
	require.NoError(t, a.deps.DB.Where("id = ?", aliceID).First(&stored).Error)
	assert.Equal(t, "ally", stored.Nickname)
}

func TestPasswordReset(t *testing.T) {
	a := newTestApp(t)

	a.signup(t, "alice01", "alice", "alice@example.com")

	w := a.do(t, http.MethodPost, "/api/verify/send", gin.H{"email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	code := a.mailer.code("alice@example.com")

	w = a.do(t, http.MethodPost, "/api/users/password/reset", gin.H{
		"email": "alice@example.com", "code": code, "password": "brand-new-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/users/login", gin.H{"user_id": "alice01", "password": "brand-new-pass"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// The code is single use
	w = a.do(t, http.MethodPost, "/api/users/password/reset", gin.H{
		"email": "alice@example.com", "code": code, "password": "third-password",
	}, "")
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	a := newTestApp(t)

	aliceID, aliceToken := a.verifiedUser(t, "alice01", "alice")
	bobID, bobToken := a.verifiedUser(t, "bob0001", "bob")

	w := a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodDelete, "/api/users/me", gin.H{"password": "wrong-password"}, aliceToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodDelete, "/api/users/me", gin.H{"password": "password123"}, aliceToken)
	require.Equal(t, http.StatusNoContent, w.Code)

	var n int64
	require.NoError(t, a.deps.DB.Model(&model.User{}).Where("id = ?", aliceID).Count(&n).Error)
	assert.Zero(t, n)

	w = a.do(t, http.MethodGet, "/api/friends/requests?direction=incoming", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	// Token outlives the account
	w = a.do(t, http.MethodGet, "/api/users/me", nil, aliceToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFriendsFlow(t *testing.T) {
	a := newTestApp(t)

	aliceID, aliceToken := a.verifiedUser(t, "alice01", "alice")
	bobID, bobToken := a.verifiedUser(t, "bob0001", "bob")

	w := a.do(t, http.MethodPost, "/api/friends/"+aliceID, nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/friends/ghost", nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodGet, "/api/friends/requests", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	incoming := decode[[]map[string]any](t, w)
	require.Len(t, incoming, 1)
	assert.Equal(t, aliceID, incoming[0]["requester_id"])
	assert.Equal(t, "pending", incoming[0]["status"])
	assert.Equal(t, "alice", incoming[0]["user"].(map[string]any)["nickname"])

	w = a.do(t, http.MethodGet, "/api/friends/requests?direction=outgoing", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(t, http.MethodGet, "/api/friends/requests?direction=sideways", nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Only the recipient can accept
	w = a.do(t, http.MethodPost, "/api/friends/"+bobID+"/accept", nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/accept", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "accepted", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/reject", nil, bobToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	for _, tok := range []string{aliceToken, bobToken} {
		w = a.do(t, http.MethodGet, "/api/friends", nil, tok)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]map[string]any](t, w), 1)
	}

	w = a.do(t, http.MethodGet, "/api/friends", nil, aliceToken)
	assert.Equal(t, "bob", decode[[]map[string]any](t, w)[0]["user"].(map[string]any)["nickname"])

	// The recipient blocks through the reverse direction
	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/block", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blocked", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodGet, "/api/friends", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = a.do(t, http.MethodGet, "/api/friends/blocked", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/block", nil, bobToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFriendCancelAndReject(t *testing.T) {
	a := newTestApp(t)

	aliceID, aliceToken := a.verifiedUser(t, "alice01", "alice")
	bobID, bobToken := a.verifiedUser(t, "bob0001", "bob")
	carolID, carolToken := a.verifiedUser(t, "carol01", "carol")

	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken).Code)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/friends/"+carolID, nil, aliceToken).Code)

	// Only the requester can cancel
	w := a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/cancel", nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/friends/"+bobID+"/cancel", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "canceled", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/reject", nil, carolToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rejected", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodGet, "/api/friends/requests?direction=outgoing", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	// Terminal states can't be blocked
	w = a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/block", nil, carolToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFriendBlockAfterCanceledOwnRequest(t *testing.T) {
	a := newTestApp(t)

	aliceID, aliceToken := a.verifiedUser(t, "alice01", "alice")
	bobID, bobToken := a.verifiedUser(t, "bob0001", "bob")

	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken).Code)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/friends/"+bobID+"/cancel", nil, aliceToken).Code)

	w := a.do(t, http.MethodPost, "/api/friends/"+aliceID, nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/friends/"+bobID+"/accept", nil, aliceToken).Code)

	// Alice's own row is canceled, the accepted one goes the other way
	w = a.do(t, http.MethodPost, "/api/friends/"+bobID+"/block", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blocked", decode[map[string]any](t, w)["status"])

	w = a.do(t, http.MethodGet, "/api/friends", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = a.do(t, http.MethodGet, "/api/friends/blocked", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)
}

func TestFriendRequestRefusedWhenBlocked(t *testing.T) {
	a := newTestApp(t)

	aliceID, aliceToken := a.verifiedUser(t, "alice01", "alice")
	bobID, bobToken := a.verifiedUser(t, "bob0001", "bob")

	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/friends/"+bobID, nil, aliceToken).Code)
	require.Equal(t, http.StatusOK, a.do(t, http.MethodPost, "/api/friends/"+aliceID+"/block", nil, bobToken).Code)

	// Neither side gets a fresh pending row around the block
	w := a.do(t, http.MethodPost, "/api/friends/"+aliceID, nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodGet, "/api/friends/requests", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestFriendsRequireVerifiedEmail(t *testing.T) {
	a := newTestApp(t)

	id := a.signup(t, "fresh01", "fresh", "fresh@example.com")
	token, _, err := security.MakeAuthToken(id, time.Now())
	require.NoError(t, err)

	w := a.do(t, http.MethodGet, "/api/friends", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func uploadAvatar(t *testing.T, a *testApp, token string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("avatar", "avatar.bin")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/users/me/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestAvatarUpload(t *testing.T) {
	a := newTestApp(t)

	id, token := a.verifiedUser(t, "alice01", "alice")

	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

	w := uploadAvatar(t, a, token, png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	key := decode[map[string]string](t, w)["avatar_key"]
	assert.Regexp(t, `^avatars/`+id+`/.+\.png$`, key)
	assert.Contains(t, a.storage.objects, key)

	// Replacing drops the old object
	w = uploadAvatar(t, a, token, png)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, a.storage.objects, key)
	assert.Len(t, a.storage.objects, 1)

	w = uploadAvatar(t, a, token, []byte("just some text, not an image"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestAvatarUploadDisabled(t *testing.T) {
	a := newTestApp(t)
	a.deps.Storage = service.NoStorage{}

	_, token := a.verifiedUser(t, "alice01", "alice")

	w := uploadAvatar(t, a, token, []byte("\x89PNG\r\n\x1a\n"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
