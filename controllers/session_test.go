package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"embeddingsqna/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewSessionManager(session.NewMemoryStore(time.Hour), "secret", time.Hour, 0.7)

	token, err := m.sign("abc")
	require.NoError(t, err)
	id, err := m.parse(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	other := NewSessionManager(session.NewMemoryStore(time.Hour), "other", time.Hour, 0.7)
	_, err = other.parse(token)
	assert.Error(t, err)
}

func TestSessionLoadCreatesAndReuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewSessionManager(session.NewMemoryStore(time.Hour), "secret", time.Hour, 0.4)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	st, err := m.Load(c)
	require.NoError(t, err)
	assert.Equal(t, 0.4, st.CustomTemperature)
	assert.Equal(t, 1, st.InputMessageKey)
	st.Response = "kept"
	require.NoError(t, m.Save(c, st))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c2.Request.AddCookie(cookies[0])

	again, err := m.Load(c2)
	require.NoError(t, err)
	assert.Equal(t, st.ID, again.ID)
	assert.Equal(t, "kept", again.Response)
	assert.Empty(t, w2.Result().Cookies())
}

func TestSessionLoadRejectsForgedCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewSessionManager(session.NewMemoryStore(time.Hour), "secret", time.Hour, 0.7)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.AddCookie(&http.Cookie{Name: sessionCookie, Value: "not-a-token"})

	st, err := m.Load(c)
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Len(t, w.Result().Cookies(), 1)
}
