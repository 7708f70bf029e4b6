package controllers

import (
	"fmt"
	"net/http"
	"time"

	"embeddingsqna/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const sessionCookie = "qna_session"

// SessionManager ties a browser to its session.State through a signed cookie.
type SessionManager struct {
	store              session.Store
	secret             []byte
	ttl                time.Duration
	defaultTemperature float64
}

func NewSessionManager(store session.Store, secret string, ttl time.Duration, defaultTemperature float64) *SessionManager {
	return &SessionManager{store: store, secret: []byte(secret), ttl: ttl, defaultTemperature: defaultTemperature}
}

// Load returns the caller's state, starting a new session when the cookie is
// missing, invalid or points at an expired state.
func (m *SessionManager) Load(c *gin.Context) (*session.State, error) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		if id, err := m.parse(token); err == nil {
			st, found, err := m.store.Get(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			if found {
				return st, nil
			}
			return session.New(id, m.defaultTemperature), nil
		}
	}

	st := session.New(uuid.NewString(), m.defaultTemperature)
	token, err := m.sign(st.ID)
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(m.ttl.Seconds()), "/", "", false, true)
	return st, nil
}

func (m *SessionManager) Save(c *gin.Context, st *session.State) error {
	return m.store.Save(c.Request.Context(), st)
}

func (m *SessionManager) sign(id string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   id,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) parse(token string) (string, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
