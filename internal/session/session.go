package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
)

const (
	SessionCookie = "session"
	CSRFCookie    = "csrf_token"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so a failed login never discloses which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Burned when the email lookup misses, so both login failure legs pay the
// bcrypt cost.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Claims is the session token payload: a user identity plus expiry.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens and owns the session/CSRF
// cookies. It is the only component that reads or writes credential cookies;
// everything downstream receives explicit identity values.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
	secure     bool
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		signingKey: []byte(cfg.Session.SigningKey),
		ttl:        time.Duration(cfg.Session.ExpirationHours) * time.Hour,
		secure:     cfg.Server.Env == "production",
	}
}

// Sign creates a session token embedding the user's identity.
func (m *Manager) Sign(userID uint) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// Verify parses and validates a session token, returning the embedded user
// id. Any signature, structure or expiry failure rejects the token; a
// tampered token never resolves to a different user.
func (m *Manager) Verify(tokenString string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.signingKey, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return 0, jwt.ErrSignatureInvalid
	}
	return claims.UserID, nil
}

// Authenticate verifies an email/password pair against the user table. The
// email is matched lower-cased.
func (m *Manager) Authenticate(db *gorm.DB, email, password string) (*model.User, error) {
	var user model.User
	result := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, result.Error
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// UserID resolves the caller's identity from the session cookie. The boolean
// is false when no valid, unexpired, correctly signed session is present.
func (m *Manager) UserID(c echo.Context) (uint, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return 0, false
	}
	userID, err := m.Verify(cookie.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// SetSessionCookie issues a session token for userID and stores it in the
// HttpOnly session cookie.
func (m *Manager) SetSessionCookie(c echo.Context, userID uint) error {
	token, err := m.Sign(userID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSessionCookie logs the caller out cookie-side. A still-valid token
// replayed before expiry remains verifiable; there is no server-side
// revocation list.
func (m *Manager) ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// EnsureCSRFCookie returns the existing anti-forgery token or generates a new
// one. The cookie is deliberately script-readable: the client echoes its
// value back on state-changing requests (double-submit).
func (m *Manager) EnsureCSRFCookie(c echo.Context) string {
	if cookie, err := c.Cookie(CSRFCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     CSRFCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: false,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}
