package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/cafe-reservations/internal/domain/user"
	"github.com/example/cafe-reservations/internal/internaltypes"
)

const (
	cookieName = "cafesched_admin"
	sessionTTL = 12 * time.Hour

	minPasswordLen = 8
)

const adminIDKey = "adminID"

// Store authenticates admin users and encodes their session cookie.
type Store struct {
	sc    *securecookie.SecureCookie
	users user.Repo
}

func NewStore(users user.Repo, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Store{sc: sc, users: users}
}

func HashPassword(pw string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
}

func CheckPassword(hash []byte, pw string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, fmt.Errorf("username is required")
	}
	if len(password) < minPasswordLen {
		return 0, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.users.Create(ctx, user.User{Username: username, PasswordHash: hash})
}

// Authenticate returns the admin id for valid credentials and
// internaltypes.ErrUnauthorized otherwise, including for unknown users.
func (s *Store) Authenticate(ctx context.Context, username, password string) (int64, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, internaltypes.ErrNotFound) {
		return 0, internaltypes.ErrUnauthorized
	}
	if err != nil {
		return 0, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return 0, internaltypes.ErrUnauthorized
	}
	return u.ID, nil
}

type Session struct {
	AdminID int64
}

type cookieValue struct {
	AdminID int64
	Issued  int64
}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, adminID int64) error {
	encoded, err := s.sc.Encode(cookieName, cookieValue{AdminID: adminID, Issued: time.Now().Unix()})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	var val cookieValue
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	if val.AdminID <= 0 {
		return Session{}, false
	}
	return Session{AdminID: val.AdminID}, true
}

// RequireAdmin aborts with 401 unless the request carries a valid session.
func (s *Store) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.GetSession(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(adminIDKey, sess.AdminID)
		c.Next()
	}
}

func AdminID(c *gin.Context) (int64, bool) {
	id, ok := c.Get(adminIDKey)
	if !ok {
		return 0, false
	}
	v, ok := id.(int64)
	return v, ok
}
