package jwt

import (
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service issues and validates the local session tokens the UI shell uses
// against the agent's loopback API. Tokens never leave the machine; the
// signing secret is per-device.
type Service interface {
	GenerateSessionToken(email string, userID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(email string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (email string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

type JWTService struct {
	secretKey                 string
	sessionTokenExpirationStr string
	tokenAuth                 *jwtauth.JWTAuth
	revokedTokens             map[string]int64
	mu                        sync.RWMutex
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, sessionTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		sessionTokenExpirationStr: sessionTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:             make(map[string]int64),
	}
}

// GenerateSessionToken mints the token handed out after a successful pin
// unlock.
func (j *JWTService) GenerateSessionToken(email string, userID string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.sessionTokenExpirationStr)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"email":   email,
		"user_id": userID,
		"type":    "session",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = time.Now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// GenerateSSEToken mints a short-lived token for the event stream, which is
// opened by EventSource and cannot set an Authorization header.
func (j *JWTService) GenerateSSEToken(email string) (token string, expiresIn int, err error) {
	expiresIn = 300
	expiresAt := time.Now().Add(5 * time.Minute).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"email": email,
		"type":  "sse",
		"exp":   expiresAt,
	})
	return tokenString, expiresIn, err
}

func (j *JWTService) ValidateSSEToken(tokenString string) (email string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}

	emailVal, ok := token.Get("email")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	email, ok = emailVal.(string)
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	return email, nil
}
