package main

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	minNicknameLen = 2
	maxNicknameLen = 16
)

// Auth signs and verifies session tokens
type Auth struct {
	secret []byte
	ttl    time.Duration
}

// SessionClaims are the identity a token carries
type SessionClaims struct {
	Nickname string
	Account  string
	Elite    bool
}

// NewAuth creates an Auth. An empty secret gets a random one, which makes
// tokens valid for this process only.
func NewAuth(cfg AuthConfig) *Auth {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic("failed to generate JWT secret: " + err.Error())
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultConfig().Auth.TokenTTL
	}
	return &Auth{secret: secret, ttl: ttl}
}

// IssueToken signs a token for a nickname
func (a *Auth) IssueToken(c SessionClaims) (string, error) {
	nick, err := CleanNickname(c.Nickname)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"nick":  nick,
		"acc":   c.Account,
		"elite": c.Elite,
		"exp":   now.Add(a.ttl).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken verifies a token and returns its claims
func (a *Auth) ValidateToken(tokenStr string) (SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	nick, ok := claims["nick"].(string)
	if !ok || nick == "" {
		return SessionClaims{}, fmt.Errorf("%w: missing nickname", ErrInvalidToken)
	}
	acc, _ := claims["acc"].(string)
	elite, _ := claims["elite"].(bool)
	return SessionClaims{Nickname: nick, Account: acc, Elite: elite}, nil
}

// CleanNickname trims and length-checks a nickname
func CleanNickname(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len([]rune(name)); n < minNicknameLen || n > maxNicknameLen {
		return "", fmt.Errorf("nickname must be %d-%d characters", minNicknameLen, maxNicknameLen)
	}
	return name, nil
}

// GuestName creates a nickname like "Guest_a3f2c1"
func GuestName() string {
	return "Guest_" + GenerateID(3)
}

// HashPassword hashes a room password
func HashPassword(pw string, cost int) ([]byte, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword([]byte(pw), cost)
}

// CheckPassword compares a room password with its hash
func CheckPassword(hash []byte, pw string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(pw)) == nil
}
