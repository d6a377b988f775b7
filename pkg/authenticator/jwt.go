package authenticator

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mitchellh/mapstructure"
)

type standardClaims struct {
	jwt.RegisteredClaims
	Object any `json:"obj,omitempty"`
}

type jwtTokenEngine[T any] struct {
	secret     string
	expiration time.Duration
	counter    atomic.Int64
	now        Clock
}

func NewTokenEngine[T any](secret string, expiration time.Duration) *jwtTokenEngine[T] {
	return &jwtTokenEngine[T]{secret: secret, expiration: expiration, now: time.Now}
}

// WithClock replaces the clock used for issuing and validating tokens.
func (e *jwtTokenEngine[T]) WithClock(now Clock) *jwtTokenEngine[T] {
	e.now = now
	return e
}

func (e *jwtTokenEngine[T]) Generate(sub string, obj T) (string, error) {
	now := e.now()
	claims := standardClaims{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(e.expiration)),
			ID:        strconv.FormatInt(e.counter.Add(1), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   sub,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(e.secret))
}

func (e *jwtTokenEngine[T]) Verify(token string) (T, error) {
	var obj T
	var claims standardClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(e.secret), nil
	})
	if err != nil {
		return obj, err
	}

	if !claims.VerifyExpiresAt(e.now(), true) {
		return obj, fmt.Errorf("token is expired")
	}

	// The object comes back from json as a generic map.
	if err := mapstructure.Decode(claims.Object, &obj); err != nil {
		return obj, err
	}

	return obj, nil
}
