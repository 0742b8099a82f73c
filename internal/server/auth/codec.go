// Package auth signs and verifies the JWTs handed out as access and refresh
// tokens. The codec only checks signature and expiry; issuer, audience, type
// and usr are compared by the caller.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload embedded in every token.
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Type     string `json:"type"`
	Usr      string `json:"usr"`
	jwt.RegisteredClaims
}

// Outcome tags the result of Inspect.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeExpired
	OutcomeInvalid
	OutcomeInternal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeExpired:
		return "expired"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "internal"
	}
}

// Verification is the tagged result of checking a token. Claims is set for
// OutcomeValid and OutcomeExpired (the signature checked out in both cases).
type Verification struct {
	Outcome Outcome
	Claims  *Claims
	Err     error
}

var errEmptyKey = errors.New("empty signing key")

// Codec is an HS256 token codec. It holds no keys; callers pass the key for
// the token kind they are handling.
type Codec struct {
	now func() time.Time
}

func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// NewCodecWithClock is used by tests to pin the verification time.
func NewCodecWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Sign serializes claims and signs them under key.
func (c *Codec) Sign(claims *Claims, key []byte) (string, error) {
	if len(key) == 0 {
		return "", errEmptyKey
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature and expiry under key. Failures wrap
// common.ErrTokenExpired, common.ErrTokenMalformed or common.ErrTokenSignature;
// anything else is an internal failure.
func (c *Codec) Verify(token string, key []byte) (*Claims, error) {
	v := c.Inspect(token, key)
	if v.Outcome == OutcomeValid {
		return v.Claims, nil
	}
	return nil, v.Err
}

// Inspect verifies token under key and classifies the result.
func (c *Codec) Inspect(token string, key []byte) Verification {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		if len(key) == 0 {
			return nil, errEmptyKey
		}
		return key, nil
	})

	switch {
	case err == nil:
		return Verification{Outcome: OutcomeValid, Claims: claims}
	case errors.Is(err, jwt.ErrTokenExpired):
		return Verification{Outcome: OutcomeExpired, Claims: claims, Err: fmt.Errorf("%w: %v", common.ErrTokenExpired, err)}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Verification{Outcome: OutcomeInvalid, Err: fmt.Errorf("%w: %v", common.ErrTokenSignature, err)}
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenInvalidClaims):
		return Verification{Outcome: OutcomeInvalid, Err: fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)}
	default:
		return Verification{Outcome: OutcomeInternal, Err: fmt.Errorf("verify token: %w", err)}
	}
}
