package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

const (
	macSize    = sha256.Size
	DefaultTTL = time.Hour
)

// Claims is the CBOR-encoded payload of a session token.
type Claims struct {
	// Subject is the caller's email address.
	Subject string `cbor:"1,keyasint"`

	// ID is unique per issued token.
	ID string `cbor:"2,keyasint"`

	// IssuedAt and ExpiresAt are Unix timestamps in seconds.
	IssuedAt  int64 `cbor:"3,keyasint"`
	ExpiresAt int64 `cbor:"4,keyasint"`
}

// Errors returned by Verify. Every one of them matches ErrInvalidToken
// under errors.Is.
var (
	ErrInvalidToken     = errors.New("session: invalid token")
	ErrMalformedToken   = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired     = fmt.Errorf("%w: expired", ErrInvalidToken)
	ErrEmptySecret      = errors.New("session: signing secret is empty")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("session: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("session: CBOR decoder initialization failed: " + err.Error())
	}
}

type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a Signer; a non-positive ttl falls back to DefaultTTL.
func NewSigner(secret []byte, ttl time.Duration) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: secret, ttl: ttl}, nil
}

func (s *Signer) TTL() time.Duration {
	return s.ttl
}

func (s *Signer) Issue(email string) (string, Claims, error) {
	return s.IssueAt(email, time.Now())
}

// IssueAt is like Issue but takes the issuance time explicitly.
func (s *Signer) IssueAt(email string, now time.Time) (string, Claims, error) {
	claims := Claims{
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	payload, err := encMode.Marshal(claims)
	if err != nil {
		return "", Claims{}, fmt.Errorf("session: encoding claims: %w", err)
	}

	raw := make([]byte, 0, len(payload)+macSize)
	raw = append(raw, payload...)
	raw = append(raw, s.sign(payload)...)

	return base64.RawURLEncoding.EncodeToString(raw), claims, nil
}

func (s *Signer) Verify(token string) (*Claims, error) {
	return s.VerifyAt(token, time.Now())
}

// VerifyAt is like Verify but checks expiry against now.
func (s *Signer) VerifyAt(token string, now time.Time) (*Claims, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformedToken
	}
	if len(raw) <= macSize {
		return nil, ErrMalformedToken
	}

	split := len(raw) - macSize
	payload, mac := raw[:split], raw[split:]
	if !hmac.Equal(mac, s.sign(payload)) {
		return nil, ErrInvalidSignature
	}

	var claims Claims
	if err := decMode.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	if now.Unix() >= claims.ExpiresAt {
		return nil, ErrTokenExpired
	}

	return &claims, nil
}

func (s *Signer) sign(payload []byte) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write(payload)
	return h.Sum(nil)
}
