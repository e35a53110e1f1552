package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskfolk/tasklistd/internal/kv"
)

var (
	// ErrTokenInvalid covers malformed tokens and signature mismatches.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked is returned for tokens blacklisted by logout.
	ErrTokenRevoked = errors.New("token revoked")
)

const blacklistSpace = "bl/"

// Claims is the signed payload of a session token.
type Claims struct {
	ID      string `json:"id"`
	Subject string `json:"sub"`
	Expires int64  `json:"exp"`
}

// Tokens mints and verifies HMAC-SHA256 signed session tokens. The secret
// is injected at construction; there is no package-level signing state.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	store  kv.Store
	now    func() time.Time
}

// NewTokens creates a token service. The store holds the logout blacklist.
func NewTokens(secret []byte, ttl time.Duration, store kv.Store) *Tokens {
	return &Tokens{secret: secret, ttl: ttl, store: store, now: time.Now}
}

// Mint issues a signed token for the given subject identity.
func (t *Tokens) Mint(subject string) (string, error) {
	claims := Claims{
		ID:      uuid.NewString(),
		Subject: subject,
		Expires: t.now().Add(t.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + t.sign(body), nil
}

// Verify checks the token's signature, expiry and revocation status and
// returns its claims. The subject of a verified token is the owner
// identity handed to the workers.
func (t *Tokens) Verify(token string) (*Claims, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(t.sign(body)), []byte(sig)) != 1 {
		return nil, ErrTokenInvalid
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrTokenInvalid
	}

	if t.now().Unix() >= claims.Expires {
		return nil, ErrTokenExpired
	}

	_, err = t.store.Get(blacklistSpace + claims.ID)
	if err == nil {
		return nil, ErrTokenRevoked
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}

	return &claims, nil
}

// Revoke blacklists a token until its natural expiry. Used by logout;
// idempotent for already-revoked tokens.
func (t *Tokens) Revoke(claims *Claims) error {
	expiry := time.Unix(claims.Expires, 0).UTC().Format(time.RFC3339)
	err := t.store.PutIfAbsent(blacklistSpace+claims.ID, expiry)
	if err != nil && !errors.Is(err, kv.ErrAlreadyExists) {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (t *Tokens) sign(body string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}
