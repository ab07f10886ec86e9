package account

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a client secret into a stored credential hash.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(hash string, secret string) bool
}

const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// NewHasher maps a config scheme name to a Hasher.
// sha256 keeps the legacy unsalted digests, bcrypt is the
// hardened option for new deployments.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeBcrypt:
		return BcryptHasher{}, nil
	}
	return nil, errors.NotValidf("password scheme=%s", scheme)
}

type SHA256Hasher struct{}

func (SHA256Hasher) Hash(secret string) (string, error) {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:]), nil
}

func (SHA256Hasher) Verify(hash string, secret string) bool {
	sum := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(hash)) == 1
}

type BcryptHasher struct {
	Cost int // 0 = bcrypt.DefaultCost
}

func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", errors.Annotate(err, "bcrypt")
	}
	return string(b), nil
}

func (BcryptHasher) Verify(hash string, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
