// Package passwd hashes and verifies admin passwords with argon2id.
//
// Parameters are fixed constants shared by hash and verify, so every
// digest this package ever produced carries the same cost. That keeps
// verification time uniform across users, which the login flow relies
// on to avoid leaking whether a username exists.
package passwd

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Cost parameters, chosen once. Changing them invalidates no stored
// digest (each digest encodes its own parameters) but new digests must
// remain comparable in cost to the dummy digest below.
const (
	memoryKiB   = 19456
	timeCost    = 2
	parallelism = 1
	saltLen     = 16
	keyLen      = 32
)

// dummyPassword is hashed once per Hasher so that verifying a password
// for a non-existent user costs the same as for a real one.
const dummyPassword = "invalid-password"

type (
	// Hasher produces and verifies PHC-encoded argon2id digests of the
	// form $argon2id$v=19$m=...,t=...,p=...$<salt>$<key>.
	Hasher struct {
		dummy string
	}

	params struct {
		memory  uint32
		time    uint32
		threads uint8
		salt    []byte
		key     []byte
	}
)

func NewHasher() (*Hasher, error) {
	h := &Hasher{}
	dummy, err := h.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("unable to compute dummy digest, cause %w", err)
	}
	h.dummy = dummy
	return h, nil
}

// Hash derives an argon2id digest of plaintext under a fresh random
// salt and encodes it as a PHC string.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, timeCost, memoryKiB, parallelism, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memoryKiB, timeCost, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches the given digest. A
// mismatch is not an error; errors indicate a digest this package
// cannot parse. The final comparison is constant-time.
func (h *Hasher) Verify(digest, plaintext string) (bool, error) {
	p, err := decode(digest)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

// DummyDigest returns a digest of a fixed throwaway password, computed
// with the same cost as every real digest. Callers verify candidate
// passwords against it when no user record exists.
func (h *Hasher) DummyDigest() string {
	return h.dummy
}

func decode(digest string) (params, error) {
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params{}, fmt.Errorf("unable to decode digest, not an argon2id PHC string")
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params{}, fmt.Errorf("unable to decode digest version, cause %w", err)
	}
	if version != argon2.Version {
		return params{}, fmt.Errorf("unsupported argon2 version %v", version)
	}
	var p params
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return params{}, fmt.Errorf("unable to decode digest parameters, cause %w", err)
	}
	p.threads = uint8(threads)
	var err error
	p.salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params{}, fmt.Errorf("unable to decode digest salt, cause %w", err)
	}
	p.key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return params{}, fmt.Errorf("unable to decode digest key, cause %w", err)
	}
	if len(p.key) == 0 {
		return params{}, fmt.Errorf("unable to decode digest, empty key")
	}
	return p, nil
}
