// Package password hashes and verifies user passwords with argon2id.
package password

import (
	"github.com/alexedwards/argon2id"
)

type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is 64 MiB, t=3, p=1.
var DefaultParams = Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type Hasher struct {
	p Params
}

// NewHasher fills zero fields from DefaultParams.
func NewHasher(p Params) *Hasher {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}
	return &Hasher{p: p}
}

// Hash returns a PHC string like `$argon2id$v=19$m=65536,t=3,p=1$...`
func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, &argon2id.Params{
		Memory:      h.p.Memory,
		Iterations:  h.p.Iterations,
		Parallelism: h.p.Parallelism,
		SaltLength:  h.p.SaltLength,
		KeyLength:   h.p.KeyLength,
	})
}

// Verify checks plain against a PHC hash and reports whether a rehash is recommended.
func (h *Hasher) Verify(plain, phc string) (ok bool, needsRehash bool, err error) {
	ok, err = argon2id.ComparePasswordAndHash(plain, phc)
	if err != nil || !ok {
		return ok, false, err
	}
	return ok, h.NeedsRehash(phc), nil
}

func (h *Hasher) NeedsRehash(phc string) bool {
	stored, _, _, err := argon2id.DecodeHash(phc)
	if err != nil {
		return true
	}
	return stored.Memory < h.p.Memory ||
		stored.Iterations < h.p.Iterations ||
		stored.Parallelism < h.p.Parallelism ||
		stored.SaltLength < h.p.SaltLength ||
		stored.KeyLength < h.p.KeyLength
}
