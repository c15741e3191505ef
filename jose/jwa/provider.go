// Copyright (c) 2025-present deep.rent GmbH (https://deep.rent)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwa

import (
	"crypto"
	"fmt"

	"github.com/deep-rent/jose"
)

// Provider erases the type parameter of Algorithm (or the symmetric
// equivalent Symmetric) so that callers which only know an "alg" string
// at runtime -- jose/jwk and jose/jwt -- can look up and drive a signer
// without themselves becoming generic.
//
// key, for VerifyWith, and signer, for SignWith, are either a
// crypto.PublicKey / crypto.Signer pair for asymmetric algorithms, or a
// []byte shared secret for symmetric (HMAC) algorithms.
type Provider interface {
	fmt.Stringer

	// Symmetric reports whether this algorithm is keyed by a shared
	// secret rather than a public/private key pair.
	Symmetric() bool

	// VerifyWith checks a signature using key, returning false (never an
	// error) if key is of the wrong concrete type for this algorithm.
	VerifyWith(key any, msg, sig []byte) bool

	// SignWith computes a signature using signer. It returns
	// jose.ErrCryptoFailure if signer is of the wrong concrete type for
	// this algorithm.
	SignWith(signer any, msg []byte) ([]byte, error)
}

// asymmetric adapts an Algorithm[T] to the Provider interface.
type asymmetric[T crypto.PublicKey] struct {
	alg Algorithm[T]
}

func (a asymmetric[T]) String() string    { return a.alg.String() }
func (a asymmetric[T]) Symmetric() bool   { return false }

func (a asymmetric[T]) VerifyWith(key any, msg, sig []byte) bool {
	k, ok := key.(T)
	if !ok {
		return false
	}
	return a.alg.Verify(k, msg, sig)
}

func (a asymmetric[T]) SignWith(signer any, msg []byte) ([]byte, error) {
	s, ok := signer.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: jwa: %s: signer does not implement crypto.Signer", jose.ErrCryptoFailure, a.alg)
	}
	return a.alg.Sign(s, msg)
}

// symmetric adapts a Symmetric algorithm to the Provider interface.
type symmetric struct {
	alg Symmetric
}

func (s symmetric) String() string  { return s.alg.String() }
func (s symmetric) Symmetric() bool { return true }

func (s symmetric) VerifyWith(key any, msg, sig []byte) bool {
	k, ok := key.([]byte)
	if !ok {
		return false
	}
	return s.alg.Verify(k, msg, sig)
}

func (s symmetric) SignWith(signer any, msg []byte) ([]byte, error) {
	k, ok := signer.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: jwa: %s: key is not a []byte secret", jose.ErrCryptoFailure, s.alg)
	}
	return s.alg.Sign(k, msg)
}

// none implements the "none" JWA identifier from RFC 7518 §3.6: the
// unsigned JWS algorithm. It is registered like any other Provider so
// that callers which only know an alg name by its string can recognize
// it, but jose/jwt never drives signing or verification through it
// directly -- an unsecured token carries no signature to check, which
// doesn't fit Provider's key/signer-shaped dispatch. Accepting one
// always requires the caller to opt in explicitly (see
// jwt.Verifier.AllowNone), never a side effect of this Provider being
// registered.
type none struct{}

func (none) String() string  { return NoneAlg }
func (none) Symmetric() bool { return false }

func (none) VerifyWith(key any, msg, sig []byte) bool {
	return len(sig) == 0
}

func (none) SignWith(signer any, msg []byte) ([]byte, error) {
	return []byte{}, nil
}

// NoneAlg is the JWA "alg" identifier for an unsigned JWS/JWT (RFC 7519
// §6). It is a recognized member of this package's registry, not an
// "unknown algorithm" -- jose/jwt special-cases it rather than routing
// real key material through it.
const NoneAlg = "none"

// registry maps a JWA "alg" name to its erased Provider.
var registry map[string]Provider

func init() {
	registry = make(map[string]Provider, 16)

	addAsymmetric(RS256)
	addAsymmetric(RS384)
	addAsymmetric(RS512)
	addAsymmetric(PS256)
	addAsymmetric(PS384)
	addAsymmetric(PS512)
	addAsymmetric(ES256)
	addAsymmetric(ES384)
	addAsymmetric(ES512)
	addAsymmetric(EdDSA)
	addSymmetric(HS256)
	addSymmetric(HS384)
	addSymmetric(HS512)
	register(none{})
}

func register(p Provider) {
	registry[p.String()] = p
}

func addAsymmetric[T crypto.PublicKey](alg Algorithm[T]) {
	register(asymmetric[T]{alg: alg})
}

func addSymmetric(alg Symmetric) {
	register(symmetric{alg: alg})
}

// Default looks up the Provider registered for a JWA "alg" name. It
// returns false if name is not one of the algorithms implemented by this
// package.
func Default(name string) (Provider, bool) {
	p, ok := registry[name]
	return p, ok
}

// Names returns the JWA names of every algorithm this package implements.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
