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

package jwk

import (
	"crypto"
	"crypto/ed25519"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/deep-rent/jose/jwa"
)

// Builder constructs Keys and KeyPairs programmatically, e.g. from keys
// generated in-process or loaded from a secrets manager. The type
// parameter T is the public key type expected by alg (e.g.
// *ecdsa.PublicKey for jwa.ES256, or []byte for jwa.EdDSA).
type Builder[T crypto.PublicKey] struct {
	alg jwa.Algorithm[T]
	kid string
}

// NewKeyBuilder starts a Builder for the given algorithm.
func NewKeyBuilder[T crypto.PublicKey](alg jwa.Algorithm[T]) *Builder[T] {
	return &Builder[T]{alg: alg}
}

// WithKeyID sets the "kid" the built key will carry. A key id is
// mandatory: Build and BuildPair panic without one.
func (b *Builder[T]) WithKeyID(kid string) *Builder[T] {
	b.kid = kid
	return b
}

// Build creates a public-only Key from pub. It panics if WithKeyID was
// never called.
func (b *Builder[T]) Build(pub T) Key {
	if b.kid == "" {
		panic("jwk: builder: key id is required, call WithKeyID first")
	}
	return &descriptor{alg: b.alg.String(), kid: b.kid, mat: any(pub)}
}

// BuildPair creates a KeyPair from a crypto.Signer. The signer's public
// key must be assignable to T; it panics otherwise, since a builder
// misconfigured with the wrong algorithm is a programming error, not a
// runtime condition callers should recover from.
func (b *Builder[T]) BuildPair(signer crypto.Signer) KeyPair {
	if b.kid == "" {
		panic("jwk: builder: key id is required, call WithKeyID first")
	}
	pub, ok := toMaterial[T](signer.Public())
	if !ok {
		panic(fmt.Sprintf("jwk: builder: incompatible key type for algorithm %s", b.alg))
	}
	return &descriptor{alg: b.alg.String(), kid: b.kid, mat: any(pub), prv: signer}
}

// toMaterial converts a crypto.PublicKey to the generic type T. A direct
// type assertion is attempted first; when T is []byte (the EdDSA case),
// ed25519.PublicKey and ed448.PublicKey are unwrapped explicitly, since
// neither named type satisfies a .([]byte) assertion despite sharing its
// underlying representation.
func toMaterial[T crypto.PublicKey](pub crypto.PublicKey) (T, bool) {
	var zero T
	if v, ok := pub.(T); ok {
		return v, true
	}
	if _, wantBytes := any(zero).([]byte); wantBytes {
		switch k := pub.(type) {
		case ed25519.PublicKey:
			if v, ok := any([]byte(k)).(T); ok {
				return v, true
			}
		case ed448.PublicKey:
			if v, ok := any([]byte(k)).(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}
