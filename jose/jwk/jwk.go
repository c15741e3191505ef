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

// Package jwk provides functionality to parse, construct, and serialize
// JSON Web Keys (JWK) and JSON Web Key Sets (JWKS), as defined in RFC
// 7517. Per RFC 7517 §4, only "kty" is mandatory: "alg" and "kid" may be
// absent, in which case a key can only be looked up by a JWS header that
// itself omits the corresponding hint (see Set.Find).
package jwk

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/deep-rent/jose"
	"github.com/deep-rent/jose/jwa"
)

// Hint is the minimum information needed to look a Key up in a Set: the
// "alg" and "kid" fields of a JWS header.
type Hint interface {
	Algorithm() string
	KeyID() string
}

// Key represents a JSON Web Key usable for signature verification (and,
// for an asymmetric key, possibly signing as well via KeyPair).
type Key interface {
	Hint

	// Thumbprint returns the RFC 7638 JWK thumbprint of the key, base64url
	// encoded. It returns the empty string if the thumbprint cannot be
	// computed for this key's material.
	Thumbprint() string

	// Material returns the key's underlying cryptographic representation:
	// *rsa.PublicKey, *ecdsa.PublicKey, a raw Ed25519/Ed448 public key
	// ([]byte), or a shared secret ([]byte) for HMAC keys.
	Material() any

	// Verify checks a signature against a message using this key. It
	// returns false, never an error, if either argument is nil or the
	// signature does not verify.
	Verify(msg, sig []byte) bool

	// Operations returns the bit-set of operations this key is restricted
	// to via its "key_ops" member (RFC 7517 §4.3). It returns 0 if the
	// member was absent, empty, or held none of the recognized values,
	// meaning the key carries no restriction.
	Operations() Operation
}

// Operation is a bit-set of the JWK "key_ops" values this package
// recognizes.
type Operation uint8

const (
	// OpSign marks a key usable to produce signatures ("sign").
	OpSign Operation = 1 << iota
	// OpVerify marks a key usable to check signatures ("verify").
	OpVerify
)

// Has reports whether every bit set in want is also set in o.
func (o Operation) Has(want Operation) bool { return o&want == want }

// KeyPair extends Key with the ability to produce signatures. Every Key
// produced by Parse or a Builder implements it, but Sign only succeeds
// for keys that carry private key material (built via Builder.BuildPair,
// or parsed from a JWK carrying a "d"/"k" member).
type KeyPair interface {
	Key

	// Sign computes a signature over msg. It returns jose.ErrKeyInvalid if
	// this key has no private material.
	Sign(msg []byte) ([]byte, error)
}

// descriptor is the concrete Key/KeyPair implementation produced by Parse
// and Builder.
type descriptor struct {
	alg string
	kid string
	use string
	ops Operation
	mat any // public (or symmetric) material
	prv any // crypto.Signer, or a []byte secret for HMAC; nil if public-only
}

func (d *descriptor) Algorithm() string     { return d.alg }
func (d *descriptor) KeyID() string         { return d.kid }
func (d *descriptor) Material() any         { return d.mat }
func (d *descriptor) Operations() Operation { return d.ops }

func (d *descriptor) Thumbprint() string {
	tp, err := Thumbprint(d)
	if err != nil {
		return ""
	}
	return tp
}

func (d *descriptor) Verify(msg, sig []byte) bool {
	if msg == nil || sig == nil {
		return false
	}
	if d.ops != 0 && !d.ops.Has(OpVerify) {
		return false
	}
	p, ok := jwa.Default(d.alg)
	if !ok {
		return false
	}
	return p.VerifyWith(d.mat, msg, sig)
}

func (d *descriptor) Sign(msg []byte) ([]byte, error) {
	if d.prv == nil {
		return nil, fmt.Errorf("%w: %q has no private key material", jose.ErrKeyInvalid, d.kid)
	}
	if d.ops != 0 && !d.ops.Has(OpSign) {
		return nil, fmt.Errorf("%w: %q is not permitted to sign by its key_ops", jose.ErrKeyInvalid, d.kid)
	}
	p, ok := jwa.Default(d.alg)
	if !ok {
		return nil, fmt.Errorf("%w: %q", jose.ErrUnknownAlg, d.alg)
	}
	return p.SignWith(d.prv, msg)
}

// wire is the on-the-wire JSON shape of a JWK, covering the public and
// private members of every key type this package supports. Ops is kept
// as a raw jsontext.Value rather than []string because RFC 7517 §4.3
// permits the "key_ops" array to hold values this package doesn't
// recognize; decodeOps tolerates and flags those individually instead of
// failing json.Unmarshal for the whole key.
type wire struct {
	Kty string         `json:"kty"`
	Use string         `json:"use,omitempty"`
	Ops jsontext.Value `json:"key_ops,omitempty"`
	Alg string         `json:"alg,omitempty"`
	Kid string         `json:"kid,omitempty"`
	Crv string         `json:"crv,omitempty"`
	X   []byte         `json:"x,omitempty,format:base64url"`
	Y   []byte         `json:"y,omitempty,format:base64url"`
	N   []byte         `json:"n,omitempty,format:base64url"`
	E   []byte         `json:"e,omitempty,format:base64url"`
	D   []byte         `json:"d,omitempty,format:base64url"`
	K   []byte         `json:"k,omitempty,format:base64url"`
}

// decodeOps parses the "key_ops" array, OR-ing every recognized value
// ("sign", "verify") into the returned bit-set. A non-string element (or
// any other malformed entry) does not fail the key: it is skipped and
// reported via the returned error, alongside the ops successfully
// extracted from its well-formed siblings. An unrecognized-but-valid
// string (e.g. "encrypt") is ignored per RFC 7517 §4.3's extensibility.
func decodeOps(raw jsontext.Value) (Operation, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var items []jsontext.Value
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("%w: key_ops is not a JSON array", jose.ErrMalformed)
	}
	var ops Operation
	var errs []error
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			errs = append(errs, fmt.Errorf("%w: JWK has an invalid value in key_ops", jose.ErrMalformed))
			continue
		}
		switch s {
		case "sign":
			ops |= OpSign
		case "verify":
			ops |= OpVerify
		}
	}
	return ops, errors.Join(errs...)
}

// Parse parses a single Key from its JSON representation. It requires
// only "kty" to be present, per RFC 7517 §4.1; "alg" and "kid" are
// optional and, if absent, leave Key.Algorithm/KeyID returning "". When
// present, "alg" must name a JWA this package implements, and the key
// material must be internally consistent (correct lengths, a point on
// the declared curve, a non-zero RSA exponent, and so on).
//
// Parse may return both a usable Key and a non-nil error: this happens
// when the key itself parsed fine but its "key_ops" member contained an
// invalid entry (see decodeOps), which RFC 7517 treats as a defect in
// that one member, not a reason to reject the whole key.
func Parse(in []byte) (Key, error) {
	var w wire
	if err := json.Unmarshal(in, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	if w.Kty == "" {
		return nil, fmt.Errorf("%w: missing required parameter 'kty'", jose.ErrMalformed)
	}
	if w.Alg != "" {
		if _, ok := jwa.Default(w.Alg); !ok {
			return nil, fmt.Errorf("%w: %q", jose.ErrUnknownAlg, w.Alg)
		}
	}
	mat, prv, err := decodeMaterial(&w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrKeyInvalid, err)
	}
	ops, opsErr := decodeOps(w.Ops)
	d := &descriptor{
		alg: w.Alg,
		kid: w.Kid,
		use: w.Use,
		ops: ops,
		mat: mat,
		prv: prv,
	}
	if opsErr != nil {
		return d, opsErr
	}
	return d, nil
}

// decodeMaterial reconstructs the key material described by w, keyed by
// "kty". It returns the public (or symmetric) material and, if present,
// the private material.
func decodeMaterial(w *wire) (mat any, prv any, err error) {
	switch w.Kty {
	case "RSA":
		return decodeRSA(w)
	case "EC":
		return decodeECDSA(w)
	case "OKP":
		return decodeOKP(w)
	case "oct":
		return decodeOct(w)
	default:
		return nil, nil, fmt.Errorf("unsupported key type %q", w.Kty)
	}
}

func decodeRSA(w *wire) (any, any, error) {
	if len(w.N) == 0 {
		return nil, nil, errors.New("missing RSA modulus")
	}
	if len(w.E) == 0 {
		return nil, nil, errors.New("missing RSA public exponent")
	}
	n := new(big.Int).SetBytes(w.N)
	e := new(big.Int).SetBytes(w.E).Int64()
	if e == 0 {
		return nil, nil, errors.New("public exponent is zero")
	}
	pub := &rsa.PublicKey{N: n, E: int(e)}
	if len(w.D) == 0 {
		return pub, nil, nil
	}
	prv := &rsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(w.D),
	}
	prv.Precompute()
	return pub, prv, nil
}

var ecdsaCurves = map[string]elliptic.Curve{
	"P-256": elliptic.P256(),
	"P-384": elliptic.P384(),
	"P-521": elliptic.P521(),
}

func decodeECDSA(w *wire) (any, any, error) {
	crv, ok := ecdsaCurves[w.Crv]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported EC curve %q", w.Crv)
	}
	if len(w.X) == 0 || len(w.Y) == 0 {
		return nil, nil, errors.New("missing EC coordinate")
	}
	x := new(big.Int).SetBytes(w.X)
	y := new(big.Int).SetBytes(w.Y)
	if !crv.IsOnCurve(x, y) {
		return nil, nil, fmt.Errorf("point is not on curve %q", w.Crv)
	}
	pub := &ecdsa.PublicKey{Curve: crv, X: x, Y: y}
	if len(w.D) == 0 {
		return pub, nil, nil
	}
	prv := &ecdsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(w.D),
	}
	return pub, prv, nil
}

func decodeOKP(w *wire) (any, any, error) {
	var want int
	switch w.Crv {
	case "Ed25519":
		want = ed25519.PublicKeySize
	case "Ed448":
		want = ed448.PublicKeySize
	default:
		return nil, nil, fmt.Errorf("unsupported OKP curve %q", w.Crv)
	}
	if len(w.X) != want {
		return nil, nil, fmt.Errorf("illegal key size for %s curve: got %d, want %d", w.Crv, len(w.X), want)
	}
	pub := make([]byte, len(w.X))
	copy(pub, w.X)
	if len(w.D) == 0 {
		return pub, nil, nil
	}
	switch w.Crv {
	case "Ed25519":
		if len(w.D) != ed25519.SeedSize {
			return nil, nil, fmt.Errorf("illegal private key size for %s curve: got %d, want %d", w.Crv, len(w.D), ed25519.SeedSize)
		}
		prv := ed25519.NewKeyFromSeed(w.D)
		return pub, prv, nil
	case "Ed448":
		if len(w.D) != ed448.SeedSize {
			return nil, nil, fmt.Errorf("illegal private key size for %s curve: got %d, want %d", w.Crv, len(w.D), ed448.SeedSize)
		}
		prv := ed448.NewKeyFromSeed(w.D)
		return pub, prv, nil
	default:
		return pub, nil, nil
	}
}

func decodeOct(w *wire) (any, any, error) {
	if len(w.K) == 0 {
		return nil, nil, errors.New("invalid or empty value for required member 'k'")
	}
	k := make([]byte, len(w.K))
	copy(k, w.K)
	return k, k, nil
}

// Set is an ordered, index-stable collection of Keys, typically parsed
// from a JWKS document. Entries that failed to parse still occupy their
// original index (see ParseSet); only successfully parsed keys are
// surfaced through Keys and Find.
type Set interface {
	// Keys iterates over every successfully parsed key, in document order.
	Keys() iter.Seq[Key]
	// Len returns the total number of entries, including any that failed
	// to parse.
	Len() int
	// Get returns the key at index i and any error recorded for it. It
	// returns jose.ErrNotFound if i is out of range.
	Get(i int) (Key, error)
	// Find looks up the unique key whose "kid" and "alg" both match hint.
	// It returns nil if no key matches, or if more than one does; use
	// Candidates to distinguish the two cases.
	Find(hint Hint) Key
	// Candidates returns every key matching the given kid and alg. Either
	// may be empty to mean "any".
	Candidates(kid, alg string) []Key
}

type entry struct {
	key Key
	err error
}

type set struct {
	entries []entry
}

func (s *set) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, e := range s.entries {
			if e.key == nil {
				continue
			}
			if !yield(e.key) {
				return
			}
		}
	}
}

func (s *set) Len() int { return len(s.entries) }

func (s *set) Get(i int) (Key, error) {
	if i < 0 || i >= len(s.entries) {
		return nil, fmt.Errorf("%w: index %d", jose.ErrNotFound, i)
	}
	e := s.entries[i]
	return e.key, e.err
}

func (s *set) Candidates(kid, alg string) []Key {
	var out []Key
	for _, e := range s.entries {
		if e.key == nil {
			continue
		}
		if kid != "" && e.key.KeyID() != kid {
			continue
		}
		if alg != "" && e.key.Algorithm() != alg {
			continue
		}
		out = append(out, e.key)
	}
	return out
}

func (s *set) Find(hint Hint) Key {
	if hint == nil {
		return nil
	}
	c := s.Candidates(hint.KeyID(), hint.Algorithm())
	if len(c) != 1 {
		return nil
	}
	return c[0]
}

// NewSet builds a Set from already-constructed Keys, e.g. ones produced
// by a Builder. Nil keys are recorded as empty entries.
func NewSet(keys ...Key) Set {
	entries := make([]entry, len(keys))
	for i, k := range keys {
		entries[i] = entry{key: k}
	}
	return &set{entries: entries}
}

// Singleton returns a Set containing exactly one key.
func Singleton(key Key) Set {
	return &set{entries: []entry{{key: key}}}
}

// ParseSet parses a JWKS document into a Set. Entries retain their
// position: if the "keys" array has N elements, the returned Set always
// has Len() == N, even when some entries fail to parse or collide on
// "kid"/thumbprint with an earlier entry. If any entry failed, ParseSet
// returns a non-nil joined error alongside the Set; callers that only
// care about the keys that did parse can ignore it and use Keys/Find,
// which silently skip failed entries.
func ParseSet(in []byte) (Set, error) {
	var raw struct {
		Keys []jsontext.Value `json:"keys"`
	}
	if err := json.Unmarshal(in, &raw); err != nil {
		return &set{}, fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	s := &set{entries: make([]entry, len(raw.Keys))}
	seenKid := make(map[string]int, len(raw.Keys))
	seenThumb := make(map[string]int, len(raw.Keys))
	var errs []error

	for i, v := range raw.Keys {
		k, err := Parse(v)
		if err != nil {
			err = fmt.Errorf("index %d: %w", i, err)
			errs = append(errs, err)
		}
		if k == nil {
			// Fatal: Parse couldn't construct a key at all.
			s.entries[i] = entry{err: err}
			continue
		}
		if kid := k.KeyID(); kid != "" {
			if j, dup := seenKid[kid]; dup {
				dupErr := fmt.Errorf("index %d: %w: duplicate key id %q (first at %d)", i, jose.ErrAlreadyExists, kid, j)
				s.entries[i] = entry{err: dupErr}
				errs = append(errs, dupErr)
				continue
			}
			seenKid[kid] = i
		}
		if tp := k.Thumbprint(); tp != "" {
			if j, dup := seenThumb[tp]; dup {
				dupErr := fmt.Errorf("index %d: %w: duplicate thumbprint (first at %d)", i, jose.ErrAlreadyExists, j)
				s.entries[i] = entry{err: dupErr}
				errs = append(errs, dupErr)
				continue
			}
			seenThumb[tp] = i
		}
		// err here, if non-nil, is a non-fatal per-item warning (e.g. an
		// invalid key_ops entry) that decodeOps already folded into it; k
		// is still fully usable and stays reachable via Keys/Find.
		s.entries[i] = entry{key: k, err: err}
	}
	return s, errors.Join(errs...)
}
