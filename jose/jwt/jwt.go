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

// Package jwt provides tools for signing, parsing, and verifying JSON Web
// Tokens (JWTs), as defined in RFC 7519.
//
// This package uses generics to allow users to define their own custom
// claims structures. A common pattern is to embed the provided Reserved
// claims struct and add extra fields for any other claims present in the
// token.
//
// # Defining Custom Claims
//
//	type Claims struct {
//		jwt.Reserved
//		Scope string `json:"scp"`
//	}
//
// # Signing
//
// A Signer is bound to one or more signing keys and, optionally, to
// defaults applied to every token it signs:
//
//	signer := jwt.NewSigner(pair).
//		WithIssuer("auth.example.com").
//		WithLifetime(time.Hour)
//	raw, err := signer.Sign(&Claims{Scope: "read"})
//
// Passing more than one key to NewSigner rotates through them round-robin
// on each call to Sign, which is useful while publishing a new signing
// key alongside an old one during a key-rollover window.
//
// # Basic Verification
//
// The top-level Verify function can be used for simple, one-off signature
// verification without claim validation:
//
//	keySet, err := jwk.ParseSet(doc)
//	if err != nil { /* handle parsing error */ }
//	claims, err := jwt.Verify[*Claims](keySet, raw)
//
// # Advanced Validation
//
// For advanced validation of claims like issuer, audience, and token age,
// create a reusable Verifier:
//
//	verifier := jwt.NewVerifier[*Claims](keySet).
//		WithIssuers("auth.example.com").
//		WithAudiences("api").
//		WithLeeway(time.Minute).
//		WithMaxAge(time.Hour)
//	claims, err := verifier.Verify(raw)
//	if err != nil { /* handle validation error */ }
//	fmt.Println("Scope:", claims.Scope)
package jwt

import (
	"bytes"
	"encoding/json/v2"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync/atomic"
	"time"

	"github.com/deep-rent/jose"
	"github.com/deep-rent/jose/clock"
	"github.com/deep-rent/jose/document"
	"github.com/deep-rent/jose/internal/base64url"
	"github.com/deep-rent/jose/jwa"
	"github.com/deep-rent/jose/jwk"
)

// Header represents the decoded JOSE header of a JWT. It wraps a
// document.Document rather than a closed struct so that header members
// this package doesn't know about are preserved, not dropped, across a
// decode -- see document.Document's own "additional members are
// preserved verbatim" contract.
type Header struct {
	doc *document.Document
}

func newHeader(typ, alg, kid string) *Header {
	d := document.New()
	if typ != "" {
		_ = d.AddString("typ", typ)
	}
	if alg != "" {
		_ = d.AddString("alg", alg)
	}
	if kid != "" {
		_ = d.AddString("kid", kid)
	}
	return &Header{doc: d}
}

func parseHeader(b []byte) (*Header, error) {
	d, err := document.Parse(b)
	if err != nil {
		return nil, err
	}
	return &Header{doc: d}, nil
}

// Type returns the "typ" header parameter, or "" if absent.
func (h *Header) Type() string {
	s, _ := h.doc.GetString("typ")
	return s
}

// Algorithm returns the "alg" header parameter, or "" if absent.
func (h *Header) Algorithm() string {
	s, _ := h.doc.GetString("alg")
	return s
}

// KeyID returns the "kid" header parameter, or "" if absent.
func (h *Header) KeyID() string {
	s, _ := h.doc.GetString("kid")
	return s
}

// Thumbprint returns the "x5t#S256" header parameter, or "" if absent.
func (h *Header) Thumbprint() string {
	s, _ := h.doc.GetString("x5t#S256")
	return s
}

// Get returns the raw value of an arbitrary header member not exposed by
// a typed accessor above (e.g. "cty" or a caller-defined extension).
func (h *Header) Get(key string) (any, bool) {
	return h.doc.Get(key)
}

func (h *Header) marshal() ([]byte, error) {
	s, err := h.doc.Serialize(false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

var (
	// ErrKeyNotFound signals that the key set held no key matching the
	// token's "kid" header parameter (or, for a token without one, held
	// no keys at all). A key that matches the "kid" but declares another
	// algorithm yields jose.ErrAlgMismatch instead.
	ErrKeyNotFound = fmt.Errorf("%w: no matching key found", jose.ErrKeyMissing)
	// ErrInvalidSignature signals that a matching key was found, but the
	// token's signature did not verify against it.
	ErrInvalidSignature = fmt.Errorf("%w: signature verification failed", jose.ErrBadSignature)
)

// Token represents a parsed, but not necessarily verified, JWT. The
// generic type T is the user-defined claims type, typically a pointer to
// a struct embedding Reserved.
type Token[T any] interface {
	// Header returns the token's header parameters.
	Header() *Header
	// Claims returns the token's payload claims.
	Claims() T
	// Verify checks the token's signature using the provided JWK set. It
	// returns jose.ErrAlgDisallowed if the header's "alg" is "none" --
	// unsecured tokens must go through VerifyUnsecured instead, never
	// this method, so that accepting one is always a deliberate, visible
	// choice at the call site. It returns ErrKeyNotFound if no key
	// matches, jose.ErrKeyAmbiguous if more than one does, and
	// ErrInvalidSignature if the signature itself is incorrect.
	Verify(set jwk.Set) error
	// VerifyUnsecured accepts an "alg":"none" token: it checks that the
	// header really does carry alg "none" and that the signature segment
	// is empty, per RFC 7519 §6. It never checks anything
	// cryptographically, since there is nothing to check. Callers should
	// only reach for this after deciding, out of band, that unsigned
	// tokens are acceptable in context (see Verifier.AllowNone).
	VerifyUnsecured() error
}

type token[T any] struct {
	header *Header
	claims T
	msg    []byte
	sig    []byte
}

func (t *token[T]) Header() *Header { return t.header }
func (t *token[T]) Claims() T       { return t.claims }

func (t *token[T]) Verify(set jwk.Set) error {
	alg := t.header.Algorithm()
	if alg == jwa.NoneAlg {
		return fmt.Errorf("%w: unsecured (\"none\") tokens must be verified via VerifyUnsecured", jose.ErrAlgDisallowed)
	}
	kid := t.header.KeyID()
	// Candidates are looked up by kid alone first, not kid+alg together:
	// filtering on alg up front would silently exclude a key whose
	// declared algorithm disagrees with the token's, turning every
	// mismatch into an indistinguishable "not found" instead of the more
	// specific ErrAlgMismatch below.
	candidates := set.Candidates(kid, "")
	switch len(candidates) {
	case 0:
		return ErrKeyNotFound
	case 1:
		key := candidates[0]
		if ka := key.Algorithm(); ka != "" && alg != "" && ka != alg {
			return fmt.Errorf("%w: key algorithm %q does not match token algorithm %q", jose.ErrAlgMismatch, ka, alg)
		}
		if !key.Verify(t.msg, t.sig) {
			return ErrInvalidSignature
		}
		return nil
	default:
		// More than one key shares this kid (or none was given at all):
		// try narrowing by alg too before giving up as ambiguous.
		if narrowed := set.Candidates(kid, alg); len(narrowed) == 1 {
			if !narrowed[0].Verify(t.msg, t.sig) {
				return ErrInvalidSignature
			}
			return nil
		}
		return fmt.Errorf("%w: %d keys match kid=%q alg=%q", jose.ErrKeyAmbiguous, len(candidates), kid, alg)
	}
}

func (t *token[T]) VerifyUnsecured() error {
	if t.header.Algorithm() != jwa.NoneAlg {
		return fmt.Errorf("%w: token is signed, not unsecured", jose.ErrAlgMismatch)
	}
	if len(t.sig) != 0 {
		return fmt.Errorf("%w: unsecured token carries a non-empty signature", jose.ErrMalformed)
	}
	return nil
}

// audience handles the JWT "aud" claim, which per RFC 7519 may be encoded
// as either a single string or an array of strings.
type audience []string

func (a *audience) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*a = audience{s}
		return nil
	}
	var m []string
	if err := json.Unmarshal(b, &m); err == nil {
		*a = audience(m)
		return nil
	}
	return errors.New("expected a string or an array of strings")
}

// Claims provides access to the registered JWT claims. Verifier requires
// the instantiated claims type to implement it.
type Claims interface {
	// ID returns the "jti" (JWT ID) claim, or an empty string if absent.
	ID() string
	// Subject returns the "sub" (Subject) claim, or an empty string if absent.
	Subject() string
	// Issuer returns the "iss" (Issuer) claim, or an empty string if absent.
	Issuer() string
	// Audience returns the "aud" (Audience) claim, or nil if absent.
	Audience() []string
	// IssuedAt returns the "iat" (Issued At) claim, or the zero time if absent.
	IssuedAt() time.Time
	// ExpiresAt returns the "exp" (Expires At) claim, or the zero time if absent.
	ExpiresAt() time.Time
	// NotBefore returns the "nbf" (Not Before) claim, or the zero time if absent.
	NotBefore() time.Time
}

// Reserved contains the registered claims for a JWT. It implements the
// Claims interface and should be embedded in custom claims structs to
// enable standard claim handling and Signer/Verifier support. Every
// field is omitted from the serialized token when left at its zero
// value.
type Reserved struct {
	Jti string    `json:"jti,omitempty"`
	Sub string    `json:"sub,omitempty"`
	Iss string    `json:"iss,omitempty"`
	Aud audience  `json:"aud,omitempty"`
	Iat time.Time `json:"iat,omitzero,format:unix"`
	Exp time.Time `json:"exp,omitzero,format:unix"`
	Nbf time.Time `json:"nbf,omitzero,format:unix"`
}

func (r *Reserved) ID() string           { return r.Jti }
func (r *Reserved) Subject() string      { return r.Sub }
func (r *Reserved) Issuer() string       { return r.Iss }
func (r *Reserved) Audience() []string   { return r.Aud }
func (r *Reserved) IssuedAt() time.Time  { return r.Iat }
func (r *Reserved) ExpiresAt() time.Time { return r.Exp }
func (r *Reserved) NotBefore() time.Time { return r.Nbf }

// dot is the byte value delimiting JWS segments.
const dot = byte('.')

// Parse decodes a JWT from its compact serialization into a Token without
// verifying the signature. The type parameter T specifies the target
// type for the token's claims (typically a pointer type). It returns an
// error if the token is malformed or the payload does not unmarshal into
// T.
//
// The signature segment may be empty, which is valid for an "alg":"none"
// unsecured token (RFC 7519 §6): Parse accepts it here and leaves the
// decision to verify it (via Token.VerifyUnsecured) to the caller.
func Parse[T any](in []byte) (Token[T], error) {
	i := bytes.IndexByte(in, dot)
	j := bytes.LastIndexByte(in, dot)
	if i <= 0 || bytes.Count(in, []byte{dot}) != 2 {
		return nil, fmt.Errorf("%w: expected three dot-separated segments", jose.ErrMalformed)
	}
	h, err := base64url.Decode(string(in[:i]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	header, err := parseHeader(h)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal header: %w", err)
	}
	if typ := header.Type(); typ != "" && typ != "JWT" {
		return nil, fmt.Errorf("%w: unexpected token type %q", jose.ErrMalformed, typ)
	}
	c, err := base64url.Decode(string(in[i+1 : j]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	var claims T
	if err := json.Unmarshal(c, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claims: %w", err)
	}
	sig, err := base64url.Decode(string(in[j+1:]))
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	msg := in[:j]
	return &token[T]{
		header: header,
		claims: claims,
		msg:    msg,
		sig:    sig,
	}, nil
}

// Verify first parses a JWT and then verifies its signature against a
// given key set. The type parameter T specifies the target type for the
// token's claims.
//
// This function only checks the cryptographic signature, not the content
// of the claims. For claim validation (e.g., issuer, audience,
// expiration), create and configure a Verifier. It is a shorthand for
// Parse followed by calling Verify on the resulting Token.
func Verify[T any](set jwk.Set, in []byte) (T, error) {
	var zero T
	tok, err := Parse[T](in)
	if err != nil {
		return zero, err
	}
	if err := tok.Verify(set); err != nil {
		return zero, err
	}
	return tok.Claims(), nil
}

// assemble marshals header and claims and joins them into the signing
// input "base64url(header).base64url(claims)" shared by Sign and
// SignNone.
func assemble(h *Header, claims any) ([]byte, error) {
	hb, err := h.marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	cb, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claims: %w", err)
	}
	msg := make([]byte, 0, len(hb)*2+len(cb)*2+1)
	msg = append(msg, []byte(base64url.Encode(hb))...)
	msg = append(msg, dot)
	msg = append(msg, []byte(base64url.Encode(cb))...)
	return msg, nil
}

// Sign marshals claims as JSON and produces a compact JWT signed by key.
// Unlike Signer.Sign, it performs no claim population: callers that want
// "iss", "aud", "iat", and "exp" filled in automatically should use a
// Signer instead.
func Sign(key jwk.KeyPair, claims any) ([]byte, error) {
	h := newHeader("JWT", key.Algorithm(), key.KeyID())
	msg, err := assemble(h, claims)
	if err != nil {
		return nil, err
	}

	sig, err := key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrCryptoFailure, err)
	}

	out := append(msg, dot)
	out = append(out, []byte(base64url.Encode(sig))...)
	return out, nil
}

// SignNone produces an unsigned, "alg":"none" compact token (RFC 7519
// §6): the signature segment is left empty. This is required
// functionality, but it is also exactly the capability that lets an
// attacker forge an arbitrary token if a verifier ever accepts it by
// accident -- a caller must opt a Verifier into accepting the result via
// Verifier.AllowNone, since there is no key, and therefore no trust
// decision, involved in producing one.
func SignNone(claims any) ([]byte, error) {
	h := newHeader("JWT", jwa.NoneAlg, "")
	msg, err := assemble(h, claims)
	if err != nil {
		return nil, err
	}
	return append(msg, dot), nil
}

// Signer is a reusable, optionally key-rotating JWT signer. Unlike the
// top-level Sign function, Signer.Sign populates the "iss", "aud", "iat",
// and "exp" claims from the signer's configuration whenever the claims
// value carries a Reserved field (embedded or direct) and that field is
// not already set.
type Signer struct {
	keys     []jwk.KeyPair
	next     atomic.Uint64
	issuer   string
	audience string
	lifetime time.Duration
	clock    clock.Clock
}

// NewSigner creates a Signer bound to one or more signing keys. When more
// than one key is given, successive calls to Sign rotate through them
// round-robin, which supports publishing a new key alongside an old one
// during a rollover window. It panics if called with no keys.
func NewSigner(keys ...jwk.KeyPair) *Signer {
	if len(keys) == 0 {
		panic("jwt: signer requires at least one key")
	}
	return &Signer{keys: keys, clock: clock.SystemClock()}
}

// WithIssuer sets the "iss" claim populated on tokens that don't already
// set it.
func (s *Signer) WithIssuer(iss string) *Signer {
	s.issuer = iss
	return s
}

// WithAudience sets the "aud" claim populated on tokens that don't
// already set it.
func (s *Signer) WithAudience(aud string) *Signer {
	s.audience = aud
	return s
}

// WithLifetime sets the duration after "iat" at which tokens expire. The
// "exp" claim is populated as iat+d on tokens that don't already set it.
func (s *Signer) WithLifetime(d time.Duration) *Signer {
	s.lifetime = d
	return s
}

// WithClock overrides the clock used to stamp "iat" and compute "exp".
// The default is clock.SystemClock.
func (s *Signer) WithClock(c clock.Clock) *Signer {
	s.clock = c
	return s
}

// Sign populates the configured reserved claims on claims (where absent)
// and signs it with the next key in rotation.
func (s *Signer) Sign(claims any) ([]byte, error) {
	now := s.clock()
	withReserved(claims, func(r *Reserved) {
		if s.issuer != "" && r.Iss == "" {
			r.Iss = s.issuer
		}
		if s.audience != "" && len(r.Aud) == 0 {
			r.Aud = audience{s.audience}
		}
		if r.Iat.IsZero() {
			r.Iat = now
		}
		if s.lifetime > 0 && r.Exp.IsZero() {
			r.Exp = now.Add(s.lifetime)
		}
	})
	return Sign(s.selectKey(), claims)
}

func (s *Signer) selectKey() jwk.KeyPair {
	i := s.next.Add(1) - 1
	return s.keys[i%uint64(len(s.keys))]
}

// withReserved locates the Reserved value embedded in (or equal to)
// claims and invokes fn on it. It returns false if claims carries no
// Reserved field, which is not an error: callers that sign plain maps or
// unrelated structs simply get no automatic claim population.
func withReserved(claims any, fn func(*Reserved)) bool {
	v := reflect.ValueOf(claims)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return false
	}
	v = v.Elem()
	reservedType := reflect.TypeOf(Reserved{})
	if v.Type() == reservedType {
		fn(v.Addr().Interface().(*Reserved))
		return true
	}
	if v.Kind() != reflect.Struct {
		return false
	}
	f := v.FieldByName("Reserved")
	if !f.IsValid() || f.Type() != reservedType || !f.CanAddr() {
		return false
	}
	fn(f.Addr().Interface().(*Reserved))
	return true
}

var (
	// ErrInvalidIssuer signals that the "iss" claim did not match any of
	// the expected issuers.
	ErrInvalidIssuer = fmt.Errorf("%w: invalid issuer", jose.ErrInvalid)
	// ErrInvalidAudience signals that the "aud" claim did not match any of
	// the expected audiences.
	ErrInvalidAudience = fmt.Errorf("%w: invalid audience", jose.ErrInvalid)
	// ErrTokenExpired signals that the "exp" claim is in the past.
	ErrTokenExpired = fmt.Errorf("%w: token is expired", jose.ErrInvalid)
	// ErrTokenNotYetActive signals that the "nbf" claim is in the future.
	ErrTokenNotYetActive = fmt.Errorf("%w: token not yet active", jose.ErrInvalid)
	// ErrTokenTooOld signals that the "iat" claim is further in the past
	// than the configured maximum age.
	ErrTokenTooOld = fmt.Errorf("%w: token is too old", jose.ErrInvalid)
)

// Verifier is a configured, reusable JWT verifier. The type parameter T
// is the user-defined claims type. It must implement the Claims
// interface, or else Verify always fails.
type Verifier[T any] struct {
	set        jwk.Set
	issuers    []string
	audiences  []string
	leeway     time.Duration
	maxAge     time.Duration
	clock      clock.Clock
	algorithms []string
	allowNone  bool
}

// NewVerifier creates a verifier bound to a specific JWK set. Use the
// With* methods to configure claim validation.
func NewVerifier[T any](set jwk.Set) *Verifier[T] {
	return &Verifier[T]{set: set, clock: clock.SystemClock()}
}

// WithIssuers adds one or more trusted issuers. If a token's "iss" claim
// does not match one of these, it is rejected. By default, no issuer
// validation is performed.
func (v *Verifier[T]) WithIssuers(iss ...string) *Verifier[T] {
	v.issuers = append(v.issuers, iss...)
	return v
}

// WithAudiences adds one or more trusted audiences. If the token's "aud"
// claim does not contain at least one of these values, it is rejected.
// By default, no audience validation is performed.
func (v *Verifier[T]) WithAudiences(aud ...string) *Verifier[T] {
	v.audiences = append(v.audiences, aud...)
	return v
}

// WithLeeway sets a grace period to allow for clock skew in temporal
// validations of the "exp", "nbf", and "iat" claims. Negative values are
// ignored.
func (v *Verifier[T]) WithLeeway(d time.Duration) *Verifier[T] {
	if d > 0 {
		v.leeway = d
	}
	return v
}

// WithMaxAge sets the maximum age for tokens based on their "iat" claim.
// Tokens without an "iat" claim are rejected once this is set. Negative
// values are ignored.
func (v *Verifier[T]) WithMaxAge(d time.Duration) *Verifier[T] {
	if d > 0 {
		v.maxAge = d
	}
	return v
}

// WithClock overrides the clock used to evaluate temporal claims. The
// default is clock.SystemClock.
func (v *Verifier[T]) WithClock(c clock.Clock) *Verifier[T] {
	v.clock = c
	return v
}

// WithAllowedAlgorithms restricts verification to the given "alg"
// values. A token whose header names any other algorithm is rejected
// with jose.ErrAlgDisallowed before its signature is ever checked -- the
// verifier's own configuration, not the token's header, decides which
// algorithm families are trusted, which is what stops an attacker from
// picking a weaker algorithm the verifier happens to also support for
// some other key. By default, every algorithm jose/jwa implements is
// accepted except "none"; calling this does not itself permit "none",
// use AllowNone for that regardless of what's passed here.
func (v *Verifier[T]) WithAllowedAlgorithms(algs ...string) *Verifier[T] {
	v.algorithms = append(v.algorithms, algs...)
	return v
}

// AllowNone opts this verifier into accepting unsigned ("alg":"none")
// tokens. Without calling this, Verify always rejects them with
// jose.ErrAlgDisallowed, regardless of WithAllowedAlgorithms.
func (v *Verifier[T]) AllowNone() *Verifier[T] {
	v.allowNone = true
	return v
}

// Verify parses a token from its compact serialization, verifies its
// signature against the verifier's key set, and validates its claims
// according to the verifier's configuration.
//
// Verify rejects a token whose header "alg" is "none" unless AllowNone
// was called, and rejects any other algorithm not in the
// WithAllowedAlgorithms list when one was configured -- both checked
// before the signature, never trusting the token header alone to pick a
// verification strategy.
func (v *Verifier[T]) Verify(in []byte) (T, error) {
	var zero T
	tok, err := Parse[T](in)
	if err != nil {
		return zero, err
	}
	alg := tok.Header().Algorithm()
	if alg == jwa.NoneAlg {
		if !v.allowNone {
			return zero, fmt.Errorf("%w: unsecured (\"none\") tokens are rejected unless AllowNone is set", jose.ErrAlgDisallowed)
		}
		if err := tok.VerifyUnsecured(); err != nil {
			return zero, err
		}
	} else {
		if len(v.algorithms) > 0 && !slices.Contains(v.algorithms, alg) {
			return zero, fmt.Errorf("%w: algorithm %q is not in the configured allow-list", jose.ErrAlgDisallowed, alg)
		}
		if err := tok.Verify(v.set); err != nil {
			return zero, err
		}
	}
	c := tok.Claims()
	claims, ok := any(c).(Claims)
	if !ok {
		return zero, fmt.Errorf("%w: claims type does not implement jwt.Claims", jose.ErrInvalid)
	}
	now := v.clock()
	if len(v.issuers) > 0 && !slices.Contains(v.issuers, claims.Issuer()) {
		return zero, ErrInvalidIssuer
	}
	if len(v.audiences) > 0 {
		found := false
		for _, aud := range v.audiences {
			if slices.Contains(claims.Audience(), aud) {
				found = true
				break
			}
		}
		if !found {
			return zero, ErrInvalidAudience
		}
	}
	if nbf := claims.NotBefore(); !nbf.IsZero() {
		if now.Add(v.leeway).Before(nbf) {
			return zero, ErrTokenNotYetActive
		}
	}
	if exp := claims.ExpiresAt(); !exp.IsZero() {
		if now.Add(-v.leeway).After(exp) {
			return zero, ErrTokenExpired
		}
	}
	if v.maxAge > 0 {
		iat := claims.IssuedAt()
		if iat.IsZero() || iat.Add(v.maxAge).Before(now.Add(-v.leeway)) {
			return zero, ErrTokenTooOld
		}
	}
	return c, nil
}

// DynamicClaims holds arbitrary JWT claims for callers that don't know
// the claim shape ahead of time, backed by a document.Document. Use Get
// to read individual values out of it.
type DynamicClaims struct {
	doc *document.Document
}

func (c *DynamicClaims) UnmarshalJSON(b []byte) error {
	d, err := document.Parse(b)
	if err != nil {
		return err
	}
	c.doc = d
	return nil
}

func (c *DynamicClaims) MarshalJSON() ([]byte, error) {
	if c.doc == nil {
		return []byte("{}"), nil
	}
	s, err := c.doc.Serialize(false)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Get reads the claim named key out of c and decodes it into T. It
// returns false, never an error, if the claim is missing, c is nil, or
// the claim's JSON shape does not fit T.
func Get[T any](c *DynamicClaims, key string) (T, bool) {
	var zero T
	if c == nil || c.doc == nil {
		return zero, false
	}
	raw, ok := c.doc.Get(key)
	if !ok {
		return zero, false
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, false
	}
	return out, true
}
