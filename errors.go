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

// Package jose provides the shared error vocabulary used across the
// jwa, jwk, jwt, and document subpackages.
//
// Failures that the module detects itself are reported as one of the
// sentinel errors below, wrapped with call-site context via fmt.Errorf's
// %w verb. Two kinds of error carry no sentinel: errors from encoding/json
// while jwt marshals or unmarshals claims, and errors returned by the jwa
// Algorithm implementations, which jwa.Provider and jwk.KeyPair.Sign pass
// on as they are (jwt.Sign wraps a signing failure in ErrCryptoFailure).
// Callers should test with errors.Is against these values rather than
// matching on message text.
package jose

import "errors"

var (
	// ErrInvalid indicates a caller-supplied argument was malformed, such
	// as an empty document key or an empty string value. It is also the
	// base of jwt's claim-validation errors (issuer, audience, expiry,
	// not-before, maximum age).
	ErrInvalid = errors.New("jose: invalid argument")

	// ErrAlreadyExists indicates an attempt to overwrite an existing
	// document entry, or a JWKS entry whose "kid" or thumbprint repeats an
	// earlier entry's. Document mutators never overwrite silently.
	ErrAlreadyExists = errors.New("jose: entry already exists")

	// ErrNotFound indicates a requested document key or key-set index does
	// not exist.
	ErrNotFound = errors.New("jose: not found")

	// ErrWrongType indicates a document entry exists but does not hold the
	// requested type.
	ErrWrongType = errors.New("jose: wrong type")

	// ErrParseError indicates malformed JSON input.
	ErrParseError = errors.New("jose: json parse error")

	// ErrBadEncoding indicates base64url input containing a byte outside
	// the URL-safe alphabet.
	ErrBadEncoding = errors.New("jose: invalid base64url encoding")

	// ErrUnknownAlg indicates a JOSE "alg" value with no known mapping to
	// a supported algorithm.
	ErrUnknownAlg = errors.New("jose: unknown algorithm")

	// ErrAlgDisallowed indicates a token's algorithm was rejected by a
	// verification policy's allow-list.
	ErrAlgDisallowed = errors.New("jose: algorithm not allowed by policy")

	// ErrAlgMismatch indicates the token's selected algorithm and a bound
	// key's declared algorithm disagree.
	ErrAlgMismatch = errors.New("jose: key algorithm does not match token algorithm")

	// ErrKeyMissing indicates no key is bound where one is required, or
	// that no candidate key could be found during verification.
	ErrKeyMissing = errors.New("jose: no suitable key")

	// ErrKeyInvalid indicates key material that failed validation (when a
	// JWK is parsed, written, or exported as PEM), or an attempt to sign
	// with a key that has no private material or whose "key_ops" do not
	// permit signing.
	ErrKeyInvalid = errors.New("jose: key is invalid")

	// ErrKeyAmbiguous indicates more than one candidate key matched during
	// verification and the choice could not be disambiguated.
	ErrKeyAmbiguous = errors.New("jose: multiple candidate keys")

	// ErrMalformed indicates structurally malformed input: a compact token
	// without the expected three dot-separated segments, a "typ" header
	// other than "JWT", an unsecured token with a non-empty signature, or
	// a JWK missing "kty" or carrying a malformed "key_ops" member.
	ErrMalformed = errors.New("jose: malformed token")

	// ErrBadSignature indicates a signature failed cryptographic
	// verification.
	ErrBadSignature = errors.New("jose: signature verification failed")

	// ErrCryptoFailure indicates the underlying crypto provider failed to
	// complete a sign or verify operation for reasons other than an
	// invalid signature (e.g. an incompatible key type).
	ErrCryptoFailure = errors.New("jose: cryptographic operation failed")
)
