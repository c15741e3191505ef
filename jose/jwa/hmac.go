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
	"crypto/hmac"
	"crypto/subtle"
)

// Symmetric represents a symmetric JSON Web Algorithm keyed by a shared
// secret, rather than a crypto.Signer. It mirrors Algorithm's shape but
// drops the public/private key split since both parties hold the same
// bytes.
type Symmetric interface {
	String() string
	// Verify checks a MAC against a message using the shared secret key.
	Verify(key, msg, sig []byte) bool
	// Sign computes a MAC over a message using the shared secret key.
	Sign(key, msg []byte) ([]byte, error)
}

// hs implements the HMAC family of algorithms (HSxxx) from RFC 7518 §3.2.
type hs struct {
	name string
	hash crypto.Hash
}

// newHS creates a new Symmetric for HMAC signatures with the given JWA
// name and hash function.
func newHS(name string, hash crypto.Hash) Symmetric {
	return &hs{name: name, hash: hash}
}

func (a *hs) String() string { return a.name }

func (a *hs) Sign(key, msg []byte) ([]byte, error) {
	mac := hmac.New(a.hash.New, key)
	mac.Write(msg)
	return mac.Sum(nil), nil
}

func (a *hs) Verify(key, msg, sig []byte) bool {
	want, err := a.Sign(key, msg)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(want, sig) == 1
}

// HS256 represents HMAC using SHA-256.
var HS256 = newHS("HS256", crypto.SHA256)

// HS384 represents HMAC using SHA-384.
var HS384 = newHS("HS384", crypto.SHA384)

// HS512 represents HMAC using SHA-512.
var HS512 = newHS("HS512", crypto.SHA512)
