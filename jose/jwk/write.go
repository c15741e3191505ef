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
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"encoding/json/jsontext"
	jsonv2 "encoding/json/v2"
	"encoding/pem"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/deep-rent/jose"
	"github.com/deep-rent/jose/internal/base64url"
	"github.com/deep-rent/jose/jwa"
)

// Write serializes key as a single JWK JSON object. It returns
// jose.ErrUnknownAlg if key's algorithm is not one jose/jwa implements,
// or jose.ErrKeyInvalid if key's material does not match the shape its
// algorithm expects.
func Write(key Key) ([]byte, error) {
	alg := key.Algorithm()
	if _, ok := jwa.Default(alg); !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", jose.ErrUnknownAlg, alg)
	}
	w, err := encodeMaterial(alg, key.Material())
	if err != nil {
		return nil, err
	}
	w.Alg = alg
	w.Kid = key.KeyID()
	w.Use = "sig"

	ops := key.Operations()
	if ops == 0 {
		ops = OpVerify
		if _, ok := key.(KeyPair); ok {
			ops |= OpSign
		}
	}
	var names []string
	if ops.Has(OpSign) {
		names = append(names, "sign")
	}
	if ops.Has(OpVerify) {
		names = append(names, "verify")
	}
	opsJSON, err := jsonv2.Marshal(names)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrParseError, err)
	}
	w.Ops = jsontext.Value(opsJSON)
	return jsonv2.Marshal(w)
}

// WriteSet serializes every key in set as a JWKS document ({"keys": [...]}).
// Entries recorded as parse errors (see Set.Get) are skipped.
func WriteSet(set Set) ([]byte, error) {
	var keys []jsontext.Value
	for k := range set.Keys() {
		b, err := Write(k)
		if err != nil {
			return nil, err
		}
		keys = append(keys, jsontext.Value(b))
	}
	out := struct {
		Keys []jsontext.Value `json:"keys"`
	}{Keys: keys}
	return jsonv2.Marshal(&out)
}

// encodeMaterial maps key material to its wire representation for alg's
// key family.
func encodeMaterial(alg string, mat any) (*wire, error) {
	switch {
	case strings.HasPrefix(alg, "RS"), strings.HasPrefix(alg, "PS"):
		switch k := mat.(type) {
		case *rsa.PublicKey:
			return rsaWire(k, nil)
		case *rsa.PrivateKey:
			return rsaWire(&k.PublicKey, k)
		default:
			return nil, fmt.Errorf("%w: invalid key for algorithm %q", jose.ErrKeyInvalid, alg)
		}
	case strings.HasPrefix(alg, "ES"):
		switch k := mat.(type) {
		case *ecdsa.PublicKey:
			return ecdsaWire(k, nil)
		case *ecdsa.PrivateKey:
			return ecdsaWire(&k.PublicKey, k)
		default:
			return nil, fmt.Errorf("%w: invalid key for algorithm %q", jose.ErrKeyInvalid, alg)
		}
	case alg == jwa.EdDSA.String():
		return encodeOKP(mat, alg)
	case strings.HasPrefix(alg, "HS"):
		k, ok := mat.([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: invalid key for algorithm %q", jose.ErrKeyInvalid, alg)
		}
		return octWire(k)
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", jose.ErrUnknownAlg, alg)
	}
}

func rsaWire(pub *rsa.PublicKey, priv *rsa.PrivateKey) (*wire, error) {
	if pub.E == 0 {
		return nil, fmt.Errorf("%w: public exponent is zero", jose.ErrKeyInvalid)
	}
	e := big.NewInt(int64(pub.E)).Bytes()
	w := &wire{Kty: "RSA", N: pub.N.Bytes(), E: e}
	if priv != nil {
		w.D = priv.D.Bytes()
	}
	return w, nil
}

func ecdsaWire(pub *ecdsa.PublicKey, priv *ecdsa.PrivateKey) (*wire, error) {
	n := (pub.Curve.Params().BitSize + 7) / 8
	x := make([]byte, n)
	y := make([]byte, n)
	pub.X.FillBytes(x)
	pub.Y.FillBytes(y)
	w := &wire{Kty: "EC", Crv: pub.Curve.Params().Name, X: x, Y: y}
	if priv != nil {
		d := make([]byte, n)
		priv.D.FillBytes(d)
		w.D = d
	}
	return w, nil
}

func encodeOKP(mat any, alg string) (*wire, error) {
	switch k := mat.(type) {
	case []byte:
		return okpWire(k, nil)
	case ed25519.PublicKey:
		return okpWire([]byte(k), nil)
	case ed448.PublicKey:
		return okpWire([]byte(k), nil)
	case ed25519.PrivateKey:
		pub, _ := k.Public().(ed25519.PublicKey)
		return okpWire([]byte(pub), k.Seed())
	case ed448.PrivateKey:
		pub, ok := toBytes(k.Public())
		if !ok {
			return nil, fmt.Errorf("%w: invalid key for algorithm %q", jose.ErrKeyInvalid, alg)
		}
		return okpWire(pub, []byte(k)[:ed448.SeedSize])
	default:
		return nil, fmt.Errorf("%w: invalid key for algorithm %q", jose.ErrKeyInvalid, alg)
	}
}

// toBytes extracts the raw bytes of a crypto.PublicKey produced by an
// Ed25519/Ed448 signer, which signer.Public() returns as a named
// []byte-backed type rather than a bare []byte.
func toBytes(pub crypto.PublicKey) ([]byte, bool) {
	switch k := pub.(type) {
	case ed25519.PublicKey:
		return []byte(k), true
	case ed448.PublicKey:
		return []byte(k), true
	case []byte:
		return k, true
	default:
		return nil, false
	}
}

func okpWire(pub, seed []byte) (*wire, error) {
	var crv string
	switch len(pub) {
	case ed25519.PublicKeySize:
		crv = "Ed25519"
	case ed448.PublicKeySize:
		crv = "Ed448"
	default:
		return nil, fmt.Errorf("%w: invalid OKP public key size %d", jose.ErrKeyInvalid, len(pub))
	}
	w := &wire{Kty: "OKP", Crv: crv, X: pub}
	if seed != nil {
		w.D = seed
	}
	return w, nil
}

func octWire(secret []byte) (*wire, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty secret", jose.ErrKeyInvalid)
	}
	return &wire{Kty: "oct", K: secret}, nil
}

// Thumbprint computes the RFC 7638 JWK thumbprint of key: the base64url
// encoding of the SHA-256 digest of key's canonical, minimal JSON
// representation (only the type-defining members, sorted alphabetically,
// with no whitespace).
func Thumbprint(key Key) (string, error) {
	w, err := encodeMaterial(key.Algorithm(), key.Material())
	if err != nil {
		return "", err
	}
	var m map[string]string
	switch w.Kty {
	case "RSA":
		m = map[string]string{
			"kty": "RSA",
			"n":   base64url.Encode(w.N),
			"e":   base64url.Encode(w.E),
		}
	case "EC":
		m = map[string]string{
			"kty": "EC",
			"crv": w.Crv,
			"x":   base64url.Encode(w.X),
			"y":   base64url.Encode(w.Y),
		}
	case "OKP":
		m = map[string]string{
			"kty": "OKP",
			"crv": w.Crv,
			"x":   base64url.Encode(w.X),
		}
	case "oct":
		m = map[string]string{
			"kty": "oct",
			"k":   base64url.Encode(w.K),
		}
	default:
		return "", fmt.Errorf("%w: unsupported kty %q for thumbprint", jose.ErrKeyInvalid, w.Kty)
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(m[k])
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')

	sum := sha256.Sum256(buf.Bytes())
	return base64url.Encode(sum[:]), nil
}

// PEM renders key's public material as a PKIX "PUBLIC KEY" PEM block. It
// returns jose.ErrKeyInvalid for key types x509 cannot encode this way:
// Ed448 public keys and oct (symmetric) secrets.
func PEM(key Key) (string, error) {
	var pub crypto.PublicKey
	switch m := key.Material().(type) {
	case *rsa.PublicKey:
		pub = m
	case *ecdsa.PublicKey:
		pub = m
	case ed25519.PublicKey:
		pub = m
	case []byte:
		if len(m) == ed25519.PublicKeySize && key.Algorithm() == jwa.EdDSA.String() {
			pub = ed25519.PublicKey(m)
		} else {
			return "", fmt.Errorf("%w: PEM export not supported for this key type", jose.ErrKeyInvalid)
		}
	default:
		return "", fmt.Errorf("%w: PEM export not supported for this key type", jose.ErrKeyInvalid)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: %v", jose.ErrCryptoFailure, err)
	}
	block := &pem.Block{Type: "PUBLIC KEY", Bytes: der}
	return string(pem.EncodeToMemory(block)), nil
}
