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

package jwk_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-rent/jose/jwa"
	"github.com/deep-rent/jose/jwk"
)

type mockKey struct {
	kid string
	alg string
	x5t string
	mat any
}

func (k *mockKey) Algorithm() string            { return k.alg }
func (k *mockKey) KeyID() string                { return k.kid }
func (k *mockKey) Thumbprint() string           { return k.x5t }
func (k *mockKey) Verify(msg, sig []byte) bool  { return true }
func (k *mockKey) Material() any                { return k.mat }
func (k *mockKey) Operations() jwk.Operation    { return 0 }

func TestParseAndWriteRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pair jwk.KeyPair
	}{
		{"ES256", eckey(t, jwa.ES256, elliptic.P256(), "es256-key")},
		{"ES384", eckey(t, jwa.ES384, elliptic.P384(), "es384-key")},
		{"ES512", eckey(t, jwa.ES512, elliptic.P521(), "es512-key")},
		{"RS256", rskey(t, jwa.RS256, "rs256-key")},
		{"PS256", rskey(t, jwa.PS256, "ps256-key")},
		{"EdDSA/Ed25519", edkey(t, "ed25519-key")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := jwk.Write(tc.pair)
			require.NoError(t, err)

			key, err := jwk.Parse(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.pair.Algorithm(), key.Algorithm())
			assert.Equal(t, tc.pair.KeyID(), key.KeyID())

			msg := []byte("hello")
			sig, err := tc.pair.Sign(msg)
			require.NoError(t, err)
			assert.True(t, key.Verify(msg, sig))

			tp1, err := jwk.Thumbprint(tc.pair)
			require.NoError(t, err)
			tp2, err := jwk.Thumbprint(key)
			require.NoError(t, err)
			assert.Equal(t, tp1, tp2)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing kty", `{"kid":"k","alg":"ES256"}`},
		{"unknown algorithm", `{"kty":"EC","kid":"k","alg":"ZZ999"}`},
		{"unknown key type", `{"kty":"DSA","kid":"k","alg":"ES256"}`},
		{"unsupported curve", `{"kty":"EC","kid":"k","alg":"ES256","crv":"P-192","x":"AA","y":"AA"}`},
		{
			"point not on curve",
			`{"kty":"EC","kid":"k","alg":"ES256","crv":"P-256","x":"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA","y":"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}`,
		},
		{"zero RSA exponent", `{"kty":"RSA","kid":"k","alg":"RS256","n":"AQ","e":"AA"}`},
		{"empty oct key value", `{"kty":"oct","k":""}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jwk.Parse([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestParseOptionalKidAndAlg(t *testing.T) {
	// RFC 7517 §4 only requires "kty"; a key without "kid"/"alg" must
	// still parse successfully.
	key, err := jwk.Parse([]byte(`{"kty":"oct","k":"c2VjcmV0"}`))
	require.NoError(t, err)
	assert.Empty(t, key.KeyID())
	assert.Empty(t, key.Algorithm())
}

func TestParseKeyOpsPartialValidity(t *testing.T) {
	// key_ops mixes a valid "sign", an invalid numeric entry, and a valid
	// "verify": the invalid entry is reported but doesn't fail the key,
	// and the valid entries still OR together into the operation bit-set.
	src := `{"kty":"oct","kid":"k","alg":"HS256","k":"c2VjcmV0","key_ops":["sign",7,"verify"]}`
	key, err := jwk.Parse([]byte(src))
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWK has an invalid value in key_ops")
	require.NotNil(t, key)
	assert.Equal(t, jwk.OpSign|jwk.OpVerify, key.Operations())
}

func TestParseSetStableIndices(t *testing.T) {
	good := eckey(t, jwa.ES256, elliptic.P256(), "good")
	goodJSON, err := jwk.Write(good)
	require.NoError(t, err)

	doc := fmt.Sprintf(`{"keys":[%s,{"kty":"EC","kid":"bad"},%s]}`, goodJSON, goodJSON)

	set, err := jwk.ParseSet([]byte(doc))
	require.Error(t, err, "a duplicate kid and a malformed entry should surface a joined error")
	require.Equal(t, 3, set.Len(), "every input entry must keep its index, valid or not")

	k0, err0 := set.Get(0)
	assert.NoError(t, err0)
	assert.NotNil(t, k0)

	_, err1 := set.Get(1)
	assert.Error(t, err1, "malformed entry at index 1 keeps its slot and records its error")

	_, err2 := set.Get(2)
	assert.Error(t, err2, "duplicate kid at index 2 is rejected even though kty/crv parse fine")

	found := set.Find(&mockKey{alg: "ES256", kid: "good"})
	require.NotNil(t, found, "the first successfully parsed entry is still reachable via Find")
}

func TestWriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     jwk.Key
		wantErr string
	}{
		{
			name:    "unsupported algorithm",
			key:     &mockKey{alg: "XY99", kid: "test"},
			wantErr: "unsupported algorithm",
		},
		{
			name:    "mismatched RSA material",
			key:     &mockKey{alg: jwa.RS256.String(), mat: &ecdsa.PublicKey{}},
			wantErr: `invalid key for algorithm "RS256"`,
		},
		{
			name:    "mismatched ECDSA material",
			key:     &mockKey{alg: jwa.ES256.String(), mat: &rsa.PublicKey{}},
			wantErr: `invalid key for algorithm "ES256"`,
		},
		{
			name:    "mismatched EdDSA material",
			key:     &mockKey{alg: jwa.EdDSA.String(), mat: &rsa.PublicKey{}},
			wantErr: `invalid key for algorithm "EdDSA"`,
		},
		{
			name:    "RSA zero exponent",
			key:     &mockKey{alg: jwa.RS256.String(), mat: &rsa.PublicKey{N: big.NewInt(123), E: 0}},
			wantErr: "public exponent is zero",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jwk.Write(tc.key)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestWriteSetErrors(t *testing.T) {
	s := jwk.Singleton(&mockKey{alg: "XY99"})
	_, err := jwk.WriteSet(s)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported algorithm")
}

func TestSingleton(t *testing.T) {
	key := &mockKey{kid: "kid", x5t: "x5t", alg: "alg"}
	set := jwk.Singleton(key)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, key, set.Find(key))

	called := false
	for k := range set.Keys() {
		assert.Equal(t, key, k)
		called = true
	}
	assert.True(t, called)
}

func TestBuilder(t *testing.T) {
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	id := "test-id"

	t.Run("Build", func(t *testing.T) {
		v := jwk.NewKeyBuilder(jwa.ES256).WithKeyID(id).Build(&k.PublicKey)
		assert.Equal(t, id, v.KeyID())
		assert.Equal(t, "ES256", v.Algorithm())
	})

	t.Run("BuildPair", func(t *testing.T) {
		p := jwk.NewKeyBuilder(jwa.ES256).WithKeyID(id).BuildPair(k)
		assert.Equal(t, id, p.KeyID())

		msg := []byte("payload")
		sig, err := p.Sign(msg)
		require.NoError(t, err)
		assert.True(t, p.Verify(msg, sig))
	})

	t.Run("BuildPair EdDSA", func(t *testing.T) {
		pub, prv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		p := jwk.NewKeyBuilder(jwa.EdDSA).WithKeyID("ed").BuildPair(prv)
		assert.Equal(t, pub, ed25519.PublicKey(p.Material().([]byte)))

		msg := []byte("payload")
		sig, err := p.Sign(msg)
		require.NoError(t, err)
		assert.True(t, p.Verify(msg, sig))
	})
}

func TestBuilderPanic(t *testing.T) {
	ec, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	rs, _ := rsa.GenerateKey(rand.Reader, 2048)

	tests := []struct {
		name string
		call func()
	}{
		{
			"unidentified key",
			func() { jwk.NewKeyBuilder(jwa.ES256).Build(&ec.PublicKey) },
		},
		{
			"unidentified key pair",
			func() { jwk.NewKeyBuilder(jwa.ES256).BuildPair(ec) },
		},
		{
			"incompatible key type 1",
			func() { jwk.NewKeyBuilder(jwa.ES256).WithKeyID("x").BuildPair(rs) },
		},
		{
			"incompatible key type 2",
			func() { jwk.NewKeyBuilder(jwa.RS256).WithKeyID("x").BuildPair(ec) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Panics(t, tc.call)
		})
	}
}

func TestPEM(t *testing.T) {
	pair := eckey(t, jwa.ES256, elliptic.P256(), "pem-key")
	out, err := jwk.PEM(pair)
	require.NoError(t, err)
	assert.Contains(t, out, "PUBLIC KEY")
}

func eckey(t *testing.T, alg jwa.Algorithm[*ecdsa.PublicKey], crv elliptic.Curve, kid string) jwk.KeyPair {
	t.Helper()
	k, err := ecdsa.GenerateKey(crv, rand.Reader)
	require.NoError(t, err)
	return jwk.NewKeyBuilder(alg).WithKeyID(kid).BuildPair(k)
}

func rskey(t *testing.T, alg jwa.Algorithm[*rsa.PublicKey], kid string) jwk.KeyPair {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwk.NewKeyBuilder(alg).WithKeyID(kid).BuildPair(k)
}

func edkey(t *testing.T, kid string) jwk.KeyPair {
	t.Helper()
	_, prv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return jwk.NewKeyBuilder(jwa.EdDSA).WithKeyID(kid).BuildPair(prv)
}
