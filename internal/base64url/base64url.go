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

// Package base64url implements the unpadded base64url encoding (RFC 4648
// §5) used throughout JOSE for header, payload, and signature segments.
package base64url

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/deep-rent/jose"
)

// enc is the unpadded, URL-safe base64 alphabet required by RFC 7515 §2.
var enc = base64.RawURLEncoding

// Encode returns the base64url encoding of src without padding.
func Encode(src []byte) string {
	return enc.EncodeToString(src)
}

// isAlphabet reports whether b is a member of the URL-safe base64 alphabet
// (RFC 4648 §5), excluding padding.
func isAlphabet(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '_':
		return true
	default:
		return false
	}
}

// Decode decodes a base64url string, accepting both the canonical unpadded
// form and one padded with trailing "=" characters. It returns
// jose.ErrBadEncoding if src contains any byte outside the URL-safe
// alphabet -- including whitespace, which encoding/base64's decoder would
// otherwise skip rather than reject -- or has an invalid length.
func Decode(src string) ([]byte, error) {
	trimmed := strings.TrimRight(src, "=")
	for i := 0; i < len(trimmed); i++ {
		if !isAlphabet(trimmed[i]) {
			return nil, fmt.Errorf("%w: invalid character %q at offset %d", jose.ErrBadEncoding, trimmed[i], i)
		}
	}
	out, err := enc.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jose.ErrBadEncoding, err)
	}
	return out, nil
}
