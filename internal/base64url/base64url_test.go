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

package base64url_test

import (
	"testing"

	"github.com/deep-rent/jose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deep-rent/jose/internal/base64url"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "Zg", base64url.Encode([]byte("f")))
	assert.Equal(t, "", base64url.Encode(nil))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical unpadded", "Zg", "f"},
		{"accepts trailing padding", "Zg==", "f"},
		{"empty input", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := base64url.Decode(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(out))
		})
	}
}

func TestDecodeRejectsWhitespace(t *testing.T) {
	tests := []string{"Zg\n", "Zg ", "Z g", "\nZg"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := base64url.Decode(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, jose.ErrBadEncoding)
		})
	}
}

func TestDecodeRejectsInvalidCharacters(t *testing.T) {
	tests := []string{"Zg+", "Zg/", "not valid!"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			_, err := base64url.Decode(in)
			assert.ErrorIs(t, err, jose.ErrBadEncoding)
		})
	}
}
