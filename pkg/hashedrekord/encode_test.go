// Copyright 2025 The Sigstore Authors.
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

package hashedrekord

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeMatchesCanonicalLayout(t *testing.T) {
	digest, err := hex.DecodeString("5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03")
	require.NoError(t, err)

	out, err := Encode(digest, []byte("pem-bytes"), []byte("sig-bytes"))
	require.NoError(t, err)

	want := `{"apiVersion":"0.0.1","kind":"hashedrekord","spec":{"data":{"hash":{"algorithm":"sha256","value":"5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"}},"signature":{"content":"c2lnLWJ5dGVz","publicKey":{"content":"cGVtLWJ5dGVz"}}}}`
	require.JSONEq(t, want, string(out))
	require.Equal(t, want, string(out)) // field order, not just value equality, must match
}

func TestEncodeRejectsEmptyDigest(t *testing.T) {
	_, err := Encode(nil, []byte("pem"), []byte("sig"))
	require.Error(t, err)
}
