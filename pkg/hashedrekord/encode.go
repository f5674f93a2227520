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

// Package hashedrekord builds the canonical "hashed rekord" JSON body a
// Rekor transparency log entry commits to: an artifact's digest, a
// detached signature over that digest, and the PEM-encoded public key
// (here, a leaf certificate) that verifies it.
package hashedrekord

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const (
	apiVersion = "0.0.1"
	kind       = "hashedrekord"
	algorithm  = "sha256"
)

// hash is the innermost {"algorithm":...,"value":...} object. Field
// order is fixed by struct declaration order, which is lexicographic
// ("algorithm" < "value"), matching the required canonical layout.
type hash struct {
	Algorithm string `json:"algorithm"`
	Value     string `json:"value"`
}

type data struct {
	Hash hash `json:"hash"`
}

type publicKey struct {
	Content string `json:"content"`
}

type signature struct {
	Content   string    `json:"content"`
	PublicKey publicKey `json:"publicKey"`
}

type spec struct {
	Data      data      `json:"data"`
	Signature signature `json:"signature"`
}

// Encode builds the canonical hashed-rekord JSON body for (artifactDigest,
// leafPEM, signature), with keys in the fixed order Rekor requires and no
// insignificant whitespace. This is the bytes a log entry's body must
// base64-decode to for the entry to be considered bound to this triple.
func Encode(artifactDigest []byte, leafPEM []byte, sig []byte) ([]byte, error) {
	if len(artifactDigest) == 0 {
		return nil, fmt.Errorf("hashedrekord: artifact digest is empty")
	}

	body := struct {
		APIVersion string `json:"apiVersion"`
		Kind       string `json:"kind"`
		Spec       spec   `json:"spec"`
	}{
		APIVersion: apiVersion,
		Kind:       kind,
		Spec: spec{
			Data: data{Hash: hash{Algorithm: algorithm, Value: hex.EncodeToString(artifactDigest)}},
			Signature: signature{
				Content:   base64.StdEncoding.EncodeToString(sig),
				PublicKey: publicKey{Content: base64.StdEncoding.EncodeToString(leafPEM)},
			},
		},
	}

	// encoding/json marshals struct fields in declaration order and emits
	// no insignificant whitespace, so the struct layout above is the
	// canonical encoding directly; no general-purpose canonicalizer needed.
	return json.Marshal(body)
}
