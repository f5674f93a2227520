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

package bundle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validBundleJSON = `{
	"mediaType": "application/vnd.dev.sigstore.bundle.v0.3+json",
	"verificationMaterial": {
		"certificate": {"rawBytes": "ZmFrZS1jZXJ0LWRlcg=="},
		"tlogEntries": [
			{
				"logIndex": "42",
				"logId": {"keyId": "bG9naWQtYnl0ZXM="},
				"integratedTime": "1700000000",
				"inclusionPromise": {"signedEntryTimestamp": "c2V0LWJ5dGVz"},
				"inclusionProof": {
					"logIndex": "42",
					"rootHash": "cm9vdGhhc2g=",
					"treeSize": "43",
					"hashes": []
				},
				"canonicalizedBody": "Ym9keS1ieXRlcw=="
			}
		]
	},
	"messageSignature": {
		"messageDigest": {"algorithm": "SHA2_256", "digest": "WJG1tSLV3whtD/CxEPvZ0hu0/HFjrzTQgoai6Eb2vgM="},
		"signature": "c2lnLWJ5dGVz"
	}
}`

func TestParseValidBundle(t *testing.T) {
	b, err := Parse([]byte(validBundleJSON))
	require.NoError(t, err)
	require.Equal(t, "application/vnd.dev.sigstore.bundle.v0.3+json", b.MediaType)
	require.Len(t, b.CertPath, 1)
	require.Equal(t, []byte("fake-cert-der"), b.CertPath[0])
	require.NotNil(t, b.MessageSignature)
	require.Equal(t, []byte("sig-bytes"), b.MessageSignature.Signature)
	require.Equal(t, "SHA2_256", b.MessageSignature.DigestAlgorithm)
	require.Len(t, b.Entries, 1)
	entry := b.Entries[0]
	require.Equal(t, int64(42), entry.LogIndex)
	require.Equal(t, int64(1700000000), entry.IntegratedTime)
	require.Equal(t, []byte("logid-bytes"), entry.LogID)
	require.Equal(t, []byte("body-bytes"), entry.Body)
	require.Equal(t, []byte("set-bytes"), entry.SignedEntryTimestamp)
	require.NotNil(t, entry.InclusionProof)
	require.Equal(t, int64(43), entry.InclusionProof.TreeSize)
	require.Empty(t, b.Timestamps)
	require.False(t, b.HasDSSEEnvelope)
	require.NoError(t, b.Validate())
}

func TestParseRejectsUnknownMediaType(t *testing.T) {
	_, err := Parse([]byte(`{"mediaType": "application/vnd.dev.sigstore.bundle.v99+json"}`))
	require.Error(t, err)
}

func TestParseDetectsDSSEEnvelope(t *testing.T) {
	b, err := Parse([]byte(`{
		"mediaType": "application/vnd.dev.sigstore.bundle.v0.3+json",
		"dsseEnvelope": {"payload": "eHl6", "payloadType": "application/vnd.in-toto+json", "signatures": []}
	}`))
	require.NoError(t, err)
	require.True(t, b.HasDSSEEnvelope)
	require.Error(t, b.Validate())
}

func TestValidateRejectsWrongEntryCount(t *testing.T) {
	b := &Bundle{MessageSignature: &MessageSignature{Signature: []byte("s")}}
	require.Error(t, b.Validate())

	b.Entries = []RekorEntry{{}, {}}
	require.Error(t, b.Validate())
}

func TestValidateRejectsNonEmptyTimestamps(t *testing.T) {
	b := &Bundle{
		MessageSignature: &MessageSignature{Signature: []byte("s")},
		Entries:          []RekorEntry{{}},
		Timestamps:       [][]byte{[]byte("tok")},
	}
	require.Error(t, b.Validate())
}
