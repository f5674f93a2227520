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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// acceptedMediaTypes are the dev.sigstore.bundle.v1 JSON media types this
// module understands. v0.3 added inclusion proof checkpoints; v0.1/v0.2
// are accepted for compatibility with older signers.
var acceptedMediaTypes = map[string]bool{
	"application/vnd.dev.sigstore.bundle.v0.1+json": true,
	"application/vnd.dev.sigstore.bundle.v0.2+json": true,
	"application/vnd.dev.sigstore.bundle.v0.3+json": true,
}

// The protobuf-JSON mapping (google.golang.org/protobuf/encoding/protojson's
// canonical form for dev.sigstore.bundle.v1.Bundle) renders int64 fields
// as decimal strings and bytes fields as standard base64. This module
// parses that wire format directly with encoding/json rather than through
// generated protobuf bindings: see DESIGN.md for why.

type jsonBundle struct {
	MediaType            string               `json:"mediaType"`
	VerificationMaterial jsonVerificationMaterial `json:"verificationMaterial"`
	MessageSignature     *jsonMessageSignature `json:"messageSignature"`
	DSSEEnvelope         json.RawMessage      `json:"dsseEnvelope"`
}

type jsonVerificationMaterial struct {
	Certificate           *jsonCertificate      `json:"certificate"`
	X509CertificateChain  *jsonCertificateChain `json:"x509CertificateChain"`
	TlogEntries           []jsonTlogEntry       `json:"tlogEntries"`
	TimestampVerificationData *jsonTimestampVerificationData `json:"timestampVerificationData"`
}

type jsonCertificate struct {
	RawBytes string `json:"rawBytes"`
}

type jsonCertificateChain struct {
	Certificates []jsonCertificate `json:"certificates"`
}

type jsonTimestampVerificationData struct {
	Rfc3161Timestamps []jsonRfc3161Timestamp `json:"rfc3161Timestamps"`
}

type jsonRfc3161Timestamp struct {
	SignedTimestamp string `json:"signedTimestamp"`
}

type jsonMessageSignature struct {
	MessageDigest *jsonMessageDigest `json:"messageDigest"`
	Signature     string             `json:"signature"`
}

type jsonMessageDigest struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

type jsonTlogEntry struct {
	LogIndex          string              `json:"logIndex"`
	LogID             jsonLogID           `json:"logId"`
	IntegratedTime    string              `json:"integratedTime"`
	InclusionPromise  *jsonInclusionPromise `json:"inclusionPromise"`
	InclusionProof    *jsonInclusionProof `json:"inclusionProof"`
	CanonicalizedBody string              `json:"canonicalizedBody"`
}

type jsonLogID struct {
	KeyID string `json:"keyId"`
}

type jsonInclusionPromise struct {
	SignedEntryTimestamp string `json:"signedEntryTimestamp"`
}

type jsonInclusionProof struct {
	LogIndex   string          `json:"logIndex"`
	RootHash   string          `json:"rootHash"`
	TreeSize   string          `json:"treeSize"`
	Hashes     []string        `json:"hashes"`
	Checkpoint *jsonCheckpoint `json:"checkpoint"`
}

type jsonCheckpoint struct {
	Envelope string `json:"envelope"`
}

// Parse decodes a Sigstore bundle JSON document into a Bundle.
func Parse(data []byte) (*Bundle, error) {
	var doc jsonBundle
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding bundle: %w", err)
	}
	if !acceptedMediaTypes[doc.MediaType] {
		return nil, fmt.Errorf("unsupported bundle media type %q", doc.MediaType)
	}

	out := &Bundle{MediaType: doc.MediaType}

	switch {
	case doc.VerificationMaterial.Certificate != nil:
		der, err := decodeB64("certificate.rawBytes", doc.VerificationMaterial.Certificate.RawBytes)
		if err != nil {
			return nil, err
		}
		out.CertPath = [][]byte{der}
	case doc.VerificationMaterial.X509CertificateChain != nil:
		for i, c := range doc.VerificationMaterial.X509CertificateChain.Certificates {
			der, err := decodeB64(fmt.Sprintf("x509CertificateChain.certificates[%d].rawBytes", i), c.RawBytes)
			if err != nil {
				return nil, err
			}
			out.CertPath = append(out.CertPath, der)
		}
	}

	if doc.VerificationMaterial.TimestampVerificationData != nil {
		for i, ts := range doc.VerificationMaterial.TimestampVerificationData.Rfc3161Timestamps {
			tok, err := decodeB64(fmt.Sprintf("rfc3161Timestamps[%d].signedTimestamp", i), ts.SignedTimestamp)
			if err != nil {
				return nil, err
			}
			out.Timestamps = append(out.Timestamps, tok)
		}
	}

	if len(doc.DSSEEnvelope) > 0 && strings.TrimSpace(string(doc.DSSEEnvelope)) != "null" {
		out.HasDSSEEnvelope = true
	}

	if doc.MessageSignature != nil {
		ms := &MessageSignature{}
		if doc.MessageSignature.MessageDigest != nil {
			digest, err := decodeB64("messageSignature.messageDigest.digest", doc.MessageSignature.MessageDigest.Digest)
			if err != nil {
				return nil, err
			}
			ms.DigestAlgorithm = doc.MessageSignature.MessageDigest.Algorithm
			ms.Digest = digest
		}
		sig, err := decodeB64("messageSignature.signature", doc.MessageSignature.Signature)
		if err != nil {
			return nil, err
		}
		ms.Signature = sig
		out.MessageSignature = ms
	}

	for i, te := range doc.VerificationMaterial.TlogEntries {
		entry, err := parseTlogEntry(i, te)
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, entry)
	}

	return out, nil
}

func parseTlogEntry(i int, te jsonTlogEntry) (RekorEntry, error) {
	logIndex, err := parseInt64(fmt.Sprintf("tlogEntries[%d].logIndex", i), te.LogIndex)
	if err != nil {
		return RekorEntry{}, err
	}
	integratedTime, err := parseInt64(fmt.Sprintf("tlogEntries[%d].integratedTime", i), te.IntegratedTime)
	if err != nil {
		return RekorEntry{}, err
	}
	logID, err := decodeB64(fmt.Sprintf("tlogEntries[%d].logId.keyId", i), te.LogID.KeyID)
	if err != nil {
		return RekorEntry{}, err
	}
	body, err := decodeB64(fmt.Sprintf("tlogEntries[%d].canonicalizedBody", i), te.CanonicalizedBody)
	if err != nil {
		return RekorEntry{}, err
	}

	entry := RekorEntry{
		LogID:          logID,
		IntegratedTime: integratedTime,
		LogIndex:       logIndex,
		Body:           body,
	}

	if te.InclusionPromise != nil {
		set, err := decodeB64(fmt.Sprintf("tlogEntries[%d].inclusionPromise.signedEntryTimestamp", i), te.InclusionPromise.SignedEntryTimestamp)
		if err != nil {
			return RekorEntry{}, err
		}
		entry.SignedEntryTimestamp = set
	}

	if te.InclusionProof != nil {
		proof, err := parseInclusionProof(i, *te.InclusionProof)
		if err != nil {
			return RekorEntry{}, err
		}
		entry.InclusionProof = proof
	}

	return entry, nil
}

func parseInclusionProof(i int, jp jsonInclusionProof) (*InclusionProof, error) {
	logIndex, err := parseInt64(fmt.Sprintf("tlogEntries[%d].inclusionProof.logIndex", i), jp.LogIndex)
	if err != nil {
		return nil, err
	}
	treeSize, err := parseInt64(fmt.Sprintf("tlogEntries[%d].inclusionProof.treeSize", i), jp.TreeSize)
	if err != nil {
		return nil, err
	}
	rootHash, err := decodeB64(fmt.Sprintf("tlogEntries[%d].inclusionProof.rootHash", i), jp.RootHash)
	if err != nil {
		return nil, err
	}
	var hashes [][]byte
	for j, h := range jp.Hashes {
		b, err := decodeB64(fmt.Sprintf("tlogEntries[%d].inclusionProof.hashes[%d]", i, j), h)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, b)
	}

	proof := &InclusionProof{
		LogIndex: logIndex,
		RootHash: rootHash,
		TreeSize: treeSize,
		Hashes:   hashes,
	}
	if jp.Checkpoint != nil {
		proof.Checkpoint = &Checkpoint{Envelope: jp.Checkpoint.Envelope}
	}
	return proof, nil
}

func decodeB64(field, v string) ([]byte, error) {
	if v == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", field, err)
	}
	return b, nil
}

func parseInt64(field, v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", field, err)
	}
	return n, nil
}
