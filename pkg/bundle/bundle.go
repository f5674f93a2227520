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

// Package bundle models a Sigstore verification bundle: a signing
// certificate chain, a detached message signature, and the transparency
// log entries that witness it. Bundle and its fields are immutable once
// decoded; nothing in this package performs verification, only parsing.
package bundle

import "fmt"

// Bundle is the verification input: a certificate chain, exactly one of
// a message signature or a DSSE envelope, and the log entries attesting
// to the signing event.
type Bundle struct {
	MediaType string

	// CertPath is ordered leaf-first, chain following. Intermediates may
	// be incomplete; the trust root can supply the rest.
	CertPath [][]byte // DER

	MessageSignature *MessageSignature
	HasDSSEEnvelope  bool // core always rejects bundles carrying one

	Entries []RekorEntry

	// Timestamps holds raw RFC-3161 timestamp tokens. The core requires
	// this to be empty; it is parsed only so "non-empty" can be detected
	// and reported, not to be verified.
	Timestamps [][]byte
}

// MessageSignature is a detached signature over an artifact, with an
// optional digest the signer claims to have signed.
type MessageSignature struct {
	DigestAlgorithm string // e.g. "SHA2_256"; empty if Digest absent
	Digest          []byte // nil if the bundle carries no digest claim
	Signature       []byte
}

// RekorEntry is the subset of a Rekor transparency log entry this module
// verifies.
type RekorEntry struct {
	LogID                []byte
	IntegratedTime        int64
	LogIndex              int64
	Body                  []byte // canonical hashed-rekord JSON, already base64-decoded
	SignedEntryTimestamp  []byte
	InclusionProof        *InclusionProof
}

// InclusionProof is a Merkle proof that Body's leaf hash is included in
// a log tree of the given size, optionally accompanied by a checkpoint.
type InclusionProof struct {
	LogIndex   int64
	RootHash   []byte
	TreeSize   int64
	Hashes     [][]byte
	Checkpoint *Checkpoint
}

// Checkpoint carries a log's signed tree head exactly as encoded in the
// bundle: a signed-note text blob. This package does not parse it —
// pkg/rekor.ParseCheckpoint turns Envelope into the structured fields its
// own verification needs.
type Checkpoint struct {
	Envelope string
}

// Validate checks the bundle-shape invariants the orchestrator's step 1
// enforces: no DSSE envelope, a message signature present, exactly one
// log entry, and no timestamp tokens.
func (b *Bundle) Validate() error {
	if b.HasDSSEEnvelope {
		return fmt.Errorf("bundle carries a DSSE envelope, not a message signature")
	}
	if b.MessageSignature == nil {
		return fmt.Errorf("bundle has no message signature")
	}
	if len(b.Entries) != 1 {
		return fmt.Errorf("bundle has %d log entries, want exactly 1", len(b.Entries))
	}
	if len(b.Timestamps) != 0 {
		return fmt.Errorf("bundle carries %d RFC-3161 timestamps, want 0", len(b.Timestamps))
	}
	return nil
}
