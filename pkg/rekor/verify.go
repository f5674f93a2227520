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

// Package rekor decides whether a transparency log entry is authentic:
// signed by a trusted log key active at the entry's integrated time, and
// optionally present in the log's Merkle tree at a claimed size.
package rekor

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/base64"
	"fmt"
	"time"

	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
	sigverify "github.com/bobcallaway/sigstore-verify/pkg/signature"
)

// Entry is the subset of a Rekor log entry this package verifies.
type Entry struct {
	LogID                []byte
	IntegratedTime        int64
	LogIndex              int64
	Body                  []byte // canonical hashed-rekord body, already base64-decoded
	SignedEntryTimestamp  []byte
	InclusionProof        *InclusionProof
	Checkpoint            *Checkpoint
}

// Checkpoint is a signed tree head: a statement by the log about its own
// size and root hash at some point in time, independent of any one
// entry's inclusion proof.
type Checkpoint struct {
	Origin   string
	TreeSize int64
	RootHash []byte
	Raw      []byte // the exact bytes the signature covers
	LogID    []byte
	Signature []byte
}

// Options controls which optional checks Verify performs.
type Options struct {
	// RequireCheckpoint demands that entry.InclusionProof and
	// entry.Checkpoint both be present, and the checkpoint valid; an entry
	// missing either is rejected with ErrBadCheckpoint. When false, a
	// present checkpoint is still verified, but its absence is not an error.
	RequireCheckpoint bool
}

// Verifier checks Rekor log entries against a trusted root's
// transparency log keys.
type Verifier struct {
	trustedRoot *sigroot.TrustedRoot
}

// NewVerifier constructs a Verifier bound to a trusted root.
func NewVerifier(trustedRoot *sigroot.TrustedRoot) *Verifier {
	return &Verifier{trustedRoot: trustedRoot}
}

// Verify checks entry's Signed Entry Timestamp against the trusted log
// key named by entry.LogID, then — if entry.InclusionProof is present —
// its Merkle inclusion proof and (if required or present) checkpoint.
func (v *Verifier) Verify(entry Entry, opts Options) error {
	logKey, ok := v.trustedRoot.TlogByID(entry.LogID)
	if !ok {
		return ErrUntrustedLog
	}

	integratedTime := time.Unix(entry.IntegratedTime, 0)
	if !logKey.ValidFor.Contains(integratedTime) {
		return ErrLogKeyExpired
	}

	pub, ok := logKey.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: trusted log key is not ECDSA", ErrBadSET)
	}
	if err := v.verifySET(entry, pub); err != nil {
		return err
	}

	if entry.InclusionProof == nil {
		if opts.RequireCheckpoint {
			return fmt.Errorf("%w: checkpoint required but no inclusion proof present", ErrBadCheckpoint)
		}
		return nil
	}

	if err := verifyInclusion(entry.Body, *entry.InclusionProof); err != nil {
		return err
	}

	if entry.Checkpoint != nil {
		return v.verifyCheckpoint(*entry.Checkpoint, *entry.InclusionProof)
	}
	if opts.RequireCheckpoint {
		return fmt.Errorf("%w: checkpoint required but absent", ErrBadCheckpoint)
	}
	return nil
}

// verifySET canonicalizes entry's {body, integratedTime, logIndex, logID}
// and verifies its Signed Entry Timestamp against pub. The log signs body
// as the base64 string of the canonicalized entry body, not the decoded
// bytes themselves or their raw string form.
func (v *Verifier) verifySET(entry Entry, pub *ecdsa.PublicKey) error {
	canonical, err := encodeSetPayload(
		base64.StdEncoding.EncodeToString(entry.Body),
		entry.IntegratedTime,
		entry.LogIndex,
		encodeLogID(entry.LogID),
	)
	if err != nil {
		return err
	}

	verifier, err := sigverify.NewVerifier(pub)
	if err != nil {
		return fmt.Errorf("building verifier for Rekor log key: %w", err)
	}
	digest := sha256Sum(canonical)
	if err := verifier.VerifyDigest(digest, entry.SignedEntryTimestamp); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSET, err)
	}
	return nil
}

// verifyCheckpoint checks a log's signed tree head: its own signature
// against a trusted log key, and that its declared size/root hash match
// the inclusion proof it accompanies.
func (v *Verifier) verifyCheckpoint(cp Checkpoint, proof InclusionProof) error {
	if cp.TreeSize != proof.TreeSize {
		return fmt.Errorf("%w: checkpoint tree size %d does not match proof tree size %d", ErrBadCheckpoint, cp.TreeSize, proof.TreeSize)
	}
	if !bytes.Equal(cp.RootHash, proof.RootHash) {
		return fmt.Errorf("%w: checkpoint root hash does not match proof root hash", ErrBadCheckpoint)
	}

	logKey, ok := v.trustedRoot.TlogByID(cp.LogID)
	if !ok {
		return fmt.Errorf("%w: checkpoint signed by an untrusted log key", ErrBadCheckpoint)
	}
	pub, ok := logKey.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: trusted log key is not ECDSA", ErrBadCheckpoint)
	}
	verifier, err := sigverify.NewVerifier(pub)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadCheckpoint, err)
	}
	digest := sha256Sum(cp.Raw)
	if err := verifier.VerifyDigest(digest, cp.Signature); err != nil {
		return fmt.Errorf("%w: %w", ErrBadCheckpoint, err)
	}
	return nil
}
