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

// Package keyless composes certificate, transparency-log, and signature
// verification into the single decision a Sigstore keyless verification
// makes: is this (artifact digest, bundle) pair an authentic keyless
// signing event, against a given trust root?
package keyless

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"

	"github.com/bobcallaway/sigstore-verify/pkg/bundle"
	"github.com/bobcallaway/sigstore-verify/pkg/fulcio"
	"github.com/bobcallaway/sigstore-verify/pkg/hashedrekord"
	"github.com/bobcallaway/sigstore-verify/pkg/match"
	"github.com/bobcallaway/sigstore-verify/pkg/rekor"
	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
	sigverify "github.com/bobcallaway/sigstore-verify/pkg/signature"
)

// Verifier answers whether a bundle is a valid Sigstore keyless
// attestation for a given artifact digest, against a trusted root. It
// holds no mutable state and is safe for concurrent use.
type Verifier struct {
	fulcio *fulcio.Verifier
	rekor  *rekor.Verifier
}

// NewVerifier constructs a Verifier bound to trustedRoot.
func NewVerifier(trustedRoot *sigroot.TrustedRoot) *Verifier {
	return &Verifier{
		fulcio: fulcio.NewVerifier(trustedRoot),
		rekor:  rekor.NewVerifier(trustedRoot),
	}
}

// Verify runs the eight-step verification cascade against b, returning
// nil only if every step succeeds. The first failing step terminates
// the cascade; the returned error is always a *VerificationError.
func (v *Verifier) Verify(artifactDigest []byte, b *bundle.Bundle, opts Options) error {
	// Step 1: bundle shape.
	if err := b.Validate(); err != nil {
		return newError(KindBundleMalformed, "bundle shape is invalid", err)
	}
	ms := b.MessageSignature

	// Step 2: digest consistency.
	if ms.Digest != nil && !bytes.Equal(ms.Digest, artifactDigest) {
		return newError(KindDigestMismatch, fmt.Sprintf(
			"provided artifact digest %x does not match bundle digest %x", artifactDigest, ms.Digest), nil)
	}

	certPath, err := parseCertPath(b.CertPath)
	if err != nil {
		return newError(KindFulcioError, "could not parse certificate path", err)
	}
	entry := b.Entries[0]
	integratedTime := time.Unix(entry.IntegratedTime, 0)

	// Step 3: certificate validity (chain of trust + embedded SCT).
	chain, err := v.fulcio.VerifySigningCertificate(certPath, integratedTime)
	if err != nil {
		return newError(KindFulcioError, "signing certificate was not valid", err)
	}
	leaf := chain[0]

	// Step 4: identity match.
	if err := checkCertificateMatchers(leaf, opts.CertificateMatchers); err != nil {
		return err
	}

	// Step 5: Rekor entry signature.
	rekorEntry := rekor.Entry{
		LogID:                entry.LogID,
		IntegratedTime:       entry.IntegratedTime,
		LogIndex:             entry.LogIndex,
		Body:                 entry.Body,
		SignedEntryTimestamp: entry.SignedEntryTimestamp,
	}
	if entry.InclusionProof != nil {
		proof := &rekor.InclusionProof{
			LogIndex: entry.InclusionProof.LogIndex,
			RootHash: entry.InclusionProof.RootHash,
			TreeSize: entry.InclusionProof.TreeSize,
			Hashes:   entry.InclusionProof.Hashes,
		}
		if entry.InclusionProof.Checkpoint != nil {
			cp, err := rekor.ParseCheckpoint(entry.InclusionProof.Checkpoint.Envelope)
			if err != nil {
				return newError(KindRekorError, "could not parse inclusion proof checkpoint", err)
			}
			// The checkpoint accompanies this entry's own inclusion proof,
			// so it is signed by the same log that logged the entry.
			cp.LogID = entry.LogID
			rekorEntry.Checkpoint = cp
		}
		rekorEntry.InclusionProof = proof
	}
	if err := v.rekor.Verify(rekorEntry, rekor.Options{RequireCheckpoint: opts.RequireCheckpoint}); err != nil {
		return newError(KindRekorError, "rekor entry was not valid", err)
	}

	// Step 6: log-body binding. bundle.Parse already base64-decoded
	// entry.Body, so the comparison is a direct byte match against the
	// freshly reconstructed canonical JSON.
	leafPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leaf.Raw})
	wantBody, err := hashedrekord.Encode(artifactDigest, leafPEM, ms.Signature)
	if err != nil {
		return newError(KindLogBindingMismatch, "could not reconstruct hashed-rekord body", err)
	}
	if !bytes.Equal(wantBody, entry.Body) {
		return newError(KindLogBindingMismatch,
			"log entry body does not match the artifact, certificate, and signature", nil)
	}

	// Step 7: temporal binding.
	if integratedTime.Before(leaf.NotBefore) {
		return newError(KindTimeOutOfValidity, "log integration time precedes certificate validity", nil)
	}
	if integratedTime.After(leaf.NotAfter) {
		return newError(KindTimeOutOfValidity, "log integration time follows certificate expiry", nil)
	}

	// Step 8: signature.
	verifier, err := sigverify.NewVerifier(leaf.PublicKey)
	if err != nil {
		return newError(KindSignatureInvalid, "could not build a verifier for the leaf public key", err)
	}
	if err := verifier.VerifyDigest(artifactDigest, ms.Signature); err != nil {
		return newError(KindSignatureInvalid, "artifact signature did not verify", err)
	}

	return nil
}

func parseCertPath(der [][]byte) ([]*x509.Certificate, error) {
	if len(der) == 0 {
		return nil, fmt.Errorf("certificate path is empty")
	}
	certs := make([]*x509.Certificate, 0, len(der))
	for i, b := range der {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("parsing certificate %d: %w", i, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func checkCertificateMatchers(leaf *x509.Certificate, matchers []match.Matcher) error {
	if len(matchers) == 0 {
		return nil
	}
	for _, m := range matchers {
		ok, err := m.Match(leaf)
		if err != nil {
			return newError(KindMatcherEvaluationError, fmt.Sprintf("matcher %s could not be evaluated", m.String()), err)
		}
		if ok {
			return nil
		}
	}
	return newError(KindNoIdentityMatch, "no certificate matcher matched the signing certificate", nil)
}
