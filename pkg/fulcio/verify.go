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

// Package fulcio verifies that a leaf certificate was issued by a
// Fulcio certificate authority named in a trusted root, and that its
// issuance was logged to a Certificate Transparency log within a
// trusted log's operating period.
package fulcio

import (
	"crypto/x509"
	"fmt"
	"time"

	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
)

// Verifier checks Fulcio-issued signing certificates against a trusted
// root's certificate authorities and CT log keys.
type Verifier struct {
	trustedRoot *sigroot.TrustedRoot
}

// NewVerifier constructs a Verifier bound to a trusted root.
func NewVerifier(trustedRoot *sigroot.TrustedRoot) *Verifier {
	return &Verifier{trustedRoot: trustedRoot}
}

// VerifySigningCertificate checks certPath — the leaf signing certificate
// followed by zero or more intermediates as presented in a Sigstore
// bundle — against the verifier's trusted root, at observerTimestamp
// (ordinarily the time a transparency log entry was integrated). It
// returns the verified chain from leaf to a trusted CA root.
func (v *Verifier) VerifySigningCertificate(certPath []*x509.Certificate, observerTimestamp time.Time) ([]*x509.Certificate, error) {
	if len(certPath) == 0 {
		return nil, fmt.Errorf("%w: empty certificate path", ErrChainBuildFailed)
	}
	leaf := certPath[0]
	if leaf.BasicConstraintsValid && leaf.IsCA {
		return nil, ErrBadLeafConstraints
	}
	if leaf.KeyUsage&x509.KeyUsageDigitalSignature == 0 {
		return nil, fmt.Errorf("%w: leaf certificate key usage does not include digital signature", ErrBadLeafConstraints)
	}

	chain, err := v.buildAndVerifyChain(certPath, observerTimestamp)
	if err != nil {
		return nil, err
	}

	if err := v.verifyEmbeddedSCT(leaf, chain); err != nil {
		return nil, err
	}

	return chain, nil
}

// buildAndVerifyChain picks, among the certificate authorities in the
// trusted root whose validity period contains observerTimestamp, the one
// with the latest start, and checks that its root (plus any trusted-root
// intermediates) completes a verifiable path from the leaf.
func (v *Verifier) buildAndVerifyChain(certPath []*x509.Certificate, observerTimestamp time.Time) ([]*x509.Certificate, error) {
	leaf := certPath[0]
	presentedIntermediates := x509.NewCertPool()
	for _, c := range certPath[1:] {
		presentedIntermediates.AddCert(c)
	}

	latest, ok := sigroot.LatestStartingCA(v.trustedRoot.CAsAt(observerTimestamp), observerTimestamp)
	if !ok {
		return nil, ErrUntrustedCA
	}
	cas := []sigroot.CertificateAuthority{latest}

	var lastErr error
	for _, ca := range cas {
		roots := x509.NewCertPool()
		root := ca.Root()
		if root == nil {
			continue
		}
		roots.AddCert(root)

		intermediates := x509.NewCertPool()
		for _, c := range ca.Intermediates() {
			intermediates.AddCert(c)
		}
		for _, c := range certPath[1:] {
			intermediates.AddCert(c)
		}

		chains, err := leaf.Verify(x509.VerifyOptions{
			Roots:         roots,
			Intermediates: intermediates,
			CurrentTime:   observerTimestamp,
			KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(chains) == 0 {
			continue
		}
		return chains[0], nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainBuildFailed, lastErr)
	}
	return nil, ErrChainBuildFailed
}

// verifyEmbeddedSCT requires at least one embedded SCT to verify against
// a trusted CT log key whose validity period contains the log's claimed
// timestamp.
func (v *Verifier) verifyEmbeddedSCT(leaf *x509.Certificate, chain []*x509.Certificate) error {
	if len(chain) < 2 {
		return fmt.Errorf("%w: chain has no issuer to hash for precertificate reconstruction", ErrChainBuildFailed)
	}
	issuer := chain[1]

	scts, err := extractSCTs(leaf)
	if err != nil {
		return err
	}
	if len(scts) == 0 {
		return ErrMissingSCT
	}

	for _, sct := range scts {
		logKey, ok := v.trustedRoot.CTLogByID(sct.LogID.KeyID[:])
		if !ok {
			continue
		}
		sctTime := time.UnixMilli(int64(sct.Timestamp))
		if !logKey.ValidFor.Contains(sctTime) {
			continue
		}
		if err := verifySCT(sct, leaf, issuer, logKey.PublicKey); err == nil {
			return nil
		}
	}

	return ErrNoValidSCT
}
