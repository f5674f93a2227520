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

// Package root models the trust material a TUF client delivers: the set
// of Fulcio certificate authorities, Rekor transparency logs, and CT logs
// a keyless verification is willing to trust, each scoped to a validity
// interval. It is pure data plus lookup helpers; it performs no I/O and
// enforces no policy beyond interval containment.
package root

import (
	"crypto"
	"crypto/x509"
	"time"
)

// ValidityPeriod is a half-open interval [Start, End) during which a key
// or CA is considered trusted. A zero End means "still valid".
type ValidityPeriod struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the validity period.
func (v ValidityPeriod) Contains(t time.Time) bool {
	if t.Before(v.Start) {
		return false
	}
	if !v.End.IsZero() && (t.After(v.End) || t.Equal(v.End)) {
		return false
	}
	return true
}

// CertificateAuthority is a single Fulcio signing hierarchy: an ordered
// certificate chain (leaf-issuing CA first, root last) and the window
// during which it was used to issue certificates.
type CertificateAuthority struct {
	CertChain []*x509.Certificate
	ValidFor  ValidityPeriod
}

// Root returns the last (self-signed root) certificate in the chain.
func (ca CertificateAuthority) Root() *x509.Certificate {
	if len(ca.CertChain) == 0 {
		return nil
	}
	return ca.CertChain[len(ca.CertChain)-1]
}

// Intermediates returns every certificate between the leaf-issuing CA and
// the root, inclusive of the leaf-issuing CA.
func (ca CertificateAuthority) Intermediates() []*x509.Certificate {
	if len(ca.CertChain) <= 1 {
		return nil
	}
	return ca.CertChain[:len(ca.CertChain)-1]
}

// TransparencyLogKey is a public key belonging to a transparency log
// (Rekor) or a certificate-transparency log (CT), scoped to a validity
// window. LogID is the SHA-256 digest of the key's DER SubjectPublicKeyInfo.
type TransparencyLogKey struct {
	LogID     []byte
	PublicKey crypto.PublicKey
	ValidFor  ValidityPeriod
}

// TrustedRoot is the immutable, in-memory trust material produced by a
// TUF client's Update. Once constructed it is never mutated; verifiers
// hold a read-only reference and may share it across concurrent
// verifications without locking.
type TrustedRoot struct {
	CertificateAuthorities []CertificateAuthority
	Rekor                  []TransparencyLogKey
	CTLogs                 []TransparencyLogKey
}

// CAsAt returns every certificate authority whose validity period contains t.
func (t *TrustedRoot) CAsAt(at time.Time) []CertificateAuthority {
	var out []CertificateAuthority
	for _, ca := range t.CertificateAuthorities {
		if ca.ValidFor.Contains(at) {
			out = append(out, ca)
		}
	}
	return out
}

// CTLogByID returns the CT log key with the given log ID. It does not
// check the key's validity period; callers check ValidFor themselves.
// CTLogByID has no tie-break to apply since log IDs are unique per key.
func (t *TrustedRoot) CTLogByID(logID []byte) (TransparencyLogKey, bool) {
	return lookupByID(t.CTLogs, logID)
}

// TlogByID returns the Rekor transparency log key with the given log ID.
func (t *TrustedRoot) TlogByID(logID []byte) (TransparencyLogKey, bool) {
	return lookupByID(t.Rekor, logID)
}

func lookupByID(keys []TransparencyLogKey, logID []byte) (TransparencyLogKey, bool) {
	for _, k := range keys {
		if byteSliceEqual(k.LogID, logID) {
			return k, true
		}
	}
	return TransparencyLogKey{}, false
}

func byteSliceEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LatestStartingCA returns, among cas, the one with the latest Start time
// not after notBefore — the tie-break rule the Fulcio verifier applies
// (passing its observer timestamp) when more than one trusted CA's
// validity window contains that time.
func LatestStartingCA(cas []CertificateAuthority, notBefore time.Time) (CertificateAuthority, bool) {
	var best CertificateAuthority
	found := false
	for _, ca := range cas {
		if ca.ValidFor.Start.After(notBefore) {
			continue
		}
		if !found || ca.ValidFor.Start.After(best.ValidFor.Start) {
			best = ca
			found = true
		}
	}
	return best, found
}
