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

// Package certificate holds small, pure helpers over x509.Certificate
// chains: picking out the leaf and intermediates, canonical PEM encoding,
// and stripping the embedded SCT list extension to recover the bytes a CT
// log originally signed.
package certificate

import (
	"crypto/x509"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// GetLeaf returns the first certificate in a cert path and verifies it is
// not itself a CA.
func GetLeaf(certPath []*x509.Certificate) (*x509.Certificate, error) {
	if len(certPath) == 0 {
		return nil, fmt.Errorf("certificate path is empty")
	}
	leaf := certPath[0]
	if leaf.BasicConstraintsValid && leaf.IsCA {
		return nil, fmt.Errorf("leaf certificate has CA basic constraint set")
	}
	return leaf, nil
}

// GetIntermediates returns every certificate in certPath except the first
// (the leaf) and the last (the presumed root), in order. If certPath has
// fewer than three certificates, it returns an empty slice.
func GetIntermediates(certPath []*x509.Certificate) []*x509.Certificate {
	if len(certPath) < 3 {
		return nil
	}
	return certPath[1 : len(certPath)-1]
}

// ToPemBytes returns the canonical PEM encoding of a single certificate:
// LF line endings, 64-column base64 wrapping, trailing newline. This must
// byte-exactly match what a verifier reconstructs when rebuilding the
// hashed-rekord log body, so it is a thin pass-through to cryptoutils
// rather than a second, possibly-divergent encoder.
func ToPemBytes(cert *x509.Certificate) ([]byte, error) {
	return cryptoutils.MarshalCertificateToPEM(cert)
}
