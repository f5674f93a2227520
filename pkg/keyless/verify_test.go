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

package keyless

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobcallaway/sigstore-verify/pkg/bundle"
	"github.com/bobcallaway/sigstore-verify/pkg/fulcio"
	"github.com/bobcallaway/sigstore-verify/pkg/match"
	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
)

func generateCA(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:                pkix.Name{CommonName: "root"},
		NotBefore:              time.Now().Add(-time.Hour),
		NotAfter:               time.Now().Add(time.Hour),
		KeyUsage:               x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid:  true,
		IsCA:                   true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func generateSigningLeaf(t *testing.T, issuer *x509.Certificate, issuerKey *ecdsa.PrivateKey) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "leaf"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageCodeSigning},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, issuer, &key.PublicKey, issuerKey)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert, key
}

func minimalBundle(t *testing.T, leaf *x509.Certificate) *bundle.Bundle {
	t.Helper()
	return &bundle.Bundle{
		CertPath: [][]byte{leaf.Raw},
		MessageSignature: &bundle.MessageSignature{
			Signature: []byte("sig-bytes"),
		},
		Entries: []bundle.RekorEntry{{Body: []byte(`{}`), IntegratedTime: time.Now().Unix()}},
	}
}

func TestVerifyRejectsDSSEBundle(t *testing.T) {
	v := NewVerifier(&sigroot.TrustedRoot{})
	b := &bundle.Bundle{HasDSSEEnvelope: true}
	err := v.Verify([]byte("digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindBundleMalformed, verr.Kind())
}

func TestVerifyRejectsMultipleEntries(t *testing.T) {
	v := NewVerifier(&sigroot.TrustedRoot{})
	b := &bundle.Bundle{
		MessageSignature: &bundle.MessageSignature{Signature: []byte("s")},
		Entries:          []bundle.RekorEntry{{}, {}},
	}
	err := v.Verify([]byte("digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindBundleMalformed, verr.Kind())
}

func TestVerifyRejectsNonEmptyTimestamps(t *testing.T) {
	v := NewVerifier(&sigroot.TrustedRoot{})
	b := &bundle.Bundle{
		MessageSignature: &bundle.MessageSignature{Signature: []byte("s")},
		Entries:          []bundle.RekorEntry{{}},
		Timestamps:       [][]byte{[]byte("tok")},
	}
	err := v.Verify([]byte("digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindBundleMalformed, verr.Kind())
}

func TestVerifyRejectsDigestMismatch(t *testing.T) {
	root, rootKey := generateCA(t)
	leaf, _ := generateSigningLeaf(t, root, rootKey)
	b := minimalBundle(t, leaf)
	b.MessageSignature.Digest = []byte("expected-digest")

	tr := &sigroot.TrustedRoot{
		CertificateAuthorities: []sigroot.CertificateAuthority{
			{CertChain: []*x509.Certificate{root}, ValidFor: sigroot.ValidityPeriod{Start: time.Now().Add(-time.Hour), End: time.Now().Add(time.Hour)}},
		},
	}
	v := NewVerifier(tr)
	err := v.Verify([]byte("wrong-digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindDigestMismatch, verr.Kind())
}

func TestVerifyClassifiesMissingSCTAsFulcioError(t *testing.T) {
	root, rootKey := generateCA(t)
	leaf, _ := generateSigningLeaf(t, root, rootKey)
	b := minimalBundle(t, leaf)

	tr := &sigroot.TrustedRoot{
		CertificateAuthorities: []sigroot.CertificateAuthority{
			{CertChain: []*x509.Certificate{root}, ValidFor: sigroot.ValidityPeriod{Start: time.Now().Add(-time.Hour), End: time.Now().Add(time.Hour)}},
		},
	}
	v := NewVerifier(tr)
	err := v.Verify([]byte("digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindFulcioError, verr.Kind())
	require.ErrorIs(t, err, fulcio.ErrMissingSCT)
}

func TestVerifyRejectsUntrustedCA(t *testing.T) {
	root, rootKey := generateCA(t)
	leaf, _ := generateSigningLeaf(t, root, rootKey)
	b := minimalBundle(t, leaf)

	v := NewVerifier(&sigroot.TrustedRoot{})
	err := v.Verify([]byte("digest"), b, Options{})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindFulcioError, verr.Kind())
}

func TestCheckCertificateMatchersNoMatchIsFatal(t *testing.T) {
	root, rootKey := generateCA(t)
	leaf, _ := generateSigningLeaf(t, root, rootKey)

	noMatch, err := match.NewSANEmailMatcher("nope@example.com", false)
	require.NoError(t, err)

	err = checkCertificateMatchers(leaf, []match.Matcher{noMatch})
	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, KindNoIdentityMatch, verr.Kind())
}

func TestCheckCertificateMatchersEmptyListAccepts(t *testing.T) {
	root, rootKey := generateCA(t)
	leaf, _ := generateSigningLeaf(t, root, rootKey)
	require.NoError(t, checkCertificateMatchers(leaf, nil))
}
