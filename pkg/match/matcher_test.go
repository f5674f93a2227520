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

package match

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func generateLeaf(t *testing.T, email string, uri string, extensions []pkix.Extension) *x509.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "leaf"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtraExtensions: extensions,
	}
	if email != "" {
		tmpl.EmailAddresses = []string{email}
	}
	if uri != "" {
		u, err := url.Parse(uri)
		require.NoError(t, err)
		tmpl.URIs = []*url.URL{u}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func issuerExtension(t *testing.T, issuer string) pkix.Extension {
	t.Helper()
	val, err := asn1.Marshal(issuer)
	require.NoError(t, err)
	return pkix.Extension{Id: OIDIssuer, Value: val}
}

func TestSANEmailMatcherLiteral(t *testing.T) {
	leaf := generateLeaf(t, "a@b.example", "", nil)
	m, err := NewSANEmailMatcher("a@b.example", false)
	require.NoError(t, err)
	ok, err := m.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)

	m2, err := NewSANEmailMatcher("c@d.example", false)
	require.NoError(t, err)
	ok, err = m2.Match(leaf)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSANURIMatcherRegex(t *testing.T) {
	leaf := generateLeaf(t, "", "https://github.com/acme/widget/.github/workflows/release.yml@refs/heads/main", nil)
	m, err := NewSANURIMatcher(`^https://github\.com/acme/widget/`, true)
	require.NoError(t, err)
	ok, err := m.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestExtensionMatcherReadsIssuer(t *testing.T) {
	leaf := generateLeaf(t, "", "", []pkix.Extension{issuerExtension(t, "https://accounts.example.com")})
	m, err := NewExtensionMatcher(OIDIssuer, "https://accounts.example.com", false)
	require.NoError(t, err)
	ok, err := m.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestAllOfRequiresEveryMatcher(t *testing.T) {
	leaf := generateLeaf(t, "a@b.example", "", []pkix.Extension{issuerExtension(t, "https://issuer.example.com")})

	email, err := NewSANEmailMatcher("a@b.example", false)
	require.NoError(t, err)
	issuer, err := NewExtensionMatcher(OIDIssuer, "https://issuer.example.com", false)
	require.NoError(t, err)

	ok, err := AllOf{email, issuer}.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)

	wrongIssuer, err := NewExtensionMatcher(OIDIssuer, "https://other.example.com", false)
	require.NoError(t, err)
	ok, err = AllOf{email, wrongIssuer}.Match(leaf)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEmptyAllOfMatchesUnconditionally(t *testing.T) {
	leaf := generateLeaf(t, "", "", nil)
	ok, err := AllOf{}.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEmptyAnyOfNeverMatches(t *testing.T) {
	leaf := generateLeaf(t, "", "", nil)
	ok, err := AnyOf{}.Match(leaf)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatchOnNilCertificateIsFatal(t *testing.T) {
	m, err := NewSANEmailMatcher("a@b.example", false)
	require.NoError(t, err)
	_, err = m.Match(nil)
	require.Error(t, err)
}

func TestOIDCIssuerComposesIdentityAndIssuer(t *testing.T) {
	leaf := generateLeaf(t, "a@b.example", "", []pkix.Extension{issuerExtension(t, "https://issuer.example.com")})
	identity, err := NewSANEmailMatcher("a@b.example", false)
	require.NoError(t, err)
	m, err := OIDCIssuer(identity, "https://issuer.example.com", false)
	require.NoError(t, err)
	ok, err := m.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGitHubWorkflowMatchers(t *testing.T) {
	leaf := generateLeaf(t, "", "", []pkix.Extension{
		{Id: OIDGithubWorkflowRepository, Value: mustMarshal(t, "acme/widget")},
		{Id: OIDGithubWorkflowRef, Value: mustMarshal(t, "refs/heads/main")},
	})

	repo, err := GitHubWorkflowRepository("acme/widget", false)
	require.NoError(t, err)
	ok, err := repo.Match(leaf)
	require.NoError(t, err)
	require.True(t, ok)

	ref, err := GitHubWorkflowRef("refs/heads/release", false)
	require.NoError(t, err)
	ok, err = ref.Match(leaf)
	require.NoError(t, err)
	require.False(t, ok)
}

func mustMarshal(t *testing.T, s string) []byte {
	t.Helper()
	b, err := asn1.Marshal(s)
	require.NoError(t, err)
	return b
}
