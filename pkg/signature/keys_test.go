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

package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalPKIX(t *testing.T, pub interface{}) []byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func TestParsePublicKeyECDSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pub, err := ParsePublicKey(marshalPKIX(t, &priv.PublicKey))
	require.NoError(t, err)
	assert.IsType(t, &ecdsa.PublicKey{}, pub)
}

func TestParsePublicKeyRSAPKCS1(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der := x509.MarshalPKCS1PublicKey(&priv.PublicKey)
	block := pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: der})

	pub, err := ParsePublicKey(block)
	require.NoError(t, err)
	assert.IsType(t, &rsa.PublicKey{}, pub)
}

func TestParsePublicKeyRejectsNonPEM(t *testing.T) {
	_, err := ParsePublicKey([]byte("not pem"))
	assert.ErrorIs(t, err, ErrBadKeyFormat)
}

func TestConstructTufPublicKeyECDSA(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	raw := elliptic.Marshal(elliptic.P256(), priv.PublicKey.X, priv.PublicKey.Y) //nolint:staticcheck
	pub, err := ConstructTufPublicKey(raw, SchemeECDSAP256)
	require.NoError(t, err)
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	require.True(t, ok)
	assert.Equal(t, priv.PublicKey.X, ecdsaPub.X)
}

func TestConstructTufPublicKeyEd25519(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	got, err := ConstructTufPublicKey(pub, SchemeEd25519)
	require.NoError(t, err)
	assert.Equal(t, pub, got)
}

func TestConstructTufPublicKeyRejectsRSAPSS(t *testing.T) {
	_, err := ConstructTufPublicKey([]byte{0x01}, SchemeRSAPSS)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestVerifierRoundTrip(t *testing.T) {
	digest := sha256.Sum256([]byte("hello\n"))

	t.Run("ecdsa", func(t *testing.T) {
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		sig, err := ecdsa.SignASN1(rand.Reader, priv, digest[:])
		require.NoError(t, err)

		v, err := NewVerifier(&priv.PublicKey)
		require.NoError(t, err)
		assert.NoError(t, v.VerifyDigest(digest[:], sig))

		sig[0] ^= 0xFF
		assert.ErrorIs(t, v.VerifyDigest(digest[:], sig), ErrInvalidSignature)
	})

	t.Run("ed25519", func(t *testing.T) {
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		msg := []byte("hello\n")
		sig := ed25519.Sign(priv, msg)

		v, err := NewVerifier(pub)
		require.NoError(t, err)
		assert.NoError(t, v.VerifyDigest(msg, sig))
	})

	t.Run("rsa", func(t *testing.T) {
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
		require.NoError(t, err)

		v, err := NewVerifier(&priv.PublicKey)
		require.NoError(t, err)
		assert.NoError(t, v.VerifyDigest(digest[:], sig))
	})
}
