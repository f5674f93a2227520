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

// Package signature parses public keys and dispatches signature
// verification over a precomputed digest for the algorithms the Sigstore
// ecosystem issues: RSA (PKCS#1 v1.5), ECDSA over P-256/P-384, and
// Ed25519. RSA-PSS signatures are not verified: every RSA key is checked
// as PKCS#1 v1.5 over SHA-256.
package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// TufKeyScheme identifies the key encoding scheme named in TUF metadata's
// "keytype"/"scheme" pair.
type TufKeyScheme string

const (
	SchemeECDSAP256 TufKeyScheme = "ecdsa-sha2-nistp256"
	SchemeEd25519   TufKeyScheme = "ed25519"
	SchemeRSAPSS    TufKeyScheme = "rsassa-pss-sha256"
)

// ParsePublicKey decodes a PEM-encoded public key. It recognizes the
// "PUBLIC KEY" (PKIX) and "RSA PUBLIC KEY" (PKCS#1) block types; the
// latter is parsed directly as PKCS#1. DSA keys and any non-PEM input are
// rejected with ErrBadKeyFormat.
func ParsePublicKey(raw []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("%w: not PEM encoded", ErrBadKeyFormat)
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadKeyFormat, err)
		}
		return checkSupported(pub)
	case "RSA PUBLIC KEY":
		rsaPub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadKeyFormat, err)
		}
		return rsaPub, nil
	default:
		return nil, fmt.Errorf("%w: unsupported PEM block type %q", ErrBadKeyFormat, block.Type)
	}
}

func checkSupported(pub crypto.PublicKey) (crypto.PublicKey, error) {
	switch pub.(type) {
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey:
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unsupported key type %T", ErrBadKeyFormat, pub)
	}
}

// ConstructTufPublicKey decodes a raw TUF key value according to the
// scheme declared for it in root.json. ecdsa-sha2-nistp256 keys are an
// uncompressed EC point (65 bytes, leading 0x04); ed25519 keys are either
// a bare 32-byte key or a DER SubjectPublicKeyInfo. rsassa-pss-sha256 is
// not a valid TUF key scheme and always fails.
func ConstructTufPublicKey(rawBytes []byte, scheme TufKeyScheme) (crypto.PublicKey, error) {
	switch scheme {
	case SchemeECDSAP256:
		if len(rawBytes) != 65 || rawBytes[0] != 0x04 {
			return nil, fmt.Errorf("%w: expected 65-byte uncompressed EC point", ErrBadKeyFormat)
		}
		x, y := elliptic.Unmarshal(elliptic.P256(), rawBytes) //nolint:staticcheck
		if x == nil {
			return nil, fmt.Errorf("%w: invalid EC point", ErrBadKeyFormat)
		}
		return &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}, nil
	case SchemeEd25519:
		switch len(rawBytes) {
		case ed25519.PublicKeySize:
			return ed25519.PublicKey(rawBytes), nil
		default:
			pub, err := x509.ParsePKIXPublicKey(rawBytes)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrBadKeyFormat, err)
			}
			edPub, ok := pub.(ed25519.PublicKey)
			if !ok {
				return nil, fmt.Errorf("%w: not an ed25519 key", ErrBadKeyFormat)
			}
			return edPub, nil
		}
	case SchemeRSAPSS:
		return nil, fmt.Errorf("%w: %s is not a valid TUF key scheme", ErrUnsupportedAlgorithm, scheme)
	default:
		return nil, fmt.Errorf("%w: unknown TUF key scheme %q", ErrUnsupportedAlgorithm, scheme)
	}
}

// MarshalPublicKeyToPEM re-exports cryptoutils' PEM marshaling so callers
// holding a crypto.PublicKey (e.g. from a leaf certificate) can produce
// the same canonical encoding used elsewhere in this module.
func MarshalPublicKeyToPEM(pub crypto.PublicKey) ([]byte, error) {
	return cryptoutils.MarshalPublicKeyToPEM(pub)
}
