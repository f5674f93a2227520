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
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	sigstoresig "github.com/sigstore/sigstore/pkg/signature"
	"github.com/sigstore/sigstore/pkg/signature/options"
)

// Verifier verifies a signature over a digest that has already been
// computed by the caller. Ed25519 is the one exception: since Ed25519
// signs the message itself rather than a digest of it, implementations of
// this interface for Ed25519 keys treat the "digest" argument as the
// message.
type Verifier interface {
	VerifyDigest(digest, sig []byte) error
}

// NewVerifier builds a Verifier for pub on top of sigstore/sigstore's
// signature.LoadVerifier, dispatching on pub's concrete type: RSA keys
// verify over SHA-256, ECDSA P-256/P-384 keys verify with SHA-256/SHA-384
// respectively, and Ed25519 keys verify the message directly.
func NewVerifier(pub crypto.PublicKey) (Verifier, error) {
	hash, isEd25519, err := hashForKey(pub)
	if err != nil {
		return nil, err
	}
	v, err := sigstoresig.LoadVerifier(pub, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAlgorithm, err)
	}
	return &wrappedVerifier{v: v, isEd25519: isEd25519}, nil
}

func hashForKey(pub crypto.PublicKey) (crypto.Hash, bool, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return crypto.SHA256, false, nil
	case *ecdsa.PublicKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return crypto.SHA256, false, nil
		case 384:
			return crypto.SHA384, false, nil
		default:
			return 0, false, fmt.Errorf("%w: unsupported ECDSA curve size %d", ErrUnsupportedAlgorithm, k.Curve.Params().BitSize)
		}
	case ed25519.PublicKey:
		return crypto.Hash(0), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %T", ErrUnsupportedAlgorithm, pub)
	}
}

type wrappedVerifier struct {
	v         sigstoresig.Verifier
	isEd25519 bool
}

func (w *wrappedVerifier) VerifyDigest(digest, sig []byte) error {
	if w.isEd25519 {
		if err := w.v.VerifySignature(bytes.NewReader(sig), bytes.NewReader(digest)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		return nil
	}
	if err := w.v.VerifySignature(bytes.NewReader(sig), nil, options.WithDigest(digest)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return nil
}
