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

import "fmt"

// Kind enumerates the distinct ways a keyless verification can fail.
// Callers should switch on Kind rather than matching error strings.
type Kind int

const (
	// KindBundleMalformed covers shape violations caught at step 1: a
	// DSSE envelope, a missing message signature, entries.size != 1, or
	// non-empty timestamps.
	KindBundleMalformed Kind = iota
	// KindDigestMismatch means the bundle's claimed message digest does
	// not equal the caller-supplied artifact digest.
	KindDigestMismatch
	// KindFulcioError covers any failure building or validating the
	// signing certificate's chain of trust, including a missing or
	// unverifiable SCT.
	KindFulcioError
	// KindMatcherEvaluationError means a caller-supplied identity
	// matcher raised an error while being evaluated.
	KindMatcherEvaluationError
	// KindNoIdentityMatch means every supplied matcher evaluated
	// cleanly but none matched the leaf certificate.
	KindNoIdentityMatch
	// KindRekorError covers any failure verifying the transparency log
	// entry's Signed Entry Timestamp, inclusion proof, or checkpoint.
	KindRekorError
	// KindLogBindingMismatch means the log entry's body does not
	// re-encode to the canonical hashed-rekord JSON derived from the
	// artifact digest, leaf certificate, and signature.
	KindLogBindingMismatch
	// KindTimeOutOfValidity means the log's integrated time falls
	// outside the leaf certificate's validity period.
	KindTimeOutOfValidity
	// KindSignatureInvalid means the artifact signature does not verify
	// under the leaf certificate's public key.
	KindSignatureInvalid
)

// VerificationError is the single error type this package returns; its
// Kind distinguishes which of the verification steps failed.
type VerificationError struct {
	kind Kind
	msg  string
	err  error
}

func newError(kind Kind, msg string, err error) *VerificationError {
	return &VerificationError{kind: kind, msg: msg, err: err}
}

// Kind reports which verification step failed.
func (e *VerificationError) Kind() Kind {
	return e.kind
}

// Error implements error.
func (e *VerificationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap exposes the underlying cause, if any, for errors.Is/As.
func (e *VerificationError) Unwrap() error {
	return e.err
}
