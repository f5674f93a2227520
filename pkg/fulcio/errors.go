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

package fulcio

import "errors"

var (
	// ErrChainBuildFailed indicates no path from the leaf certificate to
	// any trusted certificate authority root could be built.
	ErrChainBuildFailed = errors.New("fulcio: could not build certificate chain to a trusted root")
	// ErrUntrustedCA indicates that no certificate authority in the
	// trusted root is valid at the signing time being checked.
	ErrUntrustedCA = errors.New("fulcio: no certificate authority valid for the given time")
	// ErrMissingSCT indicates the leaf certificate carried no embedded
	// Signed Certificate Timestamp.
	ErrMissingSCT = errors.New("fulcio: certificate has no embedded SCT")
	// ErrNoValidSCT indicates every embedded SCT failed verification
	// against the trusted CT log keys.
	ErrNoValidSCT = errors.New("fulcio: no embedded SCT verified against a trusted log key")
	// ErrBadLeafConstraints indicates the leaf certificate fails the
	// constraints a Fulcio-issued signing certificate must satisfy (for
	// example, it is itself a CA).
	ErrBadLeafConstraints = errors.New("fulcio: leaf certificate fails Fulcio leaf constraints")
)
