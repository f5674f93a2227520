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

package rekor

import "errors"

var (
	// ErrUntrustedLog indicates the entry's log ID does not match any
	// transparency log key in the trusted root.
	ErrUntrustedLog = errors.New("rekor: entry's log ID is not a trusted transparency log")
	// ErrLogKeyExpired indicates the log key matching the entry's log ID
	// was not valid at the entry's integrated time.
	ErrLogKeyExpired = errors.New("rekor: log key was not valid at the entry's integrated time")
	// ErrBadSET indicates the Signed Entry Timestamp did not verify
	// against the trusted log key.
	ErrBadSET = errors.New("rekor: signed entry timestamp did not verify")
	// ErrBadInclusionProof indicates the supplied Merkle inclusion proof
	// did not recompute to the claimed root hash.
	ErrBadInclusionProof = errors.New("rekor: inclusion proof did not verify")
	// ErrBadCheckpoint indicates a checkpoint's signature failed to
	// verify, or its tree size/root hash did not match the inclusion
	// proof it was meant to accompany.
	ErrBadCheckpoint = errors.New("rekor: checkpoint did not verify")
)
