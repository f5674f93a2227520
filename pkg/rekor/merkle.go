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

import (
	"fmt"

	"github.com/google/trillian/merkle/logverifier"
	"github.com/google/trillian/merkle/rfc6962"
)

// InclusionProof is the Merkle audit path proving a log entry's
// canonical body is present in the tree at the claimed size.
type InclusionProof struct {
	LogIndex int64
	RootHash []byte
	TreeSize int64
	Hashes   [][]byte
}

// verifyInclusion hashes entryBody into its RFC 6962 leaf hash and checks
// that the audit path from that leaf recomputes the claimed root hash,
// using the same RFC 6962 Merkle tree hasher Certificate Transparency
// and Rekor both build on.
func verifyInclusion(entryBody []byte, proof InclusionProof) error {
	leafHash := rfc6962.DefaultHasher.HashLeaf(entryBody)

	v := logverifier.New(rfc6962.DefaultHasher)
	if err := v.VerifyInclusionProof(proof.LogIndex, proof.TreeSize, proof.Hashes, proof.RootHash, leafHash); err != nil {
		return fmt.Errorf("%w: %w", ErrBadInclusionProof, err)
	}
	return nil
}
