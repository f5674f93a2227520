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
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// sigMarker precedes each signature line in a signed note, per the
// note/checkpoint text format Rekor checkpoints use.
const sigMarker = "— "

// ParseCheckpoint decodes envelope — a signed note of the form
//
//	<origin>
//	<decimal tree size>
//	<base64 root hash>
//
//	— <name> <base64(4-byte key hash || signature)>
//
// into a Checkpoint. Raw is set to the header text exactly as signed
// (through the blank line separator); Signature has the note format's
// 4-byte key-hash prefix stripped. LogID is left unset: the note's own
// key hash uses a different scheme than Sigstore's log IDs, so callers
// set LogID from the trusted transparency log entry the checkpoint
// accompanies.
func ParseCheckpoint(envelope string) (*Checkpoint, error) {
	text := strings.ReplaceAll(envelope, "\r\n", "\n")
	sep := strings.Index(text, "\n\n")
	if sep < 0 {
		return nil, fmt.Errorf("%w: checkpoint has no header/signature separator", ErrBadCheckpoint)
	}

	lines := strings.Split(text[:sep], "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: checkpoint header has %d lines, want at least 3", ErrBadCheckpoint, len(lines))
	}
	treeSize, err := strconv.ParseInt(lines[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing tree size: %w", ErrBadCheckpoint, err)
	}
	rootHash, err := base64.StdEncoding.DecodeString(lines[2])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding root hash: %w", ErrBadCheckpoint, err)
	}

	sig, err := parseCheckpointSignature(text[sep+2:])
	if err != nil {
		return nil, err
	}

	return &Checkpoint{
		Origin:    lines[0],
		TreeSize:  treeSize,
		RootHash:  rootHash,
		Raw:       []byte(text[:sep+2]),
		Signature: sig,
	}, nil
}

func parseCheckpointSignature(sigBlock string) ([]byte, error) {
	for _, line := range strings.Split(strings.TrimRight(sigBlock, "\n"), "\n") {
		if !strings.HasPrefix(line, sigMarker) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, sigMarker))
		if len(fields) != 2 {
			continue
		}
		blob, err := base64.StdEncoding.DecodeString(fields[1])
		if err != nil || len(blob) <= 4 {
			continue
		}
		return blob[4:], nil // strip the note format's 4-byte key-hash prefix
	}
	return nil, fmt.Errorf("%w: no signature line found in checkpoint", ErrBadCheckpoint)
}
