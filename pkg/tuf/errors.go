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

package tuf

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport failure that persisted past the retry
// budget. Unlike rollback, expiry, or threshold failures, callers may
// retry an update that failed with a NetworkError.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("tuf: network error: %s", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ErrDeadlineExceeded is wrapped into a NetworkError when the caller's
// context deadline expires mid-update.
var ErrDeadlineExceeded = errors.New("deadline exceeded")

var (
	// ErrRollback indicates a fetched root's version is not greater than
	// the trusted root's, or a role's version does not match the version
	// its parent role recorded for it.
	ErrRollback = errors.New("tuf: rollback attack detected")
	// ErrExpired indicates metadata's expiration time has passed.
	ErrExpired = errors.New("tuf: metadata expired")
	// ErrThreshold indicates fewer valid signatures were found than the
	// role's signing threshold requires.
	ErrThreshold = errors.New("tuf: signature threshold not met")
	// ErrHashMismatch indicates a downloaded target's hash or length did
	// not match what its metadata declared.
	ErrHashMismatch = errors.New("tuf: target hash or length mismatch")
)
