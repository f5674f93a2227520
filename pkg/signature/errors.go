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

import "errors"

var (
	// ErrBadKeyFormat is returned when key material cannot be parsed as a
	// recognized PEM or TUF key encoding.
	ErrBadKeyFormat = errors.New("bad key format")
	// ErrUnsupportedAlgorithm is returned for key types and schemes this
	// package does not implement, including DSA and rsassa-pss TUF keys.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrInvalidSignature is returned when a signature fails to verify.
	ErrInvalidSignature = errors.New("invalid signature")
)
