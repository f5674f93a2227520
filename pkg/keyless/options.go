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

import "github.com/bobcallaway/sigstore-verify/pkg/match"

// Options controls optional verification behavior beyond the mandatory
// eight-step cascade.
type Options struct {
	// CertificateMatchers restricts which signing identities are
	// accepted. An empty list accepts any identity Fulcio and Rekor
	// already vouch for; a non-empty list requires at least one matcher
	// to match the leaf certificate.
	CertificateMatchers []match.Matcher

	// RequireCheckpoint demands the Rekor entry carry an inclusion proof
	// with a verified checkpoint; an entry without either fails. See Open
	// Question (b): inclusion proofs are optional today but may become
	// mandatory, so this defaults to false.
	RequireCheckpoint bool
}
