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

import _ "embed"

// The seed root.json for each well-known Sigstore instance is embedded
// the same way cosign's TUF client embeds a trust-on-first-use anchor via
// go:embed rather than asking a caller to supply one. The files checked
// into this tree are structural placeholders: a production build
// replaces them with the actual, currently-valid root.json fetched out of
// band from the corresponding TUF repository, the same way the upstream
// project's embedded copy is refreshed by its release tooling.
//
//go:embed embedded/public-good/root.json
var embeddedPublicGoodRoot []byte

//go:embed embedded/staging/root.json
var embeddedStagingRoot []byte

const (
	publicGoodMetadataBaseURL = "https://tuf-repo-cdn.sigstore.dev"
	publicGoodTargetsBaseURL  = "https://tuf-repo-cdn.sigstore.dev/targets"
	stagingMetadataBaseURL    = "https://tuf-repo-cdn.sigstage.dev"
	stagingTargetsBaseURL     = "https://tuf-repo-cdn.sigstage.dev/targets"
)
