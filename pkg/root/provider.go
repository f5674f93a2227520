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

package root

import (
	"context"
	"os"
)

// Provider supplies a TrustedRoot on demand. There are three concrete
// forms: the public-good and staging Sigstore instances (both backed by a
// TUF client), and a file-on-disk override for offline use. None of them
// hold process-wide mutable state; each call to TrustedRoot may refresh
// or may return a cached value, entirely at the provider's discretion.
type Provider interface {
	TrustedRoot(ctx context.Context) (*TrustedRoot, error)
}

// FileProvider reads a dev.sigstore.trustroot.v1.TrustedRoot document from
// a fixed path on every call, re-parsing it each time so a file changed on
// disk between verifications is picked up.
type FileProvider struct {
	Path string
}

func (f FileProvider) TrustedRoot(_ context.Context) (*TrustedRoot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return ParseTrustedRoot(data)
}

// tufFetcher is satisfied by pkg/tuf.Client; declared here, rather than
// importing pkg/tuf directly, to avoid a dependency cycle (pkg/tuf in
// turn imports pkg/root to build a TrustedRoot).
type tufFetcher interface {
	FetchTrustedRoot(ctx context.Context) (*TrustedRoot, error)
}

// TufProvider adapts a TUF client into a Provider.
type TufProvider struct {
	Client tufFetcher
}

func (t TufProvider) TrustedRoot(ctx context.Context) (*TrustedRoot, error) {
	return t.Client.FetchTrustedRoot(ctx)
}

// FromEnvironment returns a FileProvider honoring SIGSTORE_TRUSTED_ROOT
// when set, or false if the override is not present.
func FromEnvironment() (Provider, bool) {
	if path := os.Getenv("SIGSTORE_TRUSTED_ROOT"); path != "" {
		return FileProvider{Path: path}, true
	}
	return nil, false
}
