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

package cli

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bobcallaway/sigstore-verify/pkg/bundle"
	"github.com/bobcallaway/sigstore-verify/pkg/keyless"
	"github.com/bobcallaway/sigstore-verify/pkg/match"
	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
	"github.com/bobcallaway/sigstore-verify/pkg/tuf"
)

func addBlob() *cobra.Command {
	o := &BlobOptions{}

	cmd := &cobra.Command{
		Use:     "blob ARTIFACT",
		Short:   "Verify a blob against a Sigstore bundle",
		Example: `  verify blob --bundle artifact.sigstore.json artifact.tar.gz`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlob(cmd.Context(), o, args[0])
		},
	}
	o.AddFlags(cmd)
	return cmd
}

func runBlob(ctx context.Context, o *BlobOptions, artifactPath string) error {
	digest, err := hashFile(artifactPath)
	if err != nil {
		return fmt.Errorf("hashing artifact: %w", err)
	}

	b, err := loadBundle(o.Bundle)
	if err != nil {
		return fmt.Errorf("loading bundle: %w", err)
	}

	trustedRoot, err := loadTrustedRoot(ctx, o)
	if err != nil {
		return fmt.Errorf("loading trusted root: %w", err)
	}

	matchers, err := buildMatchers(o)
	if err != nil {
		return fmt.Errorf("building certificate matchers: %w", err)
	}

	v := keyless.NewVerifier(trustedRoot)
	if err := v.Verify(digest, b, keyless.Options{
		CertificateMatchers: matchers,
		RequireCheckpoint:   o.RequireCheckpoint,
	}); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Verified OK: %s\n", artifactPath)
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func loadBundle(path string) (*bundle.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bundle.Parse(data)
}

func loadTrustedRoot(ctx context.Context, o *BlobOptions) (*sigroot.TrustedRoot, error) {
	if o.TrustedRoot != "" {
		data, err := os.ReadFile(o.TrustedRoot)
		if err != nil {
			return nil, err
		}
		return sigroot.ParseTrustedRoot(data)
	}

	instance := tuf.PublicGood
	if o.TUFInstance == "staging" {
		instance = tuf.Staging
	}
	client, err := tuf.NewClient(instance)
	if err != nil {
		return nil, err
	}
	return client.FetchTrustedRoot(ctx)
}

func buildMatchers(o *BlobOptions) ([]match.Matcher, error) {
	var identity match.Matcher
	switch {
	case o.CertIdentity != "":
		m, err := match.NewSANURIMatcher(o.CertIdentity, false)
		if err != nil {
			return nil, err
		}
		identity = m
	case o.CertIdentityRegexp != "":
		m, err := match.NewSANURIMatcher(o.CertIdentityRegexp, true)
		if err != nil {
			return nil, err
		}
		identity = m
	}

	var issuerValue string
	var issuerRegex bool
	switch {
	case o.CertOIDCIssuer != "":
		issuerValue = o.CertOIDCIssuer
	case o.CertOIDCIssuerRegexp != "":
		issuerValue = o.CertOIDCIssuerRegexp
		issuerRegex = true
	}

	switch {
	case identity != nil && issuerValue != "":
		m, err := match.OIDCIssuer(identity, issuerValue, issuerRegex)
		if err != nil {
			return nil, err
		}
		return []match.Matcher{m}, nil
	case identity != nil:
		return []match.Matcher{identity}, nil
	case issuerValue != "":
		m, err := match.NewExtensionMatcher(match.OIDIssuer, issuerValue, issuerRegex)
		if err != nil {
			return nil, err
		}
		return []match.Matcher{m}, nil
	default:
		return nil, nil
	}
}
