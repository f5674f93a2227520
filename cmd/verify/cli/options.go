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

import "github.com/spf13/cobra"

// BlobOptions holds the flags for `verify blob`.
type BlobOptions struct {
	Bundle          string
	TrustedRoot     string
	TUFInstance     string
	CertIdentity    string
	CertIdentityRegexp string
	CertOIDCIssuer  string
	CertOIDCIssuerRegexp string
	RequireCheckpoint bool
}

// AddFlags registers this options' flags on cmd.
func (o *BlobOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Bundle, "bundle", "", "path to the Sigstore bundle JSON file")
	_ = cmd.MarkFlagRequired("bundle")

	cmd.Flags().StringVar(&o.TrustedRoot, "trusted-root", "", "path to a trusted_root.json file; if unset, fetched from TUF")
	cmd.Flags().StringVar(&o.TUFInstance, "tuf-instance", "public-good", "TUF repository to fetch trust material from: public-good or staging")

	cmd.Flags().StringVar(&o.CertIdentity, "certificate-identity", "", "the expected URI SAN of the signing certificate (email SANs are not matched)")
	cmd.Flags().StringVar(&o.CertIdentityRegexp, "certificate-identity-regexp", "", "a regexp a URI SAN of the signing certificate must match (email SANs are not matched)")
	cmd.Flags().StringVar(&o.CertOIDCIssuer, "certificate-oidc-issuer", "", "the expected OIDC issuer of the signing certificate")
	cmd.Flags().StringVar(&o.CertOIDCIssuerRegexp, "certificate-oidc-issuer-regexp", "", "a regexp the OIDC issuer of the signing certificate must match")

	cmd.Flags().BoolVar(&o.RequireCheckpoint, "require-checkpoint", false, "require the log entry to carry an inclusion proof with a verified checkpoint")
}
