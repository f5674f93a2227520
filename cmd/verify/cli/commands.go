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

// Package cli wires cobra commands around the keyless verification
// core, the way cmd/cosign/cli composes options structs and business
// logic packages in the teacher repository.
package cli

import (
	"github.com/spf13/cobra"
)

// New builds the root "verify" command and its subcommands.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify artifacts against Sigstore keyless signature bundles",
	}
	cmd.AddCommand(addBlob())
	return cmd
}
