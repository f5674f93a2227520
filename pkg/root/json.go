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
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	sigverify "github.com/bobcallaway/sigstore-verify/pkg/signature"
)

// jsonTrustedRoot mirrors the subset of dev.sigstore.trustroot.v1.TrustedRoot
// this module consumes: certificateAuthorities[], tlogs[], ctlogs[].
type jsonTrustedRoot struct {
	CertificateAuthorities []jsonCertificateAuthority `json:"certificateAuthorities"`
	Tlogs                  []jsonTransparencyLog      `json:"tlogs"`
	Ctlogs                 []jsonTransparencyLog      `json:"ctlogs"`
}

type jsonCertificateAuthority struct {
	CertChain jsonCertChain  `json:"certChain"`
	ValidFor  jsonValidFor   `json:"validFor"`
}

type jsonCertChain struct {
	Certificates []jsonCertificate `json:"certificates"`
}

type jsonCertificate struct {
	RawBytes string `json:"rawBytes"` // base64 DER
}

type jsonValidFor struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

type jsonTransparencyLog struct {
	LogID     jsonLogID     `json:"logId"`
	PublicKey jsonPublicKey `json:"publicKey"`
}

type jsonLogID struct {
	KeyID string `json:"keyId"` // base64
}

type jsonPublicKey struct {
	RawBytes   string       `json:"rawBytes"` // base64
	KeyDetails string       `json:"keyDetails"`
	ValidFor   jsonValidFor `json:"validFor"`
}

// ParseTrustedRoot decodes a dev.sigstore.trustroot.v1.TrustedRoot JSON
// document into an in-memory TrustedRoot.
func ParseTrustedRoot(data []byte) (*TrustedRoot, error) {
	var doc jsonTrustedRoot
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding trusted root: %w", err)
	}

	out := &TrustedRoot{}

	for _, jca := range doc.CertificateAuthorities {
		var chain []*x509.Certificate
		for _, jc := range jca.CertChain.Certificates {
			der, err := base64.StdEncoding.DecodeString(jc.RawBytes)
			if err != nil {
				return nil, fmt.Errorf("decoding CA certificate: %w", err)
			}
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return nil, fmt.Errorf("parsing CA certificate: %w", err)
			}
			chain = append(chain, cert)
		}
		validFor, err := parseValidFor(jca.ValidFor)
		if err != nil {
			return nil, err
		}
		out.CertificateAuthorities = append(out.CertificateAuthorities, CertificateAuthority{
			CertChain: chain,
			ValidFor:  validFor,
		})
	}

	rekor, err := parseTransparencyLogs(doc.Tlogs)
	if err != nil {
		return nil, fmt.Errorf("parsing tlogs: %w", err)
	}
	out.Rekor = rekor

	ctlogs, err := parseTransparencyLogs(doc.Ctlogs)
	if err != nil {
		return nil, fmt.Errorf("parsing ctlogs: %w", err)
	}
	out.CTLogs = ctlogs

	return out, nil
}

func parseTransparencyLogs(in []jsonTransparencyLog) ([]TransparencyLogKey, error) {
	var out []TransparencyLogKey
	for _, jl := range in {
		keyID, err := base64.StdEncoding.DecodeString(jl.LogID.KeyID)
		if err != nil {
			return nil, fmt.Errorf("decoding logId: %w", err)
		}
		rawBytes, err := base64.StdEncoding.DecodeString(jl.PublicKey.RawBytes)
		if err != nil {
			return nil, fmt.Errorf("decoding public key: %w", err)
		}
		pub, err := sigverify.ConstructTufPublicKey(rawBytes, sigverify.TufKeyScheme(jl.PublicKey.KeyDetails))
		if err != nil {
			return nil, fmt.Errorf("constructing public key: %w", err)
		}
		validFor, err := parseValidFor(jl.PublicKey.ValidFor)
		if err != nil {
			return nil, err
		}
		out = append(out, TransparencyLogKey{
			LogID:     keyID,
			PublicKey: pub,
			ValidFor:  validFor,
		})
	}
	return out, nil
}

func parseValidFor(v jsonValidFor) (ValidityPeriod, error) {
	start, err := time.Parse(time.RFC3339, v.Start)
	if err != nil {
		return ValidityPeriod{}, fmt.Errorf("parsing validFor.start: %w", err)
	}
	var end time.Time
	if v.End != "" {
		end, err = time.Parse(time.RFC3339, v.End)
		if err != nil {
			return ValidityPeriod{}, fmt.Errorf("parsing validFor.end: %w", err)
		}
	}
	if !end.IsZero() && start.After(end) {
		return ValidityPeriod{}, fmt.Errorf("validFor interval is empty: start %s after end %s", start, end)
	}
	return ValidityPeriod{Start: start, End: end}, nil
}
