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

package certificate

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
)

// SCTListOID is the X.509v3 extension OID carrying the embedded SCT list,
// RFC 6962 section 3.3.
var SCTListOID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 11129, 2, 4, 2}

// HasSCTListExtension reports whether cert carries the SCT list extension.
func HasSCTListExtension(cert *x509.Certificate) bool {
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(SCTListOID) {
			return true
		}
	}
	return false
}

// tbsCertificate and its children mirror the ASN.1 shape of RFC 5280's
// TBSCertificate closely enough to drop a single extension and re-encode
// in DER, which is all withoutSct needs: Go's crypto/x509 does not expose
// the pre-certificate TBS bytes directly.
type tbsCertificate struct {
	Raw                asn1.RawContent
	Version            int `asn1:"optional,explicit,default:0,tag:0"`
	SerialNumber       asn1.RawValue
	SignatureAlgorithm asn1.RawValue
	Issuer             asn1.RawValue
	Validity           asn1.RawValue
	Subject            asn1.RawValue
	PublicKey          asn1.RawValue
	UniqueID           asn1.BitString   `asn1:"optional,tag:1"`
	SubjectUniqueID    asn1.BitString   `asn1:"optional,tag:2"`
	Extensions         []pkixExtension `asn1:"optional,explicit,tag:3"`
}

type pkixExtension struct {
	Id       asn1.ObjectIdentifier
	Critical bool `asn1:"optional"`
	Value    []byte
}

// WithoutSct reconstructs the DER TBSCertificate bytes a CT log signed
// before Fulcio stapled the SCT list extension into the issued
// certificate: it parses the certificate's raw TBSCertificate, removes the
// SCT list extension, and re-encodes the remaining extension sequence in
// DER, preserving every other field's original encoding untouched.
func WithoutSct(cert *x509.Certificate) ([]byte, error) {
	var tbs tbsCertificate
	if _, err := asn1.Unmarshal(cert.RawTBSCertificate, &tbs); err != nil {
		return nil, fmt.Errorf("parsing TBSCertificate: %w", err)
	}

	filtered := make([]pkixExtension, 0, len(tbs.Extensions))
	found := false
	for _, ext := range tbs.Extensions {
		if ext.Id.Equal(SCTListOID) {
			found = true
			continue
		}
		filtered = append(filtered, ext)
	}
	if !found {
		return nil, fmt.Errorf("certificate has no SCT list extension")
	}
	tbs.Extensions = filtered
	tbs.Raw = nil

	out, err := asn1.Marshal(tbs)
	if err != nil {
		return nil, fmt.Errorf("re-encoding TBSCertificate: %w", err)
	}
	return out, nil
}
