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

package fulcio

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"fmt"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certificate-transparency-go/x509util"

	"github.com/bobcallaway/sigstore-verify/pkg/certificate"
	sigverify "github.com/bobcallaway/sigstore-verify/pkg/signature"
)

// extractSCTs returns every Signed Certificate Timestamp embedded in
// leaf's SCT list extension.
func extractSCTs(leaf *x509.Certificate) ([]*ct.SignedCertificateTimestamp, error) {
	certPEM, err := certificate.ToPemBytes(leaf)
	if err != nil {
		return nil, err
	}
	scts, err := x509util.ParseSCTsFromCertificate(certPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded SCTs: %w", err)
	}
	return scts, nil
}

// verifySCT checks sct's signature against logKey, reconstructing the
// RFC 6962 §3.2 precertificate signed-data for (leaf, issuer) the same
// way a CT log computed it when it originally issued the timestamp.
func verifySCT(sct *ct.SignedCertificateTimestamp, leaf, issuer *x509.Certificate, logKey interface{}) error {
	signedData, err := precertSignedData(sct, leaf, issuer)
	if err != nil {
		return err
	}
	verifier, err := sigverify.NewVerifier(logKey)
	if err != nil {
		return fmt.Errorf("building verifier for CT log key: %w", err)
	}
	digest := sha256.Sum256(signedData)
	if err := verifier.VerifyDigest(digest[:], sct.Signature.Signature); err != nil {
		return fmt.Errorf("%w: %w", ErrNoValidSCT, err)
	}
	return nil
}

// precertSignedData builds the digitally-signed struct RFC 6962 §3.2
// defines for a precertificate log entry:
//
//	opaque sct_version            (1 byte)
//	opaque signature_type         (1 byte, certificate_timestamp = 0)
//	uint64 timestamp              (8 bytes)
//	uint16 entry_type             (2 bytes, precert_entry = 1)
//	opaque issuer_key_hash[32]
//	opaque tbs_certificate<1..2^24-1>  (3-byte length prefix + bytes)
//	opaque extensions<0..2^16-1>       (2-byte length prefix + bytes)
func precertSignedData(sct *ct.SignedCertificateTimestamp, leaf, issuer *x509.Certificate) ([]byte, error) {
	tbs, err := certificate.WithoutSct(leaf)
	if err != nil {
		return nil, fmt.Errorf("stripping SCT extension from leaf TBS: %w", err)
	}
	issuerKeyHash := sha256.Sum256(issuer.RawSubjectPublicKeyInfo)

	buf := make([]byte, 0, 1+1+8+2+32+3+len(tbs)+2)
	buf = append(buf, byte(sct.SCTVersion))
	buf = append(buf, 0) // signature_type: certificate_timestamp

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], sct.Timestamp)
	buf = append(buf, tsBuf[:]...)

	buf = append(buf, 0, 1) // entry_type: precert_entry

	buf = append(buf, issuerKeyHash[:]...)

	tbsLen := len(tbs)
	buf = append(buf, byte(tbsLen>>16), byte(tbsLen>>8), byte(tbsLen))
	buf = append(buf, tbs...)

	extLen := len(sct.Extensions)
	buf = append(buf, byte(extLen>>8), byte(extLen))
	buf = append(buf, sct.Extensions...)

	return buf, nil
}
