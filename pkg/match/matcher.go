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

// Package match evaluates caller-supplied identity predicates against a
// Fulcio-issued leaf certificate: SAN URI/email values and Fulcio's
// OIDC-issuer extension OIDs. A Matcher raising an error during
// evaluation is a fatal condition, never an implicit non-match.
package match

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"regexp"
)

// Fulcio certificate extension OIDs this package recognizes. These are
// the well-known arcs under 1.3.6.1.4.1.57264.1 Fulcio stamps into every
// keyless-issued leaf; see https://github.com/sigstore/fulcio/blob/main/docs/oid-info.md.
var (
	OIDIssuer               = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 1}
	OIDGithubWorkflowTrigger = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 2}
	OIDGithubWorkflowSHA     = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 3}
	OIDGithubWorkflowName    = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 4}
	OIDGithubWorkflowRepository = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 5}
	OIDGithubWorkflowRef     = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 6}
	OIDIssuerV2              = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 57264, 1, 8}
)

// Matcher is a named predicate over a leaf certificate. An error return
// means the matcher could not be evaluated at all — a fatal condition
// the caller must propagate, distinct from a clean false.
type Matcher interface {
	Match(leaf *x509.Certificate) (bool, error)
	String() string
}

// field names a part of the certificate a StringMatcher reads.
type field int

const (
	// FieldSANURI matches against every URI Subject Alternative Name.
	FieldSANURI field = iota
	// FieldSANEmail matches against every RFC822 (email) Subject
	// Alternative Name.
	FieldSANEmail
	// FieldExtension matches against the UTF-8 (or raw) value of a
	// named certificate extension OID.
	FieldExtension
)

// StringMatcher matches a certificate field against a literal string or
// a regular expression.
type StringMatcher struct {
	field   field
	oid     asn1.ObjectIdentifier // only used when field == FieldExtension
	literal string
	re      *regexp.Regexp
}

// NewSANURIMatcher builds a matcher over the leaf's URI SANs. If re is
// true, value is compiled as a regular expression; otherwise it must
// equal a SAN exactly.
func NewSANURIMatcher(value string, re bool) (*StringMatcher, error) {
	return newStringMatcher(FieldSANURI, nil, value, re)
}

// NewSANEmailMatcher builds a matcher over the leaf's RFC822 (email) SANs.
func NewSANEmailMatcher(value string, re bool) (*StringMatcher, error) {
	return newStringMatcher(FieldSANEmail, nil, value, re)
}

// NewExtensionMatcher builds a matcher over the value of the certificate
// extension named by oid.
func NewExtensionMatcher(oid asn1.ObjectIdentifier, value string, re bool) (*StringMatcher, error) {
	return newStringMatcher(FieldExtension, oid, value, re)
}

func newStringMatcher(f field, oid asn1.ObjectIdentifier, value string, useRegex bool) (*StringMatcher, error) {
	m := &StringMatcher{field: f, oid: oid, literal: value}
	if useRegex {
		re, err := regexp.Compile(value)
		if err != nil {
			return nil, fmt.Errorf("compiling matcher regex %q: %w", value, err)
		}
		m.re = re
	}
	return m, nil
}

// Match implements Matcher.
func (m *StringMatcher) Match(leaf *x509.Certificate) (bool, error) {
	if leaf == nil {
		return false, fmt.Errorf("match: nil certificate")
	}
	var candidates []string
	switch m.field {
	case FieldSANURI:
		for _, u := range leaf.URIs {
			candidates = append(candidates, u.String())
		}
	case FieldSANEmail:
		candidates = append(candidates, leaf.EmailAddresses...)
	case FieldExtension:
		val, ok, err := extensionValue(leaf, m.oid)
		if err != nil {
			return false, fmt.Errorf("match: reading extension %s: %w", m.oid, err)
		}
		if !ok {
			return false, nil
		}
		candidates = append(candidates, val)
	default:
		return false, fmt.Errorf("match: unknown field kind %d", m.field)
	}

	for _, c := range candidates {
		if m.matchesString(c) {
			return true, nil
		}
	}
	return false, nil
}

func (m *StringMatcher) matchesString(s string) bool {
	if m.re != nil {
		return m.re.MatchString(s)
	}
	return s == m.literal
}

// String implements Matcher.
func (m *StringMatcher) String() string {
	kind := "literal"
	if m.re != nil {
		kind = "regex"
	}
	switch m.field {
	case FieldSANURI:
		return fmt.Sprintf("SAN URI %s %q", kind, m.literal)
	case FieldSANEmail:
		return fmt.Sprintf("SAN email %s %q", kind, m.literal)
	default:
		return fmt.Sprintf("extension %s %s %q", m.oid, kind, m.literal)
	}
}

// extensionValue returns the raw content of the named extension, decoded
// as an ASN.1 UTF8String/IA5String when possible and falling back to the
// raw bytes otherwise (Fulcio's own extensions are usually the former).
func extensionValue(leaf *x509.Certificate, oid asn1.ObjectIdentifier) (string, bool, error) {
	for _, ext := range leaf.Extensions {
		if !ext.Id.Equal(oid) {
			continue
		}
		var s string
		if _, err := asn1.Unmarshal(ext.Value, &s); err == nil {
			return s, true, nil
		}
		return string(ext.Value), true, nil
	}
	return "", false, nil
}

// AllOf is a Matcher that requires every one of its operands to match.
// An empty AllOf matches unconditionally.
type AllOf []Matcher

// Match implements Matcher.
func (a AllOf) Match(leaf *x509.Certificate) (bool, error) {
	for _, m := range a {
		ok, err := m.Match(leaf)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// String implements Matcher.
func (a AllOf) String() string {
	return joinMatchers("all of", a)
}

// AnyOf is a Matcher that requires at least one of its operands to
// match. An empty AnyOf never matches.
type AnyOf []Matcher

// Match implements Matcher.
func (a AnyOf) Match(leaf *x509.Certificate) (bool, error) {
	for _, m := range a {
		ok, err := m.Match(leaf)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// String implements Matcher.
func (a AnyOf) String() string {
	return joinMatchers("any of", a)
}

func joinMatchers(verb string, ms []Matcher) string {
	s := verb + "("
	for i, m := range ms {
		if i > 0 {
			s += ", "
		}
		s += m.String()
	}
	return s + ")"
}

// OIDCIssuer builds the conjoined "SAN identity + issuer" matcher the
// Java VerificationOptions.CertificateIdentity design and cosign's
// --certificate-identity/--certificate-oidc-issuer flag pair both model:
// the SAN matcher identifies the workload, the issuer matcher pins which
// OIDC provider vouched for it.
func OIDCIssuer(identity Matcher, issuer string, issuerRegex bool) (Matcher, error) {
	issuerMatcher, err := NewExtensionMatcher(OIDIssuer, issuer, issuerRegex)
	if err != nil {
		return nil, err
	}
	return AllOf{identity, issuerMatcher}, nil
}

// GitHubWorkflowTrigger matches the GitHub Actions event name (e.g.
// "push", "workflow_dispatch") that triggered the signing run.
func GitHubWorkflowTrigger(value string, re bool) (Matcher, error) {
	return NewExtensionMatcher(OIDGithubWorkflowTrigger, value, re)
}

// GitHubWorkflowSHA matches the commit SHA the signing workflow ran at.
func GitHubWorkflowSHA(value string, re bool) (Matcher, error) {
	return NewExtensionMatcher(OIDGithubWorkflowSHA, value, re)
}

// GitHubWorkflowName matches the workflow's declared name.
func GitHubWorkflowName(value string, re bool) (Matcher, error) {
	return NewExtensionMatcher(OIDGithubWorkflowName, value, re)
}

// GitHubWorkflowRepository matches the "owner/repo" slug that ran the
// signing workflow.
func GitHubWorkflowRepository(value string, re bool) (Matcher, error) {
	return NewExtensionMatcher(OIDGithubWorkflowRepository, value, re)
}

// GitHubWorkflowRef matches the git ref (e.g. "refs/heads/main") the
// signing workflow ran against.
func GitHubWorkflowRef(value string, re bool) (Matcher, error) {
	return NewExtensionMatcher(OIDGithubWorkflowRef, value, re)
}
