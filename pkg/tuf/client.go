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

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/theupdateframework/go-tuf/data"

	sigroot "github.com/bobcallaway/sigstore-verify/pkg/root"
)

const (
	trustedRootTargetName   = "trusted_root.json"
	signingConfigTargetName = "signing_config.json"

	maxRootVersions = 1000
	maxRetries      = 3
)

// Instance names a well-known Sigstore TUF repository.
type Instance int

const (
	PublicGood Instance = iota
	Staging
)

// Client fetches and validates trusted_root.json (and signing_config.json)
// from a Sigstore TUF repository, caching validated metadata to disk
// between invocations and refreshing on a time bound.
type Client struct {
	metadataBaseURL string
	targetsBaseURL  string
	embeddedRoot    []byte
	cacheValidity   time.Duration
	httpClient      *http.Client
	cache           *diskCache
}

// Option configures a Client.
type Option func(*Client)

// WithCacheValidity overrides how long validated metadata is considered
// fresh before Update re-fetches it, independent of the metadata's own
// expiration.
func WithCacheValidity(d time.Duration) Option {
	return func(c *Client) { c.cacheValidity = d }
}

// WithHTTPClient overrides the transport Update uses to fetch metadata
// and targets.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient constructs a Client for one of Sigstore's well-known TUF
// repositories, using the on-disk cache directory named by
// SIGSTORE_TUF_CACHE (or ~/.sigstore/root).
func NewClient(instance Instance, opts ...Option) (*Client, error) {
	dir, err := defaultCacheDir()
	if err != nil {
		return nil, err
	}
	cache, err := newDiskCache(dir)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cacheValidity: 24 * time.Hour,
		httpClient:    http.DefaultClient,
		cache:         cache,
	}
	switch instance {
	case PublicGood:
		c.metadataBaseURL = publicGoodMetadataBaseURL
		c.targetsBaseURL = publicGoodTargetsBaseURL
		c.embeddedRoot = embeddedPublicGoodRoot
	case Staging:
		c.metadataBaseURL = stagingMetadataBaseURL
		c.targetsBaseURL = stagingTargetsBaseURL
		c.embeddedRoot = embeddedStagingRoot
	default:
		return nil, fmt.Errorf("unknown TUF instance %d", instance)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// lastUpdateTimes tracks, per cache directory, when Update last completed
// successfully, so repeated FetchTrustedRoot calls within cacheValidity
// skip the network entirely.
var lastUpdateTimes = map[string]time.Time{}

func (c *Client) isStale() bool {
	last, ok := lastUpdateTimes[c.cache.dir]
	if !ok {
		return true
	}
	return time.Since(last) > c.cacheValidity
}

// Update runs the standard TUF client workflow: refresh root (walking the
// root chain with monotonic version/expiry enforcement), then timestamp,
// snapshot, and targets, verifying each thresholded signature with this
// module's own crypto primitives. It honors ctx's deadline; if ctx
// expires mid-update the in-flight request is aborted and Update returns
// a NetworkError wrapping ErrDeadlineExceeded.
func (c *Client) Update(ctx context.Context) error {
	unlock, err := c.cache.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	root, err := c.refreshRoot(ctx)
	if err != nil {
		return err
	}

	timestampSigned, err := c.fetchVerifiedRole(ctx, "timestamp.json", "timestamp", root)
	if err != nil {
		return err
	}
	timestamp, err := unmarshalTimestamp(timestampSigned)
	if err != nil {
		return err
	}
	if err := checkExpiry(timestamp.Expires, time.Now()); err != nil {
		return err
	}

	snapshotSigned, err := c.fetchVerifiedRole(ctx, "snapshot.json", "snapshot", root)
	if err != nil {
		return err
	}
	snapshot, err := unmarshalSnapshot(snapshotSigned)
	if err != nil {
		return err
	}
	if err := checkExpiry(snapshot.Expires, time.Now()); err != nil {
		return err
	}
	if err := checkVersionBinding("snapshot.json", snapshot.Version, timestamp.Meta); err != nil {
		return err
	}

	targetsSigned, err := c.fetchVerifiedRole(ctx, "targets.json", "targets", root)
	if err != nil {
		return err
	}
	targets, err := unmarshalTargets(targetsSigned)
	if err != nil {
		return err
	}
	if err := checkExpiry(targets.Expires, time.Now()); err != nil {
		return err
	}
	if err := checkVersionBinding("targets.json", targets.Version, snapshot.Meta); err != nil {
		return err
	}
	if err := c.cache.writeMetadata("targets.json", mustMarshal(targetsSigned)); err != nil {
		return err
	}

	lastUpdateTimes[c.cache.dir] = time.Now()
	return nil
}

func mustMarshal(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}

// refreshRoot walks the root chain starting from the cached (or embedded)
// root.json, fetching N+1.root.json until a 404, verifying each
// transition against the previous root's keys and threshold, and
// enforcing monotonically increasing version numbers and a
// not-yet-expired final root.
func (c *Client) refreshRoot(ctx context.Context) (*data.Root, error) {
	var current *data.Root
	raw, ok := c.cache.readMetadata("root.json")
	if !ok {
		raw = c.embeddedRoot
	}
	signed, err := parseSigned(raw)
	if err != nil {
		return nil, err
	}
	current, err = unmarshalRoot(signed)
	if err != nil {
		return nil, err
	}
	// The trust-on-first-use root (embedded or cached) is its own anchor.
	if err := verifySigned(signed, current.Roles["root"], current.Keys); err != nil {
		return nil, err
	}

	for n := current.Version + 1; n < current.Version+maxRootVersions; n++ {
		name := strconv.FormatInt(n, 10) + ".root.json"
		body, err := c.get(ctx, c.metadataBaseURL+"/"+name)
		if err != nil {
			break // no more roots to fetch; not found is the expected terminal condition
		}
		nextSigned, err := parseSigned(body)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		if err := verifySigned(nextSigned, current.Roles["root"], current.Keys); err != nil {
			return nil, fmt.Errorf("verifying %s against previous root: %w", name, err)
		}
		next, err := unmarshalRoot(nextSigned)
		if err != nil {
			return nil, err
		}
		if next.Version <= current.Version {
			return nil, fmt.Errorf("%w: %s version %d is not greater than %d", ErrRollback, name, next.Version, current.Version)
		}
		if err := verifySigned(nextSigned, next.Roles["root"], next.Keys); err != nil {
			return nil, fmt.Errorf("verifying %s against its own keys: %w", name, err)
		}
		if err := c.cache.writeMetadata("root.json", body); err != nil {
			return nil, err
		}
		current = next
		signed = nextSigned
	}

	if err := checkExpiry(current.Expires, time.Now()); err != nil {
		return nil, err
	}

	return current, nil
}

// fetchVerifiedRole downloads name from the TUF repository and verifies
// its signatures against roleName's own KeyIDs/Threshold as recorded in
// root.Roles, retrying transient network failures with exponential
// backoff before surfacing a NetworkError.
func (c *Client) fetchVerifiedRole(ctx context.Context, name, roleName string, root *data.Root) (*data.Signed, error) {
	role, ok := root.Roles[roleName]
	if !ok {
		return nil, fmt.Errorf("root metadata has no role %q", roleName)
	}

	body, err := c.get(ctx, c.metadataBaseURL+"/"+name)
	if err != nil {
		return nil, err
	}
	signed, err := parseSigned(body)
	if err != nil {
		return nil, err
	}
	if err := verifySigned(signed, role, root.Keys); err != nil {
		return nil, fmt.Errorf("verifying %s: %w", name, err)
	}
	return signed, nil
}

// checkVersionBinding enforces that name's version, as parsed from the
// role's own signed metadata, matches the version its parent role
// recorded for it — rejecting a lower-numbered role file substituted in
// after the fact even though it carries a valid signature.
func checkVersionBinding(name string, version int64, parentMeta map[string]data.SnapshotFileMeta) error {
	meta, ok := parentMeta[name]
	if !ok {
		return fmt.Errorf("%w: parent metadata has no entry for %s", ErrRollback, name)
	}
	if version != meta.Version {
		return fmt.Errorf("%w: %s version %d does not match parent-recorded version %d", ErrRollback, name, version, meta.Version)
	}
	return nil
}

// get fetches url with exponential-backoff retry on transient failures,
// honoring ctx's deadline.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(&NetworkError{Err: ErrDeadlineExceeded})
			}
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(fmt.Errorf("not found: %s", url))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		var netErr *NetworkError
		if e, ok := err.(*NetworkError); ok {
			netErr = e
		} else {
			netErr = &NetworkError{Err: err}
		}
		return nil, netErr
	}
	return body, nil
}

// FetchTarget downloads a target by name, verifying its length and hash
// against the validated targets metadata before returning its bytes.
func (c *Client) FetchTarget(ctx context.Context, name string) ([]byte, error) {
	targetsRaw, ok := c.cache.readMetadata("targets.json")
	if !ok {
		return nil, fmt.Errorf("no validated targets metadata; call Update first")
	}
	signed, err := parseSigned(targetsRaw)
	if err != nil {
		return nil, err
	}
	targets, err := unmarshalTargets(signed)
	if err != nil {
		return nil, err
	}
	meta, ok := targets.Targets[name]
	if !ok {
		return nil, fmt.Errorf("target %q not present in targets metadata", name)
	}

	digest, ok := meta.Hashes["sha512"]
	var hasher hash.Hash
	if ok {
		hasher = sha512.New()
	} else if digest, ok = meta.Hashes["sha256"]; ok {
		hasher = sha256.New()
	} else {
		return nil, fmt.Errorf("target %q metadata has no recognized hash", name)
	}

	// A cached copy is returned only if it still matches the metadata.
	if cached, ok := c.cache.readTarget(name); ok && int64(len(cached)) == meta.Length {
		hasher.Write(cached)
		if bytes.Equal(hasher.Sum(nil), digest) {
			return cached, nil
		}
		hasher.Reset()
	}

	prefixedName := hex.EncodeToString(digest) + "." + name
	body, err := c.get(ctx, c.targetsBaseURL+"/"+prefixedName)
	if err != nil {
		return nil, err
	}

	if int64(len(body)) != meta.Length {
		return nil, fmt.Errorf("%w: target %q length %d, expected %d", ErrHashMismatch, name, len(body), meta.Length)
	}
	hasher.Write(body)
	if !bytes.Equal(hasher.Sum(nil), digest) {
		return nil, fmt.Errorf("%w: target %q hash did not match", ErrHashMismatch, name)
	}

	if err := c.cache.writeTarget(name, body); err != nil {
		return nil, err
	}
	return body, nil
}

// FetchTrustedRoot refreshes TUF metadata if the cache is stale, then
// returns the validated trusted_root.json parsed into a TrustedRoot.
func (c *Client) FetchTrustedRoot(ctx context.Context) (*sigroot.TrustedRoot, error) {
	if c.isStale() {
		if err := c.Update(ctx); err != nil {
			return nil, err
		}
	}
	raw, err := c.FetchTarget(ctx, trustedRootTargetName)
	if err != nil {
		return nil, err
	}
	return sigroot.ParseTrustedRoot(raw)
}

// SigningConfig is the subset of signing_config.json this module parses:
// service endpoints for Fulcio, Rekor, and timestamp authorities. The
// verification core never dials these itself; it is exposed for callers
// that need signing-side service discovery.
type SigningConfig struct {
	FulcioURL            string   `json:"fulcioUrl"`
	RekorURLs            []string `json:"rekorUrls"`
	TimestampAuthorities []string `json:"tsaUrls"`
}

// FetchSigningConfig refreshes TUF metadata if stale, then returns the
// validated signing_config.json.
func (c *Client) FetchSigningConfig(ctx context.Context) (*SigningConfig, error) {
	if c.isStale() {
		if err := c.Update(ctx); err != nil {
			return nil, err
		}
	}
	raw, err := c.FetchTarget(ctx, signingConfigTargetName)
	if err != nil {
		return nil, err
	}
	var cfg SigningConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decoding signing config: %w", err)
	}
	return &cfg, nil
}
