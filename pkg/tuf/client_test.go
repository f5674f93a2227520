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
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/secure-systems-lab/go-securesystemslib/cjson"
	"github.com/stretchr/testify/require"
	"github.com/theupdateframework/go-tuf/data"
)

// testRepo builds a minimal, internally consistent set of signed TUF
// metadata (root/timestamp/snapshot/targets), all signed by one ed25519
// key acting as every role, plus a trusted_root.json target.
type testRepo struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
	keyID string

	root      []byte
	timestamp []byte
	snapshot  []byte
	targetsM  []byte
	trustedRootBody []byte
}

func (r *testRepo) sign(t *testing.T, body interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	canonical, err := cjson.EncodeCanonical(raw)
	require.NoError(t, err)
	sig := ed25519.Sign(r.priv, canonical)
	signed := data.Signed{
		Signed:     raw,
		Signatures: []data.Signature{{KeyID: r.keyID, Signature: sig}},
	}
	out, err := json.Marshal(signed)
	require.NoError(t, err)
	return out
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	keyValue, err := json.Marshal(map[string]string{"public": hex.EncodeToString(pub)})
	require.NoError(t, err)
	tufKey := &data.PublicKey{
		Type:   "ed25519",
		Scheme: "ed25519",
		Value:  keyValue,
	}
	keyID := "testkey1"

	r := &testRepo{pub: pub, priv: priv, keyID: keyID}

	role := data.Role{KeyIDs: []string{keyID}, Threshold: 1}
	rootBody := data.Root{
		Type:               "root",
		SpecVersion:        "1.0",
		ConsistentSnapshot: true,
		Version:            1,
		Expires:            time.Now().Add(24 * time.Hour),
		Keys:               map[string]*data.PublicKey{keyID: tufKey},
		Roles: map[string]*data.Role{
			"root":      &role,
			"timestamp": &role,
			"snapshot":  &role,
			"targets":   &role,
		},
	}
	r.root = r.sign(t, rootBody)

	trustedRootBody := []byte(`{"certificateAuthorities":[],"rekor":[],"ctLogs":[]}`)
	r.trustedRootBody = trustedRootBody
	sum := sha512.Sum512(trustedRootBody)

	targetsBody := data.Targets{
		Type:        "targets",
		SpecVersion: "1.0",
		Version:     1,
		Expires:     time.Now().Add(24 * time.Hour),
		Targets: map[string]data.TargetFileMeta{
			trustedRootTargetName: {
				FileMeta: data.FileMeta{
					Length: int64(len(trustedRootBody)),
					Hashes: data.Hashes{"sha512": sum[:]},
				},
			},
		},
	}
	r.targetsM = r.sign(t, targetsBody)

	snapshotBody := data.Snapshot{
		Type:        "snapshot",
		SpecVersion: "1.0",
		Version:     1,
		Expires:     time.Now().Add(24 * time.Hour),
		Meta: map[string]data.SnapshotFileMeta{
			"targets.json": {Version: 1},
		},
	}
	r.snapshot = r.sign(t, snapshotBody)

	timestampBody := data.Timestamp{
		Type:        "timestamp",
		SpecVersion: "1.0",
		Version:     1,
		Expires:     time.Now().Add(24 * time.Hour),
		Meta: map[string]data.SnapshotFileMeta{
			"snapshot.json": {Version: 1},
		},
	}
	r.timestamp = r.sign(t, timestampBody)

	return r
}

func (r *testRepo) newServer(t *testing.T) (*httptest.Server, *httptest.Server) {
	t.Helper()
	metadataMux := http.NewServeMux()
	metadataMux.HandleFunc("/root.json", func(w http.ResponseWriter, _ *http.Request) { w.Write(r.root) })
	metadataMux.HandleFunc("/timestamp.json", func(w http.ResponseWriter, _ *http.Request) { w.Write(r.timestamp) })
	metadataMux.HandleFunc("/snapshot.json", func(w http.ResponseWriter, _ *http.Request) { w.Write(r.snapshot) })
	metadataMux.HandleFunc("/targets.json", func(w http.ResponseWriter, _ *http.Request) { w.Write(r.targetsM) })
	metadataMux.HandleFunc("/2.root.json", func(w http.ResponseWriter, req *http.Request) { http.NotFound(w, req) })
	metadataSrv := httptest.NewServer(metadataMux)

	targetsMux := http.NewServeMux()
	sum := sha512.Sum512(r.trustedRootBody)
	targetsMux.HandleFunc("/"+hex.EncodeToString(sum[:])+"."+trustedRootTargetName, func(w http.ResponseWriter, _ *http.Request) {
		w.Write(r.trustedRootBody)
	})
	targetsSrv := httptest.NewServer(targetsMux)

	return metadataSrv, targetsSrv
}

func newTestClient(t *testing.T, r *testRepo) *Client {
	t.Helper()
	metadataSrv, targetsSrv := r.newServer(t)
	t.Cleanup(metadataSrv.Close)
	t.Cleanup(targetsSrv.Close)

	cache, err := newDiskCache(t.TempDir())
	require.NoError(t, err)

	return &Client{
		metadataBaseURL: metadataSrv.URL,
		targetsBaseURL:  targetsSrv.URL,
		embeddedRoot:    r.root,
		cacheValidity:   time.Hour,
		httpClient:      http.DefaultClient,
		cache:           cache,
	}
}

func TestClientUpdateAndFetchTrustedRoot(t *testing.T) {
	repo := newTestRepo(t)
	client := newTestClient(t, repo)

	ctx := context.Background()
	require.NoError(t, client.Update(ctx))

	tr, err := client.FetchTrustedRoot(ctx)
	require.NoError(t, err)
	require.NotNil(t, tr)
}

func TestClientFetchTargetRejectsTamperedBytes(t *testing.T) {
	repo := newTestRepo(t)
	client := newTestClient(t, repo)

	ctx := context.Background()
	require.NoError(t, client.Update(ctx))

	require.NoError(t, client.cache.writeTarget(trustedRootTargetName, []byte("tampered")))
	body, err := client.FetchTarget(ctx, trustedRootTargetName)
	require.NoError(t, err)
	require.Equal(t, repo.trustedRootBody, body) // tampered cache copy fails the hash check and is re-downloaded
}

func TestClientUpdateRejectsSnapshotVersionMismatch(t *testing.T) {
	repo := newTestRepo(t)
	// Validly signed, but its own version no longer matches what the
	// (still version-1) timestamp recorded for snapshot.json.
	repo.snapshot = repo.sign(t, data.Snapshot{
		Type:        "snapshot",
		SpecVersion: "1.0",
		Version:     2,
		Expires:     time.Now().Add(24 * time.Hour),
		Meta: map[string]data.SnapshotFileMeta{
			"targets.json": {Version: 1},
		},
	})
	client := newTestClient(t, repo)

	err := client.Update(context.Background())
	require.ErrorIs(t, err, ErrRollback)
}

func TestClientUpdateRejectsRolledBackRoot(t *testing.T) {
	repo := newTestRepo(t)
	client := newTestClient(t, repo)
	ctx := context.Background()
	require.NoError(t, client.Update(ctx))

	stale := newTestRepo(t)
	client.embeddedRoot = stale.root
	require.NoError(t, client.cache.writeMetadata("root.json", stale.root))
	err := client.Update(ctx)
	// The swapped-in root is accepted as the anchor, but the repository's
	// timestamp is not signed by its key.
	require.ErrorIs(t, err, ErrThreshold)
}
