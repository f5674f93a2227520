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

package rekor

import (
	"encoding/json"
	"fmt"
)

// setPayload is the four-field structure a Rekor log signs to produce a
// Signed Entry Timestamp. Field order in the marshaled JSON is fixed by
// alphabetical key order, matching the canonical form the log computed
// at entry creation time.
type setPayload struct {
	Body           string `json:"body"`
	IntegratedTime int64  `json:"integratedTime"`
	LogID          string `json:"logID"`
	LogIndex       int64  `json:"logIndex"`
}

// encodeSetPayload renders the SET payload as canonical JSON: keys in
// lexicographic order, no insignificant whitespace. Go's encoding/json
// already omits whitespace and, for a struct, emits fields in the order
// they are declared — setPayload's fields are declared in lexicographic
// key order so the two coincide without a general-purpose canonicalizer.
func encodeSetPayload(body string, integratedTime, logIndex int64, logID string) ([]byte, error) {
	raw, err := json.Marshal(setPayload{
		Body:           body,
		IntegratedTime: integratedTime,
		LogID:          logID,
		LogIndex:       logIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding SET payload: %w", err)
	}
	return raw, nil
}
