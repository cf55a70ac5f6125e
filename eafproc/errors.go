// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package eafproc

import "fmt"

// MismatchError reports a structural misalignment between the ELAN side
// and the JSON side of a document pair - either differing counts of
// transcription annotations vs. corpus sentences, or (with alignment
// verification on) differing text content of a positionally matched pair.
type MismatchError struct {
	Tier           string
	NumAnnotations int
	NumRecords     int
	Reason         string
}

func (err MismatchError) Error() string {
	if err.Reason != "" {
		return fmt.Sprintf("tier %s: %s", err.Tier, err.Reason)
	}
	return fmt.Sprintf(
		"matched tiers provide %d annotations but the JSON document has %d sentences",
		err.NumAnnotations, err.NumRecords,
	)
}
