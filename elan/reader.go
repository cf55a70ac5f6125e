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

package elan

import (
	"encoding/xml"
	"fmt"
	"os"
)

// ReadDocument loads and parses an EAF file. Parse errors are wrapped so
// that the message names the offending file.
func ReadDocument(path string) (*Document, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ELAN file %s: %w", path, err)
	}
	return ParseDocument(rawData, path)
}

// ParseDocument parses raw EAF XML. The srcID argument is used in error
// messages only (typically a file path).
func ParseDocument(rawData []byte, srcID string) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(rawData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ELAN file %s: %w", srcID, err)
	}
	// the xsi attributes are fixed by the EAF schema; encoding/xml cannot
	// read them back under their prefixed names so we restore the
	// canonical values here
	doc.XsiNS = XsiNamespace
	if doc.SchemaLocation == "" {
		doc.SchemaLocation = DefaultSchemaLoc
	}
	if doc.Format == "" {
		doc.Format = DefaultFormat
	}
	return &doc, nil
}
