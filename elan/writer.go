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
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antchfx/xmlquery"
)

// Serialize renders the document as a standalone EAF XML file
// (UTF-8, LF newlines, 4-space indent the way ELAN itself writes).
func Serialize(doc *Document) ([]byte, error) {
	doc.XsiNS = XsiNamespace
	if doc.SchemaLocation == "" {
		doc.SchemaLocation = DefaultSchemaLoc
	}
	doc.syncLastUsedAnnotationID()
	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize ELAN document: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

// WriteDocument serializes the document and writes it to path atomically -
// the data goes to a temporary file in the target directory which is
// renamed on success, so a failed conversion never leaves a partial
// output file behind. The produced bytes are parsed once more before the
// rename as a well-formedness self-check.
func WriteDocument(doc *Document, path string) error {
	rawData, err := Serialize(doc)
	if err != nil {
		return err
	}
	if _, err := xmlquery.Parse(bytes.NewReader(rawData)); err != nil {
		return fmt.Errorf("produced malformed XML for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write ELAN file %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(rawData); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ELAN file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ELAN file %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ELAN file %s: %w", path, err)
	}
	return nil
}
