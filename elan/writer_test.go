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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
)

func TestSerializeRoundTrip(t *testing.T) {
	doc := parseSample(t)
	rawData, err := Serialize(doc)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(rawData), "<?xml version=\"1.0\" encoding=\"UTF-8\"?>"))

	doc2, err := ParseDocument(rawData, "roundtrip.eaf")
	assert.NoError(t, err)
	assert.Equal(t, len(doc.Tiers), len(doc2.Tiers))
	assert.Equal(t, len(doc.TimeOrder.TimeSlots), len(doc2.TimeOrder.TimeSlots))
	for i, tier := range doc.Tiers {
		assert.Equal(t, tier.ID, doc2.Tiers[i].ID)
		assert.Equal(t, tier.ParentRef, doc2.Tiers[i].ParentRef)
		assert.Equal(t, len(tier.Annotations), len(doc2.Tiers[i].Annotations))
		for j := range tier.Annotations {
			assert.Equal(t, tier.Annotations[j].ID(), doc2.Tiers[i].Annotations[j].ID())
			assert.Equal(t, tier.Annotations[j].Value(), doc2.Tiers[i].Annotations[j].Value())
		}
	}
}

func TestSerializeXMLStructure(t *testing.T) {
	doc := parseSample(t)
	rawData, err := Serialize(doc)
	assert.NoError(t, err)

	xdoc, err := xmlquery.Parse(bytes.NewReader(rawData))
	assert.NoError(t, err)
	tiers, err := xmlquery.QueryAll(xdoc, "//TIER")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(tiers))
	root, err := xmlquery.Query(xdoc, "/ANNOTATION_DOCUMENT")
	assert.NoError(t, err)
	assert.NotNil(t, root)
	ann, err := xmlquery.Query(
		xdoc, "//TIER[@TIER_ID='Notes']//REF_ANNOTATION[@ANNOTATION_ID='a4']/ANNOTATION_VALUE")
	assert.NoError(t, err)
	assert.NotNil(t, ann)
	assert.Equal(t, "checked", ann.InnerText())
}

func TestSerializeSyncsLastUsedAnnotationID(t *testing.T) {
	doc := parseSample(t)
	doc.NewAnnotationID() // a5
	rawData, err := Serialize(doc)
	assert.NoError(t, err)
	doc2, err := ParseDocument(rawData, "sync.eaf")
	assert.NoError(t, err)
	var prop string
	for _, p := range doc2.Header.Properties {
		if p.Name == "lastUsedAnnotationId" {
			prop = p.Value
		}
	}
	assert.Equal(t, "5", prop)
}

func TestWriteDocumentAtomic(t *testing.T) {
	doc := parseSample(t)
	outPath := filepath.Join(t.TempDir(), "out.eaf")
	err := WriteDocument(doc, outPath)
	assert.NoError(t, err)
	_, err = ReadDocument(outPath)
	assert.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(outPath))
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries)) // no temp files left behind
}
