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

// Package tsakorpus models annotated corpus documents as produced by the
// Tsakorpus corpus platform - a JSON file per source document with a list
// of sentences, each carrying tokenized words and their morphological
// analyses.
package tsakorpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const (
	WordTypeWord  = "word"
	WordTypePunct = "punct"
)

// Document is one annotated corpus document.
type Document struct {
	Meta      map[string]any `json:"meta"`
	Sentences []Sentence     `json:"sentences"`
}

// IsEmpty tests whether the document carries any sentences at all.
// Tsakorpus produces such files for source documents its pipeline could
// not process and they are skipped by the conversion.
func (doc *Document) IsEmpty() bool {
	return doc == nil || len(doc.Sentences) == 0
}

// Sentence is one transcribed and analyzed utterance.
type Sentence struct {
	Text  string `json:"text"`
	Lang  int    `json:"lang"`
	Words []Word `json:"words"`
}

// Word is a single token of a sentence - either an actual word or
// a punctuation mark (see Wtype).
type Word struct {
	Wf       string     `json:"wf"`
	Wtype    string     `json:"wtype"`
	OffStart int        `json:"off_start"`
	OffEnd   int        `json:"off_end"`
	Ana      []Analysis `json:"ana"`
}

// IsWord tests whether the token is an actual word (as opposed to
// punctuation or other non-word material).
func (w *Word) IsWord() bool {
	return w.Wtype == WordTypeWord
}

// IsAnalyzed tests whether the token carries at least one morphological
// analysis.
func (w *Word) IsAnalyzed() bool {
	return len(w.Ana) > 0
}

// GrValue is a single grammatical category with its value
// (e.g. field "case", value "gen").
type GrValue struct {
	Field string
	Value string
}

// Analysis is one morphological reading of a word. GrValues keeps the
// grammatical categories in the order they appear in the source JSON,
// which makes the no-tag-order rendering mode deterministic.
type Analysis struct {
	Lex      string
	Parts    string
	Gloss    string
	GrValues []GrValue
}

// UnmarshalJSON decodes an analysis object using a token-level walk so the
// order of the dynamic gr.* keys is preserved (encoding/json maps would
// lose it). Unknown non-grammatical keys (gloss_index, trans_ru, ...) are
// skipped.
func (a *Analysis) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("analysis must be a JSON object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected analysis key token: %v", keyTok)
		}
		var rawVal any
		if err := dec.Decode(&rawVal); err != nil {
			return fmt.Errorf("failed to decode analysis value of %s: %w", key, err)
		}
		switch {
		case key == "lex":
			a.Lex = flattenValue(rawVal)
		case key == "parts":
			a.Parts = flattenValue(rawVal)
		case key == "gloss":
			a.Gloss = flattenValue(rawVal)
		case strings.HasPrefix(key, "gr."):
			a.GrValues = append(a.GrValues, GrValue{
				Field: strings.TrimPrefix(key, "gr."),
				Value: flattenValue(rawVal),
			})
		}
	}
	return nil
}

// flattenValue renders a decoded JSON value as a single string. Tsakorpus
// stores ambiguous values as arrays; these are joined with "/" the way the
// platform's own search interface shows them.
func flattenValue(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case []any:
		items := make([]string, 0, len(tv))
		for _, item := range tv {
			items = append(items, flattenValue(item))
		}
		return strings.Join(items, "/")
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", tv), "0"), ".")
	case bool:
		return fmt.Sprintf("%t", tv)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", tv)
	}
}

// ReadDocument loads and parses a Tsakorpus JSON file. Parse errors are
// wrapped so that the message names the offending file.
func ReadDocument(path string) (*Document, error) {
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(rawData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON file %s: %w", path, err)
	}
	return &doc, nil
}
