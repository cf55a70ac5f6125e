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

import (
	"strings"
	"unicode"

	"github.com/czcorpus/cnc-gokit/collections"
	"golang.org/x/text/unicode/norm"

	"glosa/common"
	"glosa/elan"
	"glosa/tsakorpus"
)

// ambiguity separator between multiple analyses of a single token
const anaSeparator = " | "

// uniqueJoin joins non-empty values with anaSeparator, collapsing
// duplicates (ambiguous analyses frequently share a lemma).
func uniqueJoin(values []string) string {
	ans := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || collections.SliceContains(ans, v) {
			continue
		}
		ans = append(ans, v)
	}
	return strings.Join(ans, anaSeparator)
}

func renderLemma(word *tsakorpus.Word) string {
	return uniqueJoin(common.MapSlice(
		word.Ana,
		func(ana tsakorpus.Analysis, _ int) string { return ana.Lex },
	))
}

func renderGloss(word *tsakorpus.Word) string {
	return uniqueJoin(common.MapSlice(
		word.Ana,
		func(ana tsakorpus.Analysis, _ int) string { return ana.Gloss },
	))
}

// renderGrammar renders each analysis' grammatical values as a dot-joined
// string (e.g. "n.sg.gen"). Categories named in tagOrder come first in
// that order; remaining categories follow in source order.
func renderGrammar(word *tsakorpus.Word, tagOrder []string) string {
	return uniqueJoin(common.MapSlice(
		word.Ana,
		func(ana tsakorpus.Analysis, _ int) string { return renderTags(ana.GrValues, tagOrder) },
	))
}

func renderTags(grValues []tsakorpus.GrValue, tagOrder []string) string {
	if len(grValues) == 0 {
		return ""
	}
	ordered := make([]string, 0, len(grValues))
	used := make([]bool, len(grValues))
	for _, field := range tagOrder {
		for i, gv := range grValues {
			if !used[i] && gv.Field == field {
				ordered = append(ordered, gv.Value)
				used[i] = true
			}
		}
	}
	for i, gv := range grValues {
		if !used[i] {
			ordered = append(ordered, gv.Value)
		}
	}
	return strings.Join(ordered, ".")
}

// comparableText NFC-normalizes a string and strips all whitespace,
// producing a form suitable for comparing differently tokenized versions
// of the same utterance.
func comparableText(s string) string {
	var sb strings.Builder
	for _, r := range norm.NFC.String(s) {
		if !unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// verifyAlignment tests that a positionally matched annotation/sentence
// pair really carries the same text (ignoring whitespace and Unicode
// normalization differences).
func verifyAlignment(
	tierID string,
	ann *elan.AlignableAnnotation,
	sent *tsakorpus.Sentence,
) error {
	var sb strings.Builder
	for _, w := range sent.Words {
		sb.WriteString(w.Wf)
	}
	eafText := comparableText(ann.Value.Text)
	jsonText := comparableText(sb.String())
	if eafText != jsonText {
		return MismatchError{
			Tier: tierID,
			Reason: "annotation " + ann.ID + " text does not match its sentence (" +
				eafText + " vs. " + jsonText + ")",
		}
	}
	return nil
}
