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
	"fmt"
	"regexp"
)

const (
	dfltTokenType   = "tokenType"
	dfltLemmaType   = "lemmaType"
	dfltGlossType   = "glossType"
	dfltGrammarType = "grammarType"
)

// TierTypeNames configures the names of the linguistic types declared for
// the generated dependent tiers. If a type of the configured name already
// exists in the input document, it is reused rather than redeclared.
type TierTypeNames struct {
	Token   string `json:"token"`
	Lemma   string `json:"lemma"`
	Gloss   string `json:"gloss"`
	Grammar string `json:"grammar"`
}

// WithDefaults fills in the default type names for fields left empty.
func (ttn TierTypeNames) WithDefaults() TierTypeNames {
	if ttn.Token == "" {
		ttn.Token = dfltTokenType
	}
	if ttn.Lemma == "" {
		ttn.Lemma = dfltLemmaType
	}
	if ttn.Gloss == "" {
		ttn.Gloss = dfltGlossType
	}
	if ttn.Grammar == "" {
		ttn.Grammar = dfltGrammarType
	}
	return ttn
}

// ProcSettings is the complete configuration of an EafProcessor.
type ProcSettings struct {

	// TierPattern selects the time-aligned transcription tiers to be
	// enriched; it is matched against both the tier id and its
	// linguistic type reference.
	TierPattern *regexp.Regexp

	// TagOrder is the canonical ordering of grammatical category names
	// for the processed language. With an empty TagOrder, categories
	// are rendered in source order.
	TagOrder []string

	// TierTypes overrides the names of generated linguistic types.
	TierTypes TierTypeNames

	// VerifyAlignment enables a sanity check comparing the text of each
	// matched annotation with the concatenated word forms of its
	// positionally assigned sentence.
	VerifyAlignment bool
}

// EafProcessor adds morphological analyses from a Tsakorpus document
// to a matching ELAN document by injecting dependent token/lemma/gloss/
// grammar tiers beneath each matched transcription tier.
type EafProcessor struct {
	settings ProcSettings
}

func NewEafProcessor(settings ProcSettings) (*EafProcessor, error) {
	if settings.TierPattern == nil {
		return nil, fmt.Errorf("cannot create EafProcessor: tier pattern not specified")
	}
	settings.TierTypes = settings.TierTypes.WithDefaults()
	return &EafProcessor{settings: settings}, nil
}
