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

// Package eafproc implements the actual enrichment of ELAN documents with
// morphological analyses. Matched transcription annotations are paired
// with corpus sentences by position (the two sides are produced from the
// same source upstream, so row order is trusted; see ProcSettings.
// VerifyAlignment for the optional sanity check).
package eafproc

import (
	"math"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"glosa/elan"
	"glosa/tsakorpus"
)

const (
	tokenTierSuffix   = "_tok"
	lemmaTierSuffix   = "_lemma"
	glossTierSuffix   = "_gloss"
	grammarTierSuffix = "_gr"
)

// ProcStats summarizes one processed document pair.
type ProcStats struct {
	NumTokens   int `json:"numTokens"`
	NumWords    int `json:"numWords"`
	NumAnalyzed int `json:"numAnalyzed"`
}

// Add sums other into the receiver.
func (stats *ProcStats) Add(other ProcStats) {
	stats.NumTokens += other.NumTokens
	stats.NumWords += other.NumWords
	stats.NumAnalyzed += other.NumAnalyzed
}

type childTiers struct {
	token   *elan.Tier
	lemma   *elan.Tier
	gloss   *elan.Tier
	grammar *elan.Tier
}

// MatchedTiers returns the document's tiers selected by the configured
// tier pattern. A tier qualifies if its id or its linguistic type
// reference matches and its type is time-alignable.
func (proc *EafProcessor) MatchedTiers(doc *elan.Document) []*elan.Tier {
	ans := make([]*elan.Tier, 0, len(doc.Tiers))
	for _, t := range doc.Tiers {
		if !proc.settings.TierPattern.MatchString(t.ID) &&
			!proc.settings.TierPattern.MatchString(t.TypeRef) {
			continue
		}
		if !doc.TimeAlignable(t) {
			log.Warn().
				Str("tier", t.ID).
				Msg("tier matches the pattern but is not time-alignable, skipping")
			continue
		}
		ans = append(ans, t)
	}
	return ans
}

// Process walks the document's matched transcription tiers and attaches
// dependent token, lemma, gloss and grammar tiers based on the corpus
// document. The ELAN document is modified in place; on error it must be
// considered corrupted and dropped by the caller.
func (proc *EafProcessor) Process(
	doc *elan.Document,
	corpus *tsakorpus.Document,
) (ProcStats, error) {
	var stats ProcStats
	matched := proc.MatchedTiers(doc)
	if len(matched) == 0 {
		log.Warn().Msg("no tier matches the configured pattern, passing the document through")
		return stats, nil
	}
	sorted := make(map[string][]*elan.AlignableAnnotation, len(matched))
	numAnns := 0
	for _, t := range matched {
		sorted[t.ID] = doc.SortedAlignable(t)
		numAnns += len(sorted[t.ID])
	}
	if numAnns != len(corpus.Sentences) {
		return stats, MismatchError{
			NumAnnotations: numAnns,
			NumRecords:     len(corpus.Sentences),
		}
	}
	sentIdx := 0
	for _, t := range matched {
		children, err := proc.ensureChildTiers(doc, t)
		if err != nil {
			return stats, err
		}
		for _, ann := range sorted[t.ID] {
			sent := &corpus.Sentences[sentIdx]
			sentIdx++
			if proc.settings.VerifyAlignment {
				if err := verifyAlignment(t.ID, ann, sent); err != nil {
					return stats, err
				}
			}
			stats.Add(proc.injectSentence(doc, children, ann, sent))
		}
	}
	return stats, nil
}

func (proc *EafProcessor) ensureChildTiers(
	doc *elan.Document,
	parent *elan.Tier,
) (childTiers, error) {
	types := proc.settings.TierTypes
	doc.EnsureLinguisticType(types.Token, elan.StereotypeTimeSubdivision, true)
	doc.EnsureLinguisticType(types.Lemma, elan.StereotypeSymbolicAssociation, false)
	doc.EnsureLinguisticType(types.Gloss, elan.StereotypeSymbolicAssociation, false)
	doc.EnsureLinguisticType(types.Grammar, elan.StereotypeSymbolicAssociation, false)

	var ans childTiers
	var err error
	ans.token, err = doc.EnsureDependentTier(parent.ID+tokenTierSuffix, parent.ID, types.Token)
	if err != nil {
		return ans, err
	}
	ans.lemma, err = doc.EnsureDependentTier(ans.token.ID+lemmaTierSuffix, ans.token.ID, types.Lemma)
	if err != nil {
		return ans, err
	}
	ans.gloss, err = doc.EnsureDependentTier(ans.token.ID+glossTierSuffix, ans.token.ID, types.Gloss)
	if err != nil {
		return ans, err
	}
	ans.grammar, err = doc.EnsureDependentTier(ans.token.ID+grammarTierSuffix, ans.token.ID, types.Grammar)
	return ans, err
}

// injectSentence creates one token annotation per sentence token beneath
// the parent annotation, subdividing the parent's time interval
// proportionally to token lengths (per-token timing is not measured
// upstream, so this is an approximation), plus 1:1 lemma/gloss/grammar
// reference annotations on each token.
func (proc *EafProcessor) injectSentence(
	doc *elan.Document,
	children childTiers,
	parentAnn *elan.AlignableAnnotation,
	sent *tsakorpus.Sentence,
) ProcStats {
	var stats ProcStats
	numTokens := len(sent.Words)
	if numTokens == 0 {
		return stats
	}
	bounds := proc.subdivide(doc, parentAnn, sent.Words)
	for i := range sent.Words {
		word := &sent.Words[i]
		tokenID := doc.NewAnnotationID()
		children.token.Annotations = append(children.token.Annotations, elan.Annotation{
			Alignable: &elan.AlignableAnnotation{
				ID:           tokenID,
				TimeSlotRef1: bounds[i],
				TimeSlotRef2: bounds[i+1],
				Value:        elan.AnnotationValue{Text: word.Wf},
			},
		})
		appendRef(doc, children.lemma, tokenID, renderLemma(word))
		appendRef(doc, children.gloss, tokenID, renderGloss(word))
		appendRef(doc, children.grammar, tokenID, renderGrammar(word, proc.settings.TagOrder))

		stats.NumTokens++
		if word.IsWord() {
			stats.NumWords++
			if word.IsAnalyzed() {
				stats.NumAnalyzed++
			}
		}
	}
	return stats
}

// subdivide returns numTokens+1 time slot ids bounding the token
// annotations. The outer bounds are the parent annotation's own slots;
// inner bounds are newly created slots with values proportional to token
// lengths (or unaligned slots if the parent interval is unknown).
func (proc *EafProcessor) subdivide(
	doc *elan.Document,
	parentAnn *elan.AlignableAnnotation,
	words []tsakorpus.Word,
) []string {
	numTokens := len(words)
	bounds := make([]string, numTokens+1)
	bounds[0] = parentAnn.TimeSlotRef1
	bounds[numTokens] = parentAnn.TimeSlotRef2
	if numTokens == 1 {
		return bounds
	}
	start, ok1 := doc.TimeSlotValue(parentAnn.TimeSlotRef1)
	end, ok2 := doc.TimeSlotValue(parentAnn.TimeSlotRef2)
	aligned := ok1 && ok2 && end > start
	total := 0
	for i := range words {
		total += tokenWeight(&words[i])
	}
	acc := 0
	for i := 0; i < numTokens-1; i++ {
		acc += tokenWeight(&words[i])
		var value *int
		if aligned {
			v := start + int(math.Round(float64(end-start)*float64(acc)/float64(total)))
			value = &v
		}
		bounds[i+1] = doc.AddTimeSlot(value)
	}
	return bounds
}

func tokenWeight(word *tsakorpus.Word) int {
	numRunes := utf8.RuneCountInString(word.Wf)
	if numRunes == 0 {
		return 1
	}
	return numRunes
}

func appendRef(doc *elan.Document, tier *elan.Tier, parentAnnID, value string) {
	tier.Annotations = append(tier.Annotations, elan.Annotation{
		Ref: &elan.RefAnnotation{
			ID:            doc.NewAnnotationID(),
			AnnotationRef: parentAnnID,
			Value:         elan.AnnotationValue{Text: value},
		},
	})
}
