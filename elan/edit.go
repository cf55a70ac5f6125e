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
	"fmt"
	"sort"
)

var stereotypeDescriptions = map[string]string{
	StereotypeTimeSubdivision:     "Time subdivision of parent annotation's time interval, no time gaps allowed within this interval",
	StereotypeSymbolicSubdivision: "Symbolic subdivision of a parent annotation. Annotations refering to the same parent are ordered",
	StereotypeSymbolicAssociation: "1-1 association with a parent annotation",
	StereotypeIncludedIn:          "Time alignable annotations within the parent annotation's time interval, gaps are allowed",
}

// EnsureLinguisticType returns the linguistic type with the given id,
// declaring it first if the document does not have it yet. An existing
// declaration is reused as is (its stereotype is not rewritten).
func (doc *Document) EnsureLinguisticType(id, stereotype string, timeAlignable bool) *LinguisticType {
	if lt := doc.LinguisticType(id); lt != nil {
		return lt
	}
	doc.ensureConstraint(stereotype)
	lt := &LinguisticType{
		ID:            id,
		TimeAlignable: timeAlignable,
		Constraints:   stereotype,
	}
	doc.LinguisticTypes = append(doc.LinguisticTypes, lt)
	return lt
}

func (doc *Document) ensureConstraint(stereotype string) {
	if stereotype == "" {
		return
	}
	for _, c := range doc.Constraints {
		if c.Stereotype == stereotype {
			return
		}
	}
	doc.Constraints = append(doc.Constraints, Constraint{
		Stereotype:  stereotype,
		Description: stereotypeDescriptions[stereotype],
	})
}

// EnsureDependentTier returns the tier with the given id, creating it as
// a dependent tier of parentID if missing. An existing tier is only reused
// when its parent reference matches, otherwise an error is returned since
// appending annotations to it would corrupt the tier tree.
func (doc *Document) EnsureDependentTier(id, parentID, typeRef string) (*Tier, error) {
	if t := doc.Tier(id); t != nil {
		if t.ParentRef != parentID {
			return nil, fmt.Errorf(
				"tier %s already exists with parent %q (expected %q)",
				id, t.ParentRef, parentID,
			)
		}
		return t, nil
	}
	parent := doc.Tier(parentID)
	if parent == nil {
		return nil, fmt.Errorf("cannot create tier %s: parent tier %s not found", id, parentID)
	}
	t := &Tier{
		ID:            id,
		ParentRef:     parentID,
		TypeRef:       typeRef,
		Participant:   parent.Participant,
		DefaultLocale: parent.DefaultLocale,
		LangRef:       parent.LangRef,
	}
	doc.Tiers = append(doc.Tiers, t)
	return t, nil
}

// SortedAlignable returns the tier's alignable annotations ordered by
// their start time. Annotations with unaligned slots keep their document
// order at the end.
func (doc *Document) SortedAlignable(t *Tier) []*AlignableAnnotation {
	type annWithTime struct {
		ann     *AlignableAnnotation
		start   int
		aligned bool
		idx     int
	}
	items := make([]annWithTime, 0, len(t.Annotations))
	for i := range t.Annotations {
		a := t.Annotations[i].Alignable
		if a == nil {
			continue
		}
		start, ok := doc.TimeSlotValue(a.TimeSlotRef1)
		items = append(items, annWithTime{ann: a, start: start, aligned: ok, idx: i})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].aligned != items[j].aligned {
			return items[i].aligned
		}
		if !items[i].aligned {
			return items[i].idx < items[j].idx
		}
		return items[i].start < items[j].start
	})
	ans := make([]*AlignableAnnotation, len(items))
	for i, it := range items {
		ans[i] = it.ann
	}
	return ans
}
