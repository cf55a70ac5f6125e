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

// Package elan provides an in-memory model of ELAN annotation files (.eaf)
// along with reading, mutation and serialization. The model mirrors the
// EAF 3.0 schema closely enough that a document read from disk and written
// back keeps all its tiers, time slots, linguistic types and header data.
package elan

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

const (
	XsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"
	DefaultSchemaLoc  = "http://www.mpi.nl/tools/elan/EAFv3.0.xsd"
	DefaultFormat     = "3.0"
	propLastUsedAnnID = "lastUsedAnnotationId"

	StereotypeTimeSubdivision     = "Time_Subdivision"
	StereotypeSymbolicSubdivision = "Symbolic_Subdivision"
	StereotypeSymbolicAssociation = "Symbolic_Association"
	StereotypeIncludedIn          = "Included_In"
)

// Document is a complete EAF annotation document. The exported fields map
// 1:1 to the ANNOTATION_DOCUMENT element; unexported fields hold lazily
// built lookup state used when the document is being extended.
type Document struct {
	XMLName        xml.Name `xml:"ANNOTATION_DOCUMENT"`
	XsiNS          string   `xml:"xmlns:xsi,attr"`
	SchemaLocation string   `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Author         string   `xml:"AUTHOR,attr"`
	Date           string   `xml:"DATE,attr"`
	Format         string   `xml:"FORMAT,attr,omitempty"`
	Version        string   `xml:"VERSION,attr"`

	Licenses        []License              `xml:"LICENSE"`
	Header          Header                 `xml:"HEADER"`
	TimeOrder       TimeOrder              `xml:"TIME_ORDER"`
	Tiers           []*Tier                `xml:"TIER"`
	LinguisticTypes []*LinguisticType      `xml:"LINGUISTIC_TYPE"`
	Locales         []Locale               `xml:"LOCALE"`
	Languages       []Language             `xml:"LANGUAGE"`
	Constraints     []Constraint           `xml:"CONSTRAINT"`
	Vocabularies    []ControlledVocabulary `xml:"CONTROLLED_VOCABULARY"`
	LexiconRefs     []LexiconRef           `xml:"LEXICON_REF"`
	ExternalRefs    []ExternalRef          `xml:"EXTERNAL_REF"`

	nextAnnID int
	nextTSID  int
}

type License struct {
	URL  string `xml:"LICENSE_URL,attr,omitempty"`
	Text string `xml:",chardata"`
}

type Header struct {
	MediaFile             string                 `xml:"MEDIA_FILE,attr,omitempty"`
	TimeUnits             string                 `xml:"TIME_UNITS,attr,omitempty"`
	MediaDescriptors      []MediaDescriptor      `xml:"MEDIA_DESCRIPTOR"`
	LinkedFileDescriptors []LinkedFileDescriptor `xml:"LINKED_FILE_DESCRIPTOR"`
	Properties            []Property             `xml:"PROPERTY"`
}

type MediaDescriptor struct {
	MediaURL         string `xml:"MEDIA_URL,attr"`
	RelativeMediaURL string `xml:"RELATIVE_MEDIA_URL,attr,omitempty"`
	MimeType         string `xml:"MIME_TYPE,attr"`
	TimeOrigin       string `xml:"TIME_ORIGIN,attr,omitempty"`
	ExtractedFrom    string `xml:"EXTRACTED_FROM,attr,omitempty"`
}

type LinkedFileDescriptor struct {
	LinkURL         string `xml:"LINK_URL,attr"`
	RelativeLinkURL string `xml:"RELATIVE_LINK_URL,attr,omitempty"`
	MimeType        string `xml:"MIME_TYPE,attr"`
	TimeOrigin      string `xml:"TIME_ORIGIN,attr,omitempty"`
	AssociatedWith  string `xml:"ASSOCIATED_WITH,attr,omitempty"`
}

type Property struct {
	Name  string `xml:"NAME,attr,omitempty"`
	Value string `xml:",chardata"`
}

type TimeOrder struct {
	TimeSlots []TimeSlot `xml:"TIME_SLOT"`
}

// TimeSlot is a named point in time. Value is in milliseconds and may be
// missing (unaligned slot), which is why it is a pointer.
type TimeSlot struct {
	ID    string `xml:"TIME_SLOT_ID,attr"`
	Value *int   `xml:"TIME_VALUE,attr,omitempty"`
}

// Tier is a named annotation track. A non-empty ParentRef makes it
// a dependent tier; the tiers of a document form a tree.
type Tier struct {
	ID            string       `xml:"TIER_ID,attr"`
	ParentRef     string       `xml:"PARENT_REF,attr,omitempty"`
	TypeRef       string       `xml:"LINGUISTIC_TYPE_REF,attr"`
	Participant   string       `xml:"PARTICIPANT,attr,omitempty"`
	Annotator     string       `xml:"ANNOTATOR,attr,omitempty"`
	DefaultLocale string       `xml:"DEFAULT_LOCALE,attr,omitempty"`
	LangRef       string       `xml:"LANG_REF,attr,omitempty"`
	ExtRef        string       `xml:"EXT_REF,attr,omitempty"`
	Annotations   []Annotation `xml:"ANNOTATION"`
}

// Annotation is the wrapper element; exactly one of the two fields is set.
type Annotation struct {
	Alignable *AlignableAnnotation `xml:"ALIGNABLE_ANNOTATION"`
	Ref       *RefAnnotation       `xml:"REF_ANNOTATION"`
}

// ID returns the annotation id regardless of the concrete variant.
func (a *Annotation) ID() string {
	if a.Alignable != nil {
		return a.Alignable.ID
	}
	if a.Ref != nil {
		return a.Ref.ID
	}
	return ""
}

func (a *Annotation) Value() string {
	if a.Alignable != nil {
		return a.Alignable.Value.Text
	}
	if a.Ref != nil {
		return a.Ref.Value.Text
	}
	return ""
}

type AlignableAnnotation struct {
	ID           string          `xml:"ANNOTATION_ID,attr"`
	TimeSlotRef1 string          `xml:"TIME_SLOT_REF1,attr"`
	TimeSlotRef2 string          `xml:"TIME_SLOT_REF2,attr"`
	SVGRef       string          `xml:"SVG_REF,attr,omitempty"`
	ExtRef       string          `xml:"EXT_REF,attr,omitempty"`
	CVEntryRef   string          `xml:"CVE_REF,attr,omitempty"`
	Value        AnnotationValue `xml:"ANNOTATION_VALUE"`
}

type RefAnnotation struct {
	ID            string          `xml:"ANNOTATION_ID,attr"`
	AnnotationRef string          `xml:"ANNOTATION_REF,attr"`
	PrevAnnot     string          `xml:"PREVIOUS_ANNOTATION,attr,omitempty"`
	ExtRef        string          `xml:"EXT_REF,attr,omitempty"`
	CVEntryRef    string          `xml:"CVE_REF,attr,omitempty"`
	Value         AnnotationValue `xml:"ANNOTATION_VALUE"`
}

type AnnotationValue struct {
	Text string `xml:",chardata"`
}

type LinguisticType struct {
	ID                string `xml:"LINGUISTIC_TYPE_ID,attr"`
	TimeAlignable     bool   `xml:"TIME_ALIGNABLE,attr"`
	Constraints       string `xml:"CONSTRAINTS,attr,omitempty"`
	GraphicReferences string `xml:"GRAPHIC_REFERENCES,attr,omitempty"`
	VocabularyRef     string `xml:"CONTROLLED_VOCABULARY_REF,attr,omitempty"`
	ExtRef            string `xml:"EXT_REF,attr,omitempty"`
	LexiconRef        string `xml:"LEXICON_REF,attr,omitempty"`
}

type Locale struct {
	LanguageCode string `xml:"LANGUAGE_CODE,attr"`
	CountryCode  string `xml:"COUNTRY_CODE,attr,omitempty"`
	Variant      string `xml:"VARIANT,attr,omitempty"`
}

type Language struct {
	ID    string `xml:"LANG_ID,attr"`
	Def   string `xml:"LANG_DEF,attr,omitempty"`
	Label string `xml:"LANG_LABEL,attr,omitempty"`
}

type Constraint struct {
	Stereotype  string `xml:"STEREOTYPE,attr"`
	Description string `xml:"DESCRIPTION,attr,omitempty"`
}

type ControlledVocabulary struct {
	ID           string       `xml:"CV_ID,attr"`
	ExtRef       string       `xml:"EXT_REF,attr,omitempty"`
	Descriptions []CVDesc     `xml:"DESCRIPTION"`
	Entries      []CVEntryML  `xml:"CV_ENTRY_ML"`
	Resources    []CVResource `xml:"CV_RESOURCE"`
}

type CVDesc struct {
	LangRef string `xml:"LANG_REF,attr"`
	Text    string `xml:",chardata"`
}

type CVEntryML struct {
	ID     string    `xml:"CVE_ID,attr"`
	ExtRef string    `xml:"EXT_REF,attr,omitempty"`
	Values []CVValue `xml:"CVE_VALUE"`
}

type CVValue struct {
	LangRef     string `xml:"LANG_REF,attr"`
	Description string `xml:"DESCRIPTION,attr,omitempty"`
	Text        string `xml:",chardata"`
}

type CVResource struct {
	Text string `xml:",chardata"`
}

type LexiconRef struct {
	ID          string `xml:"LEX_REF_ID,attr"`
	Name        string `xml:"NAME,attr"`
	Type        string `xml:"TYPE,attr"`
	URL         string `xml:"URL,attr"`
	LexiconID   string `xml:"LEXICON_ID,attr"`
	LexiconName string `xml:"LEXICON_NAME,attr"`
	DatcatID    string `xml:"DATCAT_ID,attr,omitempty"`
	DatcatName  string `xml:"DATCAT_NAME,attr,omitempty"`
}

type ExternalRef struct {
	ID    string `xml:"EXT_REF_ID,attr"`
	Type  string `xml:"TYPE,attr"`
	Value string `xml:"VALUE,attr"`
}

// ---------------- lookups

// Tier returns the tier with the given id or nil.
func (doc *Document) Tier(id string) *Tier {
	for _, t := range doc.Tiers {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// LinguisticType returns the linguistic type declaration with the given id
// or nil.
func (doc *Document) LinguisticType(id string) *LinguisticType {
	for _, lt := range doc.LinguisticTypes {
		if lt.ID == id {
			return lt
		}
	}
	return nil
}

// TimeSlotValue resolves a time slot id to its millisecond value. The second
// return value is false for unknown or unaligned slots.
func (doc *Document) TimeSlotValue(id string) (int, bool) {
	for i := range doc.TimeOrder.TimeSlots {
		ts := &doc.TimeOrder.TimeSlots[i]
		if ts.ID == id {
			if ts.Value == nil {
				return 0, false
			}
			return *ts.Value, true
		}
	}
	return 0, false
}

// AnnotationByID searches all tiers for an annotation with the given id.
func (doc *Document) AnnotationByID(id string) (*Tier, *Annotation) {
	for _, t := range doc.Tiers {
		for i := range t.Annotations {
			if t.Annotations[i].ID() == id {
				return t, &t.Annotations[i]
			}
		}
	}
	return nil, nil
}

// Interval resolves the time range of an annotation in milliseconds.
// For reference annotations it follows the annotation-ref chain up to
// an alignable ancestor.
func (doc *Document) Interval(a *Annotation) (int, int, error) {
	for depth := 0; a != nil; depth++ {
		if depth > len(doc.Tiers)+1 {
			return 0, 0, fmt.Errorf("annotation reference chain too deep (dangling ref?)")
		}
		if a.Alignable != nil {
			t1, ok1 := doc.TimeSlotValue(a.Alignable.TimeSlotRef1)
			t2, ok2 := doc.TimeSlotValue(a.Alignable.TimeSlotRef2)
			if !ok1 || !ok2 {
				return 0, 0, fmt.Errorf("annotation %s has unaligned time slots", a.Alignable.ID)
			}
			return t1, t2, nil
		}
		_, parent := doc.AnnotationByID(a.Ref.AnnotationRef)
		if parent == nil {
			return 0, 0, fmt.Errorf("annotation %s refers to unknown annotation %s", a.Ref.ID, a.Ref.AnnotationRef)
		}
		a = parent
	}
	return 0, 0, fmt.Errorf("cannot resolve interval of a nil annotation")
}

// TimeAlignable tests whether the tier's declared linguistic type is
// time-alignable.
func (doc *Document) TimeAlignable(t *Tier) bool {
	lt := doc.LinguisticType(t.TypeRef)
	return lt != nil && lt.TimeAlignable
}

// ---------------- id allocation

func maxNumSuffix(curr int, id string, prefix string) int {
	rest, found := strings.CutPrefix(id, prefix)
	if !found {
		return curr
	}
	v, err := strconv.Atoi(rest)
	if err == nil && v > curr {
		return v
	}
	return curr
}

func (doc *Document) initCounters() {
	if doc.nextAnnID > 0 {
		return
	}
	maxAnn := 0
	for _, t := range doc.Tiers {
		for i := range t.Annotations {
			maxAnn = maxNumSuffix(maxAnn, t.Annotations[i].ID(), "a")
		}
	}
	for _, p := range doc.Header.Properties {
		if p.Name == propLastUsedAnnID {
			v, err := strconv.Atoi(strings.TrimSpace(p.Value))
			if err == nil && v > maxAnn {
				maxAnn = v
			}
		}
	}
	maxTS := 0
	for _, ts := range doc.TimeOrder.TimeSlots {
		maxTS = maxNumSuffix(maxTS, ts.ID, "ts")
	}
	doc.nextAnnID = maxAnn + 1
	doc.nextTSID = maxTS + 1
}

// NewAnnotationID returns the next free annotation id (a1, a2, ...)
// continuing the numbering already used by the document.
func (doc *Document) NewAnnotationID() string {
	doc.initCounters()
	id := fmt.Sprintf("a%d", doc.nextAnnID)
	doc.nextAnnID++
	return id
}

// AddTimeSlot creates a new time slot. A nil value creates an unaligned slot.
func (doc *Document) AddTimeSlot(value *int) string {
	doc.initCounters()
	id := fmt.Sprintf("ts%d", doc.nextTSID)
	// documents with non-standard slot ids (anything not ts<num>) are not
	// covered by the counter, so test for an actual collision too
	for doc.hasTimeSlot(id) {
		doc.nextTSID++
		id = fmt.Sprintf("ts%d", doc.nextTSID)
	}
	doc.nextTSID++
	doc.TimeOrder.TimeSlots = append(doc.TimeOrder.TimeSlots, TimeSlot{ID: id, Value: value})
	return id
}

func (doc *Document) hasTimeSlot(id string) bool {
	for _, ts := range doc.TimeOrder.TimeSlots {
		if ts.ID == id {
			return true
		}
	}
	return false
}

// syncLastUsedAnnotationID updates (or creates) the header property ELAN
// itself maintains, so that the application does not re-issue ids of
// annotations added here.
func (doc *Document) syncLastUsedAnnotationID() {
	if doc.nextAnnID == 0 {
		return // nothing was allocated
	}
	last := strconv.Itoa(doc.nextAnnID - 1)
	for i, p := range doc.Header.Properties {
		if p.Name == propLastUsedAnnID {
			doc.Header.Properties[i].Value = last
			return
		}
	}
	doc.Header.Properties = append(
		doc.Header.Properties,
		Property{Name: propLastUsedAnnID, Value: last},
	)
}
