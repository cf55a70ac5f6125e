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

package batch

import (
	"math"

	"golang.org/x/text/message"

	"glosa/eafproc"
)

// FileJob is a report about one processed (or attempted) file pair.
type FileJob struct {
	ID       string            `json:"id"`
	EafPath  string            `json:"eafPath"`
	JSONPath string            `json:"jsonPath"`
	OutPath  string            `json:"outPath"`
	Stats    eafproc.ProcStats `json:"stats"`
	Err      error             `json:"-"`
}

// Summary aggregates the whole conversion run.
type Summary struct {
	NumDocs    int               `json:"numDocs"`
	NumSkipped int               `json:"numSkipped"`
	NumFailed  int               `json:"numFailed"`
	Totals     eafproc.ProcStats `json:"totals"`
	Jobs       []FileJob         `json:"jobs"`
}

// PercentAnalyzed returns the percentage of words with at least one
// analysis, rounded to two decimals.
func (summary *Summary) PercentAnalyzed() float64 {
	if summary.Totals.NumWords == 0 {
		return 0
	}
	ratio := float64(summary.Totals.NumAnalyzed) / float64(summary.Totals.NumWords)
	return math.Round(ratio*10000) / 100
}

// Render produces the human readable closing report of a run.
func (summary *Summary) Render(printer *message.Printer) string {
	ans := printer.Sprintf("%d documents processed", summary.NumDocs)
	if summary.NumSkipped > 0 {
		ans += printer.Sprintf(", %d skipped", summary.NumSkipped)
	}
	if summary.NumFailed > 0 {
		ans += printer.Sprintf(", %d failed", summary.NumFailed)
	}
	ans += printer.Sprintf(
		". %d tokens, %d words, %d analyzed (%.2f%%).",
		summary.Totals.NumTokens,
		summary.Totals.NumWords,
		summary.Totals.NumAnalyzed,
		summary.PercentAnalyzed(),
	)
	return ans
}
