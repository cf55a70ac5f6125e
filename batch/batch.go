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

// Package batch drives a single conversion run: it walks the input ELAN
// directory (including subdirectories), pairs each .eaf file with its
// JSON counterpart by relative filename stem and converts the pairs one
// by one. File pairs are isolated from each other - one pair's failure is
// reported and the run continues. Processing is strictly sequential; the
// batches are small and the absence of concurrency here is intentional.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gokitFs "github.com/czcorpus/cnc-gokit/fs"
	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"glosa/eafproc"
	"glosa/elan"
	"glosa/tsakorpus"
)

// Conf configures the three directories of a conversion run.
type Conf struct {
	EafDir  string `json:"eafDir"`
	JSONDir string `json:"jsonDir"`
	OutDir  string `json:"outDir"`
}

// Validate tests that the input directories exist. The output directory
// is created on demand.
func (conf *Conf) Validate() error {
	for _, dir := range []string{conf.EafDir, conf.JSONDir} {
		if dir == "" {
			return fmt.Errorf("input directory not specified")
		}
		isDir, err := gokitFs.IsDir(dir)
		if err != nil {
			return fmt.Errorf("failed to test input directory %s: %w", dir, err)
		}
		if !isDir {
			return fmt.Errorf("input path %s is not a directory", dir)
		}
	}
	if conf.OutDir == "" {
		return fmt.Errorf("output directory not specified")
	}
	return nil
}

// Run performs a whole conversion run. The returned error covers only
// run-level problems (unusable directories, canceled context); per-pair
// failures are recorded in the summary.
func Run(ctx context.Context, conf Conf, proc *eafproc.EafProcessor) (*Summary, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	summary := &Summary{}
	err := filepath.WalkDir(conf.EafDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".eaf") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		job := processPair(conf, proc, path)
		summary.Jobs = append(summary.Jobs, job)
		switch {
		case job.Err != nil:
			summary.NumFailed++
			log.Error().
				Err(job.Err).
				Str("jobId", job.ID).
				Str("file", job.EafPath).
				Msg("failed to convert file pair")
		case job.OutPath == "":
			summary.NumSkipped++
		default:
			summary.NumDocs++
			summary.Totals.Add(job.Stats)
			log.Info().
				Str("jobId", job.ID).
				Str("file", job.EafPath).
				Str("outFile", job.OutPath).
				Int("numTokens", job.Stats.NumTokens).
				Int("numWords", job.Stats.NumWords).
				Int("numAnalyzed", job.Stats.NumAnalyzed).
				Msg("converted file pair")
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("conversion run failed: %w", err)
	}
	return summary, nil
}

// processPair converts a single .eaf file. A job with empty OutPath and
// nil Err means the pair was skipped (missing or empty JSON counterpart).
func processPair(conf Conf, proc *eafproc.EafProcessor, eafPath string) FileJob {
	job := FileJob{
		ID:      uuid.New().String(),
		EafPath: eafPath,
	}
	relPath, err := filepath.Rel(conf.EafDir, eafPath)
	if err != nil {
		job.Err = err
		return job
	}
	stem := strings.TrimSuffix(relPath, filepath.Ext(relPath))
	job.JSONPath = filepath.Join(conf.JSONDir, stem+".json")
	if !gokitFs.PathExists(job.JSONPath) {
		log.Warn().
			Str("file", eafPath).
			Str("jsonFile", job.JSONPath).
			Msg("no JSON counterpart found, skipping")
		return job
	}
	doc, err := elan.ReadDocument(eafPath)
	if err != nil {
		job.Err = err
		return job
	}
	corpus, err := tsakorpus.ReadDocument(job.JSONPath)
	if err != nil {
		job.Err = err
		return job
	}
	if corpus.IsEmpty() {
		log.Warn().
			Str("file", eafPath).
			Str("jsonFile", job.JSONPath).
			Msg("JSON document is empty, skipping")
		return job
	}
	log.Debug().
		Str("file", eafPath).
		Int("numTiers", len(doc.Tiers)).
		Int("numSentences", len(corpus.Sentences)).
		Str("header", spew.Sdump(doc.Header)).
		Msg("parsed file pair")
	job.Stats, err = proc.Process(doc, corpus)
	if err != nil {
		job.Err = err
		return job
	}
	outPath := filepath.Join(conf.OutDir, relPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		job.Err = fmt.Errorf("failed to create output directory: %w", err)
		return job
	}
	if err := elan.WriteDocument(doc, outPath); err != nil {
		job.Err = err
		return job
	}
	job.OutPath = outPath
	return job
}
