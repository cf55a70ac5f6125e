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
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/stretchr/testify/assert"

	"glosa/eafproc"
	"glosa/elan"
)

const testEaf = `<?xml version="1.0" encoding="UTF-8"?>
<ANNOTATION_DOCUMENT AUTHOR="" DATE="2025-01-10T10:00:00+01:00" FORMAT="3.0" VERSION="3.0"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xsi:noNamespaceSchemaLocation="http://www.mpi.nl/tools/elan/EAFv3.0.xsd">
    <HEADER MEDIA_FILE="" TIME_UNITS="milliseconds"></HEADER>
    <TIME_ORDER>
        <TIME_SLOT TIME_SLOT_ID="ts1" TIME_VALUE="0"/>
        <TIME_SLOT TIME_SLOT_ID="ts2" TIME_VALUE="1000"/>
    </TIME_ORDER>
    <TIER LINGUISTIC_TYPE_REF="transcriptionType" TIER_ID="A_Transcription-txt-qpv">
        <ANNOTATION>
            <ALIGNABLE_ANNOTATION ANNOTATION_ID="a1" TIME_SLOT_REF1="ts1" TIME_SLOT_REF2="ts2">
                <ANNOTATION_VALUE>hello world</ANNOTATION_VALUE>
            </ALIGNABLE_ANNOTATION>
        </ANNOTATION>
    </TIER>
    <LINGUISTIC_TYPE GRAPHIC_REFERENCES="false" LINGUISTIC_TYPE_ID="transcriptionType" TIME_ALIGNABLE="true"/>
</ANNOTATION_DOCUMENT>`

const testJSON = `{
	"sentences": [
		{
			"text": "hello world",
			"words": [
				{"wf": "hello", "wtype": "word", "ana": [{"lex": "hello", "gloss": "greet"}]},
				{"wf": "world", "wtype": "word", "ana": [{"lex": "world", "gloss": "earth"}]}
			]
		}
	]
}`

// two sentences against a single annotation
const mismatchedJSON = `{
	"sentences": [
		{"text": "hello", "words": [{"wf": "hello", "wtype": "word"}]},
		{"text": "world", "words": [{"wf": "world", "wtype": "word"}]}
	]
}`

const emptyJSON = `{"sentences": []}`

func writeFile(t *testing.T, path, value string) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	assert.NoError(t, os.WriteFile(path, []byte(value), 0644))
}

func testConf(t *testing.T) Conf {
	root := t.TempDir()
	conf := Conf{
		EafDir:  filepath.Join(root, "eaf"),
		JSONDir: filepath.Join(root, "json"),
		OutDir:  filepath.Join(root, "eaf_analyzed"),
	}
	assert.NoError(t, os.MkdirAll(conf.EafDir, 0755))
	assert.NoError(t, os.MkdirAll(conf.JSONDir, 0755))
	return conf
}

func testProc(t *testing.T) *eafproc.EafProcessor {
	t.Helper()
	proc, err := eafproc.NewEafProcessor(eafproc.ProcSettings{
		TierPattern: regexp.MustCompile(`.*_Transcription-txt-.*`),
	})
	assert.NoError(t, err)
	return proc
}

func TestRunConvertsPairsInSubdirs(t *testing.T) {
	conf := testConf(t)
	writeFile(t, filepath.Join(conf.EafDir, "rec1.eaf"), testEaf)
	writeFile(t, filepath.Join(conf.JSONDir, "rec1.json"), testJSON)
	writeFile(t, filepath.Join(conf.EafDir, "sess2", "rec2.eaf"), testEaf)
	writeFile(t, filepath.Join(conf.JSONDir, "sess2", "rec2.json"), testJSON)

	summary, err := Run(context.Background(), conf, testProc(t))
	assert.NoError(t, err)
	assert.Equal(t, 2, summary.NumDocs)
	assert.Equal(t, 0, summary.NumFailed)
	assert.Equal(t, 0, summary.NumSkipped)
	assert.Equal(t, 4, summary.Totals.NumTokens)
	assert.Equal(t, 4, summary.Totals.NumAnalyzed)

	// the output mirrors the input layout
	outDoc, err := elan.ReadDocument(filepath.Join(conf.OutDir, "sess2", "rec2.eaf"))
	assert.NoError(t, err)
	assert.NotNil(t, outDoc.Tier("A_Transcription-txt-qpv_tok"))
}

func TestRunSkipsPairWithoutJSON(t *testing.T) {
	conf := testConf(t)
	writeFile(t, filepath.Join(conf.EafDir, "orphan.eaf"), testEaf)

	summary, err := Run(context.Background(), conf, testProc(t))
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.NumDocs)
	assert.Equal(t, 1, summary.NumSkipped)
	assert.False(t, fs.PathExists(filepath.Join(conf.OutDir, "orphan.eaf")))
}

func TestRunSkipsEmptyJSON(t *testing.T) {
	conf := testConf(t)
	writeFile(t, filepath.Join(conf.EafDir, "rec1.eaf"), testEaf)
	writeFile(t, filepath.Join(conf.JSONDir, "rec1.json"), emptyJSON)

	summary, err := Run(context.Background(), conf, testProc(t))
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.NumSkipped)
}

func TestRunIsolatesFailures(t *testing.T) {
	conf := testConf(t)
	writeFile(t, filepath.Join(conf.EafDir, "bad.eaf"), testEaf)
	writeFile(t, filepath.Join(conf.JSONDir, "bad.json"), mismatchedJSON)
	writeFile(t, filepath.Join(conf.EafDir, "good.eaf"), testEaf)
	writeFile(t, filepath.Join(conf.JSONDir, "good.json"), testJSON)

	summary, err := Run(context.Background(), conf, testProc(t))
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.NumDocs)
	assert.Equal(t, 1, summary.NumFailed)
	// the failed pair must not leave any output behind
	assert.False(t, fs.PathExists(filepath.Join(conf.OutDir, "bad.eaf")))
	assert.True(t, fs.PathExists(filepath.Join(conf.OutDir, "good.eaf")))
	var numErrs int
	for _, job := range summary.Jobs {
		if job.Err != nil {
			numErrs++
			var mismatch eafproc.MismatchError
			assert.ErrorAs(t, job.Err, &mismatch)
		}
	}
	assert.Equal(t, 1, numErrs)
}

func TestRunRejectsMissingInputDir(t *testing.T) {
	conf := Conf{
		EafDir:  "/nonexistent/eaf",
		JSONDir: "/nonexistent/json",
		OutDir:  "/nonexistent/out",
	}
	_, err := Run(context.Background(), conf, testProc(t))
	assert.Error(t, err)
}
