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

package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleConf = `{
	"logging": {"level": "info"},
	"data": {
		"eafDir": "/data/eaf",
		"jsonDir": "/data/json",
		"outDir": "/data/eaf_analyzed"
	},
	"tierPattern": ".*_Transcription-txt-.*",
	"language": "qpv",
	"lang_props": {
		"qpv": {"gr_fields_order": ["pos", "num", "case"]}
	}
}`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	assert.NoError(t, os.WriteFile(path, []byte(sampleConf), 0644))
	conf := LoadConfig(path)
	assert.Equal(t, "/data/eaf", conf.Data.EafDir)
	assert.Equal(t, "qpv", conf.Language)
	assert.Equal(t, path, conf.GetSourcePath())
}

func TestProcSettings(t *testing.T) {
	conf := Conf{
		TierPattern: ".*_Transcription-txt-.*",
		Language:    "qpv",
		LangProps: map[string]LangProps{
			"qpv": {GrFieldsOrder: []string{"pos", "num", "case"}},
		},
	}
	settings, err := conf.ProcSettings()
	assert.NoError(t, err)
	assert.True(t, settings.TierPattern.MatchString("A_Transcription-txt-qpv"))
	assert.Equal(t, []string{"pos", "num", "case"}, settings.TagOrder)
	assert.Equal(t, "tokenType", settings.TierTypes.Token)
}

func TestProcSettingsUnknownLanguage(t *testing.T) {
	conf := Conf{
		TierPattern: ".*",
		Language:    "xx",
		LangProps: map[string]LangProps{
			"qpv": {GrFieldsOrder: []string{"pos"}},
		},
	}
	_, err := conf.ProcSettings()
	var confErr ConfigError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t, "language", confErr.Field)
}

func TestProcSettingsNoLanguage(t *testing.T) {
	conf := Conf{TierPattern: ".*"}
	settings, err := conf.ProcSettings()
	assert.NoError(t, err)
	assert.Nil(t, settings.TagOrder)
}

func TestProcSettingsBadPattern(t *testing.T) {
	conf := Conf{TierPattern: "(("}
	_, err := conf.ProcSettings()
	var confErr ConfigError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t, "tierPattern", confErr.Field)
}

func TestApplyDefaults(t *testing.T) {
	var conf Conf
	ApplyDefaults(&conf)
	assert.Equal(t, ".*_Transcription-txt-.*", conf.TierPattern)
}
