// Copyright 2019 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2019 Institute of the Czech National Corpus,
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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"

	"glosa/batch"
	"glosa/common"
	"glosa/eafproc"
)

// dfltTierPattern matches the transcription tier naming convention of the
// corpora the tool was originally written for
const dfltTierPattern = ".*_Transcription-txt-.*"

// ConfigError reports an unusable configuration value.
type ConfigError struct {
	Field string
	Msg   string
}

func (err ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", err.Field, err.Msg)
}

// LangProps is a per-language section of the configuration. The (snake
// case) key names follow the Tsakorpus corpus settings file the values
// are typically copied from.
type LangProps struct {
	GrFieldsOrder []string `json:"gr_fields_order"`
}

// Conf is a global configuration of the app
type Conf struct {
	Logging logging.LoggingConf `json:"logging"`
	Data    batch.Conf          `json:"data"`

	// TierPattern is a regular expression selecting transcription
	// tiers (by tier id or linguistic type) to be analyzed
	TierPattern string `json:"tierPattern"`

	// Language selects the lang_props entry whose gr_fields_order
	// drives grammatical tag rendering; empty = source order
	Language string `json:"language"`

	VerifyAlignment bool `json:"verifyAlignment"`

	// TierTypes optionally overrides names of the linguistic types
	// declared for generated tiers
	TierTypes eafproc.TierTypeNames `json:"tierTypes"`

	LangProps map[string]LangProps `json:"lang_props"`

	srcPath string
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

// ProcSettings translates the configuration into an EafProcessor setup.
func (conf *Conf) ProcSettings() (eafproc.ProcSettings, error) {
	var ans eafproc.ProcSettings
	pattern, err := regexp.Compile(conf.TierPattern)
	if err != nil {
		return ans, ConfigError{Field: "tierPattern", Msg: err.Error()}
	}
	ans.TierPattern = pattern
	if conf.Language != "" {
		if !common.MapContains(conf.LangProps, conf.Language) {
			return ans, ConfigError{
				Field: "language",
				Msg:   fmt.Sprintf("language %s not found in lang_props", conf.Language),
			}
		}
		ans.TagOrder = conf.LangProps[conf.Language].GrFieldsOrder
	}
	ans.TierTypes = conf.TierTypes.WithDefaults()
	ans.VerifyAlignment = conf.VerifyAlignment
	return ans, nil
}

func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("Cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	err = json.Unmarshal(rawData, &conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot load config")
	}
	return &conf
}

func ApplyDefaults(conf *Conf) {
	if conf.TierPattern == "" {
		conf.TierPattern = dfltTierPattern
		log.Warn().Msgf("tierPattern not specified, using default: %s", dfltTierPattern)
	}
	if conf.Language == "" {
		log.Warn().Msg("language not specified, grammatical tags will keep their source order")
	}
}
