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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"glosa/batch"
	"glosa/cnf"
	"glosa/eafproc"
	"glosa/general"
)

var (
	version   string
	buildDate string
	gitCommit string
)

func runConvert(configPath string) {
	conf := cnf.LoadConfig(configPath)
	logging.SetupLogging(conf.Logging)
	log.Info().Msg("Starting GLOSA")
	cnf.ApplyDefaults(conf)
	settings, err := conf.ProcSettings()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure the processor")
	}
	proc, err := eafproc.NewEafProcessor(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure the processor")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := batch.Run(ctx, conf.Data, proc)
	if err != nil {
		log.Fatal().Err(err).Msg("conversion run failed")
	}
	printer := message.NewPrinter(language.English)
	fmt.Println(summary.Render(printer))
	if summary.NumDocs == 0 && summary.NumFailed > 0 {
		os.Exit(1)
	}
}

func main() {
	ver := general.VersionInfo{
		Version:   version,
		BuildDate: buildDate,
		GitCommit: gitCommit,
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "GLOSA - Gloss Layer Output for Speech Annotations\n\nUsage:\n\t%s [options] convert [config.json]\n\t%s [options] version\n",
			filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	action := flag.Arg(0)
	switch action {
	case "version":
		fmt.Printf("glosa %s\nbuild date: %s\nlast commit: %s\n", ver.Version, ver.BuildDate, ver.GitCommit)
	case "convert":
		runConvert(flag.Arg(1))
	default:
		log.Fatal().Msgf("Unknown action %s", action)
	}
}
