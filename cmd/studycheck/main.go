// Command studycheck opens the configured persistent store and validates the
// records of one study, or of every study, reporting per-field findings.
// Exit status is 0 when everything validates, 1 when findings exist, and 2
// on operational failure. Storage selection follows the STUDYCORE_STORAGE_*
// environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"studycore/internal/core"
	"studycore/internal/infra/blob"
	"studycore/internal/pattern"
	"studycore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("studycheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	studyKey := fs.Int("study", 0, "study key to validate (0 validates every study)")
	verbose := fs.Bool("v", false, "log at debug level")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintf(stderr, "studycheck: logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		fmt.Fprintf(stderr, "studycheck: open store: %v\n", err)
		return 2
	}
	blobStore, err := blob.Open(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "studycheck: open blob store: %v\n", err)
		return 2
	}
	svc := core.NewService(store,
		core.WithLogger(core.NewZapLogger(logger)),
		core.WithPatternLoader(pattern.NewRepository(blobStore)),
	)

	findings, err := collectFindings(context.Background(), svc, *studyKey)
	if err != nil {
		fmt.Fprintf(stderr, "studycheck: %v\n", err)
		return 2
	}
	return report(stdout, findings)
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

type studyFindings struct {
	study   domain.Study
	sources map[int][]domain.ValidationMessage
}

func collectFindings(ctx context.Context, svc *core.Service, studyKey int) ([]studyFindings, error) {
	var studies []domain.Study
	if studyKey != 0 {
		study, ok := svc.GetStudy(studyKey)
		if !ok {
			return nil, fmt.Errorf("study %d not found", studyKey)
		}
		studies = []domain.Study{study}
	} else {
		studies = svc.ListStudies()
	}

	var out []studyFindings
	for _, study := range studies {
		sources, err := svc.ValidateStudy(ctx, study.Key)
		if err != nil {
			return nil, fmt.Errorf("validate study %d: %w", study.Key, err)
		}
		out = append(out, studyFindings{study: study, sources: sources})
	}
	return out, nil
}

func report(w io.Writer, all []studyFindings) int {
	total := 0
	for _, sf := range all {
		if len(sf.sources) == 0 {
			fmt.Fprintf(w, "study %d (%s): ok\n", sf.study.Key, sf.study.Name)
			continue
		}
		fmt.Fprintf(w, "study %d (%s): %d source(s) with findings\n", sf.study.Key, sf.study.Name, len(sf.sources))
		keys := make([]int, 0, len(sf.sources))
		for key := range sf.sources {
			keys = append(keys, key)
		}
		sort.Ints(keys)
		for _, key := range keys {
			for _, msg := range sf.sources[key] {
				fmt.Fprintf(w, "  source %d: %s\n", key, msg)
				total++
			}
		}
	}
	if total > 0 {
		fmt.Fprintf(w, "%d finding(s)\n", total)
		return 1
	}
	return 0
}
