package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/sigkit/corpus"
	"github.com/dhamidi/sigkit/format"
	"github.com/dhamidi/sigkit/lsp"
	"github.com/dhamidi/sigkit/roundtrip"
	"github.com/dhamidi/sigkit/sigfile"
)

var log = commonlog.GetLogger("sigkit.sigtool")

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Verify that every signature round-trips through parse and write",
		Long: `Check walks class files, jars, jmods, and directories and verifies that
writing each parsed signature reproduces it exactly. Files ending in .sigs
are read as signature vector files. Without paths the platform classes of
the JDK in JAVA_HOME are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 {
				javaHome, err := corpus.JavaHome()
				if err != nil {
					return fmt.Errorf("no paths given and no JDK found: %w", err)
				}
				if paths, err = corpus.DefaultPaths(javaHome); err != nil {
					return err
				}
			}

			enc, err := format.NewReportEncoder(os.Stdout, current.Format)
			if err != nil {
				return err
			}

			checker := roundtrip.New(current.CheckerOptions())
			report, err := runCheck(cmd, checker, paths)
			if report != nil {
				if encErr := enc.Encode(report); encErr != nil {
					return fmt.Errorf("encode report: %w", encErr)
				}
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("%d signatures failed to round-trip, %d class files could not be read", len(report.Failures), len(report.ClassErrors))
			}
			if !report.AtLeast(current.MinSignatures) {
				return fmt.Errorf("only %d signatures checked, expected at least %d", report.Signatures, current.MinSignatures)
			}
			return nil
		},
	}

	cmd.Flags().Int("workers", 0, "number of concurrent workers (default number of CPUs)")
	cmd.Flags().Int("cache-size", roundtrip.DefaultCacheSize, "number of verified signatures to remember")
	cmd.Flags().StringP("format", "f", "text", "report format (text, json, yaml)")
	cmd.Flags().Int("min", 0, "fail unless at least this many signatures are checked")

	return cmd
}

func runCheck(cmd *cobra.Command, checker *roundtrip.Checker, paths []string) (*roundtrip.Report, error) {
	var items []roundtrip.Item
	var archives []string
	var parseErrors []roundtrip.Failure
	for _, p := range paths {
		if filepath.Ext(p) != lsp.Extension {
			archives = append(archives, p)
			continue
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open vector file: %w", err)
		}
		lines, err := sigfile.Parse(f)
		f.Close()
		var bad sigfile.ParseErrors
		if err != nil && !errors.As(err, &bad) {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		// Lines that do not follow the vector format count as failures.
		for _, d := range sigfile.ErrorDiagnostics(err) {
			parseErrors = append(parseErrors, roundtrip.Failure{
				Source: fmt.Sprintf("%s:%d", p, d.Line),
				Error:  d.Message,
			})
		}
		log.Infof("%s: %d signatures", p, len(lines))
		items = append(items, sigfile.Items(p, lines)...)
	}

	report := &roundtrip.Report{ByKind: map[string]int{}, Failures: parseErrors}
	if len(items) > 0 {
		vectors, err := checker.CheckSignatures(cmd.Context(), items)
		if err != nil {
			return nil, err
		}
		report.Merge(vectors)
	}
	if len(archives) > 0 {
		classes, err := checker.CheckPaths(cmd.Context(), archives...)
		if classes != nil {
			report.Merge(classes)
		}
		if err != nil {
			return report, err
		}
	}
	return report, nil
}
