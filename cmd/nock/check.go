package main

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"nickandperla.net/nock/pkg/nock"
)

func newCheckCmd() *cobra.Command {
	var dirs []string
	var noStdlib bool
	cmd := &cobra.Command{
		Use:   "check [FILE...]",
		Short: "Check definitions files for syntax and unknown names",
		Long: "Check definitions files for syntax and unknown names.\n" +
			"\n" +
			"Each file is loaded into a fresh in-memory runtime, so names may refer to the\n" +
			"prelude and to earlier definitions in the same file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := append([]string(nil), args...)
			for _, dir := range dirs {
				found, err := findNockFiles(dir)
				if err != nil {
					return errors.Wrapf(err, "scanning directory %s", dir)
				}
				files = append(files, found...)
			}
			if len(files) == 0 {
				return errors.New("no .nock files given")
			}
			return checkFiles(cmd.OutOrStdout(), files, noStdlib)
		},
	}
	cmd.Flags().StringArrayVar(&dirs, "dir", nil, "Check every .nock file under this directory")
	cmd.Flags().BoolVar(&noStdlib, "no-stdlib", false, "Do not resolve names against the standard prelude")
	return cmd
}

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path   string
	errors []string
}

// checkFile loads path into a scratch runtime and returns its errors.
func checkFile(path string, noStdlib bool) checkResult {
	opts := []nock.Option{nock.WithMemoryStore()}
	if noStdlib {
		opts = append(opts, nock.WithNoStdlib())
	}
	rt, err := nock.New(opts...)
	if err != nil {
		return checkResult{path: path, errors: []string{err.Error()}}
	}
	defer rt.Close()

	err = rt.LoadFile(path)
	if err == nil {
		return checkResult{path: path}
	}
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return checkResult{path: path, errors: []string{err.Error()}}
	}
	result := checkResult{path: path}
	for _, e := range merr.Errors {
		result.errors = append(result.errors, e.Error())
	}
	return result
}

func checkFiles(out io.Writer, files []string, noStdlib bool) error {
	failed := 0
	for _, f := range files {
		result := checkFile(f, noStdlib)
		if len(result.errors) == 0 {
			fmt.Fprintf(out, "OK   %s\n", f)
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL %s\n", f)
		for _, e := range result.errors {
			fmt.Fprintf(out, "     %s\n", e)
		}
	}

	fmt.Fprintf(out, "\n--- Summary ---\n")
	fmt.Fprintf(out, "Passed: %d\n", len(files)-failed)
	fmt.Fprintf(out, "Failed: %d\n", failed)
	fmt.Fprintf(out, "Total:  %d\n", len(files))

	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// findNockFiles recursively finds all .nock files under dir.
func findNockFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".nock") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
