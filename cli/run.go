package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	exprtree "github.com/jasoncai1227/manipulating-binary-trees-which-represent-arithmetic-expressions"
)

// Script is a YAML batch of expression jobs.
type Script struct {
	Jobs []Job `yaml:"jobs"`
}

// Job parses Expr, substitutes Vars, simplifies and renders the result.
// When Expect is set the rendered output must match it exactly.
type Job struct {
	Name     string          `yaml:"name"`
	Expr     string          `yaml:"expr"`
	Vars     exprtree.Values `yaml:"vars,omitempty"`
	Simplify string          `yaml:"simplify,omitempty"`
	Format   string          `yaml:"format,omitempty"`
	Expect   *string         `yaml:"expect,omitempty"`
}

// JobResult is the outcome of one job.
type JobResult struct {
	Name   string
	Output string
	Err    error
	// Mismatch is set when Expect was given and Output differs from it.
	Mismatch bool
}

// NewRunCmd creates the "run" subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Execute a YAML script of expression jobs",
		Args:  cobra.ExactArgs(1),
		RunE:  runRun,
	}

	cmd.Flags().Bool("fail-fast", false, "Stop at the first failing job")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	out := cmd.OutOrStdout()
	logger := newLogger(cmd)

	script, err := loadScript(filePath)
	if err != nil {
		return err
	}

	var failed, mismatched int
	for i, job := range script.Jobs {
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		res := RunJob(job)
		logger.Debug("job finished", "job", res.Name, "ok", res.Err == nil && !res.Mismatch)

		switch {
		case res.Mismatch:
			mismatched++
			fmt.Fprintf(out, "FAIL %s: got %q, want %q\n", res.Name, res.Output, *job.Expect)
		case res.Err != nil:
			failed++
			fmt.Fprintf(out, "ERROR %s: %v\n", res.Name, res.Err)
		default:
			fmt.Fprintf(out, "%s: %s\n", res.Name, res.Output)
		}
		if failFast && (res.Mismatch || res.Err != nil) {
			break
		}
	}

	switch {
	case mismatched > 0:
		return exitError(exitExpectation, "%d %s did not match", mismatched, pluralize("expectation", mismatched))
	case failed > 0:
		return exitError(exitInvalid, "%d %s failed", failed, pluralize("job", failed))
	}
	return nil
}

// RunJob executes a single job. An error compares as "error" against Expect,
// so a script can assert that an expression is rejected.
func RunJob(job Job) JobResult {
	res := JobResult{Name: job.Name}
	t, err := exprtree.Parse(job.Expr)
	if err == nil {
		t, err = transform(t, job.Vars, job.Simplify)
	}
	if err == nil {
		res.Output, err = render(t, job.Format)
	}
	res.Err = err

	if job.Expect != nil {
		got := res.Output
		if err != nil {
			got = "error"
		}
		if got != *job.Expect {
			res.Mismatch = true
			res.Output = got
		} else {
			res.Err = nil
			res.Output = got
		}
	}
	return res
}

func loadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitError(exitFileNotFound, "file not found: %s", path)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, exitError(exitInputParse, "parsing %s: %v", path, err)
	}
	if len(script.Jobs) == 0 {
		return nil, exitError(exitInputParse, "%s: no jobs", path)
	}
	return &script, nil
}

// pluralize returns the singular or plural form of a word based on count.
func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
