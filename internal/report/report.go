// Package report renders resolution results and validator reports for
// humans and machines. Problems are advisory: they go to the warning
// stream and never block anything.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"schemap/internal/dispatch"
	"schemap/internal/pipeline"
)

var (
	passMark = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	warnTag  = color.New(color.FgYellow).Sprint("warning:")
)

// Resolution renders one document's resolved schema set.
func Resolution(w io.Writer, res pipeline.Result) {
	if len(res.Schemas) == 0 {
		fmt.Fprintf(w, "%s: no schema applies\n", res.DocumentPath)
		return
	}
	for _, schema := range res.Schemas {
		fmt.Fprintf(w, "%s: %s\n", res.DocumentPath, schema)
	}
}

// Warnings renders a result's problems, one line each.
func Warnings(w io.Writer, res pipeline.Result) {
	for _, p := range res.Problems {
		fmt.Fprintf(w, "%s %v\n", warnTag, p)
	}
}

// Validation renders validator reports. Each report's output is surfaced
// verbatim, indented under its pass/fail line.
func Validation(w io.Writer, reports []dispatch.Report) {
	for _, r := range reports {
		mark := passMark
		if !r.Passed() {
			mark = failMark
		}
		fmt.Fprintf(w, "%s %s against %s\n", mark, r.DocumentPath, r.SchemaPath)
		if r.Err != nil {
			fmt.Fprintf(w, "  validator failed to run: %v\n", r.Err)
		}
		if out := strings.TrimRight(r.Output, "\n"); out != "" {
			for _, line := range strings.Split(out, "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}

// resolutionJSON is the machine-readable shape of one document's result.
type resolutionJSON struct {
	Document string   `json:"document"`
	Schemas  []string `json:"schemas"`
	Configs  []string `json:"configFiles,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// validationJSON is the machine-readable shape of one validator report.
type validationJSON struct {
	Document string `json:"document"`
	Schema   string `json:"schema"`
	Passed   bool   `json:"passed"`
	ExitCode int    `json:"exitCode"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ResolutionJSON serializes resolution results for --json output.
func ResolutionJSON(results []pipeline.Result) ([]byte, error) {
	out := make([]resolutionJSON, 0, len(results))
	for _, res := range results {
		entry := resolutionJSON{
			Document: res.DocumentPath,
			Schemas:  res.Schemas,
			Configs:  res.ConfigFiles,
		}
		for _, p := range res.Problems {
			entry.Warnings = append(entry.Warnings, p.Error())
		}
		out = append(out, entry)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ValidationJSON serializes validator reports for --json output.
func ValidationJSON(reports []dispatch.Report) ([]byte, error) {
	out := make([]validationJSON, 0, len(reports))
	for _, r := range reports {
		entry := validationJSON{
			Document: r.DocumentPath,
			Schema:   r.SchemaPath,
			Passed:   r.Passed(),
			ExitCode: r.ExitCode,
			Output:   r.Output,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		out = append(out, entry)
	}
	return json.MarshalIndent(out, "", "  ")
}
