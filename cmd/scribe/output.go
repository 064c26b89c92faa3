package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kbukum/scribekit/transcription"
)

func printJSON(e *env, v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(e *env, r *transcription.Result) error {
	if e.json {
		return printJSON(e, r)
	}
	fmt.Fprintf(e.errOut, "task %s: %d characters", r.TaskID, r.Characters)
	if r.Type != "" {
		fmt.Fprintf(e.errOut, ", %s", r.Type.Label())
	}
	fmt.Fprintln(e.errOut)
	fmt.Fprintln(e.out, r.Text())
	if r.Summary != "" {
		fmt.Fprintf(e.out, "\n--- summary ---\n%s\n", r.Summary)
	}
	return nil
}

func table(e *env, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

// preview shortens s to n runes on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
