package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rjavier441/rjs2"
)

// Formatter formats results for output.
type Formatter interface {
	FormatRoutes(w io.Writer, m rjs2.Manifest) error
	FormatHistory(w io.Writer, snapshots []rjs2.SnapshotSummary) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	// Quiet drops the header and the summary line.
	Quiet bool
}

const maxColumn = 60

// FormatRoutes prints one line per route in mount order.
func (f *HumanFormatter) FormatRoutes(w io.Writer, m rjs2.Manifest) error {
	if len(m.Routes) == 0 {
		_, _ = fmt.Fprintln(w, "No routes installed")
		return nil
	}

	maxKindLen := 4  // "KIND"
	maxMountLen := 5 // "MOUNT"
	maxSourceLen := 6
	for i := range m.Routes {
		maxKindLen = max(maxKindLen, len(m.Routes[i].Kind))
		maxMountLen = max(maxMountLen, len(m.Routes[i].MountPath))
		maxSourceLen = max(maxSourceLen, len(m.Routes[i].SourcePath))
	}
	maxMountLen = min(maxMountLen, maxColumn)
	maxSourceLen = min(maxSourceLen, maxColumn)

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%-*s  %-*s  %-*s  %s\n", maxKindLen, "KIND", maxMountLen, "MOUNT", maxSourceLen, "SOURCE", "PIPELINE")
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			strings.Repeat("-", maxKindLen), strings.Repeat("-", maxMountLen), strings.Repeat("-", maxSourceLen), strings.Repeat("-", 8))
	}

	for i := range m.Routes {
		r := &m.Routes[i]
		line := fmt.Sprintf("%-*s  %-*s  %-*s  %s",
			maxKindLen, r.Kind,
			maxMountLen, truncate(r.MountPath, maxMountLen),
			maxSourceLen, truncate(r.SourcePath, maxSourceLen),
			formatPipeline(r),
		)
		_, _ = fmt.Fprintln(w, strings.TrimRight(line, " "))
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d route(s) from %s\n", len(m.Routes), m.Root)
	}

	return nil
}

// FormatHistory prints stored snapshots, newest first.
func (f *HumanFormatter) FormatHistory(w io.Writer, snapshots []rjs2.SnapshotSummary) error {
	if len(snapshots) == 0 {
		_, _ = fmt.Fprintln(w, "No snapshots stored")
		return nil
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "%-36s  %-19s  %6s  %s\n", "ID", "LOADED", "ROUTES", "ROOT")
		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", 36), strings.Repeat("-", 19), strings.Repeat("-", 6), strings.Repeat("-", 4))
	}

	for i := range snapshots {
		s := &snapshots[i]
		_, _ = fmt.Fprintf(w, "%-36s  %-19s  %6d  %s\n",
			s.ID, s.LoadedAt.Format("2006-01-02 15:04:05"), s.RouteCount, s.Root)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatRoutes writes the manifest as JSON.
func (f *JSONFormatter) FormatRoutes(w io.Writer, m rjs2.Manifest) error {
	if m.Routes == nil {
		m.Routes = []rjs2.Route{}
	}
	return writeJSON(w, m)
}

// FormatHistory writes the snapshot summaries as a JSON array.
func (f *JSONFormatter) FormatHistory(w io.Writer, snapshots []rjs2.SnapshotSummary) error {
	if snapshots == nil {
		snapshots = []rjs2.SnapshotSummary{}
	}
	return writeJSON(w, snapshots)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPipeline(r *rjs2.Route) string {
	var parts []string
	if len(r.Pre) > 0 {
		parts = append(parts, "pre: "+strings.Join(r.Pre, ","))
	}
	if len(r.Req) > 0 {
		parts = append(parts, "req: "+strings.Join(r.Req, ","))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
