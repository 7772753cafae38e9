package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func versionOrUnknown(version string, known bool) string {
	if !known || version == "" {
		return mutedStyle.Render("unknown")
	}
	return version
}

func renderLocalResources(resources []types.LocalResource) string {
	rows := make([][]string, 0, len(resources))
	for _, resource := range resources {
		rows = append(rows, []string{
			string(resource.Namespace),
			resource.Name,
			versionOrUnknown(resource.Version, resource.VersionKnown),
			shared.HumanBytes(resource.ByteCount),
		})
	}
	return renderTable([]string{"NAMESPACE", "NAME", "VERSION", "SIZE"}, rows)
}

func renderClosure(closure types.Closure) string {
	entries := closure.Entries()
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			string(entry.Namespace),
			entry.Name,
			entry.Version,
			directLabel(entry.IsDirectDependency),
			shared.HumanBytes(entry.ByteCount),
		})
	}
	return renderTable([]string{"NAMESPACE", "NAME", "VERSION", "DEPENDENCY", "SIZE"}, rows)
}

func directLabel(direct bool) string {
	if direct {
		return "direct"
	}
	return mutedStyle.Render("indirect")
}

func installedLabel(installed bool, version string) string {
	if !installed {
		return mutedStyle.Render("-")
	}
	if version == "" {
		return successStyle.Render("installed")
	}
	return successStyle.Render(version)
}

func pruneLabel(action types.PruneAction) string {
	if action == types.PruneActionRemove {
		return warningStyle.Render(string(action))
	}
	return successStyle.Render(string(action))
}

// consoleReporter prints closures as tables and download progress as a
// percentage line rewritten in place.
type consoleReporter struct {
	out     io.Writer
	mu      sync.Mutex
	percent map[string]int
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	return &consoleReporter{out: out, percent: map[string]int{}}
}

func (r *consoleReporter) Closure(id types.ResourceID, closure types.Closure) {
	fmt.Fprintln(r.out, titleStyle.Render("Dependencies of "+id.String()))
	fmt.Fprintln(r.out, renderClosure(closure))
	fmt.Fprintf(r.out, "%d dependencies, %s total\n", closure.Len(), shared.HumanBytes(closure.TotalBytes()))
}

func (r *consoleReporter) Progress(id types.ResourceID, done int64, total int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := id.String()
	if total <= 0 {
		fmt.Fprintf(r.out, "\rDownloading %s: %s", key, shared.HumanBytes(done))
		return
	}
	percent := int(done * 100 / total)
	if percent > 100 {
		percent = 100
	}
	if last, ok := r.percent[key]; ok && last == percent {
		return
	}
	r.percent[key] = percent
	fmt.Fprintf(r.out, "\rDownloading %s: %d%%", key, percent)
	if percent == 100 {
		fmt.Fprintln(r.out)
	}
}
