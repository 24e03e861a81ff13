package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BRAVO68WEB/hellodock/internal/diag"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Report formats accepted by PrintReport.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const rule = "============================================================"

// PrintSuccess writes msg in green.
func PrintSuccess(w io.Writer, msg string) {
	color.New(color.FgGreen).Fprintln(w, msg)
}

// PrintInfo writes msg as a bold cyan heading.
func PrintInfo(w io.Writer, msg string) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, msg)
}

// PrintReport writes r to w as a table (default), json or yaml.
func PrintReport(w io.Writer, r *diag.Report, format string) error {
	if w == nil {
		w = os.Stdout
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "", FormatTable:
		printReportText(w, r)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

func printReportText(w io.Writer, r *diag.Report) {
	bad := color.New(color.FgRed)

	fmt.Fprintln(w, rule)
	PrintInfo(w, "CI JOB EXECUTION")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Run ID: %s\n", r.RunID)

	PrintInfo(w, "\nEXECUTION TIME:")
	fmt.Fprintf(w, "   Date: %s\n", r.Clock.Date)
	fmt.Fprintf(w, "   Time: %s\n", r.Clock.Time)
	fmt.Fprintf(w, "   Timezone: %s\n", r.Clock.Zone)

	PrintInfo(w, "\nSYSTEM INFORMATION:")
	fmt.Fprintf(w, "   Platform: %s %s (%s)\n", r.System.Platform, r.System.Release, r.System.Arch)
	fmt.Fprintf(w, "   Go Version: %s\n", r.System.GoVersion)
	fmt.Fprintf(w, "   Current Directory: %s\n", r.System.WorkDir)
	fmt.Fprintf(w, "   User: %s\n", r.System.User)
	fmt.Fprintf(w, "   Hostname: %s\n", r.System.Hostname)

	PrintInfo(w, "\nENVIRONMENT VARIABLES:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Scope", "Name", "Value"})
	table.SetAutoWrapText(false)
	for _, v := range r.JobVars {
		table.Append([]string{"job", v.Name, v.Value})
	}
	for _, v := range r.SystemVars {
		table.Append([]string{"system", v.Name, v.Value})
	}
	table.Render()

	PrintInfo(w, "\nDEPENDENCY CHECK:")
	for _, t := range r.Tools {
		if t.Found {
			PrintSuccess(w, fmt.Sprintf("   ✅ %s: %s", t.Name, t.Path))
		} else {
			bad.Fprintf(w, "   ❌ %s: Not found\n", t.Name)
		}
	}

	PrintInfo(w, "\nSAMPLE TASKS:")
	PrintSuccess(w, "   ✅ Created file: "+r.Tasks.ScratchFile)
	PrintSuccess(w, fmt.Sprintf("   ✅ Sum of 1 to 100: %d", r.Tasks.Sum))
	PrintSuccess(w, fmt.Sprintf("   ✅ Found %d files/directories", r.Tasks.EntryCount))
	for _, name := range r.Tasks.Entries {
		fmt.Fprintf(w, "      - %s\n", name)
	}
	if more := r.Tasks.EntryCount - len(r.Tasks.Entries); more > 0 {
		fmt.Fprintf(w, "      ... and %d more\n", more)
	}

	fmt.Fprintln(w, "\n"+rule)
	PrintSuccess(w, "✅ JOB COMPLETED SUCCESSFULLY!")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Job finished at: %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
}
