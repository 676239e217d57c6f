package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/src-d/enry/v2"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// Output formats for parse.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

// File statuses reported by parse.
const (
	statusConflict = "conflict"
	statusAdded    = "added"
	statusDeleted  = "deleted"
	statusRenamed  = "renamed"
	statusBinary   = "binary"
	statusMode     = "mode"
	statusModified = "modified"
)

type diffSummary struct {
	Source        string        `json:"source"                   yaml:"source"`
	Branch        string        `json:"branch,omitempty"         yaml:"branch,omitempty"`
	Bytes         int           `json:"bytes"                    yaml:"bytes"`
	Files         []fileSummary `json:"files"                    yaml:"files"`
	Hunks         int           `json:"hunks"                    yaml:"hunks"`
	Added         int           `json:"added"                    yaml:"added"`
	Removed       int           `json:"removed"                  yaml:"removed"`
	UnmergedPaths []string      `json:"unmerged_paths,omitempty" yaml:"unmerged_paths,omitempty"`
}

type fileSummary struct {
	Path     string        `json:"path"               yaml:"path"`
	OldPath  string        `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	Status   string        `json:"status"             yaml:"status"`
	Language string        `json:"language,omitempty" yaml:"language,omitempty"`
	Vendored bool          `json:"vendored,omitempty" yaml:"vendored,omitempty"`
	Added    int           `json:"added"              yaml:"added"`
	Removed  int           `json:"removed"            yaml:"removed"`
	Hunks    []hunkSummary `json:"hunks"              yaml:"hunks"`
}

type hunkSummary struct {
	Number  int    `json:"number"  yaml:"number"`
	Header  string `json:"header"  yaml:"header"`
	Added   int    `json:"added"   yaml:"added"`
	Removed int    `json:"removed" yaml:"removed"`
}

func newParseCommand(opts *globalOptions) *cobra.Command {
	var (
		in     inputOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Summarise the files and hunks of a diff",
		Long: `Parse a diff and list its files and hunks.

Without a file argument the work tree diff of the repository is read.

Examples:
  hunkstage parse
  hunkstage parse --cached --format yaml
  git diff HEAD~1 | hunkstage parse -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON && format != formatYAML {
				return fmt.Errorf("%w: %q (want table, json or yaml)", ErrUnknownFormat, format)
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				d, source, err := a.loadDiff(ctx, args, in, cmd.InOrStdin())
				if err != nil {
					return err
				}

				return writeSummary(cmd.OutOrStdout(), summarize(d, source), format)
			})
		},
	}

	addInputFlags(cmd, &in)
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")

	return cmd
}

func summarize(d unidiff.Diff, src diffSource) diffSummary {
	s := diffSummary{
		Source:        src.label,
		Branch:        src.branch,
		Bytes:         len(d.Raw()),
		Files:         make([]fileSummary, 0, d.FileCount()),
		UnmergedPaths: d.UnmergedPaths(),
	}

	for _, f := range d.Files() {
		fs := fileSummary{
			Path:     f.FilePathDisplay(),
			Status:   fileStatus(f),
			Language: enry.GetLanguage(filepath.Base(f.FilePathDisplay()), nil),
			Vendored: enry.IsVendor(f.FilePathDisplay()),
			Hunks:    make([]hunkSummary, 0, f.ChunkCount()),
		}

		if old := f.OldPath(); old != fs.Path {
			fs.OldPath = old
		}

		for i, c := range f.Chunks() {
			fs.Hunks = append(fs.Hunks, hunkSummary{
				Number: i + 1, Header: c.Header(), Added: c.Added(), Removed: c.Removed(),
			})
			fs.Added += c.Added()
			fs.Removed += c.Removed()
		}

		s.Hunks += len(fs.Hunks)
		s.Added += fs.Added
		s.Removed += fs.Removed
		s.Files = append(s.Files, fs)
	}

	return s
}

func fileStatus(f unidiff.FileDiff) string {
	switch {
	case f.IsCombined():
		return statusConflict
	case f.IsNew():
		return statusAdded
	case f.IsDeleted():
		return statusDeleted
	case f.IsRename():
		return statusRenamed
	case f.IsBinary():
		return statusBinary
	case f.HasModeChange() && f.ChunkCount() == 0:
		return statusMode
	default:
		return statusModified
	}
}

func writeSummary(w io.Writer, s diffSummary, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(s)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, renderTable(s))

		return err
	}
}

func renderTable(s diffSummary) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"#", "File", "Status", "Language", "Hunks", "+", "-"})

	for i, f := range s.Files {
		name := f.Path
		if f.OldPath != "" {
			name = f.OldPath + " => " + f.Path
		}

		tbl.AppendRow(table.Row{i + 1, name, f.Status, f.Language, len(f.Hunks), f.Added, f.Removed})
	}

	tbl.AppendFooter(table.Row{
		"", strconv.Itoa(len(s.Files)) + " files", "", humanize.Bytes(uint64(s.Bytes)), s.Hunks, s.Added, s.Removed,
	})

	if s.Branch != "" {
		tbl.SetCaption("%s on %s", s.Source, s.Branch)
	} else {
		tbl.SetCaption("%s", s.Source)
	}

	out := tbl.Render()

	if len(s.UnmergedPaths) > 0 {
		out += fmt.Sprintf("\nunmerged: %v", s.UnmergedPaths)
	}

	return out
}
