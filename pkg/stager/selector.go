package stager

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// AllFiles is the selector path matching every file diff.
const AllFiles = "*"

var hunkListPattern = regexp.MustCompile(`^[0-9,\-]+$`)

// Selector chooses hunks of one file by 1-based position. Nil Hunks selects
// every hunk of the file.
type Selector struct {
	Path  string
	Hunks []int
}

func (s Selector) String() string {
	if s.Hunks == nil {
		return s.Path
	}

	nums := make([]string, len(s.Hunks))
	for i, h := range s.Hunks {
		nums[i] = strconv.Itoa(h)
	}

	return s.Path + ":" + strings.Join(nums, ",")
}

// ParseSelectors parses specs of the form "path", "path:1,3", "path:2-4" or
// "*". A trailing ":<list>" is only treated as a hunk list when it consists
// of digits, commas and dashes, so paths containing colons still work.
func ParseSelectors(specs []string) ([]Selector, error) {
	out := make([]Selector, 0, len(specs))

	for _, spec := range specs {
		sel, err := parseSelector(spec)
		if err != nil {
			return nil, err
		}

		out = append(out, sel)
	}

	return out, nil
}

func parseSelector(spec string) (Selector, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Selector{}, fmt.Errorf("%w: empty", ErrInvalidSelector)
	}

	i := strings.LastIndexByte(spec, ':')
	if i <= 0 || !hunkListPattern.MatchString(spec[i+1:]) {
		return Selector{Path: spec}, nil
	}

	hunks, err := parseHunkList(spec[i+1:])
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %q: %w", ErrInvalidSelector, spec, err)
	}

	return Selector{Path: spec[:i], Hunks: hunks}, nil
}

func parseHunkList(list string) ([]int, error) {
	var hunks []int

	for part := range strings.SplitSeq(list, ",") {
		lo, hi, isRange := strings.Cut(part, "-")

		first, err := parseHunkNumber(lo)
		if err != nil {
			return nil, err
		}

		last := first
		if isRange {
			last, err = parseHunkNumber(hi)
			if err != nil {
				return nil, err
			}

			if last < first {
				return nil, fmt.Errorf("descending range %s", part)
			}
		}

		for n := first; n <= last; n++ {
			hunks = append(hunks, n)
		}
	}

	slices.Sort(hunks)

	return slices.Compact(hunks), nil
}

func parseHunkNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("hunk number %q must be a positive integer", s)
	}

	return n, nil
}

// Apply returns d with the chunks matched by selectors included and every
// other chunk excluded. A selector matches a file diff by its display path
// or its source path.
func Apply(d unidiff.Diff, selectors []Selector) (unidiff.Diff, error) {
	out := d.UpdateAll(false)

	for _, sel := range selectors {
		if sel.Path == AllFiles {
			out = out.UpdateAll(true)

			continue
		}

		var err error

		out, err = applyOne(out, sel)
		if err != nil {
			return unidiff.Diff{}, err
		}
	}

	return out, nil
}

func applyOne(d unidiff.Diff, sel Selector) (unidiff.Diff, error) {
	matched := false

	for fi, f := range d.Files() {
		if f.FilePathDisplay() != sel.Path && f.OldPath() != sel.Path {
			continue
		}

		matched = true

		var err error

		if sel.Hunks == nil {
			d, err = d.UpdateFileStage(fi, true)
			if err != nil {
				return unidiff.Diff{}, err
			}

			continue
		}

		for _, h := range sel.Hunks {
			if h > f.ChunkCount() {
				return unidiff.Diff{}, fmt.Errorf("%w: %s: hunk %d out of range (%d hunks)",
					ErrInvalidSelector, sel.Path, h, f.ChunkCount())
			}

			d, err = d.UpdateChunkStage(unidiff.ChunkID{File: fi, Chunk: h - 1}, true)
			if err != nil {
				return unidiff.Diff{}, err
			}
		}
	}

	if !matched {
		return unidiff.Diff{}, fmt.Errorf("%w: %s matches no file in the diff", ErrInvalidSelector, sel.Path)
	}

	return d, nil
}
