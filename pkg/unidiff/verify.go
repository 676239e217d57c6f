package unidiff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// excerptLength bounds the text quoted in a round-trip mismatch report.
const excerptLength = 40

// VerifyRoundTrip checks that the parsed structure of d reproduces its text:
// the preamble and body join to Raw, the file raws join to Body, and every
// file diff reconstructs from its sections. The error wraps ErrRoundTrip and
// describes the first divergence.
func VerifyRoundTrip(d Diff) error {
	if d.preamble+d.Body() != d.raw {
		return fmt.Errorf("%w: preamble and body: %s", ErrRoundTrip, describeMismatch(d.raw, d.preamble+d.Body()))
	}

	raws := make([]string, len(d.files))
	for i, f := range d.files {
		raws[i] = f.raw
	}

	if joined := strings.Join(raws, "\n"); joined != d.Body() {
		return fmt.Errorf("%w: file blocks: %s", ErrRoundTrip, describeMismatch(d.Body(), joined))
	}

	for i, f := range d.files {
		if rebuilt := f.Reconstruct(); rebuilt != f.raw {
			return fmt.Errorf("%w: file %d (%s): %s",
				ErrRoundTrip, i, f.FilePathDisplay(), describeMismatch(f.raw, rebuilt))
		}
	}

	return nil
}

// describeMismatch reports the first edit turning want into got.
func describeMismatch(want, got string) string {
	dmp := diffmatchpatch.New()
	offset := 0

	for _, edit := range dmp.DiffMain(want, got, false) {
		switch edit.Type {
		case diffmatchpatch.DiffEqual:
			offset += len(edit.Text)
		case diffmatchpatch.DiffDelete:
			return fmt.Sprintf("offset %d: missing %q", offset, excerpt(edit.Text))
		case diffmatchpatch.DiffInsert:
			return fmt.Sprintf("offset %d: unexpected %q", offset, excerpt(edit.Text))
		}
	}

	return "texts are equal"
}

func excerpt(s string) string {
	if len(s) <= excerptLength {
		return s
	}

	return s[:excerptLength] + "..."
}

// CrossCheck parses every plain text file diff of d with an independent
// parser and compares hunk counts. Combined and binary blocks are skipped.
// A disagreement means patch-mode prompts may not line up with chunks; the
// error wraps ErrHunkMismatch.
func CrossCheck(d Diff) error {
	for i, f := range d.files {
		if f.IsCombined() || f.IsBinary() {
			continue
		}

		files, _, err := gitdiff.Parse(strings.NewReader(strings.TrimSuffix(f.raw, "\n") + "\n"))
		if err != nil {
			return fmt.Errorf("cross-check file %d (%s): %w", i, f.FilePathDisplay(), err)
		}

		fragments := 0
		for _, parsed := range files {
			fragments += len(parsed.TextFragments)
		}

		if fragments != len(f.chunks) {
			return fmt.Errorf("%w: file %d (%s): %d chunks, independent parser found %d",
				ErrHunkMismatch, i, f.FilePathDisplay(), len(f.chunks), fragments)
		}
	}

	return nil
}
