package plugin

import (
	"context"
	"fmt"
	"strings"
)

// PlainTextNotes is the reference generateNotes implementation: a
// no-frills concatenation of commit subjects under a version heading.
func PlainTextNotes(ctx context.Context, pctx *Context) (string, error) {
	if pctx.NextRelease == nil {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", pctx.NextRelease.Version.String())

	if len(pctx.Commits) == 0 {
		b.WriteString("\n(no commits)\n")
		return strings.TrimRight(b.String(), "\n"), nil
	}

	for i := len(pctx.Commits) - 1; i >= 0; i-- {
		subject := strings.SplitN(pctx.Commits[i].Message, "\n", 2)[0]
		fmt.Fprintf(&b, "* %s\n", strings.TrimSpace(subject))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
