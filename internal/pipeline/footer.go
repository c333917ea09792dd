package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FooterMarker identifies an erk footer inside a PR body. Idempotence checks
// use this substring rather than re-parsing the whole block, which keeps
// compatibility with bodies written by earlier versions.
const FooterMarker = "erk pr checkout"

var (
	closesPattern = regexp.MustCompile(`(?m)^Closes #(\d+)\s*$`)
	plansPattern  = regexp.MustCompile(`(?m)^Plans: (\S+)\s*$`)
)

// BuildFooter renders the delimited footer block appended to PR bodies. The
// issue reference and plans-repository pointer are optional.
func BuildFooter(prNumber int, issueNumber *int, plansRepo string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("*Check out this PR locally with: `erk pr checkout %d`*\n", prNumber))
	if issueNumber != nil {
		sb.WriteString(fmt.Sprintf("Closes #%d\n", *issueNumber))
	}
	if plansRepo != "" {
		sb.WriteString(fmt.Sprintf("Plans: %s\n", plansRepo))
	}
	return sb.String()
}

// HasFooter reports whether body already carries an erk footer.
func HasFooter(body string) bool {
	return strings.Contains(body, FooterMarker)
}

// AppendFooter adds footer to body unless one is already present.
func AppendFooter(body, footer string) string {
	if HasFooter(body) {
		return body
	}
	if body == "" {
		return footer
	}
	return strings.TrimRight(body, "\n") + "\n\n" + footer
}

// ExtractClosingReference recovers the issue number and plans-repository
// pointer from a body containing a footer. Both are absent when the body has
// no footer or the footer carries no reference.
func ExtractClosingReference(body string) (*int, string) {
	if !HasFooter(body) {
		return nil, ""
	}

	var issue *int
	if m := closesPattern.FindStringSubmatch(body); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			issue = &n
		}
	}

	plansRepo := ""
	if m := plansPattern.FindStringSubmatch(body); m != nil {
		plansRepo = m[1]
	}

	return issue, plansRepo
}
