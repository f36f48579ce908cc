package cleanup

import (
	"net/url"
	"regexp"
	"strings"
)

// LinkConfig controls link repair.
type LinkConfig struct {
	FixBrokenURLs    bool
	NormalizeURLCase bool
}

// DefaultLinkConfig enables all link repairs.
func DefaultLinkConfig() LinkConfig {
	return LinkConfig{
		FixBrokenURLs:    true,
		NormalizeURLCase: true,
	}
}

var (
	openLink     = regexp.MustCompile(`\[[^\]]+\]\([^)]+$`)
	urlTail      = regexp.MustCompile(`^[a-zA-Z0-9/\-_.?=&%#]+\)`)
	linkTarget   = regexp.MustCompile(`\]\((https?://[^)]+)\)`)
	spacedLabel  = regexp.MustCompile(`\[\s+([^\]]+?)\s+\]`)
	doubleLabel  = regexp.MustCompile(`\[\[([^\]]+)\]\](\([^)]+\))`)
	missingClose = regexp.MustCompile(`\[([^\]]+)\(https?://([^)]+)\)`)
)

// LinkFixer repairs markdown links mangled by PDF extraction: URLs split
// across lines, uppercase hostnames, and broken bracket syntax.
type LinkFixer struct {
	cfg LinkConfig
}

// NewLinkFixer creates a LinkFixer.
func NewLinkFixer(cfg LinkConfig) *LinkFixer {
	return &LinkFixer{cfg: cfg}
}

// Fix runs all enabled link repairs.
func (f *LinkFixer) Fix(markdown string) string {
	result := markdown
	if f.cfg.FixBrokenURLs {
		result = joinBrokenURLs(result)
	}
	if f.cfg.NormalizeURLCase {
		result = lowercaseHosts(result)
	}
	return fixLinkSyntax(result)
}

// joinBrokenURLs merges a link whose URL continues on the following line.
func joinBrokenURLs(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var out []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if i+1 < len(lines) && openLink.MatchString(line) {
			next := strings.TrimSpace(lines[i+1])
			if urlTail.MatchString(next) {
				line += next
				i++
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// lowercaseHosts rewrites link targets so hostnames are lowercase; paths
// and queries are left alone.
func lowercaseHosts(markdown string) string {
	return linkTarget.ReplaceAllStringFunc(markdown, func(m string) string {
		raw := strings.TrimSuffix(strings.TrimPrefix(m, "]("), ")")
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return m
		}
		lower := strings.ToLower(u.Host)
		if lower == u.Host {
			return m
		}
		return "](" + strings.Replace(raw, u.Host, lower, 1) + ")"
	})
}

func fixLinkSyntax(markdown string) string {
	result := spacedLabel.ReplaceAllString(markdown, "[$1]")
	result = doubleLabel.ReplaceAllString(result, "[$1]$2")
	return missingClose.ReplaceAllString(result, "[$1](https://$2)")
}
