package internal

import (
	"regexp"
	"strings"
)

// Pattern is a compiled event-type glob. The only wildcard is '*', which
// matches any run of characters including the empty string; everything else
// is literal text. Matching is anchored to the whole input.
type Pattern struct {
	glob string
	re   *regexp.Regexp
}

// CompilePattern turns a glob into a Pattern. Regex metacharacters in the
// glob are escaped so untrusted configuration cannot inject expressions.
func CompilePattern(glob string) *Pattern {
	parts := strings.Split(glob, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")
	return &Pattern{glob: glob, re: re}
}

func (p *Pattern) Matches(eventType string) bool {
	return p.re.MatchString(eventType)
}

func (p *Pattern) String() string {
	return p.glob
}

// Filter decides whether an event type is forwarded. A non-empty allow list
// is a whitelist; deny patterns are applied afterwards and always win. Empty
// lists mean no restriction on that side. A Filter is immutable after
// construction and safe for concurrent use.
type Filter struct {
	allow []*Pattern
	deny  []*Pattern
}

func NewFilter(allowGlobs, denyGlobs []string) *Filter {
	return &Filter{
		allow: compilePatterns(allowGlobs),
		deny:  compilePatterns(denyGlobs),
	}
}

func compilePatterns(globs []string) []*Pattern {
	patterns := make([]*Pattern, 0, len(globs))
	for _, glob := range globs {
		patterns = append(patterns, CompilePattern(glob))
	}
	return patterns
}

func (f *Filter) Allowed(eventType string) bool {
	if len(f.allow) > 0 {
		allowed := false
		for _, p := range f.allow {
			if p.Matches(eventType) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	for _, p := range f.deny {
		if p.Matches(eventType) {
			return false
		}
	}
	return true
}
