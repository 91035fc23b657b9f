package browser

import "strings"

// WithBaseURL wraps page so that root-relative navigation targets (those
// starting with "/") are prefixed by base. Absolute targets are passed through.
// The wrapped page is not modified.
func WithBaseURL(page Page, base string) Page {
	return &baseURLPage{Page: page, base: strings.TrimSuffix(base, "/")}
}

type baseURLPage struct {
	Page
	base string
}

func (p *baseURLPage) Goto(url string) error {
	return p.Page.Goto(ResolveURL(p.base, url))
}

// ResolveURL applies the base URL rewrite rule to target.
func ResolveURL(base, target string) string {
	if !strings.HasPrefix(target, "/") {
		return target
	}
	return strings.TrimSuffix(base, "/") + target
}
