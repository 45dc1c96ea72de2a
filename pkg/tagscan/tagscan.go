// Package tagscan finds external script and stylesheet references in an HTML
// fragment and renders their SRI replacements.
//
// Matching is regular-expression based and only understands the narrow,
// developer-authored shapes below. It is not an HTML parser:
//
//	<script src="..."></script>
//	<link rel="stylesheet" href="...">
//	<link href="..." rel="stylesheet">
//
// Attributes must be double-quoted and appear in exactly these positions.
// Tags that do not match are left alone.
package tagscan

import (
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/kamal-hamza/sri-cli/internal/core/domain"
)

var (
	// <script src="URL"></script>
	scriptPattern = regexp.MustCompile(`(?i)<script\s+src="([^"]+)"\s*>\s*</script\s*>`)

	// <link rel="stylesheet" href="URL"> or <link href="URL" rel="stylesheet">
	linkPattern = regexp.MustCompile(`(?i)<link\s+(?:rel="stylesheet"\s+href="([^"]+)"|href="([^"]+)"\s+rel="stylesheet")\s*/?>`)
)

// Extract returns every matching tag in document order
func Extract(input string) []domain.AssetRef {
	var refs []domain.AssetRef

	for _, m := range scriptPattern.FindAllStringSubmatchIndex(input, -1) {
		refs = append(refs, domain.AssetRef{
			URL:   input[m[2]:m[3]],
			Kind:  domain.KindScript,
			Tag:   input[m[0]:m[1]],
			Start: m[0],
			End:   m[1],
		})
	}

	for _, m := range linkPattern.FindAllStringSubmatchIndex(input, -1) {
		// Whichever alternative matched carries the href
		urlStart, urlEnd := m[2], m[3]
		if urlStart < 0 {
			urlStart, urlEnd = m[4], m[5]
		}
		refs = append(refs, domain.AssetRef{
			URL:   input[urlStart:urlEnd],
			Kind:  domain.KindStylesheet,
			Tag:   input[m[0]:m[1]],
			Start: m[0],
			End:   m[1],
		})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Start < refs[j].Start
	})

	return refs
}

// RenderTag builds the replacement tag for an asset kind
func RenderTag(kind domain.AssetKind, webPath, digest string) string {
	webPath = html.EscapeString(webPath)
	digest = html.EscapeString(digest)

	if kind == domain.KindStylesheet {
		return `<link rel="stylesheet" href="` + webPath + `" integrity="` + digest + `" crossorigin="` + domain.CrossOrigin + `">`
	}
	return `<script src="` + webPath + `" integrity="` + digest + `" crossorigin="` + domain.CrossOrigin + `"></script>`
}

// Rewrite replaces each ref's tag with replacements[i]. An empty replacement
// keeps the original tag text. refs must come from Extract on the same input.
func Rewrite(input string, refs []domain.AssetRef, replacements []string) string {
	var b strings.Builder
	b.Grow(len(input))

	last := 0
	for i, ref := range refs {
		if ref.Start < last || ref.End > len(input) {
			continue
		}
		b.WriteString(input[last:ref.Start])
		if i < len(replacements) && replacements[i] != "" {
			b.WriteString(replacements[i])
		} else {
			b.WriteString(input[ref.Start:ref.End])
		}
		last = ref.End
	}
	b.WriteString(input[last:])

	return b.String()
}
