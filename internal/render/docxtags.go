// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Word splits template tags across runs when the author edits them. These
// patterns put them back together before the template engine sees the XML.
var (
	splitOpen    = regexp.MustCompile(`\{(?:<[^>]*>)+([{%#])`)
	splitClose   = regexp.MustCompile(`([%}#])(?:<[^>]*>)+\}`)
	tagBody      = regexp.MustCompile(`(?s)\{[{%#].*?[}%#]\}`)
	xmlElement   = regexp.MustCompile(`<[^>]*>`)
	elementTag   = regexp.MustCompile(`(?s)\{%(p|tr|tc|r)\s+(.*?)\s*%\}`)
	richPrint    = regexp.MustCompile(`\{\{-?r\s`)
)

var tagEntities = strings.NewReplacer(
	"&quot;", `"`,
	"&apos;", "'",
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// prepareDocx turns a WordprocessingML part into a template the engine can
// execute: split tags are joined, markup inside tags is removed, element
// tags replace their element and rich prints become plain prints.
func prepareDocx(src string) string {
	src = splitOpen.ReplaceAllString(src, "{$1")
	src = splitClose.ReplaceAllString(src, "$1}")
	src = tagBody.ReplaceAllStringFunc(src, func(tag string) string {
		return tagEntities.Replace(xmlElement.ReplaceAllString(tag, ""))
	})
	src = expandElementTags(src)
	return richPrint.ReplaceAllStringFunc(src, func(m string) string {
		return strings.Replace(m, "r", "", 1)
	})
}

// tagElements maps the prefix of an element tag ({%p, {%tr, {%tc, {%r) to
// the WordprocessingML element it stands for.
var tagElements = map[string]string{
	"p":  "w:p",
	"tr": "w:tr",
	"tc": "w:tc",
	"r":  "w:r",
}

// expandElementTags replaces each paragraph, table row, table cell or run
// holding an element tag with the bare statement.
func expandElementTags(src string) string {
	for {
		loc := elementTag.FindStringSubmatchIndex(src)
		if loc == nil {
			return src
		}
		elem := tagElements[src[loc[2]:loc[3]]]
		stmt := "{% " + src[loc[4]:loc[5]] + " %}"
		start := elementStart(src, loc[0], elem)
		closing := "</" + elem + ">"
		end := strings.Index(src[loc[1]:], closing)
		if start < 0 || end < 0 {
			src = src[:loc[0]] + stmt + src[loc[1]:]
			continue
		}
		end = loc[1] + end + len(closing)
		src = src[:start] + stmt + src[end:]
	}
}

// elementStart returns the offset of the last opening of elem before pos.
// "<w:p>" and "<w:p ...>" match, "<w:pPr>" does not.
func elementStart(src string, pos int, elem string) int {
	return max(strings.LastIndex(src[:pos], "<"+elem+">"), strings.LastIndex(src[:pos], "<"+elem+" "))
}

var (
	printStmt = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}`)
	blockStmt = regexp.MustCompile(`(?s)\{%-?\s*(.*?)\s*-?%\}`)
	forHead   = regexp.MustCompile(`(?s)^for\s+([A-Za-z_]\w*)(?:\s*,\s*([A-Za-z_]\w*))?\s+in\s+(.*)$`)
	setHead   = regexp.MustCompile(`(?s)^set\s+([A-Za-z_]\w*)\s*=\s*(.*)$`)
	exprToken = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|[.|]\s*[A-Za-z_]\w*|[A-Za-z_]\w*`)
)

var exprKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"true": true, "false": true, "null": true, "none": true,
	"defined": true, "empty": true, "loop": true, "_context": true,
}

// unknownNames returns the root variables referenced by src that are neither
// in known nor bound by a for or set statement, sorted.
func unknownNames(src string, known map[string]bool) []string {
	bound := make(map[string]bool)
	var exprs []string
	for _, m := range blockStmt.FindAllStringSubmatch(src, -1) {
		stmt := m[1]
		if f := forHead.FindStringSubmatch(stmt); f != nil {
			bound[f[1]] = true
			if f[2] != "" {
				bound[f[2]] = true
			}
			exprs = append(exprs, f[3])
			continue
		}
		if s := setHead.FindStringSubmatch(stmt); s != nil {
			bound[s[1]] = true
			exprs = append(exprs, s[2])
			continue
		}
		word, rest, _ := strings.Cut(stmt, " ")
		if word == "if" || word == "elseif" {
			exprs = append(exprs, rest)
		}
	}
	for _, m := range printStmt.FindAllStringSubmatch(src, -1) {
		exprs = append(exprs, m[1])
	}

	seen := make(map[string]bool)
	for _, expr := range exprs {
		for _, name := range rootNames(expr) {
			if known[name] || bound[name] || seen[name] {
				continue
			}
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rootNames lists the bare identifiers of a template expression, skipping
// string literals, attribute and filter names, function calls and keywords.
func rootNames(expr string) []string {
	var names []string
	for _, loc := range exprToken.FindAllStringIndex(expr, -1) {
		tok := expr[loc[0]:loc[1]]
		switch tok[0] {
		case '"', '\'', '.', '|':
			continue
		}
		if exprKeywords[strings.ToLower(tok)] {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(expr[loc[1]:], " \t"), "(") {
			continue
		}
		names = append(names, tok)
	}
	return names
}

func unknownNamesError(names []string) error {
	return fmt.Errorf("unknown placeholder(s) %s", strings.Join(names, ", "))
}
