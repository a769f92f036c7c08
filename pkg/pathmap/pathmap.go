// Package pathmap translates web-facing media paths into local Windows paths.
package pathmap

import "strings"

// FallbackMarker locates the real relative path when the configured prefix
// does not literally match. It is the folder label the NAS web UI puts in
// front of every shared folder.
const FallbackMarker = "/NAS 的文件/"

// Rule names the step of the mapping that decided the relative path.
type Rule string

const (
	RuleEmpty       Rule = "empty"        // web path was blank
	RuleNoPrefix    Rule = "no-prefix"    // no prefix configured
	RulePrefix      Rule = "prefix"       // prefix followed by a separator
	RulePrefixExact Rule = "prefix-exact" // prefix without a separator
	RuleMarker      Rule = "marker"       // stripped through FallbackMarker
	RuleNone        Rule = "none"         // nothing matched, path kept as is
)

// Result is the outcome of a mapping.
type Result struct {
	Path string
	Rule Rule
}

// MapPath converts webPath into a path under localRoot. It never fails:
// input that matches no rule is joined onto localRoot unchanged.
func MapPath(webPath, webPrefix, localRoot string) string {
	return Map(webPath, webPrefix, localRoot).Path
}

// Map is MapPath that also reports which rule produced the path.
func Map(webPath, webPrefix, localRoot string) Result {
	webPath = strings.TrimSpace(webPath)
	if webPath == "" {
		return Result{Rule: RuleEmpty}
	}

	webPrefix = normalize(webPrefix)
	localRoot = normalize(localRoot)

	wp := strings.ReplaceAll(webPath, `\`, "/")

	rule := RuleNoPrefix
	if webPrefix != "" {
		switch {
		case strings.HasPrefix(wp, webPrefix+"/"):
			wp = wp[len(webPrefix)+1:]
			rule = RulePrefix
		case strings.HasPrefix(wp, webPrefix):
			wp = wp[len(webPrefix):]
			rule = RulePrefixExact
		default:
			if idx := strings.Index(wp, FallbackMarker); idx >= 0 {
				wp = wp[idx+len(FallbackMarker):]
				rule = RuleMarker
			} else {
				rule = RuleNone
			}
		}
	}

	rel := strings.ReplaceAll(strings.TrimLeft(wp, "/"), "/", `\`)
	if rel == "" {
		return Result{Path: localRoot, Rule: rule}
	}
	return Result{Path: localRoot + `\` + rel, Rule: rule}
}

// normalize trims whitespace and any trailing path separators.
func normalize(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), `/\`)
}
