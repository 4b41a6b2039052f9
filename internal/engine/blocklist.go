package engine

import "strings"

// BlockedPatterns collects the plain network URL patterns from raw filter
// rule text. Comment, header, cosmetic, exception and option-qualified lines
// are passed over — rule interpretation belongs to the filtering engine, not
// this layer. Anchor markers ("||", "^", "|") are rewritten to the wildcard
// form Network.setBlockedURLs understands.
func BlockedPatterns(ruleText string) []string {
	var out []string
	for _, line := range strings.Split(ruleText, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "!") || strings.HasPrefix(line, "[") {
			continue
		}
		// Exception rules cannot be expressed as blocked URL patterns.
		if strings.HasPrefix(line, "@@") {
			continue
		}
		// Cosmetic / scriptlet rules.
		if strings.Contains(line, "##") || strings.Contains(line, "#@#") ||
			strings.Contains(line, "#?#") || strings.Contains(line, "#$#") ||
			strings.Contains(line, "#%#") {
			continue
		}
		// Option-qualified rules need the real engine.
		if strings.Contains(line, "$") {
			continue
		}

		if p := toURLPattern(line); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toURLPattern(rule string) string {
	if strings.HasPrefix(rule, "||") {
		rule = "*" + rule[2:]
	}
	rule = strings.TrimPrefix(rule, "|")
	rule = strings.TrimSuffix(rule, "|")
	rule = strings.ReplaceAll(rule, "^", "*")
	if strings.Trim(rule, "*") == "" {
		return ""
	}
	if !strings.HasPrefix(rule, "*") && !strings.HasPrefix(rule, "http") {
		rule = "*" + rule
	}
	if !strings.HasSuffix(rule, "*") {
		rule += "*"
	}
	return rule
}
