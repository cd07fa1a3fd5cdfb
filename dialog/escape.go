package dialog

import "strings"

// metacharacters are backslash-escaped in every message before a platform
// branch sees it.
const metacharacters = ".?*+^$[]\\(){}<>|`-"

// escapeMetacharacters prefixes each metacharacter with a single backslash.
func escapeMetacharacters(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(metacharacters, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// zenity renders its --text as Pango markup.
var markupStripper = strings.NewReplacer("<", "", ">", "")

func stripMarkup(s string) string {
	return markupStripper.Replace(s)
}

// AppleScript and VBScript both delimit string literals with double quotes.
var literalQuoter = strings.NewReplacer(`"`, "'")

func quoteLiteral(s string) string {
	return literalQuoter.Replace(s)
}

// Titles skip metacharacter escaping, so their backslashes are doubled
// before they go inside an AppleScript literal.
var appleScriptTitleQuoter = strings.NewReplacer(`\`, `\\`, `"`, "'")

func quoteAppleScriptTitle(s string) string {
	return appleScriptTitleQuoter.Replace(s)
}
