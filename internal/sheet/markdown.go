package sheet

import "strings"

// UnknownName names a markdown sheet without a "# Name" heading.
const UnknownName = "Unknown"

// MarkdownName returns the sheet name from a first line of the form "# Name",
// or UnknownName.
func MarkdownName(text string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(text, "\ufeff"), "\n")
	first = strings.TrimRight(first, "\r")
	name, ok := strings.CutPrefix(first, "# ")
	if !ok {
		return UnknownName
	}
	if name = strings.TrimSpace(name); name == "" {
		return UnknownName
	}
	return name
}
