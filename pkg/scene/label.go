package scene

import (
	"strings"

	"golang.org/x/net/html"
)

// blockTags start a new line in an HTML label.
var blockTags = map[string]bool{
	"br": true, "div": true, "p": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// LabelLines converts a cell value into display lines. HTML labels, as
// flagged by html=1 in the cell style, have their markup removed and
// entities decoded; block-level tags break lines.
func LabelLines(value string, isHTML bool) []string {
	if !isHTML {
		return splitLines(value)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(value))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return splitLines(b.String())
		case html.TextToken:
			b.WriteString(strings.ReplaceAll(string(z.Text()), "\n", " "))
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}

func splitLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
