package auth

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// The sign-in page embeds its per-transaction state as a single script
// assignment: `var SETTINGS = {...};`.
var settingsPattern = regexp.MustCompile(`var SETTINGS = (\{[\s\S]*?\});`)

// extractSettingsJSON returns the raw JSON payload of the SETTINGS assignment.
func extractSettingsJSON(page string) (string, bool) {
	m := settingsPattern.FindStringSubmatch(page)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// finalForm is the confirmation form that completes a sign-in: its action URL
// and the two hidden fields to POST back.
type finalForm struct {
	Action string
	State  string
	Code   string
}

// extractFinalForm locates the first <form> with an action attribute and the
// hidden inputs named state and code. All three parts are required; a page
// without them is not a confirmation page.
func extractFinalForm(page string) (*finalForm, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, false
	}

	var form finalForm
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				if form.Action == "" {
					form.Action = attr(n, "action")
				}
			case "input":
				switch attr(n, "name") {
				case "state":
					form.State = attr(n, "value")
				case "code":
					form.Code = attr(n, "value")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if form.Action == "" || form.State == "" || form.Code == "" {
		return nil, false
	}
	return &form, true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
