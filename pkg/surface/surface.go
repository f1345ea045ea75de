// Package surface reports the attack surface visible in the landing page:
// forms, their input fields and script tags. Its output is advisory and
// never contains vulnerability findings.
package surface

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/webprobe/webprobe/pkg/defaults"
)

// Risk is the heuristic injection risk of a form field.
type Risk string

const (
	RiskHigh   Risk = "high"
	RiskMedium Risk = "medium"
	RiskLow    Risk = "low"
)

// Field is a named input or textarea.
type Field struct {
	Name string
	Type string
	Risk Risk
}

// Form is one <form> element and the named fields inside it.
type Form struct {
	Method string
	Action string
	Fields []Field
}

// Report is the result of analysing one HTML body.
type Report struct {
	Forms   []Form
	Scripts int
}

var (
	riskyNameParts = []string{"user", "name", "id", "query", "search"}
	textLikeTypes  = map[string]bool{"text": true, "search": true, "email": true, "password": true, "textarea": true}
)

// ClassifyField rates a field: high when its name suggests it reaches a
// query (user, name, id, query, search), medium for free-text types, low
// otherwise.
func ClassifyField(name, typ string) Risk {
	lower := strings.ToLower(name)
	for _, part := range riskyNameParts {
		if strings.Contains(lower, part) {
			return RiskHigh
		}
	}
	if textLikeTypes[strings.ToLower(typ)] {
		return RiskMedium
	}
	return RiskLow
}

// Analyze tokenizes body. Forms do not nest: a <form> start tag inside an
// open form is ignored and the first </form> closes it. Fields outside any
// form are not reported.
func Analyze(body string) Report {
	var (
		report  Report
		current *Form
	)
	z := html.NewTokenizer(strings.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if current != nil {
				report.Forms = append(report.Forms, *current)
			}
			return report
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.DataAtom {
			case atom.Script:
				report.Scripts++
			case atom.Form:
				if current == nil {
					current = &Form{
						Method: strings.ToUpper(attr(t, "method", "GET")),
						Action: attr(t, "action", ""),
					}
				}
			case atom.Input, atom.Textarea:
				if current == nil {
					continue
				}
				name := attr(t, "name", "")
				if name == "" {
					continue
				}
				typ := "textarea"
				if t.DataAtom == atom.Input {
					typ = strings.ToLower(attr(t, "type", "text"))
				}
				current.Fields = append(current.Fields, Field{Name: name, Type: typ, Risk: ClassifyField(name, typ)})
			}
		case html.EndTagToken:
			t := z.Token()
			if t.DataAtom == atom.Form && current != nil {
				report.Forms = append(report.Forms, *current)
				current = nil
			}
		}
	}
}

func attr(t html.Token, key, fallback string) string {
	for _, a := range t.Attr {
		if a.Key == key && strings.TrimSpace(a.Val) != "" {
			return strings.TrimSpace(a.Val)
		}
	}
	return fallback
}

// Lines renders a report as info lines: one per form, one per risky field
// (at most maxFields per form), the script count and a note when the
// Content-Type is not HTML.
func Lines(r Report, contentType string, maxFields int) []string {
	if maxFields <= 0 {
		maxFields = defaults.SurfaceMaxFields
	}
	var lines []string
	if len(r.Forms) == 0 {
		lines = append(lines, "No forms found in HTML")
	} else {
		lines = append(lines, fmt.Sprintf("Forms found: %d", len(r.Forms)))
	}
	for i, f := range r.Forms {
		action := f.Action
		if action == "" {
			action = "(self)"
		}
		lines = append(lines, fmt.Sprintf("Form %d: %s %s", i+1, f.Method, action))
		shown := 0
		for _, field := range f.Fields {
			if field.Risk == RiskLow {
				continue
			}
			if shown == maxFields {
				break
			}
			lines = append(lines, fmt.Sprintf("  - %s (%s, risk: %s)", field.Name, field.Type, field.Risk))
			shown++
		}
	}
	if r.Scripts > 0 {
		lines = append(lines, fmt.Sprintf("<script> tags found: %d", r.Scripts))
	}
	if !strings.Contains(strings.ToLower(contentType), defaults.ContentTypeHTML) {
		lines = append(lines, fmt.Sprintf("Non-standard Content-Type: %q", contentType))
	}
	return lines
}

// HighRiskFields counts fields rated high across all forms.
func (r Report) HighRiskFields() int {
	n := 0
	for _, f := range r.Forms {
		for _, field := range f.Fields {
			if field.Risk == RiskHigh {
				n++
			}
		}
	}
	return n
}
