package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// firstMatch folds rules in order and returns the first accepted value
// together with the winning rule. ok is false when every rule missed.
func firstMatch(doc *goquery.Document, rules []Rule, eval func(Rule, *goquery.Selection) (string, bool)) (string, Rule, bool) {
	for _, rule := range rules {
		sel := doc.Find(rule.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if value, ok := eval(rule, sel); ok {
			return value, rule, true
		}
	}
	return "", Rule{}, false
}

// readRule evaluates a title or date rule against its matched element.
func readRule(rule Rule, sel *goquery.Selection) (string, bool) {
	var value string
	switch rule.Mode {
	case ModeAttribute:
		value, _ = sel.Attr(rule.Attr)
	default:
		if rule.Attr != "" {
			value, _ = sel.Attr(rule.Attr)
		}
		if strings.TrimSpace(value) == "" {
			value = sel.Text()
		}
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}
