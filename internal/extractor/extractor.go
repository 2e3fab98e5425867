// Package extractor locates the headline, publication date and body text of an
// article inside arbitrary HTML.
//
// Each field is resolved by its own ordered cascade of selector rules; the
// first rule producing a non-empty value wins and later rules are never
// consulted. Body candidates are stripped of navigation and advertising noise
// on a detached copy and must exceed a minimum length before they qualify.
// When no candidate qualifies the extractor falls back to the first article
// element and finally to the whole document body. Fields that no cascade
// fills carry the sentinels defined in package article.
package extractor

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/article"
	"github.com/JakeFAU/referent/internal/metrics"
)

// Config tunes the extractor.
type Config struct {
	// MinContentLength is the exclusive lower bound on a content candidate's
	// trimmed length in characters. Zero selects DefaultMinContentLength.
	MinContentLength int
}

// Extractor implements article.Extractor with goquery cascades.
type Extractor struct {
	minContentLength int
	logger           *zap.Logger
}

// New builds an Extractor.
func New(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		minContentLength: cfg.MinContentLength,
		logger:           logger,
	}
}

// Extract parses raw HTML and runs the title, date and content cascades
// independently. It never fails; unusable input yields sentinels.
func (e *Extractor) Extract(raw []byte) article.Article {
	result := article.Article{
		Title:       article.TitleNotFound,
		PublishedAt: article.DateNotFound,
		Body:        article.ContentNotFound,
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		e.logger.Debug("html parse failed", zap.Error(err))
		return result
	}

	if title, rule, ok := firstMatch(doc, TitleRules, readRule); ok {
		result.Title = title
		e.observe("title", rule.Name)
	} else {
		e.observe("title", "none")
	}

	if date, rule, ok := firstMatch(doc, DateRules, readRule); ok {
		result.PublishedAt = date
		e.observe("date", rule.Name)
	} else {
		e.observe("date", "none")
	}

	if body, source := e.content(doc); body != "" {
		result.Body = body
		e.observe("content", source)
	} else {
		e.observe("content", "none")
	}
	return result
}

// content runs the content cascade and its two fallbacks. It returns the
// normalized body and the name of the rule or fallback that produced it.
func (e *Extractor) content(doc *goquery.Document) (string, string) {
	if text, rule, ok := firstMatch(doc, ContentRules, e.qualifies); ok {
		return NormalizeWhitespace(text), rule.Name
	}
	if first := doc.Find("article").First(); first.Length() > 0 {
		if text := strippedText(first, articleNoise); text != "" {
			return NormalizeWhitespace(text), "fallback-article"
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		if text := strippedText(body, bodyNoise); text != "" {
			return NormalizeWhitespace(text), "fallback-body"
		}
	}
	return "", ""
}

// qualifies applies the noise strip and the length gate to a content
// candidate. The gate counts the characters of the stripped copy's own text;
// the newlines blockText adds between blocks are not part of the page and do
// not count toward the length.
func (e *Extractor) qualifies(_ Rule, sel *goquery.Selection) (string, bool) {
	working := stripped(sel, candidateNoise)
	if utf8.RuneCountInString(strings.TrimSpace(working.Text())) <= e.minContentLength {
		return "", false
	}
	return strings.TrimSpace(blockText(working.Nodes)), true
}

// stripped returns a detached deep copy of sel with noise removed. The parsed
// document is left untouched.
func stripped(sel *goquery.Selection, noise string) *goquery.Selection {
	working := sel.Clone()
	working.Find(noise).Remove()
	return working
}

// strippedText returns the block-separated, trimmed text of a stripped copy.
func strippedText(sel *goquery.Selection, noise string) string {
	return strings.TrimSpace(blockText(stripped(sel, noise).Nodes))
}

func (e *Extractor) observe(field, rule string) {
	e.logger.Debug("extraction rule resolved", zap.String("field", field), zap.String("rule", rule))
	metrics.ObserveRuleHit(field, rule)
}
