package extractor

// Mode selects how a matched element yields its value.
type Mode int

// Extraction modes.
const (
	// ModeText reads the element's trimmed text, preferring Rule.Attr when it
	// is present and non-empty.
	ModeText Mode = iota
	// ModeAttribute reads Rule.Attr only.
	ModeAttribute
)

// Rule is one entry of a cascade. Only the first element matching Selector is
// considered.
type Rule struct {
	Name     string
	Selector string
	Mode     Mode
	Attr     string
}

// TitleRules is the headline cascade, in priority order.
var TitleRules = []Rule{
	{Name: "h1", Selector: "h1"},
	{Name: "article-h1", Selector: "article h1"},
	{Name: "post-title", Selector: ".post-title"},
	{Name: "article-title", Selector: ".article-title"},
	{Name: "entry-title", Selector: ".entry-title"},
	{Name: "class-title", Selector: `[class*="title"]`},
	{Name: "og-title", Selector: `meta[property="og:title"]`, Mode: ModeAttribute, Attr: "content"},
	{Name: "meta-title", Selector: `meta[name="title"]`, Mode: ModeAttribute, Attr: "content"},
}

// DateRules is the publication date cascade, in priority order.
var DateRules = []Rule{
	{Name: "time-datetime", Selector: "time[datetime]", Attr: "datetime"},
	{Name: "time", Selector: "time", Attr: "datetime"},
	{Name: "class-date", Selector: `[class*="date"]`, Attr: "datetime"},
	{Name: "class-published", Selector: `[class*="published"]`, Attr: "datetime"},
	{Name: "class-time", Selector: `[class*="time"]`, Attr: "datetime"},
	{
		Name:     "article-published-time",
		Selector: `meta[property="article:published_time"]`,
		Mode:     ModeAttribute,
		Attr:     "content",
	},
	{Name: "meta-date", Selector: `meta[name="date"]`, Mode: ModeAttribute, Attr: "content"},
	{Name: "itemprop-date-published", Selector: `[itemprop="datePublished"]`, Attr: "datetime"},
}

// ContentRules is the body container cascade, in priority order. Candidates
// must also pass the length gate.
var ContentRules = []Rule{
	{Name: "article", Selector: "article"},
	{Name: "post", Selector: ".post"},
	{Name: "content", Selector: ".content"},
	{Name: "article-content", Selector: ".article-content"},
	{Name: "entry-content", Selector: ".entry-content"},
	{Name: "post-content", Selector: ".post-content"},
	{Name: "class-article", Selector: `[class*="article"]`},
	{Name: "class-content", Selector: `[class*="content"]`},
	{Name: "main", Selector: "main"},
	{Name: "role-article", Selector: `[role="article"]`},
}

// Elements removed from a content candidate before it is measured.
const (
	candidateNoise = "script, style, nav, aside, .ad, .advertisement, .sidebar"
	articleNoise   = "script, style, nav, aside"
	bodyNoise      = "script, style, nav, header, footer, aside"
)

// DefaultMinContentLength is the exclusive lower bound, in characters, for a
// content candidate to qualify.
const DefaultMinContentLength = 100
