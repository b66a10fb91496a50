package analyzer

import "time"

// Category identifies one scored SEO dimension.
type Category string

const (
	CategoryMeta         Category = "meta"
	CategoryHeadings     Category = "headings"
	CategoryImages       Category = "images"
	CategoryContent      Category = "content"
	CategoryLinks        Category = "links"
	CategoryURLStructure Category = "urlStructure"
	CategoryMobile       Category = "mobile"
	CategoryTechnical    Category = "technical"
	CategorySocial       Category = "social"
	CategorySecurity     Category = "security"
	CategoryPerformance  Category = "performance"
)

// categoryOrder fixes iteration order for deterministic output.
var categoryOrder = []Category{
	CategoryMeta,
	CategoryHeadings,
	CategoryImages,
	CategoryContent,
	CategoryLinks,
	CategoryURLStructure,
	CategoryMobile,
	CategoryTechnical,
	CategorySocial,
	CategorySecurity,
	CategoryPerformance,
}

// MetaSignals covers the title and meta description tags.
type MetaSignals struct {
	Title             string `json:"title"`
	TitleLength       int    `json:"titleLength"`
	HasTitle          bool   `json:"hasTitle"`
	Description       string `json:"description"`
	DescriptionLength int    `json:"descriptionLength"`
	HasDescription    bool   `json:"hasDescription"`
	Keywords          string `json:"keywords"`
	HasKeywords       bool   `json:"hasKeywords"`
}

// HeadingSignals records heading counts per level and the H1 texts.
type HeadingSignals struct {
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
	H1Count int            `json:"h1Count"`
	H2Count int            `json:"h2Count"`
	H1Text  []string       `json:"h1Text"`
}

// ImageSignals tallies alt-text coverage.
type ImageSignals struct {
	Total        int `json:"total"`
	WithAlt      int `json:"withAlt"`
	WithoutAlt   int `json:"withoutAlt"`
	AltTextRatio int `json:"altTextRatio"`
}

// LinkSignals classifies anchors found on the page.
type LinkSignals struct {
	Internal int `json:"internal"`
	External int `json:"external"`
	Nofollow int `json:"nofollow"`
	Total    int `json:"total"`
}

// ContentSignals measures the visible text of the page.
type ContentSignals struct {
	WordCount      int `json:"wordCount"`
	ParagraphCount int `json:"paragraphCount"`
}

// URLSignals describes the structure of the resolved URL.
type URLSignals struct {
	Protocol           string `json:"protocol"`
	Hostname           string `json:"hostname"`
	Path               string `json:"path"`
	Query              string `json:"query"`
	Length             int    `json:"length"`
	IsHTTPS            bool   `json:"isHttps"`
	HasWWW             bool   `json:"hasWww"`
	HasUppercasePath   bool   `json:"hasUppercasePath"`
	HasReservedEscapes bool   `json:"hasReservedEscapes"`
}

// MobileSignals covers the viewport meta tag.
type MobileSignals struct {
	HasViewport     bool   `json:"hasViewport"`
	ViewportContent string `json:"viewportContent"`
}

// TechnicalSignals covers canonical, structured data, and robots directives.
type TechnicalSignals struct {
	HasCanonical        bool `json:"hasCanonical"`
	HasStructuredData   bool `json:"hasStructuredData"`
	StructuredDataCount int  `json:"structuredDataCount"`
	HasRobotsMeta       bool `json:"hasRobotsMeta"`
	HasNoindex          bool `json:"hasNoindex"`
}

// SocialSignals covers Open Graph and Twitter Card tags.
type SocialSignals struct {
	HasOpenGraph   bool `json:"hasOpenGraph"`
	HasTwitterCard bool `json:"hasTwitterCard"`
}

// PerformanceSignals carries raw fetch measurements through unmodified.
type PerformanceSignals struct {
	PageSizeBytes   int `json:"pageSizeBytes"`
	FetchDurationMs int `json:"fetchDurationMs"`
}

// SecuritySignals carries the HTTPS boolean from the URL structure.
type SecuritySignals struct {
	IsHTTPS bool `json:"isHttps"`
}

// Signals is the structured bundle of raw SEO-relevant facts extracted from
// one parsed page. Numeric fields default to 0 and booleans to false when the
// underlying HTML lacks the corresponding tag; no scoring logic lives here.
type Signals struct {
	Meta        MetaSignals        `json:"meta"`
	Headings    HeadingSignals     `json:"headings"`
	Images      ImageSignals       `json:"images"`
	Links       LinkSignals        `json:"links"`
	Content     ContentSignals     `json:"content"`
	URL         URLSignals         `json:"urlStructure"`
	Mobile      MobileSignals      `json:"mobile"`
	Technical   TechnicalSignals   `json:"technical"`
	Social      SocialSignals      `json:"social"`
	Performance PerformanceSignals `json:"performance"`
	Security    SecuritySignals    `json:"security"`
}

// Report is the externally visible result of one analysis. It is immutable
// after construction.
type Report struct {
	URL             string           `json:"url"`
	Domain          string           `json:"domain"`
	Signals         Signals          `json:"signals"`
	CategoryScores  map[Category]int `json:"categoryScores"`
	OverallScore    int              `json:"overallScore"`
	Grade           string           `json:"grade"`
	Strengths       []string         `json:"strengths"`
	Weaknesses      []string         `json:"weaknesses"`
	Recommendations []string         `json:"recommendations"`
	Cached          bool             `json:"cached"`
	AnalyzedAt      time.Time        `json:"analyzedAt"`
}
