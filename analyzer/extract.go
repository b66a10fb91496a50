package analyzer

import (
	"math"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// reservedEscapes are percent-encoded characters that should not appear in a
// clean URL path.
var reservedEscapes = []string{"%20", "%2F", "%3F", "%3D", "%26"}

// Extract produces the raw signal bundle for a parsed document and its
// resolved URL. Missing elements yield default-valued fields, never errors.
func Extract(doc *goquery.Document, resolved *url.URL, page PageInfo) Signals {
	signals := Signals{
		Meta:     extractMeta(doc),
		Headings: extractHeadings(doc),
		Images:   extractImages(doc),
		URL:      extractURL(resolved),
		Mobile:   extractMobile(doc),
		Technical: TechnicalSignals{
			HasCanonical:        doc.Find("link[rel='canonical']").Length() > 0,
			StructuredDataCount: doc.Find("script[type='application/ld+json']").Length(),
		},
		Social: SocialSignals{
			HasOpenGraph:   doc.Find("meta[property^='og:']").Length() > 0,
			HasTwitterCard: doc.Find("meta[name^='twitter:']").Length() > 0,
		},
		Performance: PerformanceSignals{
			PageSizeBytes:   page.SizeBytes,
			FetchDurationMs: page.DurationMs,
		},
	}

	signals.Technical.HasStructuredData = signals.Technical.StructuredDataCount > 0
	if robots, exists := doc.Find("meta[name='robots']").Attr("content"); exists {
		signals.Technical.HasRobotsMeta = true
		signals.Technical.HasNoindex = strings.Contains(strings.ToLower(robots), "noindex")
	}

	signals.Links = extractLinks(doc, resolved.Hostname())

	// Content measurement mutates the tree, so it runs on a clone after all
	// other extraction.
	signals.Content = extractContent(doc)

	signals.Security = SecuritySignals{IsHTTPS: signals.URL.IsHTTPS}
	return signals
}

func extractMeta(doc *goquery.Document) MetaSignals {
	meta := MetaSignals{}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	meta.TitleLength = len([]rune(meta.Title))
	meta.HasTitle = meta.TitleLength > 0

	desc, _ := doc.Find("meta[name='description']").Attr("content")
	meta.Description = strings.TrimSpace(desc)
	meta.DescriptionLength = len([]rune(meta.Description))
	meta.HasDescription = meta.DescriptionLength > 0

	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.HasKeywords = len(meta.Keywords) > 0

	return meta
}

func extractHeadings(doc *goquery.Document) HeadingSignals {
	headings := HeadingSignals{
		Counts: make(map[string]int, 6),
		H1Text: []string{},
	}

	for _, level := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		count := doc.Find(level).Length()
		headings.Counts[level] = count
		headings.Total += count
	}
	headings.H1Count = headings.Counts["h1"]
	headings.H2Count = headings.Counts["h2"]

	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		headings.H1Text = append(headings.H1Text, strings.TrimSpace(s.Text()))
	})

	return headings
}

func extractImages(doc *goquery.Document) ImageSignals {
	images := ImageSignals{}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		images.Total++
		if alt, exists := s.Attr("alt"); exists && strings.TrimSpace(alt) != "" {
			images.WithAlt++
		} else {
			images.WithoutAlt++
		}
	})

	// No images is a pass, not a failure.
	if images.Total == 0 {
		images.AltTextRatio = 100
	} else {
		images.AltTextRatio = int(math.Round(float64(images.WithAlt) / float64(images.Total) * 100))
	}

	return images
}

func extractLinks(doc *goquery.Document, hostname string) LinkSignals {
	links := LinkSignals{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") {
			return
		}

		internal := strings.HasPrefix(href, "/") ||
			strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "./") ||
			(hostname != "" && strings.Contains(href, hostname))

		switch {
		case internal:
			links.Internal++
		case strings.HasPrefix(href, "http"):
			links.External++
		default:
			return
		}
		links.Total++

		if rel, exists := s.Attr("rel"); exists && strings.Contains(rel, "nofollow") {
			links.Nofollow++
		}
	})

	return links
}

func extractContent(doc *goquery.Document) ContentSignals {
	clone := goquery.CloneDocument(doc)
	clone.Find("script, style, nav, header, footer, iframe, noscript").Remove()

	content := ContentSignals{
		ParagraphCount: clone.Find("p").Length(),
	}

	text := clone.Find("body").Text()
	if text == "" {
		text = clone.Text()
	}
	content.WordCount = len(strings.Fields(text))

	return content
}

func extractURL(resolved *url.URL) URLSignals {
	full := resolved.String()
	path := resolved.Path

	// Check the escaped form so encoded separators like %2F are visible.
	hasEscape := false
	for _, esc := range reservedEscapes {
		if strings.Contains(resolved.EscapedPath(), esc) {
			hasEscape = true
			break
		}
	}

	return URLSignals{
		Protocol:           resolved.Scheme + ":",
		Hostname:           resolved.Hostname(),
		Path:               path,
		Query:              resolved.RawQuery,
		Length:             len(full),
		IsHTTPS:            resolved.Scheme == "https",
		HasWWW:             strings.HasPrefix(resolved.Hostname(), "www."),
		HasUppercasePath:   path != strings.ToLower(path),
		HasReservedEscapes: hasEscape,
	}
}

func extractMobile(doc *goquery.Document) MobileSignals {
	mobile := MobileSignals{}

	doc.Find("meta[name='viewport']").Each(func(_ int, s *goquery.Selection) {
		content, exists := s.Attr("content")
		if !exists {
			return
		}
		mobile.ViewportContent = content
		if strings.Contains(strings.ToLower(content), "width=device-width") {
			mobile.HasViewport = true
		}
	})

	return mobile
}
