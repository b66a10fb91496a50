package analyzer

import "fmt"

// DefaultRecommendationCap bounds the recommendation list length.
const DefaultRecommendationCap = 8

const fillerRecommendation = "Your page follows SEO best practices - keep content fresh and monitor regularly"

// Recommend inspects the signal bundle and produces a prioritized list of
// actionable recommendations: security issues first, then critical structural
// issues (title, H1), then medium (description, alt text, viewport), then low
// (thin content, structured data, social tags). Each rule fires at most once.
// The result is never empty and never exceeds the cap.
func Recommend(signals Signals, limit int) []string {
	if limit <= 0 {
		limit = DefaultRecommendationCap
	}

	var recs []string

	// High priority: security, then critical structure.
	if !signals.Security.IsHTTPS {
		recs = append(recs, "Switch to HTTPS - unencrypted pages rank lower and browsers flag them as not secure")
	}
	if !signals.Meta.HasTitle {
		recs = append(recs, "Add a title tag (aim for 30-60 characters)")
	} else if signals.Meta.TitleLength < 30 || signals.Meta.TitleLength > 60 {
		recs = append(recs, "Adjust the title tag length to 30-60 characters")
	}
	switch {
	case signals.Headings.H1Count == 0:
		recs = append(recs, "Add an H1 heading to the page")
	case signals.Headings.H1Count > 1:
		recs = append(recs, fmt.Sprintf("Use only one H1 heading per page (found %d)", signals.Headings.H1Count))
	}

	// Medium priority.
	if !signals.Meta.HasDescription {
		recs = append(recs, "Add a meta description (aim for 120-160 characters)")
	} else if signals.Meta.DescriptionLength < 120 || signals.Meta.DescriptionLength > 160 {
		recs = append(recs, "Adjust the meta description length to 120-160 characters")
	}
	if signals.Images.WithoutAlt > 0 {
		recs = append(recs, fmt.Sprintf("Add alt text to %d image(s)", signals.Images.WithoutAlt))
	}
	if !signals.Mobile.HasViewport {
		recs = append(recs, "Add a viewport meta tag with width=device-width for mobile devices")
	}

	// Low priority.
	if signals.Content.WordCount < 300 {
		recs = append(recs, "Add more content (aim for at least 300 words)")
	}
	if !signals.Technical.HasStructuredData {
		recs = append(recs, "Add structured data (JSON-LD) to qualify for rich results")
	}
	if !signals.Social.HasOpenGraph {
		recs = append(recs, "Add Open Graph tags for better social sharing previews")
	}

	if len(recs) == 0 {
		return []string{fillerRecommendation}
	}
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
