package analyzer

import "math"

// Category scorers are pure functions from a slice of the signal bundle to a
// 0-100 score. Intermediate arithmetic may overshoot; every scorer clamps as
// its final step.

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func scoreMeta(meta MetaSignals) int {
	score := 65
	if meta.HasTitle {
		score += 20
		if meta.TitleLength >= 30 && meta.TitleLength <= 60 {
			score += 10
		}
	}
	if meta.HasDescription {
		score += 10
		if meta.DescriptionLength >= 120 && meta.DescriptionLength <= 160 {
			score += 5
		}
	}
	return clampScore(score)
}

func scoreHeadings(headings HeadingSignals) int {
	score := 70
	switch {
	case headings.H1Count == 1:
		score += 20
	case headings.H1Count == 0:
		score -= 25
	default:
		score -= 15
	}
	if headings.H2Count >= 2 {
		score += 10
	}
	return clampScore(score)
}

func scoreImages(images ImageSignals) int {
	// No images is a pass, not a failure.
	if images.Total == 0 {
		return 100
	}
	score := int(math.Round(float64(images.WithAlt) / float64(images.Total) * 100))
	if images.WithoutAlt > 10 {
		score -= 15
	}
	return clampScore(score)
}

func scoreContent(content ContentSignals) int {
	score := 60
	switch {
	case content.WordCount >= 1000:
		score += 25
	case content.WordCount >= 500:
		score += 20
	case content.WordCount >= 300:
		score += 15
	case content.WordCount >= 150:
		score += 10
	}
	if content.WordCount < 50 {
		score -= 10
	}
	if content.ParagraphCount >= 5 {
		score += 10
	}
	return clampScore(score)
}

func scoreLinks(links LinkSignals) int {
	if links.Total == 0 {
		return 50
	}
	score := 70
	switch {
	case links.Internal >= 10:
		score += 15
	case links.Internal >= 5:
		score += 10
	}
	if links.External >= 3 {
		score += 5
	}
	return clampScore(score)
}

func scoreURLStructure(u URLSignals) int {
	score := 85
	if u.IsHTTPS {
		score += 15
	}
	if u.Length > 100 {
		penalty := (u.Length - 100) / 20 * 5
		if penalty > 20 {
			penalty = 20
		}
		score -= penalty
	}
	if u.Query != "" {
		score -= 5
	}
	if u.HasUppercasePath || u.HasReservedEscapes {
		score -= 5
	}
	return clampScore(score)
}

func scoreMobile(mobile MobileSignals) int {
	score := 70
	if mobile.HasViewport {
		score += 25
	}
	return clampScore(score)
}

func scoreTechnical(technical TechnicalSignals) int {
	score := 60
	if technical.HasStructuredData {
		score += 25
	}
	if technical.HasCanonical {
		score += 10
	}
	if !technical.HasNoindex {
		score += 5
	}
	return clampScore(score)
}

func scoreSocial(social SocialSignals) int {
	score := 50
	if social.HasOpenGraph {
		score += 30
	}
	if social.HasTwitterCard {
		score += 15
	}
	return clampScore(score)
}

func scoreSecurity(security SecuritySignals) int {
	if security.IsHTTPS {
		return 100
	}
	return 35
}

// scorePerformance maps single-request fetch latency to a coarse score. A
// single GET latency is not a real performance audit; the category is a
// best-effort signal and is skipped entirely when no latency was measured.
func scorePerformance(perf PerformanceSignals) (int, bool) {
	if perf.FetchDurationMs <= 0 {
		return 0, false
	}
	switch {
	case perf.FetchDurationMs < 1000:
		return 100, true
	case perf.FetchDurationMs < 2000:
		return 90, true
	case perf.FetchDurationMs < 3000:
		return 75, true
	case perf.FetchDurationMs < 5000:
		return 50, true
	default:
		return 30, true
	}
}

// ScoreCategories runs every category scorer over the signal bundle. The
// performance category is present only when a fetch latency was recorded.
func ScoreCategories(signals Signals) map[Category]int {
	scores := map[Category]int{
		CategoryMeta:         scoreMeta(signals.Meta),
		CategoryHeadings:     scoreHeadings(signals.Headings),
		CategoryImages:       scoreImages(signals.Images),
		CategoryContent:      scoreContent(signals.Content),
		CategoryLinks:        scoreLinks(signals.Links),
		CategoryURLStructure: scoreURLStructure(signals.URL),
		CategoryMobile:       scoreMobile(signals.Mobile),
		CategoryTechnical:    scoreTechnical(signals.Technical),
		CategorySocial:       scoreSocial(signals.Social),
		CategorySecurity:     scoreSecurity(signals.Security),
	}
	if score, ok := scorePerformance(signals.Performance); ok {
		scores[CategoryPerformance] = score
	}
	return scores
}
