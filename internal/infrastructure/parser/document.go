package parser

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DisruptionMonitor/internal/domain"
)

// BaseURL is the origin relative disruption links resolve against.
const BaseURL = "https://ennatuurlijk.nl"

// sectionIDs maps the page's section element ids to lifecycle buckets. The
// page labels finished disruptions "completed"; downstream they are "solved".
var sectionIDs = []struct {
	id      string
	section domain.Section
}{
	{"current", domain.SectionCurrent},
	{"planned", domain.SectionPlanned},
	{"completed", domain.SectionSolved},
}

// DocumentParser extracts per-location disruption records from the parsed
// disruptions page. Extraction is best-effort: a malformed article is
// skipped, never aborts the rest of the document.
type DocumentParser struct {
	logger *slog.Logger
}

// NewDocumentParser wires an optional logger for per-article debug output.
func NewDocumentParser(logger *slog.Logger) *DocumentParser {
	return &DocumentParser{logger: logger}
}

// Parse walks all three lifecycle sections and returns the matching records
// per section in document order, duplicates preserved. A section absent
// from the document simply contributes no records.
func (p *DocumentParser) Parse(doc *goquery.Document, loc domain.Location) map[domain.Section][]domain.DisruptionRecord {
	result := make(map[domain.Section][]domain.DisruptionRecord, len(sectionIDs))

	for _, s := range sectionIDs {
		section := doc.Find("div#" + s.id)
		if section.Length() == 0 {
			p.debug("section not found on page", "section", s.id)
			continue
		}

		articles := section.Find("article.node--type-malfunction")
		p.debug("scanning section", "section", s.id, "articles", articles.Length())

		articles.Each(func(_ int, article *goquery.Selection) {
			if rec, ok := p.parseArticle(article, s.section, loc); ok {
				result[s.section] = append(result[s.section], rec)
			}
		})
	}

	return result
}

// parseArticle extracts one disruption record. Articles that do not match
// the location, or whose date cannot be normalized, are discarded.
func (p *DocumentParser) parseArticle(article *goquery.Selection, section domain.Section, loc domain.Location) (domain.DisruptionRecord, bool) {
	title := strings.TrimSpace(article.Find("h4.h3").First().Text())

	link := ""
	if href, exists := article.Find("a[href]").First().Attr("href"); exists {
		link = resolveLink(href)
	}

	if !domain.MatchesLocation(title, loc) {
		p.debug("article does not match location", "title", title, "town", loc.Town)
		return domain.DisruptionRecord{}, false
	}

	raw := strings.TrimSpace(article.Find("div.expectation div.value").First().Text())
	date := domain.NormalizeDate(raw)
	if date == "" {
		p.debug("article has no parseable date", "title", title, "raw", raw)
		return domain.DisruptionRecord{}, false
	}

	return domain.DisruptionRecord{
		Section: section,
		Title:   title,
		Date:    date,
		Link:    link,
	}, true
}

func resolveLink(href string) string {
	if strings.HasPrefix(href, "/") {
		return BaseURL + href
	}
	return href
}

func (p *DocumentParser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
