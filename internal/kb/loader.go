package kb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hmo-chatbot-backend/models"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissingKnowledgeBase is returned when the knowledge-base directory does
// not exist. Fatal at startup: the process must not serve retrieval traffic
// without a corpus.
var ErrMissingKnowledgeBase = errors.New("knowledge base directory not found")

// Section is one structural unit extracted from a source document, ready for
// chunking. Eligibility is empty for content that applies to every profile.
type Section struct {
	Text        string
	SourceFile  string
	Category    models.ServiceCategory
	Eligibility []models.EligibilityTag
}

// Diagnostic records a section that was skipped during parsing. Diagnostics
// are aggregated and reported to the caller, never silently dropped.
type Diagnostic struct {
	SourceFile string
	Section    string
	Reason     string
}

// knownFiles fixes the enumeration order so ingestion is deterministic.
// File names match the source data set, misspellings included.
var knownFiles = []struct {
	name     string
	category models.ServiceCategory
}{
	{"alternative_services.html", models.CategoryAlternative},
	{"communication_clinic_services.html", models.CategoryCommunication},
	{"dentel_services.html", models.CategoryDental},
	{"optometry_services.html", models.CategoryOptometry},
	{"pragrency_services.html", models.CategoryPregnancy},
	{"workshops_services.html", models.CategoryWorkshops},
}

// categoryLabels maps categories to the Hebrew service names used inside
// chunk text and prompt context.
var categoryLabels = map[models.ServiceCategory]string{
	models.CategoryAlternative:   "רפואה משלימה",
	models.CategoryCommunication: "מרפאות תקשורת",
	models.CategoryDental:        "מרפאות שיניים",
	models.CategoryOptometry:     "אופטומטריה",
	models.CategoryPregnancy:     "הריון",
	models.CategoryWorkshops:     "סדנאות בריאות",
}

// CategoryLabel returns the Hebrew display name for a service category.
func CategoryLabel(c models.ServiceCategory) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "שירותים כלליים"
}

// LoadDirectory parses every recognized knowledge-base file under dir.
// Individual malformed files or sections are skipped with a diagnostic;
// only a missing directory aborts the load.
func LoadDirectory(dir string) ([]Section, []Diagnostic, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingKnowledgeBase, dir)
	}

	var sections []Section
	var diags []Diagnostic

	for _, file := range knownFiles {
		data, err := os.ReadFile(filepath.Join(dir, file.name))
		if err != nil {
			diags = append(diags, Diagnostic{
				SourceFile: file.name,
				Section:    "file",
				Reason:     fmt.Sprintf("unreadable: %v", err),
			})
			continue
		}

		fileSections, fileDiags := ParseFile(data, file.name, file.category)
		sections = append(sections, fileSections...)
		diags = append(diags, fileDiags...)
	}

	return sections, diags, nil
}

// ParseFile extracts the structural sections of one service document: the
// header description, the per-(service, HMO) benefit table cells, and the
// contact-information lists. Pure function of its input.
func ParseFile(data []byte, fileName string, category models.ServiceCategory) ([]Section, []Diagnostic) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, []Diagnostic{{
			SourceFile: fileName,
			Section:    "file",
			Reason:     fmt.Sprintf("unparseable html: %v", err),
		}}
	}

	var sections []Section
	var diags []Diagnostic

	appendPass := func(s *Section, d *Diagnostic) {
		if s != nil {
			sections = append(sections, *s)
		}
		if d != nil {
			diags = append(diags, *d)
		}
	}

	appendPass(parseHeader(doc, fileName, category))

	tableSections, tableDiags := parseTable(doc, fileName, category)
	sections = append(sections, tableSections...)
	diags = append(diags, tableDiags...)

	appendPass(parseContact(doc, fileName, category))

	return sections, diags
}

// parseHeader collects the document title, description paragraphs and
// top-level service lists into one section applying to all profiles.
func parseHeader(doc *goquery.Document, fileName string, category models.ServiceCategory) (*Section, *Diagnostic) {
	var parts []string

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		// Table-intro boilerplate carries no standalone knowledge.
		if text == "" || strings.HasPrefix(text, "הטבלה") {
			return
		}
		parts = append(parts, text)
	})

	doc.Find("ul").Each(func(_ int, ul *goquery.Selection) {
		if ul.ParentsFiltered("table").Length() > 0 {
			return
		}
		// Contact lists are handled by parseContact.
		if isContactList(ul) {
			return
		}
		var items []string
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if item := strings.TrimSpace(li.Text()); item != "" {
				items = append(items, "• "+item)
			}
		})
		if len(items) > 0 {
			parts = append(parts, "השירותים כוללים:\n"+strings.Join(items, "\n"))
		}
	})

	if len(parts) == 0 {
		return nil, &Diagnostic{
			SourceFile: fileName,
			Section:    "header",
			Reason:     "no paragraphs or service lists found",
		}
	}

	return &Section{
		Text:       CategoryLabel(category) + "\n\n" + strings.Join(parts, "\n\n"),
		SourceFile: fileName,
		Category:   category,
	}, nil
}

// parseTable turns each benefit-table cell into a section tagged with its
// (HMO, tier) eligibility. Rows with fewer cells than service + one per HMO
// are skipped with a diagnostic.
func parseTable(doc *goquery.Document, fileName string, category models.ServiceCategory) ([]Section, []Diagnostic) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, []Diagnostic{{
			SourceFile: fileName,
			Section:    "table",
			Reason:     "no benefits table found",
		}}
	}

	var sections []Section
	var diags []Diagnostic

	table.Find("tr").Each(func(rowIdx int, row *goquery.Selection) {
		if rowIdx == 0 {
			return // header row
		}

		cells := row.Find("th, td")
		if cells.Length() < len(models.KnownHMOs)+1 {
			diags = append(diags, Diagnostic{
				SourceFile: fileName,
				Section:    fmt.Sprintf("table row %d", rowIdx),
				Reason:     fmt.Sprintf("expected %d cells, found %d", len(models.KnownHMOs)+1, cells.Length()),
			})
			return
		}

		serviceName := strings.TrimSpace(cells.Eq(0).Text())
		if serviceName == "" {
			diags = append(diags, Diagnostic{
				SourceFile: fileName,
				Section:    fmt.Sprintf("table row %d", rowIdx),
				Reason:     "empty service name",
			})
			return
		}

		for hmoIdx, hmo := range models.KnownHMOs {
			details := strings.TrimSpace(cells.Eq(hmoIdx + 1).Text())
			if details == "" {
				diags = append(diags, Diagnostic{
					SourceFile: fileName,
					Section:    fmt.Sprintf("table row %d (%s)", rowIdx, hmo),
					Reason:     "empty benefit cell",
				})
				continue
			}

			text := fmt.Sprintf("%s - %s\n\nקופת חולים: %s\n\n%s",
				CategoryLabel(category), serviceName, hmo, details)

			sections = append(sections, Section{
				Text:        text,
				SourceFile:  fileName,
				Category:    category,
				Eligibility: eligibilityTags(hmo, extractTiers(details)),
			})
		}
	})

	return sections, diags
}

// parseContact gathers the phone/contact h3 headings and their lists into a
// single section applying to all profiles.
func parseContact(doc *goquery.Document, fileName string, category models.ServiceCategory) (*Section, *Diagnostic) {
	var blocks []string

	doc.Find("h3").Each(func(_ int, h *goquery.Selection) {
		heading := strings.TrimSpace(h.Text())
		if !isContactHeading(heading) {
			return
		}
		ul := h.NextAllFiltered("ul").First()
		if ul.Length() == 0 {
			return
		}
		var items []string
		ul.Find("li").Each(func(_ int, li *goquery.Selection) {
			if item := strings.TrimSpace(li.Text()); item != "" {
				items = append(items, item)
			}
		})
		if len(items) > 0 {
			blocks = append(blocks, heading+"\n\n"+strings.Join(items, "\n"))
		}
	})

	if len(blocks) == 0 {
		return nil, nil // most documents simply have no contact block
	}

	return &Section{
		Text:       CategoryLabel(category) + " - מידע ליצירת קשר\n\n" + strings.Join(blocks, "\n\n"),
		SourceFile: fileName,
		Category:   category,
	}, nil
}

var contactKeywords = []string{"טלפון", "פרטים", "מידע"}

func isContactHeading(heading string) bool {
	for _, kw := range contactKeywords {
		if strings.Contains(heading, kw) {
			return true
		}
	}
	return false
}

// isContactList reports whether a ul is owned by a contact h3 heading.
func isContactList(ul *goquery.Selection) bool {
	prev := ul.Prev()
	return prev.Is("h3") && isContactHeading(strings.TrimSpace(prev.Text()))
}

// extractTiers returns the membership tiers mentioned in a benefit cell.
// A cell that names no tier applies to all tiers.
func extractTiers(details string) []string {
	var tiers []string
	for _, tier := range models.KnownTiers {
		if strings.Contains(details, tier) {
			tiers = append(tiers, tier)
		}
	}
	if len(tiers) == 0 {
		return models.KnownTiers
	}
	return tiers
}

func eligibilityTags(hmo string, tiers []string) []models.EligibilityTag {
	tags := make([]models.EligibilityTag, 0, len(tiers))
	for _, tier := range tiers {
		tags = append(tags, models.EligibilityTag{HMO: hmo, Tier: tier})
	}
	return tags
}
