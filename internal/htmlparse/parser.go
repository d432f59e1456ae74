// Package htmlparse bootstraps a catalog document from the static markup of
// a page.
package htmlparse

import (
	"fmt"
	"strings"
	"time"

	"locator-catalog/internal/entity"
	"locator-catalog/pkg/apperr"
	"locator-catalog/pkg/logg"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	parserName = "CatalogParser"

	maxTextLen    = 50
	maxOptions    = 10
	unknownPage   = "unknown"
	defaultInputs = `input[type="text"], input[type="email"], input[type="password"], input[type="search"]`
)

type Parser struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		logger: logger.With(zap.String(logg.Layer, parserName)),
		now:    time.Now,
	}
}

// extraction collects entries for one document. Later extractors overwrite
// earlier ones on a name clash.
type extraction struct {
	doc      *goquery.Document
	elements map[string]entity.ElementEntry
}

// Parse extracts buttons, links, accordions, inputs, checkboxes, selects and
// tables from html into a fresh version 1.0 document.
func (p *Parser) Parse(html, pageURL string) (*entity.CatalogDocument, error) {
	const op = "Parse"
	logger := p.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, pageURL))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeDecodeFailed, err, map[string]any{
			apperr.MetaReason: "html_parse_failed",
			apperr.MetaStage:  apperr.StageParse,
			apperr.MetaURL:    pageURL,
		})
	}

	x := &extraction{doc: doc, elements: make(map[string]entity.ElementEntry)}
	x.buttons()
	x.links()
	x.accordions()
	x.inputs()
	x.checkboxes()
	x.selects()
	x.tables()

	page := unknownPage
	if pageURL != "" {
		_, page = entity.SiteAndPage(pageURL)
	}

	now := entity.FormatTime(p.now())

	result := &entity.CatalogDocument{
		Page:      page,
		SiteURL:   pageURL,
		Version:   entity.InitialVersion,
		Timestamp: now,
		Elements:  x.elements,
		Statistics: entity.Statistics{
			TotalElements:  len(x.elements),
			ParsedElements: len(x.elements),
		},
	}

	logger.Info("Parsed page markup", zap.String(logg.Page, page), zap.Int("elements", len(x.elements)))

	return result, nil
}

func (x *extraction) add(name string, entry entity.ElementEntry) {
	entry.Source = entity.SourceInitialParse
	x.elements[name] = entry
}

func (x *extraction) buttons() {
	x.doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if role, _ := s.Attr("role"); role == "button" && attrOf(s, "aria-expanded") != "" {
			return
		}

		text := textOf(s)
		if text == "" || len([]rune(text)) > maxTextLen {
			return
		}

		var selectors []string
		if id := attrOf(s, "id"); id != "" {
			selectors = append(selectors, "#"+id)
		}
		if testID := attrOf(s, "data-testid"); testID != "" {
			selectors = append(selectors, fmt.Sprintf("[data-testid='%s']", testID))
		}
		selectors = append(selectors, fmt.Sprintf("button:has-text('%s')", text))

		x.add(text+" button", entity.ElementEntry{
			Selector:     selectors[0],
			Type:         entity.ElementTypeButton,
			Description:  "Button: " + text,
			Alternatives: alternatives(selectors),
		})
	})
}

func (x *extraction) links() {
	x.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		text := textOf(s)
		if text == "" || len([]rune(text)) > maxTextLen {
			return
		}

		href := attrOf(s, "href")

		var selectors []string
		if id := attrOf(s, "id"); id != "" {
			selectors = append(selectors, "#"+id)
		}
		selectors = append(selectors,
			fmt.Sprintf("a[href='%s']", href),
			fmt.Sprintf("a:has-text('%s')", text))

		x.add(text+" link", entity.ElementEntry{
			Selector:     selectors[0],
			Type:         entity.ElementTypeLink,
			Href:         href,
			Description:  "Link to " + text,
			Alternatives: alternatives(selectors),
		})
	})
}

func (x *extraction) accordions() {
	x.doc.Find(`[role="button"][aria-expanded]`).Each(func(_ int, s *goquery.Selection) {
		id := attrOf(s, "id")
		if id == "" {
			return
		}

		var text string
		if summary := s.Find(".sectionSummaryText").First(); summary.Length() > 0 {
			text = textOf(summary)
		} else {
			text = truncate(textOf(s), maxTextLen)
		}

		x.add(text+" dropdown", entity.ElementEntry{
			Selector:     fmt.Sprintf("#%s[role='button']", id),
			Type:         entity.ElementTypeAccordion,
			AriaExpanded: attrOf(s, "aria-expanded"),
			Description:  "Accordion section for " + text,
			Alternatives: []string{
				fmt.Sprintf("[role='button'][aria-expanded]:has-text('%s')", text),
				fmt.Sprintf(".customExpansionPanelSummaryRoot:has-text('%s')", text),
			},
		})
	})
}

func (x *extraction) inputs() {
	x.doc.Find(defaultInputs).Each(func(_ int, s *goquery.Selection) {
		placeholder := attrOf(s, "placeholder")

		name := firstNonEmpty(x.labelFor(s), placeholder, attrOf(s, "name"), attrOf(s, "id"))
		if name == "" {
			return
		}
		name += " input"

		var selectors []string
		if id := attrOf(s, "id"); id != "" {
			selectors = append(selectors, "#"+id)
		}
		if n := attrOf(s, "name"); n != "" {
			selectors = append(selectors, fmt.Sprintf("input[name='%s']", n))
		}
		if placeholder != "" {
			selectors = append(selectors, fmt.Sprintf("input[placeholder='%s']", placeholder))
		}

		if len(selectors) == 0 {
			return
		}

		x.add(name, entity.ElementEntry{
			Selector:     selectors[0],
			Type:         entity.ElementTypeInput,
			InputType:    firstNonEmpty(attrOf(s, "type"), "text"),
			Description:  "Input field for " + name,
			Alternatives: alternatives(selectors),
		})
	})
}

func (x *extraction) checkboxes() {
	x.doc.Find(`input[type="checkbox"]`).Each(func(_ int, s *goquery.Selection) {
		value := firstNonEmpty(attrOf(s, "value"), attrOf(s, "id"), attrOf(s, "name"))
		if value == "" {
			return
		}

		label := firstNonEmpty(x.labelFor(s), value)

		var selectors []string
		if id := attrOf(s, "id"); id != "" {
			selectors = append(selectors, "#"+id)
		}
		if v := attrOf(s, "value"); v != "" {
			selectors = append(selectors, fmt.Sprintf("input[type='checkbox'][value='%s']", v))
		}
		if n := attrOf(s, "name"); n != "" {
			selectors = append(selectors, fmt.Sprintf("input[type='checkbox'][name='%s']", n))
		}

		x.add(label+" checkbox", entity.ElementEntry{
			Selector:     selectors[0],
			Type:         entity.ElementTypeCheckbox,
			Value:        value,
			Description:  "Checkbox for " + label,
			Alternatives: alternatives(selectors),
		})
	})
}

func (x *extraction) selects() {
	x.doc.Find("select").Each(func(_ int, s *goquery.Selection) {
		name := firstNonEmpty(x.labelFor(s), attrOf(s, "name"), attrOf(s, "id"))
		if name == "" {
			return
		}
		name += " dropdown"

		var selectors []string
		if id := attrOf(s, "id"); id != "" {
			selectors = append(selectors, "#"+id)
		}
		if n := attrOf(s, "name"); n != "" {
			selectors = append(selectors, fmt.Sprintf("select[name='%s']", n))
		}

		if len(selectors) == 0 {
			return
		}

		var options []string
		s.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
			if v := attrOf(opt, "value"); v != "" {
				options = append(options, v)
			}

			return len(options) < maxOptions
		})

		x.add(name, entity.ElementEntry{
			Selector:     selectors[0],
			Type:         entity.ElementTypeSelect,
			Options:      options,
			Description:  "Dropdown for " + name,
			Alternatives: alternatives(selectors),
		})
	})
}

func (x *extraction) tables() {
	x.doc.Find("table").Each(func(i int, s *goquery.Selection) {
		name := fmt.Sprintf("Data table %d", i+1)
		if caption := s.Find("caption").First(); caption.Length() > 0 {
			name = textOf(caption) + " table"
		}

		var sel string
		switch {
		case attrOf(s, "id") != "":
			sel = "#" + attrOf(s, "id")
		case len(strings.Fields(attrOf(s, "class"))) > 0:
			sel = "table." + strings.Fields(attrOf(s, "class"))[0]
		default:
			sel = fmt.Sprintf("table:nth-of-type(%d)", i+1)
		}

		x.add(name, entity.ElementEntry{
			Selector:     sel,
			Type:         entity.ElementTypeTable,
			Description:  "Data table",
			Alternatives: []string{"table"},
		})
	})
}

// labelFor finds the label text of a form control, by for= first and by an
// enclosing label second.
func (x *extraction) labelFor(s *goquery.Selection) string {
	if id := attrOf(s, "id"); id != "" {
		label := x.doc.Find("label").FilterFunction(func(_ int, l *goquery.Selection) bool {
			return attrOf(l, "for") == id
		}).First()

		if label.Length() > 0 {
			return textOf(label)
		}
	}

	if parent := s.ParentsFiltered("label").First(); parent.Length() > 0 {
		return textOf(parent)
	}

	return ""
}

func attrOf(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)

	return strings.TrimSpace(v)
}

// textOf returns the visible text of s with runs of whitespace collapsed.
func textOf(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}

func alternatives(selectors []string) []string {
	if len(selectors) < 2 {
		return []string{}
	}

	return append([]string(nil), selectors[1:]...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
