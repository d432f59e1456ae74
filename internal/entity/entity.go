package entity

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const InitialVersion = "1.0"

// CatalogDocument is the persisted set of known elements for one (site, page).
type CatalogDocument struct {
	Page        string                  `json:"page"`
	SiteURL     string                  `json:"url"`
	Version     string                  `json:"version"`
	Timestamp   string                  `json:"timestamp,omitempty"`
	LastUpdated string                  `json:"last_updated,omitempty"`
	Elements    map[string]ElementEntry `json:"elements"`
	Statistics  Statistics              `json:"statistics"`
}

type Statistics struct {
	TotalElements      int `json:"total_elements"`
	ParsedElements     int `json:"parsed_elements"`
	DiscoveredElements int `json:"discovered_elements"`
}

type ElementEntry struct {
	Selector     string         `json:"selector"`
	Type         ElementType    `json:"type"`
	Alternatives []string       `json:"alternatives,omitempty"`
	Description  string         `json:"description,omitempty"`
	Source       Source         `json:"source,omitempty"`
	Query        string         `json:"query,omitempty"`
	UsageCount   int            `json:"usage_count"`
	LastUsed     string         `json:"last_used,omitempty"`
	DiscoveredAt string         `json:"discovered_at,omitempty"`
	DiscoveredIn string         `json:"discovered_in,omitempty"`
	Discovery    *DiscoveryInfo `json:"discovery,omitempty"`

	// Attributes captured by the HTML bootstrapper.
	Href         string   `json:"href,omitempty"`
	AriaExpanded string   `json:"aria_expanded,omitempty"`
	Value        string   `json:"value,omitempty"`
	InputType    string   `json:"input_type,omitempty"`
	Options      []string `json:"options,omitempty"`
}

type ElementType string

const (
	ElementTypeButton     ElementType = "button"
	ElementTypeLink       ElementType = "link"
	ElementTypeAccordion  ElementType = "accordion"
	ElementTypeCheckbox   ElementType = "checkbox"
	ElementTypeInput      ElementType = "input"
	ElementTypeSelect     ElementType = "select"
	ElementTypeTable      ElementType = "table"
	ElementTypeTab        ElementType = "tab"
	ElementTypeDiscovered ElementType = "discovered"
	ElementTypeUnknown    ElementType = "unknown"
)

type Source string

const (
	SourceInitialParse Source = "initial_parse"
	SourceLLMDiscovery Source = "llm_discovery"
	SourceDiscovered   Source = "discovered"
)

type DiscoveryMethod string

const (
	DiscoveryMethodTreeClimbing     DiscoveryMethod = "tree_climbing"
	DiscoveryMethodAIDisambiguation DiscoveryMethod = "ai_disambiguation"
	DiscoveryMethodUnknown          DiscoveryMethod = "unknown"
)

// ParseDiscoveryMethod maps free text to a known method, defaulting to unknown.
func ParseDiscoveryMethod(s string) DiscoveryMethod {
	switch DiscoveryMethod(s) {
	case DiscoveryMethodTreeClimbing, DiscoveryMethodAIDisambiguation:
		return DiscoveryMethod(s)
	default:
		return DiscoveryMethodUnknown
	}
}

// DiscoveryInfo is stored on entries healed from a runtime fallback.
type DiscoveryInfo struct {
	Method       DiscoveryMethod `json:"method"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	DiscoveredAt string          `json:"discovered_at"`
}

// Discovery is what a driver reports after a fallback locator worked.
type Discovery struct {
	Name          string
	OriginalQuery string
	FinalSelector string
	Method        DiscoveryMethod
	Metadata      map[string]any
}

// NewCatalogDocument returns the default shape used on lazy creation.
func NewCatalogDocument(site, page string, now time.Time) *CatalogDocument {
	return &CatalogDocument{
		Page:      page,
		SiteURL:   "https://" + site,
		Version:   InitialVersion,
		Timestamp: FormatTime(now),
		Elements:  make(map[string]ElementEntry),
	}
}

// BumpVersion advances the version by exactly one tenth.
func (d *CatalogDocument) BumpVersion() {
	d.Version = NextVersion(d.Version)
}

// RecountElements refreshes statistics.total_elements.
func (d *CatalogDocument) RecountElements() {
	d.Statistics.TotalElements = len(d.Elements)
}

func (d *CatalogDocument) Clone() *CatalogDocument {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Elements = make(map[string]ElementEntry, len(d.Elements))

	for name, entry := range d.Elements {
		clone.Elements[name] = entry.Clone()
	}

	return &clone
}

func (e ElementEntry) Clone() ElementEntry {
	if e.Alternatives != nil {
		e.Alternatives = append([]string(nil), e.Alternatives...)
	}

	if e.Options != nil {
		e.Options = append([]string(nil), e.Options...)
	}

	if e.Discovery != nil {
		info := *e.Discovery
		if info.Metadata != nil {
			info.Metadata = make(map[string]any, len(e.Discovery.Metadata))
			for k, v := range e.Discovery.Metadata {
				info.Metadata[k] = v
			}
		}
		e.Discovery = &info
	}

	return e
}

// NextVersion parses a decimal version and adds 0.1. Unparseable input
// restarts from the initial version.
func NextVersion(version string) string {
	v, err := strconv.ParseFloat(version, 64)
	if err != nil || v < 0 {
		v, _ = strconv.ParseFloat(InitialVersion, 64)
	}

	tenths := int64(math.Round(v*10)) + 1

	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}

func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}

// ProbeResult is what a browser reports for a locator on the live page.
type ProbeResult struct {
	Selector string
	Exists   bool
	Visible  bool
	Count    int
	Text     string
}
