// Package club holds the domain logic of the club site: collection
// configuration, property extraction, the member hierarchy, and the
// service that assembles views from upstream records.
package club

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"rutanorte/api/internal/notion"
)

// Display sentinels. Extraction is total: every tag, including
// unrecognized ones, maps to one of these instead of failing.
const (
	NoData            = "No data"
	NoTitle           = "No title"
	NoText            = "No text"
	NoNumber          = "No number"
	NoSelection       = "No selection"
	NoSelections      = "No selections"
	NoDate            = "No date"
	NoURL             = "No URL"
	NoEmail           = "No email"
	NoPhone           = "No phone"
	NoFormulaResult   = "No formula result"
	FormulaUnusable   = "Formula result unavailable"
	RelatedItem       = "Related item"
	NoRelatedItems    = "No related items"
	NoRollupResult    = "No rollup result"
	NoDateRollup      = "No date rollup"
	RollupUnusable    = "Rollup data unavailable"
	NoRollupData      = "No rollup data"
	UnsupportedType   = "Unsupported type"
	CheckboxChecked   = "Yes"
	CheckboxUnchecked = "No"
)

// Ordered alias lists for the logical fields the views consume. The same
// logical field appears under several property names across the upstream
// databases, so lookup always walks these lists in order.
var (
	NameAliases        = []string{"Name", "Nombre", "Title", "Título"}
	DescriptionAliases = []string{"Descripción", "Description", "Detalles", "Details"}
	MemberTypeAliases  = []string{"Tipo", "Type", "Category", "Tipo de miembro"}
	AchievementAliases = []string{"Logros", "Achievements", "Conquistas"}
	DifficultyAliases  = []string{"Dificultad", "Difficulty", "Nivel", "Level"}
	BloodTypeAliases   = []string{"Tipo de sangre", "Blood Type", "Grupo sanguíneo"}
	JoinDateAliases    = []string{"Fecha de ingreso", "Join Date", "Fecha de afiliación"}
	MotorcycleAliases  = []string{"Moto", "Motorcycle", "Motocicleta"}
	TotalKmAliases     = []string{"Total kilómetros recorridos", "Total KM", "Kilómetros totales"}
	RoutesTakenAliases = []string{"Rutas participadas", "Participated Routes", "Rutas"}
)

// FindProperty returns the first property matching one of the aliases.
func FindProperty(props map[string]notion.PropertyValue, aliases []string) (notion.PropertyValue, bool) {
	for _, alias := range aliases {
		if pv, ok := props[alias]; ok {
			return pv, true
		}
	}
	return notion.PropertyValue{}, false
}

// ExtractAlias extracts the display value of the first property matching
// one of the aliases, or returns fallback when none is present.
func ExtractAlias(props map[string]notion.PropertyValue, aliases []string, fallback string) string {
	pv, ok := FindProperty(props, aliases)
	if !ok {
		return fallback
	}
	return Extract(pv)
}

// Extract maps a tagged property value to a display string. It never
// fails; missing payloads yield sentinels. Relation properties are not
// resolved here, they need record fetches handled by the service.
func Extract(pv notion.PropertyValue) string {
	switch pv.Type {
	case "title":
		if len(pv.Title) == 0 {
			return NoTitle
		}
		return pv.Title[0].PlainText
	case "rich_text":
		if len(pv.RichText) == 0 {
			return NoText
		}
		return pv.RichText[0].PlainText
	case "number":
		// An explicit nil check: zero is a value, not an absence.
		if pv.Number == nil {
			return NoNumber
		}
		return formatNumber(*pv.Number)
	case "select":
		if pv.Select == nil {
			return NoSelection
		}
		return pv.Select.Name
	case "multi_select":
		if len(pv.MultiSelect) == 0 {
			return NoSelections
		}
		return joinOptionNames(pv.MultiSelect)
	case "date":
		if pv.Date == nil {
			return NoDate
		}
		return FormatDate(pv.Date.Start)
	case "checkbox":
		if pv.Checkbox {
			return CheckboxChecked
		}
		return CheckboxUnchecked
	case "url":
		if pv.URL == nil || *pv.URL == "" {
			return NoURL
		}
		return *pv.URL
	case "email":
		if pv.Email == nil || *pv.Email == "" {
			return NoEmail
		}
		return *pv.Email
	case "phone_number":
		if pv.PhoneNumber == nil || *pv.PhoneNumber == "" {
			return NoPhone
		}
		return *pv.PhoneNumber
	case "formula":
		return extractFormula(pv.Formula)
	case "rollup":
		return extractRollup(pv.Rollup)
	default:
		return UnsupportedType
	}
}

func extractFormula(f *notion.Formula) string {
	if f == nil {
		return NoFormulaResult
	}
	switch f.Type {
	case "string":
		if f.String == nil || *f.String == "" {
			return NoFormulaResult
		}
		return *f.String
	case "number":
		if f.Number == nil {
			return NoFormulaResult
		}
		return formatNumber(*f.Number)
	case "boolean":
		if f.Boolean != nil && *f.Boolean {
			return CheckboxChecked
		}
		return CheckboxUnchecked
	case "date":
		if f.Date == nil {
			return NoDate
		}
		return FormatDate(f.Date.Start)
	default:
		return FormulaUnusable
	}
}

func extractRollup(r *notion.Rollup) string {
	if r == nil {
		return NoRollupData
	}
	switch r.Type {
	case "array":
		if len(r.Array) == 0 {
			return NoRelatedItems
		}
		labels := make([]string, 0, len(r.Array))
		for _, item := range r.Array {
			labels = append(labels, rollupItemLabel(item))
		}
		return strings.Join(labels, ", ")
	case "number":
		if r.Number == nil {
			return NoRollupResult
		}
		return formatNumber(*r.Number)
	case "date":
		if r.Date == nil {
			return NoDateRollup
		}
		return FormatDate(r.Date.Start)
	default:
		return RollupUnusable
	}
}

// rollupItemLabel picks a short label for one related item, preferring
// title, then rich text, then select, then number.
func rollupItemLabel(item notion.PropertyValue) string {
	switch {
	case item.Type == "title" && len(item.Title) > 0:
		return item.Title[0].PlainText
	case item.Type == "rich_text" && len(item.RichText) > 0:
		return item.RichText[0].PlainText
	case item.Type == "select" && item.Select != nil:
		return item.Select.Name
	case item.Type == "number" && item.Number != nil:
		return formatNumber(*item.Number)
	default:
		return RelatedItem
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// spanishMonths holds the abbreviated month names the views use.
var spanishMonths = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sep", "oct", "nov", "dic",
}

func formatSpanishDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}

// FormatDate renders an upstream timestamp for display in Spanish.
// Date-only values skip the time component; unparseable input passes
// through untouched.
func FormatDate(value string) string {
	if value == "" {
		return NoDate
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return formatSpanishDate(t)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return formatSpanishDate(t) + t.Format(", 15:04")
	}
	return value
}

func joinOptionNames(options []notion.SelectOption) string {
	names := make([]string, 0, len(options))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	return strings.Join(names, ", ")
}
