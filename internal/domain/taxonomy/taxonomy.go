// Package taxonomy is the read-only dormancy reason catalog: 27 reason codes
// grouped into 7 categories, each with English and Hindi display labels.
package taxonomy

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"golang.org/x/text/language"
)

// ErrUnknownReasonCode is returned for codes outside the catalog.
var ErrUnknownReasonCode = errors.New("unknown dormancy reason code")

// Labels holds the display text of an entry per supported locale.
type Labels struct {
	EN string `json:"en"`
	HI string `json:"hi"`
}

// Get returns the label for locale, falling back to the default locale.
func (l Labels) Get(locale model.Locale) string {
	if ResolveLocale(locale) == model.LocaleHindi && l.HI != "" {
		return l.HI
	}
	return l.EN
}

// Reason describes one dormancy reason code.
type Reason struct {
	Code     model.DormancyCode     `json:"code"`
	Category model.DormancyCategory `json:"category"`
	Labels   Labels                 `json:"labels"`
}

// Label returns the localized reason name.
func (r Reason) Label(locale model.Locale) string {
	return r.Labels.Get(locale)
}

type categoryEntry struct {
	category model.DormancyCategory
	labels   Labels
}

var (
	reasonIndex   = make(map[model.DormancyCode]Reason, len(reasons))
	categoryIndex = make(map[model.DormancyCategory]Labels, len(categories))

	supportedLocales = []model.Locale{model.LocaleEnglish, model.LocaleHindi}
	localeMatcher    = language.NewMatcher([]language.Tag{language.English, language.Hindi})
)

func init() {
	for _, c := range categories {
		categoryIndex[c.category] = c.labels
	}
	for _, r := range reasons {
		if _, dup := reasonIndex[r.Code]; dup {
			panic(fmt.Sprintf("taxonomy: duplicate code %s", r.Code))
		}
		if _, ok := categoryIndex[r.Category]; !ok {
			panic(fmt.Sprintf("taxonomy: code %s references unknown category %s", r.Code, r.Category))
		}
		reasonIndex[r.Code] = r
	}
}

// ReasonByCode returns the descriptor of code.
func ReasonByCode(code model.DormancyCode) (Reason, error) {
	r, ok := reasonIndex[code]
	if !ok {
		return Reason{}, fmt.Errorf("%w: %q", ErrUnknownReasonCode, code)
	}
	return r, nil
}

// Known reports whether code is in the catalog.
func Known(code model.DormancyCode) bool {
	_, ok := reasonIndex[code]
	return ok
}

// CategoryOf returns the category of code.
func CategoryOf(code model.DormancyCode) (model.DormancyCategory, error) {
	r, err := ReasonByCode(code)
	if err != nil {
		return "", err
	}
	return r.Category, nil
}

// CategoryLabel returns the localized name of category. Unsupported locales
// fall back to English; display lookup never fails.
func CategoryLabel(category model.DormancyCategory, locale model.Locale) string {
	labels, ok := categoryIndex[category]
	if !ok {
		return string(category)
	}
	return labels.Get(locale)
}

// ResolveLocale maps a BCP-47 locale onto a supported one ("hi-IN" → "hi").
func ResolveLocale(locale model.Locale) model.Locale {
	if locale == "" {
		return model.DefaultLocale
	}
	tag, err := language.Parse(string(locale))
	if err != nil {
		return model.DefaultLocale
	}
	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return model.DefaultLocale
	}
	return supportedLocales[idx]
}

// Codes returns every code in catalog order.
func Codes() []model.DormancyCode {
	out := make([]model.DormancyCode, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Code)
	}
	return out
}

// Reasons returns every descriptor in catalog order.
func Reasons() []Reason {
	return slices.Clone(reasons)
}

// CodesIn returns the codes of category in catalog order.
func CodesIn(category model.DormancyCategory) []model.DormancyCode {
	var out []model.DormancyCode
	for _, r := range reasons {
		if r.Category == category {
			out = append(out, r.Code)
		}
	}
	return out
}

// Categories returns all categories in catalog order.
func Categories() []model.DormancyCategory {
	out := make([]model.DormancyCategory, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.category)
	}
	return out
}
