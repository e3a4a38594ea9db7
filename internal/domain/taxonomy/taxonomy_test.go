package taxonomy

import (
	"errors"
	"testing"

	"github.com/ManuGH/fieldpulse/internal/domain/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Historical analytics join on these pairs; changing one is a breaking change.
var goldenCategories = map[model.DormancyCode]model.DormancyCategory{
	"COMP_LOW_COMMISSION":          model.CategoryCompensation,
	"COMP_DELAYED_PAYOUT":          model.CategoryCompensation,
	"COMP_CLAWBACK_DISPUTE":        model.CategoryCompensation,
	"COMP_INCENTIVE_MISSED":        model.CategoryCompensation,
	"COMP_EXPENSES_UNCOVERED":      model.CategoryCompensation,
	"TRN_NO_ONBOARDING":            model.CategoryTrainingGap,
	"TRN_SALES_SKILLS":             model.CategoryTrainingGap,
	"TRN_DIGITAL_TOOLS":            model.CategoryTrainingGap,
	"TRN_CERTIFICATION_PENDING":    model.CategoryTrainingGap,
	"PRD_FEATURES_UNCLEAR":         model.CategoryProductConfusion,
	"PRD_PREMIUM_CALCULATION":      model.CategoryProductConfusion,
	"PRD_UNDERWRITING_REJECTIONS":  model.CategoryProductConfusion,
	"PRD_PORTFOLIO_CHANGE":         model.CategoryProductConfusion,
	"PER_HEALTH":                   model.CategoryPersonal,
	"PER_FAMILY":                   model.CategoryPersonal,
	"PER_RELOCATION":               model.CategoryPersonal,
	"PER_OTHER_EMPLOYMENT":         model.CategoryPersonal,
	"PER_STUDIES":                  model.CategoryPersonal,
	"CMP_HIGHER_COMMISSION_OFFER":  model.CategoryCompetitivePoaching,
	"CMP_JOINED_COMPETITOR":        model.CategoryCompetitivePoaching,
	"CMP_BETTER_SUPPORT_ELSEWHERE": model.CategoryCompetitivePoaching,
	"ADM_LICENSE_EXPIRED":          model.CategoryAdministrative,
	"ADM_KYC_PENDING":              model.CategoryAdministrative,
	"ADM_SYSTEM_ACCESS":            model.CategoryAdministrative,
	"ADM_COORDINATOR_UNRESPONSIVE": model.CategoryAdministrative,
	"UNK_UNCLASSIFIED":             model.CategoryUnknown,
	"UNK_NO_RESPONSE":              model.CategoryUnknown,
}

func TestCatalog_Shape(t *testing.T) {
	assert.Len(t, Codes(), 27)
	assert.Len(t, Categories(), 7)

	got := make(map[model.DormancyCode]model.DormancyCategory)
	for _, r := range Reasons() {
		got[r.Code] = r.Category
	}
	if diff := cmp.Diff(goldenCategories, got); diff != "" {
		t.Errorf("code to category mapping changed (-want +got):\n%s", diff)
	}
}

func TestCatalog_EveryCategoryPopulated(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
		codes := CodesIn(c)
		assert.NotEmpty(t, codes, "category %s has no codes", c)
		total += len(codes)
	}
	assert.Equal(t, len(Codes()), total, "each code belongs to exactly one category")
}

func TestCatalog_LabelsPresent(t *testing.T) {
	for _, r := range Reasons() {
		assert.NotEmpty(t, r.Labels.EN, r.Code)
		assert.NotEmpty(t, r.Labels.HI, r.Code)
	}
	for _, c := range Categories() {
		assert.NotEqual(t, string(c), CategoryLabel(c, model.LocaleEnglish))
		assert.NotEqual(t, CategoryLabel(c, model.LocaleEnglish), CategoryLabel(c, model.LocaleHindi))
	}
}

func TestReasonByCode(t *testing.T) {
	r, err := ReasonByCode(model.CodeDelayedPayout)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCompensation, r.Category)
	assert.Equal(t, "Delayed commission payout", r.Label(model.LocaleEnglish))

	_, err = ReasonByCode("NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownReasonCode))
	assert.False(t, Known("NOPE"))
	assert.True(t, Known(DefaultCode))
}

func TestCategoryOf(t *testing.T) {
	c, err := CategoryOf(DefaultCode)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUnknown, c)

	_, err = CategoryOf("")
	assert.ErrorIs(t, err, ErrUnknownReasonCode)
}

func TestCategoryLabel_Locales(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		locale model.Locale
		want   string
	}{
		{"english", "en", "Training gap"},
		{"hindi", "hi", "प्रशिक्षण की कमी"},
		{"regional hindi", "hi-IN", "प्रशिक्षण की कमी"},
		{"regional english", "en-GB", "Training gap"},
		{"unsupported falls back", "fr", "Training gap"},
		{"garbage falls back", "!!", "Training gap"},
		{"empty falls back", "", "Training gap"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CategoryLabel(model.CategoryTrainingGap, tt.locale))
		})
	}
}

func TestCategoryLabel_UnknownCategory(t *testing.T) {
	assert.Equal(t, "mystery", CategoryLabel("mystery", model.LocaleEnglish))
}

func TestListingsAreCopies(t *testing.T) {
	codes := Codes()
	codes[0] = "MUTATED"
	assert.Equal(t, model.CodeLowCommission, Codes()[0])

	rs := Reasons()
	rs[0].Category = model.CategoryUnknown
	c, err := CategoryOf(model.CodeLowCommission)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCompensation, c)
}
