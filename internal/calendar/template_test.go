package calendar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTemplateIntents(t *testing.T) {
	tmpl, err := ResolveTemplate(RawTemplate{
		"Monday":   {"Morning": "cat_5", "noon": "pe", "afternoon": "review"},
		"saturday": {"afternoon": "EMPTY"},
	})
	require.NoError(t, err)

	assert.Equal(t, SlotIntent{Kind: IntentCategory, Category: "5"}, tmpl.Intent(Monday, Morning))
	assert.Equal(t, SlotIntent{Kind: IntentSpecialActivity, Activity: ActivityPhysicalEducation}, tmpl.Intent(Monday, Noon))
	assert.Equal(t, SlotIntent{Kind: IntentSpecialActivity, Activity: ActivityReview}, tmpl.Intent(Monday, Afternoon))
	assert.Equal(t, IntentEmpty, tmpl.Intent(Saturday, Afternoon).Kind)
	assert.Equal(t, IntentEmpty, tmpl.Intent(Tuesday, Morning).Kind, "absent pairs default to empty")
}

func TestResolveTemplateUnknownValueIsEmpty(t *testing.T) {
	tmpl, err := ResolveTemplate(RawTemplate{"monday": {"morning": "assembly"}})
	require.NoError(t, err)
	assert.Equal(t, IntentEmpty, tmpl.Intent(Monday, Morning).Kind)
}

func TestResolveTemplateRejectsUnknownDay(t *testing.T) {
	_, err := ResolveTemplate(RawTemplate{"sunday": {"morning": "cat_1"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTemplate))

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "sunday", tmplErr.Day)
}

func TestResolveTemplateRejectsUnknownSlot(t *testing.T) {
	_, err := ResolveTemplate(RawTemplate{"monday": {"evening": "pe"}})
	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "evening", tmplErr.Slot)
}

func TestResolveTemplateRejectsMalformedCategory(t *testing.T) {
	for _, value := range []string{"cat_", "cat_ 5", "cat_a/b", "cat_-x"} {
		_, err := ResolveTemplate(RawTemplate{"friday": {"noon": value}})
		var tmplErr *TemplateError
		require.ErrorAs(t, err, &tmplErr, value)
		assert.Equal(t, value, tmplErr.Value)
		assert.Equal(t, "noon", tmplErr.Slot)
	}
}

func TestResolveTemplateRejectsCaseFoldedDuplicates(t *testing.T) {
	raw := RawTemplate{
		"Monday": {"morning": "cat_a"},
		"monday": {"morning": "cat_b"},
	}
	for i := 0; i < 50; i++ {
		_, err := ResolveTemplate(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTemplate))

		var tmplErr *TemplateError
		require.ErrorAs(t, err, &tmplErr)
		assert.Equal(t, "monday", tmplErr.Day)
		assert.Equal(t, "morning", tmplErr.Slot)
		assert.Equal(t, "duplicate day/slot", tmplErr.Reason)
	}

	_, err := ResolveTemplate(RawTemplate{"tuesday": {"Noon": "pe", "noon": "review"}})
	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "duplicate day/slot", tmplErr.Reason)
}

func TestResolveTemplateReportsFirstErrorInLabelOrder(t *testing.T) {
	raw := RawTemplate{
		"friday":  {"noon": "cat_"},
		"monday":  {"evening": "pe"},
		"sunday":  {"morning": "cat_1"},
		"tuesday": {"morning": "cat_a/b"},
	}
	first, err := ResolveTemplate(raw)
	require.Error(t, err)
	assert.Equal(t, WeeklyTemplate{}, first)
	for i := 0; i < 50; i++ {
		_, again := ResolveTemplate(raw)
		assert.Equal(t, err.Error(), again.Error())
	}

	var tmplErr *TemplateError
	require.ErrorAs(t, err, &tmplErr)
	assert.Equal(t, "friday", tmplErr.Day)
	assert.Equal(t, "cat_", tmplErr.Value)
}

func TestWeeklyTemplateCategoryIDsAndRaw(t *testing.T) {
	tmpl, err := ResolveTemplate(RawTemplate{
		"monday":  {"morning": "cat_math", "noon": "cat_art"},
		"tuesday": {"morning": "cat_math", "afternoon": "pe"},
	})
	require.NoError(t, err)

	assert.Equal(t, []CategoryID{"math", "art"}, tmpl.CategoryIDs())

	raw := tmpl.Raw()
	assert.Len(t, raw, len(Days))
	assert.Equal(t, "cat_math", raw["monday"]["morning"])
	assert.Equal(t, "pe", raw["tuesday"]["afternoon"])
	assert.Equal(t, "empty", raw["saturday"]["noon"])

	again, err := ResolveTemplate(raw)
	require.NoError(t, err)
	assert.Equal(t, tmpl, again)
}
