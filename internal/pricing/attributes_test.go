package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func flatValue(value, adj string, percentage bool) AttributeValue {
	return AttributeValue{
		Value:                       value,
		PriceAdjustment:             decimal.RequireFromString(adj),
		PriceAdjustmentIsPercentage: percentage,
	}
}

func TestAttributeAdjustmentFlatContribution(t *testing.T) {
	attrs := []Attribute{{
		Key:           "finish",
		SelectedValue: "gloss",
		Values:        []AttributeValue{flatValue("matte", "0", false), flatValue("gloss", "25", false)},
	}}

	for _, base := range []string{"10", "1000"} {
		got, err := AttributeAdjustment(5, decimal.RequireFromString(base), attrs, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(decimal.RequireFromString("25")) {
			t.Fatalf("flat adjustment must ignore base price %s, got %s", base, got)
		}
	}
}

func TestAttributeAdjustmentPercentageScalesWithBasePrice(t *testing.T) {
	attrs := []Attribute{{
		Key:           "rush",
		SelectedValue: "next-day",
		Values:        []AttributeValue{flatValue("next-day", "10", true)},
	}}

	single, err := AttributeAdjustment(5, decimal.NewFromInt(200), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !single.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected 10%% of 200 = 20, got %s", single)
	}

	doubled, err := AttributeAdjustment(5, decimal.NewFromInt(400), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !doubled.Equal(single.Mul(decimal.NewFromInt(2))) {
		t.Fatalf("doubling base price must double percentage contribution, got %s", doubled)
	}
}

func TestAttributeAdjustmentNoSelectionContributesZero(t *testing.T) {
	attrs := []Attribute{
		{Key: "finish", Values: []AttributeValue{flatValue("gloss", "25", false)}},
		{Key: "rush", Values: []AttributeValue{flatValue("next-day", "10", true)}},
	}

	got, err := AttributeAdjustment(5, decimal.NewFromInt(100), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("unselected attributes must contribute zero, got %s", got)
	}
}

func TestAttributeAdjustmentTieredAbsoluteAddend(t *testing.T) {
	attrs := []Attribute{{
		Key:           "lamination",
		SelectedValue: "uv",
		Values: []AttributeValue{{
			Value: "uv",
			// Percentage flag must be ignored when tiers drive the adjustment.
			PriceAdjustmentIsPercentage: true,
			UseTierAdjustment:           true,
			TierAdjustments:             []Tier{tier(1, "3"), tier(100, "2")},
		}},
	}}

	got, err := AttributeAdjustment(150, decimal.NewFromInt(1000), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected tier price 2 as absolute addend, got %s", got)
	}
}

func TestAttributeAdjustmentTieredNoMatchContributesZero(t *testing.T) {
	attrs := []Attribute{{
		Key:           "lamination",
		SelectedValue: "uv",
		Values: []AttributeValue{{
			Value:             "uv",
			PriceAdjustment:   decimal.NewFromInt(50),
			UseTierAdjustment: true,
			TierAdjustments:   []Tier{tier(100, "2")},
		}},
	}}

	got, err := AttributeAdjustment(10, decimal.NewFromInt(100), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("no tier match must contribute zero, not fall back to flat, got %s", got)
	}
}

func TestAttributeAdjustmentTieredHonorsRoles(t *testing.T) {
	attrs := []Attribute{{
		Key:           "lamination",
		SelectedValue: "uv",
		Values: []AttributeValue{{
			Value:             "uv",
			UseTierAdjustment: true,
			TierAdjustments:   []Tier{roleTier(1, "1.50", "wholesale"), tier(1, "3")},
		}},
	}}

	got, err := AttributeAdjustment(10, decimal.NewFromInt(100), attrs, []string{"wholesale"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1.50")) {
		t.Fatalf("expected wholesale tier adjustment, got %s", got)
	}
}

func TestAttributeAdjustmentSumsAcrossAttributes(t *testing.T) {
	attrs := []Attribute{
		{
			Key:           "finish",
			SelectedValue: "gloss",
			Values:        []AttributeValue{flatValue("gloss", "25", false)},
		},
		{
			Key:           "rush",
			SelectedValue: "next-day",
			Values:        []AttributeValue{flatValue("next-day", "10", true)},
		},
		{
			Key:    "unused",
			Values: []AttributeValue{flatValue("x", "999", false)},
		},
	}

	got, err := AttributeAdjustment(5, decimal.NewFromInt(200), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("expected 25 + 20 = 45, got %s", got)
	}
}

func TestAttributeAdjustmentUnknownSelectionRejected(t *testing.T) {
	attrs := []Attribute{{
		Key:           "finish",
		SelectedValue: "chrome",
		Values:        []AttributeValue{flatValue("gloss", "25", false)},
	}}

	_, err := AttributeAdjustment(5, decimal.NewFromInt(100), attrs, nil)
	assertValidationError(t, err)
}

func TestAttributeAdjustmentNegativeInputsRejected(t *testing.T) {
	_, err := AttributeAdjustment(-1, decimal.NewFromInt(100), nil, nil)
	assertValidationError(t, err)

	_, err = AttributeAdjustment(5, decimal.NewFromInt(-100), nil, nil)
	assertValidationError(t, err)
}

func TestAttributeAdjustmentNegativeFlatDelta(t *testing.T) {
	attrs := []Attribute{{
		Key:           "finish",
		SelectedValue: "plain",
		Values:        []AttributeValue{flatValue("plain", "-5", false)},
	}}

	got, err := AttributeAdjustment(5, decimal.NewFromInt(100), attrs, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("negative flat deltas are legal, got %s", got)
	}
}
