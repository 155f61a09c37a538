package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestInterpolatePriceBetweenBreakpoints(t *testing.T) {
	tiers := []Tier{tier(1, "5"), tier(50, "17"), tier(250, "60")}

	got, err := InterpolatePrice(25, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 + (25-1)/(50-1) * (17-5) = 5 + 24/49*12
	want := decimal.RequireFromString("5").Add(
		decimal.NewFromInt(24).Div(decimal.NewFromInt(49)).Mul(decimal.NewFromInt(12)))
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got.StringFixed(2) != "10.88" {
		t.Fatalf("expected 10.88, got %s", got.StringFixed(2))
	}
}

func TestInterpolatePriceContinuousAtBoundaries(t *testing.T) {
	tiers := []Tier{tier(1, "5"), tier(50, "4"), tier(250, "3")}

	for _, tr := range tiers {
		got, err := InterpolatePrice(tr.MinQty, tiers)
		if err != nil {
			t.Fatalf("unexpected error at qty %d: %v", tr.MinQty, err)
		}
		if !got.Equal(tr.UnitPrice) {
			t.Fatalf("at qty %d expected %s, got %s", tr.MinQty, tr.UnitPrice, got)
		}
	}
}

func TestInterpolatePriceClampsOutsideRange(t *testing.T) {
	tiers := []Tier{tier(10, "9"), tier(100, "6")}

	below, err := InterpolatePrice(3, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !below.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("expected clamp to min tier price, got %s", below)
	}

	above, err := InterpolatePrice(5000, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !above.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected clamp to max tier price, got %s", above)
	}
}

func TestInterpolatePriceMonotonicBetweenTiers(t *testing.T) {
	tiers := []Tier{tier(10, "9"), tier(100, "6")}

	prev, err := InterpolatePrice(10, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for qty := 11; qty <= 100; qty++ {
		got, err := InterpolatePrice(qty, tiers)
		if err != nil {
			t.Fatalf("unexpected error at qty %d: %v", qty, err)
		}
		if got.GreaterThanOrEqual(prev) {
			t.Fatalf("price must strictly decrease: qty %d gave %s after %s", qty, got, prev)
		}
		prev = got
	}
}

func TestInterpolatePriceSingleTierIsFlat(t *testing.T) {
	tiers := []Tier{tier(10, "7.50")}

	for _, qty := range []int{0, 10, 999} {
		got, err := InterpolatePrice(qty, tiers)
		if err != nil {
			t.Fatalf("unexpected error at qty %d: %v", qty, err)
		}
		if !got.Equal(decimal.RequireFromString("7.50")) {
			t.Fatalf("single tier must be flat, qty %d gave %s", qty, got)
		}
	}
}

func TestInterpolatePriceUnsortedInput(t *testing.T) {
	tiers := []Tier{tier(250, "3"), tier(1, "5"), tier(50, "4")}

	got, err := InterpolatePrice(50, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected 4 at breakpoint 50, got %s", got)
	}
}

func TestInterpolatePriceDuplicateQuantityKeepsFirst(t *testing.T) {
	tiers := []Tier{tier(1, "5"), tier(50, "4"), tier(50, "2"), tier(100, "3")}

	got, err := InterpolatePrice(50, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected first duplicate breakpoint to win, got %s", got)
	}
}

func TestInterpolatePriceIgnoresRoleScopedTiers(t *testing.T) {
	tiers := []Tier{roleTier(1, "1", "vip"), tier(10, "9"), tier(100, "6")}

	got, err := InterpolatePrice(5, tiers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("role tiers must not participate, got %s", got)
	}
}

func TestInterpolatePriceEmptyTiersRejected(t *testing.T) {
	_, err := InterpolatePrice(10, nil)
	assertValidationError(t, err)

	// Only role-scoped entries leaves nothing to interpolate over.
	_, err = InterpolatePrice(10, []Tier{roleTier(1, "5", "vip")})
	assertValidationError(t, err)
}

func TestInterpolatePriceNegativeQuantityRejected(t *testing.T) {
	_, err := InterpolatePrice(-4, []Tier{tier(1, "5")})
	assertValidationError(t, err)
}
