package models

import "testing"

func TestMergePurchase_WeightedAverage(t *testing.T) {
	h := &Holding{Ticker: "AAPL", UnitsHeld: 100, BoughtPrice: 150, PositionType: PositionLong}

	if err := h.MergePurchase(50, 180, PositionLong); err != nil {
		t.Fatalf("MergePurchase failed: %v", err)
	}

	if h.UnitsHeld != 150 {
		t.Errorf("expected 150 units, got %v", h.UnitsHeld)
	}
	if h.BoughtPrice != 160.00 {
		t.Errorf("expected merged price 160.00, got %v", h.BoughtPrice)
	}
}

func TestMergePurchase_RoundsToTwoDecimals(t *testing.T) {
	h := &Holding{Ticker: "TSLA", UnitsHeld: 3, BoughtPrice: 100, PositionType: PositionLong}

	if err := h.MergePurchase(1, 100.01, PositionLong); err != nil {
		t.Fatalf("MergePurchase failed: %v", err)
	}

	// (3*100 + 1*100.01) / 4 = 100.0025 -> 100.00
	if h.BoughtPrice != 100.00 {
		t.Errorf("expected 100.00, got %v", h.BoughtPrice)
	}
	if h.UnitsHeld != 4 {
		t.Errorf("expected 4 units, got %v", h.UnitsHeld)
	}
}

func TestMergePurchase_PositionTypeImmutable(t *testing.T) {
	h := &Holding{Ticker: "AAPL", UnitsHeld: 10, BoughtPrice: 150, PositionType: PositionLong}

	if err := h.MergePurchase(5, 140, PositionShort); err == nil {
		t.Fatal("expected error merging short purchase into long holding")
	}
	if h.UnitsHeld != 10 || h.BoughtPrice != 150 {
		t.Errorf("holding mutated on failed merge: %+v", h)
	}
}

func TestMergePurchase_RejectsNonPositiveUnits(t *testing.T) {
	h := &Holding{Ticker: "AAPL", UnitsHeld: 10, BoughtPrice: 150, PositionType: PositionLong}

	for _, units := range []float64{0, -5} {
		if err := h.MergePurchase(units, 140, PositionLong); err == nil {
			t.Errorf("expected error for units=%v", units)
		}
	}
	if h.UnitsHeld <= 0 {
		t.Error("units must stay positive after rejected merges")
	}
}

func TestHoldingValue_FallsBackToBoughtPrice(t *testing.T) {
	h := &Holding{UnitsHeld: 10, BoughtPrice: 150}
	if got := h.Value(); got != 1500 {
		t.Errorf("expected 1500, got %v", got)
	}

	h.CurrentPrice = 160
	if got := h.Value(); got != 1600 {
		t.Errorf("expected 1600, got %v", got)
	}
}

func TestParseRecommendation(t *testing.T) {
	cases := map[string]Recommendation{
		"BUY":   RecommendationBuy,
		"buy":   RecommendationBuy,
		" Sell ": RecommendationSell,
		"HOLD":  RecommendationHold,
		"hodl":  RecommendationHold,
		"":      RecommendationHold,
	}
	for in, want := range cases {
		if got := ParseRecommendation(in); got != want {
			t.Errorf("ParseRecommendation(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestUserFirstName(t *testing.T) {
	cases := []struct {
		user User
		want string
	}{
		{User{DisplayName: "Jane Citizen", Email: "jane@example.com"}, "Jane"},
		{User{Email: "Bob.Smith@example.com"}, "bob.smith"},
		{User{Email: "noatsign"}, "noatsign"},
	}
	for _, c := range cases {
		if got := c.user.FirstName(); got != c.want {
			t.Errorf("FirstName(%+v) = %q, want %q", c.user, got, c.want)
		}
	}
}

func TestPriceSeries_FirstLastClose_SkipNil(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	s := &PriceSeries{Closes: []*float64{nil, f(148.2), f(151.7), nil, f(160.1), nil}}

	if got := s.FirstClose(); got != 148.2 {
		t.Errorf("FirstClose = %v, want 148.2", got)
	}
	if got := s.LastClose(); got != 160.1 {
		t.Errorf("LastClose = %v, want 160.1", got)
	}

	empty := &PriceSeries{Closes: []*float64{nil, nil}}
	if empty.FirstClose() != 0 || empty.LastClose() != 0 {
		t.Error("all-nil series should report 0 closes")
	}
}
