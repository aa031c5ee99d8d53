package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"equity", CategoryEquity},
		{" Stock ", CategoryEquity},
		{"ETF", CategoryEquity},
		{"index", CategoryEquity},
		{"Crypto", CategoryCrypto},
		{"real estate", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseCategory(tt.input); got != tt.want {
				t.Errorf("ParseCategory(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  Action
		ok    bool
	}{
		{"ACCUMULATE", ActionAccumulate, true},
		{"hold", ActionHold, true},
		{"Trim", ActionTrim, true},
		{"EXIT", ActionExit, true},
		{"BUY", ActionAccumulate, true},
		{"AVOID", ActionExit, true},
		{"SELL", ActionTrim, true},
		{"MAYBE", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAction(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseAction(%q) = (%s, %v), want (%s, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	if NA.IsKnown() {
		t.Error("NA should be unavailable")
	}
	var zero Float
	if zero.IsKnown() {
		t.Error("zero value should be unavailable")
	}

	f := Known(0)
	if v, ok := f.Get(); !ok || v != 0 {
		t.Error("Known(0) should be a known zero, not unavailable")
	}

	if Known(math.NaN()).IsKnown() || Known(math.Inf(1)).IsKnown() {
		t.Error("NaN and Inf should be unavailable")
	}

	if NA.Or(7) != 7 || Known(3).Or(7) != 3 {
		t.Error("Or returned wrong value")
	}
}

func TestFloat_JSON(t *testing.T) {
	q := Quote{CurrentPrice: Known(120.5)}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"current_price":120.5,"high_52w":null,"low_52w":null,"prev_close":null,"day_change_pct":null}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Quote
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != q {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestQuote_Absent(t *testing.T) {
	if !(Quote{}).Absent() {
		t.Error("zero quote should be absent")
	}
	if (Quote{Low52w: Known(1)}).Absent() {
		t.Error("quote with a known field is not absent")
	}
}
