package properties

import "testing"

func TestPropertyForFirstMatchWins(t *testing.T) {
	r := New([]Rule{
		{Match: "15550001111", Value: "villa_1"},
		{Match: "1555", Value: "villa_catchall"},
	}, nil, "default_villa", "")

	if got := r.PropertyFor("15550001111"); got != "villa_1" {
		t.Errorf("PropertyFor = %q, want villa_1", got)
	}
}

func TestPropertyForCaseInsensitive(t *testing.T) {
	r := New([]Rule{{Match: "Seminyak", Value: "villa_s"}}, nil, "", "")
	if got := r.PropertyFor("VILLA SEMINYAK MAIN"); got != "villa_s" {
		t.Errorf("PropertyFor = %q", got)
	}
}

func TestPropertyForFallsBackToDefault(t *testing.T) {
	r := New([]Rule{{Match: "known", Value: "villa_1"}}, nil, "default_villa", "")
	if got := r.PropertyFor("something else"); got != "default_villa" {
		t.Errorf("PropertyFor = %q, want default_villa", got)
	}
}

func TestCityForKnownMarkets(t *testing.T) {
	r := New(nil, DefaultCityRules, "", "")
	cases := []struct{ id, want string }{
		{"villa_nelayan_2", "Bali"},
		{"canggu_house", "Bali"},
		{"ubud_retreat", "Bali"},
		{"dubai_marina_12", "Dubai"},
	}
	for _, tc := range cases {
		if got := r.CityFor(tc.id); got != tc.want {
			t.Errorf("CityFor(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestCityForUnknownUsesFallback(t *testing.T) {
	r := New(nil, DefaultCityRules, "", "")
	if got := r.CityFor("mystery_villa"); got != "the local area" {
		t.Errorf("CityFor = %q, want the neutral fallback", got)
	}

	r2 := New(nil, DefaultCityRules, "", "Lisbon")
	if got := r2.CityFor("mystery_villa"); got != "Lisbon" {
		t.Errorf("CityFor with configured fallback = %q", got)
	}
}

func TestEmptyRuleNeverMatches(t *testing.T) {
	r := New([]Rule{{Match: "", Value: "never"}}, nil, "default_villa", "")
	if got := r.PropertyFor("anything"); got != "default_villa" {
		t.Errorf("empty rule matched: %q", got)
	}
}
