package engine

import (
	"reflect"
	"testing"
)

func TestBlockedPatternsSkipsNonNetworkRules(t *testing.T) {
	rules := "[Adblock Plus 2.0]\n" +
		"! Title: sample\n" +
		"@@||allowed.example^\n" +
		"example.org##.ad-banner\n" +
		"example.org#@#.ad-banner\n" +
		"||scripted.example^$script,third-party\n" +
		"||ads.example.org^\n"

	got := BlockedPatterns(rules)
	want := []string{"*ads.example.org*"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BlockedPatterns() = %v; want %v", got, want)
	}
}

func TestToURLPattern(t *testing.T) {
	cases := map[string]string{
		"||ads.example.org^":           "*ads.example.org*",
		"|https://exact.example/path|": "https://exact.example/path*",
		"/banner/img/":                 "*/banner/img/*",
		"tracker.example":              "*tracker.example*",
		"^":                            "",
		"||^":                          "",
	}
	for in, want := range cases {
		if got := toURLPattern(in); got != want {
			t.Errorf("toURLPattern(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestBlockedPatternsEmptyInput(t *testing.T) {
	if got := BlockedPatterns(""); got != nil {
		t.Fatalf("BlockedPatterns(\"\") = %v; want nil", got)
	}
}
