package filters

import "testing"

func TestParseMetadataHeader(t *testing.T) {
	body := "[Adblock Plus 2.0]\r\n" +
		"! Title: EasyTest\r\n" +
		"! Description: a test list\r\n" +
		"! Version: 202608240101\r\n" +
		"! Homepage: https://example.org/list\r\n" +
		"! Expires: 4 days (update frequency)\r\n" +
		"! Last modified: 24 Aug 2026 01:01 UTC\r\n" +
		"||ads.example.org^\r\n" +
		"! a mid-list comment, not a header field\r\n" +
		"||tracker.example.net^\r\n"

	meta := ParseMetadata(body)
	if meta.Title != "EasyTest" {
		t.Fatalf("Title = %q; want %q", meta.Title, "EasyTest")
	}
	if meta.Description != "a test list" {
		t.Fatalf("Description = %q; want %q", meta.Description, "a test list")
	}
	if meta.Version != "202608240101" {
		t.Fatalf("Version = %q; want %q", meta.Version, "202608240101")
	}
	if meta.Homepage != "https://example.org/list" {
		t.Fatalf("Homepage = %q; want %q", meta.Homepage, "https://example.org/list")
	}
	if meta.ExpiresSec != 4*24*3600 {
		t.Fatalf("ExpiresSec = %d; want %d", meta.ExpiresSec, 4*24*3600)
	}
	if meta.TimeUpdated != "24 Aug 2026 01:01 UTC" {
		t.Fatalf("TimeUpdated = %q; want last-modified value", meta.TimeUpdated)
	}
	if meta.RuleCount != 2 {
		t.Fatalf("RuleCount = %d; want 2", meta.RuleCount)
	}
}

func TestParseMetadataIgnoresHeaderFieldsAfterRules(t *testing.T) {
	body := "||first.example^\n! Title: Late Title\n||second.example^\n"
	meta := ParseMetadata(body)
	if meta.Title != "" {
		t.Fatalf("Title = %q; want empty (field appeared after rules)", meta.Title)
	}
	if meta.RuleCount != 2 {
		t.Fatalf("RuleCount = %d; want 2", meta.RuleCount)
	}
}

func TestParseExpires(t *testing.T) {
	cases := map[string]int64{
		"4 days":                     4 * 24 * 3600,
		"12 hours":                   12 * 3600,
		"1 day":                      24 * 3600,
		"6 hours (update frequency)": 6 * 3600,
		"5":                          5 * 24 * 3600,
		"soon":                       0,
		"":                           0,
		"-2 days":                    0,
	}
	for in, want := range cases {
		if got := parseExpires(in); got != want {
			t.Errorf("parseExpires(%q) = %d; want %d", in, got, want)
		}
	}
}
