package parser

import (
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	res := Parse("Met the #Troll at the bridge. #magic #troll\nmore #spells/fire later")
	want := []string{"troll", "magic", "spells/fire"}
	if len(res.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", res.Tags, want)
	}
	for i := range want {
		if res.Tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, res.Tags[i], want[i])
		}
	}
}

func TestParseTags_IgnoresNonTags(t *testing.T) {
	res := Parse("issue#12 and # alone and #1st")
	if len(res.Tags) != 0 {
		t.Errorf("expected no tags, got %v", res.Tags)
	}
}

func TestParseTags_Unicode(t *testing.T) {
	res := Parse("Сегодня #дневник")
	if len(res.Tags) != 1 || res.Tags[0] != "дневник" {
		t.Errorf("tags = %v", res.Tags)
	}
}

func TestHeadline(t *testing.T) {
	res := Parse("\n\n  Dear diary, today was odd.  \nSecond line")
	if res.Headline != "Dear diary, today was odd." {
		t.Errorf("headline = %q", res.Headline)
	}
}

func TestHeadline_Truncated(t *testing.T) {
	res := Parse(strings.Repeat("a", 200))
	if n := len([]rune(res.Headline)); n != headlineMax {
		t.Errorf("headline runes = %d, want %d", n, headlineMax)
	}
	if !strings.HasSuffix(res.Headline, "…") {
		t.Errorf("headline = %q, want ellipsis", res.Headline)
	}
}

func TestBodyTrimmed(t *testing.T) {
	res := Parse("  text\n\n")
	if res.Body != "text" {
		t.Errorf("body = %q", res.Body)
	}
}
