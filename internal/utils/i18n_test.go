package utils

import "testing"

func TestT_Fallback(t *testing.T) {
	if got := T("fr", "health.ok"); got != "ok" {
		t.Fatalf("fallback to en failed: %s", got)
	}
	if got := T("zh", "error.invalid_user_id"); got != "用户 ID 无效" {
		t.Fatalf("zh lookup = %q", got)
	}
	if got := T("en", "missing.key"); got != "missing.key" {
		t.Fatalf("unknown key = %q, want key echoed", got)
	}
}

func TestTranslationsCoverSameKeys(t *testing.T) {
	for key := range translations["en"] {
		if _, ok := translations["zh"][key]; !ok {
			t.Fatalf("zh missing key %q", key)
		}
	}
}

func TestLocales(t *testing.T) {
	got := Locales()
	if len(got) != 2 || got[0] != "en" || got[1] != "zh" {
		t.Fatalf("Locales() = %v, want [en zh]", got)
	}
}
