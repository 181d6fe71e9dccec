package utils

import (
	"sort"
	"strconv"
	"strings"
)

// DetermineLocale picks the response locale. An explicit query value wins,
// then the highest-weighted Accept-Language entry, then def. Region
// subtags fall back to their base language (zh-CN -> zh).
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	sup := make(map[string]struct{}, len(supported))
	for _, s := range supported {
		sup[strings.ToLower(s)] = struct{}{}
	}
	match := func(lang string) (string, bool) {
		l := strings.ToLower(strings.TrimSpace(lang))
		if l == "" {
			return "", false
		}
		if _, ok := sup[l]; ok {
			return l, true
		}
		if base, _, found := strings.Cut(l, "-"); found {
			if _, ok := sup[base]; ok {
				return base, true
			}
		}
		return "", false
	}

	if l, ok := match(queryLang); ok {
		return l
	}

	type weighted struct {
		lang string
		q    float64
	}
	var prefs []weighted
	for _, part := range strings.Split(acceptLang, ",") {
		tag, params, _ := strings.Cut(part, ";")
		l, ok := match(tag)
		if !ok {
			continue
		}
		prefs = append(prefs, weighted{lang: l, q: parseQuality(params)})
	}
	if len(prefs) > 0 {
		sort.SliceStable(prefs, func(i, j int) bool { return prefs[i].q > prefs[j].q })
		if prefs[0].q > 0 {
			return prefs[0].lang
		}
	}
	if l, ok := match(def); ok {
		return l
	}
	if len(supported) > 0 {
		return strings.ToLower(supported[0])
	}
	return "en"
}

// parseQuality reads "q=0.8" from a language-range parameter list; missing or
// malformed weights count as 1.
func parseQuality(params string) float64 {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || q < 0 || q > 1 {
			return 1
		}
		return q
	}
	return 1
}
