// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hunt

import (
	"net/url"
	"strings"
	"unicode"
)

// sourceLabels maps known recipe site hosts to display names. Hosts the map
// does not know fall back to a capitalized first domain segment.
var sourceLabels = map[string]string{
	"seriouseats.com":          "Serious Eats",
	"www.seriouseats.com":      "Serious Eats",
	"bonappetit.com":           "Bon Appetit",
	"www.bonappetit.com":       "Bon Appetit",
	"foodnetwork.com":          "Food Network",
	"www.foodnetwork.com":      "Food Network",
	"allrecipes.com":           "Allrecipes",
	"www.allrecipes.com":       "Allrecipes",
	"epicurious.com":           "Epicurious",
	"www.epicurious.com":       "Epicurious",
	"kingarthurbaking.com":     "King Arthur Baking",
	"www.kingarthurbaking.com": "King Arthur Baking",
	"nytimes.com":              "NY Times Cooking",
	"cooking.nytimes.com":      "NY Times Cooking",
	"www.nytimes.com":          "NY Times Cooking",
}

// SourceLabel derives a human-readable publication name from a recipe URL.
func SourceLabel(rawURL string) string {
	if rawURL == "" {
		return "Unknown"
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	host := strings.ToLower(u.Host)
	if label, ok := sourceLabels[host]; ok {
		return label
	}
	host = strings.TrimPrefix(host, "www.")
	name, _, _ := strings.Cut(host, ".")
	return capitalize(name)
}

func capitalize(s string) string {
	if s == "" {
		return "Unknown"
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
