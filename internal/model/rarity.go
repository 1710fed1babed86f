package model

import "strings"

var rarityNormalisation = map[string]string{
	"C":   "C",
	"U":   "U",
	"R":   "R",
	"SR":  "SR",
	"RR":  "SR",
	"RRR": "SP",
	"SEC": "SP",
	"SP":  "SP",
	"SSP": "SP",
}

// NormaliseRarity maps official rarity labels onto the catalogue ones.
// Empty input is common, anything unknown is treated as rare.
func NormaliseRarity(v string) string {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return "C"
	}
	if r, found := rarityNormalisation[v]; found {
		return r
	}
	return "R"
}
