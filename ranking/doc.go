// Package ranking scores posts against a search term.
//
// Scores are additive. Each applicable rule adds its points:
//
//	title equals term                       1000
//	title starts with term                   500
//	title has term at a word boundary        300
//	title contains term                      200
//	description starts with term             100
//	description has term at a word boundary   80
//	description contains term                 50
//	author contains term                      75
//	title contains term, under 30 runes       25
//
// All comparisons are case-insensitive and treat the term literally.
//
// The table is expressed as [store.ScoreRule] values ([Rules]) so stores
// can evaluate it natively and produce the same numbers as [Score].
package ranking
