// Package search matches a keyword against entry questions and answers.
//
// The match compares stemmed word forms: words are lowercased and common
// Russian inflection suffixes are folded so that "принтера" finds "принтер".
// This is a deliberately modest approximation of full morphological
// normalization; it needs no dictionary and behaves predictably.
package search

import (
	"strings"
	"unicode"

	"github.com/m3rciful/refbot/internal/catalog"
)

// Longest suffixes first so the most specific ending wins.
var inflectionSuffixes = []string{
	"иями", "ями", "ами", "ного", "ному",
	"ыми", "ими", "ого", "ему", "ому", "ий", "ый", "ой", "ах", "ях",
	"ам", "ям", "ом", "ем", "ов", "ев", "ей", "ия", "ью", "ую", "юю",
	"ая", "яя", "ое", "ее", "а", "я", "о", "е", "ы", "и", "у", "ю", "ь",
}

// stem folds a lowercased word to a crude normal form.
func stem(word string) string {
	runes := []rune(word)
	if len(runes) <= 3 {
		return word
	}
	for _, suffix := range inflectionSuffixes {
		sr := []rune(suffix)
		if len(runes)-len(sr) < 3 {
			continue
		}
		if strings.HasSuffix(word, suffix) {
			return string(runes[:len(runes)-len(sr)])
		}
	}
	return word
}

func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Find returns the entries whose question or answer contains the keyword,
// compared by stemmed word forms. Order of the source list is preserved.
func Find(entries []catalog.Entry, keyword string) []catalog.Entry {
	kw := words(keyword)
	if len(kw) == 0 {
		return nil
	}
	target := stem(kw[0])

	var results []catalog.Entry
	for _, e := range entries {
		if matches(e.Question, target) || matches(e.Answer, target) {
			results = append(results, e)
		}
	}
	return results
}

func matches(text, target string) bool {
	for _, w := range words(text) {
		if stem(w) == target {
			return true
		}
	}
	return false
}
