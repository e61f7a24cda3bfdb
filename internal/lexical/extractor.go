// Package lexical derives per-slide keyword sets and anticipated
// transition phrases from raw slide text. Everything here is pure and
// deterministic: it runs once when a session's slide signals are built,
// with no external calls.
package lexical

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const DefaultMaxKeywords = 15

// Keeps word characters plus the extended Latin letters used in Turkish.
var nonWordRe = regexp.MustCompile(`[^\w\sçğıöşüâîû]`)

// stopwords covers Turkish and English function words plus common
// presentation filler that carries no topical signal.
var stopwords = map[string]struct{}{
	// Turkish
	"bir": {}, "ve": {}, "bu": {}, "da": {}, "de": {}, "ile": {}, "için": {}, "gibi": {},
	"olan": {}, "olarak": {}, "daha": {}, "en": {}, "çok": {}, "her": {}, "ama": {},
	"ancak": {}, "veya": {}, "ya": {}, "hem": {}, "ne": {}, "nasıl": {}, "kadar": {},
	"sonra": {}, "önce": {}, "üzere": {}, "göre": {}, "ayrıca": {}, "ise": {},
	"var": {}, "yok": {}, "oldu": {}, "olur": {}, "olmak": {},
	"den": {}, "dan": {}, "nin": {}, "nın": {}, "nun": {}, "nün": {},
	"dir": {}, "dır": {}, "dur": {}, "dür": {}, "tir": {}, "tır": {}, "tur": {}, "tür": {},
	// English
	"the": {}, "and": {}, "is": {}, "in": {}, "to": {}, "of": {}, "for": {}, "a": {}, "an": {},
	"that": {}, "this": {}, "with": {}, "are": {}, "was": {}, "be": {}, "has": {}, "have": {},
	"it": {}, "not": {}, "on": {}, "at": {}, "by": {}, "from": {}, "or": {}, "but": {}, "as": {},
	"can": {}, "will": {}, "do": {}, "if": {}, "so": {}, "we": {}, "you": {}, "they": {},
	"our": {}, "your": {}, "its": {}, "all": {}, "also": {}, "more": {}, "about": {},
	"how": {}, "what": {}, "when": {}, "which": {}, "who": {}, "than": {}, "then": {},
	// Presentation filler
	"slide": {}, "slayt": {}, "sayfa": {}, "page": {}, "notes": {}, "notlar": {},
}

// ExtractKeywords scores each surviving token as frequency x
// log2(max(length, 2)) within the slide's own text and returns the top
// maxKeywords by descending score, ties broken by encounter order.
func ExtractKeywords(text string, maxKeywords int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	words := strings.Fields(cleaned)

	type tokenStat struct {
		word  string
		freq  int
		first int
	}

	stats := make(map[string]*tokenStat)
	order := make([]*tokenStat, 0, len(words))
	for i, w := range words {
		if utf8.RuneCountInString(w) <= 2 || isNumeric(w) {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if st, ok := stats[w]; ok {
			st.freq++
			continue
		}
		st := &tokenStat{word: w, freq: 1, first: i}
		stats[w] = st
		order = append(order, st)
	}

	if len(order) == 0 {
		return nil
	}

	score := func(st *tokenStat) float64 {
		length := utf8.RuneCountInString(st.word)
		if length < 2 {
			length = 2
		}
		return float64(st.freq) * math.Log2(float64(length))
	}

	sort.SliceStable(order, func(i, j int) bool {
		si, sj := score(order[i]), score(order[j])
		if si != sj {
			return si > sj
		}
		return order[i].first < order[j].first
	})

	if maxKeywords > 0 && len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	keywords := make([]string, len(order))
	for i, st := range order {
		keywords[i] = st.word
	}
	return keywords
}

// GenerateTransitionPhrases synthesizes short phrases a speaker might say
// when moving on to the next slide. These are predictions built from the
// next slide's top keywords, never quotes from the slide itself.
func GenerateTransitionPhrases(currentText, nextText string) []string {
	nextKeywords := ExtractKeywords(nextText, 5)
	if len(nextKeywords) == 0 {
		return nil
	}

	primary := nextKeywords[0]

	phrases := []string{
		// Turkish
		fmt.Sprintf("şimdi %s", primary),
		fmt.Sprintf("%s konusuna geçelim", primary),
		fmt.Sprintf("%s hakkında", primary),
		fmt.Sprintf("sıradaki konu %s", primary),
		fmt.Sprintf("%s bakacak olursak", primary),
		fmt.Sprintf("%s ele alalım", primary),
		// English
		fmt.Sprintf("now let's talk about %s", primary),
		fmt.Sprintf("moving on to %s", primary),
		fmt.Sprintf("next topic is %s", primary),
		fmt.Sprintf("let's look at %s", primary),
		fmt.Sprintf("regarding %s", primary),
	}

	if len(nextKeywords) >= 2 {
		secondary := nextKeywords[1]
		phrases = append(phrases,
			fmt.Sprintf("%s ve %s", primary, secondary),
			fmt.Sprintf("%s and %s", primary, secondary),
		)
	}

	return phrases
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
