package analytics

import (
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// stopwords covers common English function words plus filler that carries no
// signal in course feedback ("good", "nice", "sir").
var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
		a about above after again against all also am an and any are aren't as at
		be because been before being below between both but by can cannot could
		couldn't did didn't do does doesn't doing don't down during each few for
		from further had hadn't has hasn't have haven't having he he'd he'll he's
		her here here's hers herself him himself his how how's i i'd i'll i'm i've
		if in into is isn't it it's its itself just let's me more most mustn't my
		myself no nor not now of off on once only or other ought our ours
		ourselves out over own same shan't she she'd she'll she's should shouldn't
		so some such than that that's the their theirs them themselves then there
		there's these they they'd they'll they're they've this those through to
		too under until up upon us very was wasn't we we'd we'll we're we've were
		weren't what what's when when's where where's which while who who's whom
		why why's will with won't would wouldn't you you'd you'll you're you've
		your yours yourself yourselves
		get got go going make made really much many well still even way thing
		things lot lots etc yes yeah okay ok good bad nice fine great best better
		sir mam madam maam teacher nothing none everything something anything
		always never sometimes overall one two`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// normalizeText applies NFKC, lower-cases and collapses whitespace.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// words splits normalised text into letter/digit runs, keeping inner apostrophes.
func words(s string) []string {
	fields := strings.FieldsFunc(normalizeText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FrequentWords counts stemmed content words across texts and returns the top
// n ordered by count descending, then word ascending.
func FrequentWords(texts []string, n int) []WordCount {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range words(t) {
			if len([]rune(w)) <= 2 || isStopword(w) || isNumeric(w) {
				continue
			}
			stem := Stem(w)
			if len(stem) <= 2 || isStopword(stem) {
				continue
			}
			counts[stem]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Stem reduces an ASCII English word to a crude stem by stripping plural and
// -ed/-ing suffixes (Porter steps 1a and 1b). Non-ASCII words are returned as is.
func Stem(w string) string {
	if len(w) <= 2 {
		return w
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return w
		}
	}

	switch {
	case strings.HasSuffix(w, "sses"):
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "ies"):
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
	case strings.HasSuffix(w, "s"):
		w = w[:len(w)-1]
	}

	stripped := false
	switch {
	case strings.HasSuffix(w, "eed"):
		if measure(w[:len(w)-3]) > 0 {
			w = w[:len(w)-1]
		}
	case strings.HasSuffix(w, "ed") && hasVowel(w[:len(w)-2]):
		w, stripped = w[:len(w)-2], true
	case strings.HasSuffix(w, "ing") && hasVowel(w[:len(w)-3]):
		w, stripped = w[:len(w)-3], true
	}
	if !stripped {
		return w
	}

	switch {
	case strings.HasSuffix(w, "at"), strings.HasSuffix(w, "bl"), strings.HasSuffix(w, "iz"):
		return w + "e"
	case endsDoubleConsonant(w):
		if last := w[len(w)-1]; last != 'l' && last != 's' && last != 'z' {
			return w[:len(w)-1]
		}
	case measure(w) == 1 && endsCVC(w):
		return w + "e"
	}
	return w
}

func isConsonant(w string, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		return i == 0 || !isConsonant(w, i-1)
	}
	return true
}

// measure counts VC sequences in w.
func measure(w string) int {
	m, i := 0, 0
	for i < len(w) && isConsonant(w, i) {
		i++
	}
	for i < len(w) {
		for i < len(w) && !isConsonant(w, i) {
			i++
		}
		if i >= len(w) {
			break
		}
		m++
		for i < len(w) && isConsonant(w, i) {
			i++
		}
	}
	return m
}

func hasVowel(w string) bool {
	for i := 0; i < len(w); i++ {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(w string) bool {
	n := len(w)
	return n >= 2 && w[n-1] == w[n-2] && isConsonant(w, n-1)
}

func endsCVC(w string) bool {
	n := len(w)
	if n < 3 {
		return false
	}
	if !isConsonant(w, n-3) || isConsonant(w, n-2) || !isConsonant(w, n-1) {
		return false
	}
	last := w[n-1]
	return last != 'w' && last != 'x' && last != 'y'
}

// TokenSortRatio scores the similarity of two strings on 0..100 after lower
// casing, stripping punctuation and sorting their tokens, so word order and
// trailing punctuation do not matter. Popular characters are never treated as
// junk, so long answers score the same way short ones do.
func TokenSortRatio(a, b string) int {
	sa, sb := sortedTokens(a), sortedTokens(b)
	if sa == "" || sb == "" {
		if sa == sb {
			return 100
		}
		return 0
	}
	m := difflib.NewMatcherWithJunk(runeStrings(sa), runeStrings(sb), false, nil)
	return int(math.Round(m.Ratio() * 100))
}

func sortedTokens(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, norm.NFKC.String(s))
	tokens := strings.Fields(mapped)
	slices.Sort(tokens)
	return strings.Join(tokens, " ")
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ResponseGroup is a cluster of near-identical free-text answers.
type ResponseGroup struct {
	Representative string   `json:"representative"`
	Count          int      `json:"count"`
	Members        []string `json:"members,omitempty"`
}

// ClusterResponses greedily assigns each text to the first existing group
// whose representative scores at least threshold, otherwise starting a new
// group. Groups come back ordered by count descending, ties by first
// appearance. The representative is the first member as written (trimmed).
func ClusterResponses(texts []string, threshold int) []ResponseGroup {
	type group struct {
		ResponseGroup
		key string
	}
	var groups []*group

	for _, t := range texts {
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			continue
		}
		key := normalizeText(trimmed)

		var match *group
		for _, g := range groups {
			if TokenSortRatio(key, g.key) >= threshold {
				match = g
				break
			}
		}
		if match == nil {
			match = &group{ResponseGroup: ResponseGroup{Representative: trimmed}, key: key}
			groups = append(groups, match)
		}
		match.Count++
		match.Members = append(match.Members, trimmed)
	}

	out := make([]ResponseGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ResponseGroup)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
