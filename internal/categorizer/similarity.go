package categorizer

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Score rates the similarity of two normalized merchant strings from 0 to 100
// as the best of an edit-distance ratio, the same ratio over sorted tokens,
// and whole-token containment.
func Score(a, b string) int {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	score := ratio(a, b)
	if s := ratio(sortTokens(a), sortTokens(b)); s > score {
		score = s
	}
	if s := containment(a, b); s > score {
		score = s
	}
	return score
}

// ratio converts the Levenshtein distance into a percentage of the longer
// string.
func ratio(a, b string) int {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 100 * (maxLen - distance) / maxLen
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// containment scores one string appearing as a run of whole tokens inside
// the other, so "uber" matches "uber eats" but not "tuberose".
func containment(a, b string) int {
	short, long := a, b
	if utf8.RuneCountInString(short) > utf8.RuneCountInString(long) {
		short, long = long, short
	}
	if short == "" || !strings.Contains(" "+long+" ", " "+short+" ") {
		return 0
	}
	return 75 + 25*utf8.RuneCountInString(short)/utf8.RuneCountInString(long)
}
