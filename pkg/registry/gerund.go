package registry

import "strings"

// ToGerund converts an English base form to its gerund using a small
// heuristic: "ie" becomes "ying" (die -> dying), a trailing silent "e" is
// dropped (code -> coding), and a final consonant after a single vowel is
// doubled (run -> running). This is a heuristic, not a dictionary lookup;
// irregular verbs come out wrong (audit -> auditting, picnic -> picniccing).
func ToGerund(baseForm string) string {
	base := strings.ToLower(strings.TrimSpace(baseForm))
	if base == "" {
		return ""
	}

	if strings.HasSuffix(base, "ie") {
		return base[:len(base)-2] + "ying"
	}
	if strings.HasSuffix(base, "e") && !strings.HasSuffix(base, "ee") {
		return base[:len(base)-1] + "ing"
	}
	if shouldDoubleFinal(base) {
		return base + base[len(base)-1:] + "ing"
	}
	return base + "ing"
}

// shouldDoubleFinal reports whether the final consonant should be doubled:
// consonant-vowel-consonant ending, where the last letter is not w, x or y.
func shouldDoubleFinal(base string) bool {
	if len(base) < 3 {
		return false
	}
	n := len(base)
	last, mid, first := base[n-1], base[n-2], base[n-3]
	if last == 'w' || last == 'x' || last == 'y' {
		return false
	}
	return !isVowel(last) && isVowel(mid) && !isVowel(first)
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
