// Package quiz holds the quiz core: answer matching, question lifecycle,
// and the session state machine.
package quiz

import (
	"strings"
	"unicode"
)

// articles that players commonly prepend to an answer. Checked in order,
// first match wins, at most one removed.
var articles = []string{"le ", "la ", "les ", "un ", "une ", "des ", "l'", "du ", "de "}

// fillerWords are conversational words that disqualify a submission outright.
var fillerWords = map[string]struct{}{
	"test": {}, "essai": {}, "fonctionne": {}, "marche": {}, "ok": {},
	"oui": {}, "non": {}, "bonjour": {}, "salut": {}, "hello": {},
}

const allowedChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 '-éèêëàâäîïôöùûüç"

// Matches reports whether a free-text guess matches the canonical answer.
// Pure and deterministic. Tolerates articles, spacing/hyphen variants,
// extra words around the answer, and small typos.
func Matches(userText, canonicalAnswer string) bool {
	user := stripArticle(normalize(userText))
	canonical := stripArticle(normalize(canonicalAnswer))

	if user == canonical {
		return true
	}

	base := []string{
		canonical,
		strings.ReplaceAll(canonical, " ", ""),
		strings.ReplaceAll(canonical, " ", "-"),
		strings.ReplaceAll(canonical, "-", " "),
	}
	variations := make(map[string]struct{}, len(base)*(len(articles)+1))
	for _, variant := range base {
		variations[variant] = struct{}{}
		for _, article := range articles {
			variations[article+variant] = struct{}{}
		}
	}
	if _, ok := variations[user]; ok {
		return true
	}

	userWords := wordSet(user)
	canonicalWords := wordSet(canonical)
	if len(canonicalWords) > 0 && containsAll(userWords, canonicalWords) {
		if len(userWords) <= len(canonicalWords)+2 {
			return true
		}
	}

	userRunes := []rune(user)
	canonicalRunes := []rune(canonical)
	if len(userRunes) > 2 && len(canonicalRunes) > 2 {
		diff := len(userRunes) - len(canonicalRunes)
		if diff < 0 {
			diff = -diff
		}
		if diff <= 2 {
			shorter := len(userRunes)
			if len(canonicalRunes) < shorter {
				shorter = len(canonicalRunes)
			}
			common := 0
			for i := 0; i < shorter; i++ {
				if userRunes[i] == canonicalRunes[i] {
					common++
				}
			}
			if float64(common) >= float64(len(canonicalRunes))*0.8 {
				return true
			}
		}
	}

	return false
}

// ValidSubmission is the pre-filter applied before a guess counts as an
// attempt: at most 3 words, no filler words, only allow-listed characters.
// Rejected submissions are no-ops, not attempts, so the participant may retry.
func ValidSubmission(text string) bool {
	words := strings.Fields(text)
	if len(words) > 3 {
		return false
	}
	for _, word := range words {
		if _, ok := fillerWords[strings.ToLower(word)]; ok {
			return false
		}
	}
	for _, r := range text {
		if !strings.ContainsRune(allowedChars, r) {
			return false
		}
	}
	return true
}

// Sanitize drops non-printable runes and truncates to maxLen runes.
func Sanitize(text string, maxLen int) string {
	var b strings.Builder
	count := 0
	for _, r := range text {
		if !unicode.IsPrint(r) {
			continue
		}
		if maxLen > 0 && count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, ".,")
}

func stripArticle(s string) string {
	for _, article := range articles {
		if strings.HasPrefix(s, article) {
			return s[len(article):]
		}
	}
	return s
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}

func containsAll(super, sub map[string]struct{}) bool {
	for w := range sub {
		if _, ok := super[w]; !ok {
			return false
		}
	}
	return true
}
