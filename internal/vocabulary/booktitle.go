package vocabulary

import (
	"strings"
	"unicode"
)

var romanNumerals = map[string]struct{}{
	"I": {}, "II": {}, "III": {}, "IV": {}, "V": {}, "VI": {},
	"VII": {}, "VIII": {}, "IX": {}, "X": {}, "XI": {}, "XII": {},
}

var minorWords = map[string]struct{}{
	// English
	"a": {}, "an": {}, "and": {}, "as": {}, "at": {}, "but": {}, "by": {},
	"for": {}, "in": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {}, "with": {},
	// German
	"der": {}, "die": {}, "das": {}, "den": {}, "dem": {}, "des": {},
	"ein": {}, "eine": {}, "einen": {}, "einem": {}, "eines": {},
	"und": {}, "oder": {}, "aber": {}, "für": {}, "von": {}, "mit": {},
	"zu": {}, "im": {}, "am": {}, "durch": {}, "über": {},
}

// NormalizeBookTitle formats a raw Kindle book title deterministically as
// "Main Title: Subtitle — Author". The author comes from BOOK_INFO when
// present, otherwise it is split off the title itself. Titles that already
// name their author keep their single mention.
func NormalizeBookTitle(rawTitle, authorFromDB string) string {
	if rawTitle == "" || rawTitle == "Unknown" {
		return rawTitle
	}
	title := strings.TrimSpace(rawTitle)

	author := ""
	titleHadAuthor := false
	if authorFromDB != "" && authorFromDB != "Unknown" {
		author = strings.TrimSpace(authorFromDB)
		// The database author wins, a duplicate suffix in the title is cut.
		for _, separator := range []string{" -- ", " — ", " - "} {
			if index := strings.LastIndex(title, separator); index >= 0 {
				title = strings.TrimSpace(title[:index])
				titleHadAuthor = true
				break
			}
		}
	}

	if author == "" && !titleHadAuthor {
		for _, separator := range []string{" -- ", " — ", " - "} {
			if index := strings.LastIndex(title, separator); index >= 0 {
				author = strings.TrimSpace(title[index+len(separator):])
				title = strings.TrimSpace(title[:index])
				break
			}
		}
	}

	// "Lastname, Firstname" becomes "Firstname Lastname"
	if lastName, firstName, ok := strings.Cut(author, ", "); ok {
		author = firstName + " " + lastName
	}

	title = strings.ReplaceAll(title, "_ ", ": ")
	title = strings.ReplaceAll(title, "_", ": ")
	title = strings.ReplaceAll(title, ", Episode", ": Episode")

	// Cut dangling metadata with an opening parenthesis that never closes
	if strings.Contains(title, "(") && !strings.Contains(title, ")") {
		title, _, _ = strings.Cut(title, "(")
		title = strings.TrimSpace(title)
	}

	title = normalizeRomanNumerals(title)
	if author != "" {
		author = normalizeRomanNumerals(author)
	}
	title = toTitleCase(title)

	if author == "" {
		return title
	}
	if authorAlreadyInTitle(title, author) {
		return title
	}
	return title + " — " + author
}

func authorAlreadyInTitle(title, author string) bool {
	titleLower := strings.ToLower(title)
	if strings.Contains(titleLower, strings.ToLower(author)) {
		return true
	}
	if fields := strings.Fields(author); len(fields) > 1 {
		lastName := strings.ToLower(fields[len(fields)-1])
		return strings.Contains(titleLower, lastName)
	}
	return false
}

func normalizeRomanNumerals(text string) string {
	words := strings.Fields(text)
	for i, word := range words {
		clean := strings.Trim(word, ",:;!?.")
		if _, ok := romanNumerals[strings.ToUpper(clean)]; ok {
			words[i] = strings.Replace(word, clean, strings.ToUpper(clean), 1)
		}
	}
	return strings.Join(words, " ")
}

func capitalizeWord(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

func hasUpper(word string) bool {
	for _, r := range word {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func toTitleCase(title string) string {
	words := strings.Fields(title)
	for i, word := range words {
		base := strings.TrimRight(word, ":,;.!?")
		switch {
		case isRomanNumeral(base):
			words[i] = strings.ToUpper(base) + word[len(base):]
		case i == 0 || i == len(words)-1:
			words[i] = capitalizeWord(word)
		case i > 0 && strings.Contains(words[i-1], ":"):
			words[i] = capitalizeWord(word)
		default:
			if _, minor := minorWords[strings.ToLower(word)]; minor && !hasUpper(word) {
				words[i] = strings.ToLower(word)
			} else {
				words[i] = capitalizeWord(word)
			}
		}
	}
	return strings.Join(words, " ")
}

func isRomanNumeral(word string) bool {
	_, ok := romanNumerals[strings.ToUpper(word)]
	return ok
}
