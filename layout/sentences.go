package layout

import "unicode"

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences cuts text after each run of '.', '!' or '?' that is followed
// by whitespace or the end of text. The pieces keep their terminators and
// surrounding whitespace, so joining them gives back text. A trailing piece
// without a terminator is returned as the last sentence.
//
// A terminator directly followed by another character ("3.5", "example.com")
// does not end a sentence.
func SplitSentences(text string) []string {
	rs := []rune(text)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		if !isTerminator(rs[i]) {
			continue
		}
		j := i
		for j+1 < len(rs) && isTerminator(rs[j+1]) {
			j++
		}
		if j+1 < len(rs) && !unicode.IsSpace(rs[j+1]) {
			i = j
			continue
		}
		out = append(out, string(rs[start:j+1]))
		start = j + 1
		i = j
	}
	if start < len(rs) {
		out = append(out, string(rs[start:]))
	}
	return out
}
