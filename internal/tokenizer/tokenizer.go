// Package tokenizer splits text into lower-cased words. A word is a run of
// letters and digits; apostrophes inside a word are dropped without ending
// it, and every other character is a separator.
package tokenizer

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// DefaultMaxWordLength caps word length when no limit is configured.
const DefaultMaxWordLength = 256

// Scanner reads words from a stream one at a time.
type Scanner struct {
	r      *bufio.Reader
	maxLen int
	buf    strings.Builder
}

// NewScanner returns a Scanner that emits words of at most maxLen runes.
// A longer run is split; the remainder becomes the next word.
func NewScanner(r io.Reader, maxLen int) *Scanner {
	if maxLen <= 0 {
		maxLen = DefaultMaxWordLength
	}
	return &Scanner{r: bufio.NewReader(r), maxLen: maxLen}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Next returns the next word, or io.EOF when the stream is exhausted.
func (s *Scanner) Next() (string, error) {
	var r rune
	var err error
	for {
		r, _, err = s.r.ReadRune()
		if err != nil {
			return "", err
		}
		if isWordRune(r) {
			break
		}
	}
	s.buf.Reset()
	s.buf.WriteRune(unicode.ToLower(r))
	n := 1
	for n < s.maxLen {
		r, _, err = s.r.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if r == '\'' {
			continue
		}
		if !isWordRune(r) {
			break
		}
		s.buf.WriteRune(unicode.ToLower(r))
		n++
	}
	return s.buf.String(), nil
}

// Tokenize returns every word in text.
func Tokenize(text string, maxLen int) []string {
	s := NewScanner(strings.NewReader(text), maxLen)
	words := make([]string, 0, len(text)/6)
	for {
		w, err := s.Next()
		if err != nil {
			return words
		}
		words = append(words, w)
	}
}
