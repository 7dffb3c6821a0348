// Package source provides streams of words for filling and checking tables.
package source

import (
	"context"
	"io"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
)

// Source yields words until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Reader tokenizes an io.Reader.
type Reader struct {
	scanner *tokenizer.Scanner
}

// NewReader returns a Source reading words from r.
func NewReader(r io.Reader, maxLen int) *Reader {
	return &Reader{scanner: tokenizer.NewScanner(r, maxLen)}
}

// Next returns the next word. ctx is checked between words only.
func (r *Reader) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.scanner.Next()
}
