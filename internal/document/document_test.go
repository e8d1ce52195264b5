package document

import (
	"errors"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundsight/casextract/internal/cas"
)

func TestOpen(t *testing.T) {
	t.Run("rejects non-PDF bytes", func(t *testing.T) {
		_, _, err := Open([]byte("hello, this is not a pdf"), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cas.ErrCorruptDocument))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, _, err := Open(nil, "secret")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cas.ErrCorruptDocument))
	})

	t.Run("rejects truncated PDF", func(t *testing.T) {
		// Valid magic, nothing else: the reader must fail, and the failure
		// must classify as corrupt, not as a password problem.
		_, _, err := Open([]byte("%PDF-1.4\nthis file ends abruptly"), "secret")
		require.Error(t, err)
		assert.True(t, errors.Is(err, cas.ErrCorruptDocument))
		assert.False(t, errors.Is(err, cas.ErrDecryption))
	})
}

func TestBuildLine(t *testing.T) {
	t.Run("merges adjacent fragments into words", func(t *testing.T) {
		// "Fol" + "io" rendered as two glyph runs with no gap between them.
		ln := buildLine(700, []pdf.Text{
			{S: "Fol", X: 40, W: 15},
			{S: "io", X: 55.5, W: 10},
			{S: "No:", X: 80, W: 15},
		})
		assert.Equal(t, "Folio No:", ln.Text)
		require.Len(t, ln.Words, 2)
		assert.Equal(t, "Folio", ln.Words[0].Text)
	})

	t.Run("drops whitespace fragments", func(t *testing.T) {
		ln := buildLine(700, []pdf.Text{
			{S: "  ", X: 10, W: 5},
			{S: "Scheme", X: 40, W: 30},
		})
		assert.Equal(t, "Scheme", ln.Text)
	})
}

func TestTextOfFirstPages(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Number: 1, Lines: []Line{NewLine(700, Word{Text: "first", X: 40, W: 20})}},
		{Number: 2, Lines: []Line{NewLine(700, Word{Text: "second", X: 40, W: 20})}},
		{Number: 3, Lines: []Line{NewLine(700, Word{Text: "third", X: 40, W: 20})}},
	}}

	text := doc.TextOfFirstPages(2)
	assert.Contains(t, text, "first")
	assert.Contains(t, text, "second")
	assert.NotContains(t, text, "third")
}
