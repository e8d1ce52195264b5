package engine

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fundsight/casextract/internal/cas"
	"github.com/fundsight/casextract/internal/validate"
)

func quietEngine(cfg Config) *Engine {
	h := slog.NewTextHandler(&bytes.Buffer{}, nil)
	return New(cfg, slog.New(h))
}

func TestExtract(t *testing.T) {
	ctx := context.Background()

	t.Run("oversize input rejected before decryption", func(t *testing.T) {
		e := quietEngine(Config{MaxFileSize: 16})
		_, err := e.Extract(ctx, make([]byte, 17), "")
		assert.ErrorIs(t, err, cas.ErrFileTooLarge)
	})

	t.Run("non-PDF bytes fail as corrupt", func(t *testing.T) {
		e := quietEngine(Config{})
		_, err := e.Extract(ctx, []byte("hello, not a pdf"), "pw")
		assert.ErrorIs(t, err, cas.ErrCorruptDocument)
	})

	t.Run("truncated PDF fails as corrupt, not as a password failure", func(t *testing.T) {
		e := quietEngine(Config{})
		_, err := e.Extract(ctx, []byte("%PDF-1.7\n1 0 obj"), "pw")
		assert.ErrorIs(t, err, cas.ErrCorruptDocument)
		assert.NotErrorIs(t, err, cas.ErrDecryption)
	})

	t.Run("size limit of zero means unlimited", func(t *testing.T) {
		e := quietEngine(Config{Validation: validate.Config{Strictness: validate.Strict}})
		_, err := e.Extract(ctx, []byte("not a pdf but not size-limited"), "")
		assert.NotErrorIs(t, err, cas.ErrFileTooLarge)
	})
}
