package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx = With(ctx, "deck", "CASE.DATA")
	FromContext(ctx).Info("Keyword parsed.", "keyword", "DIMENS")

	assert.Contains(t, buf.String(), "deck=CASE.DATA")
	assert.Contains(t, buf.String(), "keyword=DIMENS")
}
