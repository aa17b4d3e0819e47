package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_NotifyAndList(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	n := NewNotifier(logger)
	ctx := context.Background()

	n.Notify(ctx, []int64{1, 2}, "Event updated")
	n.Notify(ctx, []int64{1}, "Event cancelled")

	first := n.ListByUser(1)
	assert.Len(t, first, 2)
	assert.Equal(t, "Event updated", first[0].Message)
	assert.Equal(t, "Event cancelled", first[1].Message)
	assert.Less(t, first[0].ID, first[1].ID)

	second := n.ListByUser(2)
	assert.Len(t, second, 1)
	assert.Equal(t, int64(2), second[0].UserID)

	assert.Empty(t, n.ListByUser(3))

	// Empty recipient list is a no-op.
	n.Notify(ctx, nil, "ignored")
}
