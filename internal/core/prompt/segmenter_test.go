package prompt

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports/mocks"
)

func segmenterFixture(t *testing.T) (*Segmenter, *mocks.ScreenshotStore, *mocks.Highlighter) {
	t.Helper()

	logger := zerolog.Nop()
	store := mocks.NewScreenshotStore()
	store.Put("full0.png", []byte("full-0"))
	store.Put("mid0.png", []byte("mid-0"))
	store.Put("full1.png", []byte("full-1"))

	highlighter := &mocks.Highlighter{}

	return NewSegmenter(store, highlighter, &logger), store, highlighter
}

func testKey() *domain.Key {
	return &domain.Key{
		ID: 7,
		Screenshots: []domain.Screenshot{
			{ID: 1, Filename: "full0.png", MiddleSizedFilename: "mid0.png"},
			{ID: 2, Filename: "full1.png", Areas: []domain.KeyArea{{KeyID: 7, X: 1, Y: 1, Width: 2, Height: 2}}},
		},
	}
}

func TestSegmenter_Segment(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		want     []domain.Message
	}{
		{
			name:     "small screenshot between text",
			rendered: "before [[screenshot_small_0]] after",
			want: []domain.Message{
				domain.TextMessage("before "),
				domain.ImageMessage([]byte("mid-0")),
				domain.TextMessage(" after"),
			},
		},
		{
			name:     "no placeholders",
			rendered: "just text",
			want:     []domain.Message{domain.TextMessage("just text")},
		},
		{
			name:     "full size at edges",
			rendered: "[[screenshot_full_0]]\n[[screenshot_full_0]]",
			want: []domain.Message{
				domain.ImageMessage([]byte("full-0")),
				domain.TextMessage("\n"),
				domain.ImageMessage([]byte("full-0")),
			},
		},
		{
			name:     "small falls back to full and highlights the key",
			rendered: "[[screenshot_small_1]]",
			want:     []domain.Message{domain.ImageMessage([]byte("highlighted:full-1"))},
		},
		{
			name:     "unknown size stays text",
			rendered: "[[screenshot_huge_0]]",
			want:     []domain.Message{domain.TextMessage("[[screenshot_huge_0]]")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segmenter, _, _ := segmenterFixture(t)

			got, err := segmenter.Segment(context.Background(), tt.rendered, testKey())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegmenter_OutOfRangeIsNotFound(t *testing.T) {
	segmenter, _, _ := segmenterFixture(t)

	_, err := segmenter.Segment(context.Background(), "x [[screenshot_full_2]]", testKey())

	var notFound *coreerrors.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, coreerrors.MsgScreenshotNotFound, notFound.Code)

	_, err = segmenter.Segment(context.Background(), "[[screenshot_full_0]]", nil)
	assert.ErrorIs(t, err, coreerrors.ErrNotFound)
}

func TestSegmenter_ReadsStoragePaths(t *testing.T) {
	segmenter, store, highlighter := segmenterFixture(t)

	_, err := segmenter.Segment(context.Background(), "[[screenshot_small_0]][[screenshot_full_1]]", testKey())
	require.NoError(t, err)

	assert.Equal(t, []string{"screenshots/mid0.png", "screenshots/full1.png"}, store.Reads())
	assert.Equal(t, 1, highlighter.Calls)
}

func TestSegmenter_MissingFileFails(t *testing.T) {
	logger := zerolog.Nop()
	segmenter := NewSegmenter(mocks.NewScreenshotStore(), nil, &logger)

	_, err := segmenter.Segment(context.Background(), "[[screenshot_full_0]]", testKey())
	assert.ErrorIs(t, err, mocks.ErrFileNotFound)
}

func TestScreenshotPlaceholders(t *testing.T) {
	assert.Equal(t, "", screenshotPlaceholders(0, ScreenshotSmall))
	assert.Equal(t, "[[screenshot_full_0]]\n[[screenshot_full_1]]", screenshotPlaceholders(2, ScreenshotFull))
}
