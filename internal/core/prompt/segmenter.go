package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

// Screenshot placeholder sizes.
const (
	ScreenshotFull  = "full"
	ScreenshotSmall = "small"
)

var screenshotPlaceholder = regexp.MustCompile(`\[\[screenshot_(full|small)_(\d+)]]`)

// ScreenshotPlaceholder encodes a reference to the key's index-th screenshot.
func ScreenshotPlaceholder(size string, index int) string {
	return "[[screenshot_" + size + "_" + strconv.Itoa(index) + "]]"
}

func screenshotPlaceholders(count int, size string) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = ScreenshotPlaceholder(size, i)
	}

	return strings.Join(parts, "\n")
}

// Segmenter splits rendered prompts into text and image messages.
type Segmenter struct {
	store       ports.ScreenshotStore
	highlighter ports.ImageHighlighter
	logger      *zerolog.Logger
}

// NewSegmenter creates a segmenter. highlighter may be nil.
func NewSegmenter(store ports.ScreenshotStore, highlighter ports.ImageHighlighter, logger *zerolog.Logger) *Segmenter {
	return &Segmenter{store: store, highlighter: highlighter, logger: logger}
}

// Segment returns the messages of rendered in source order. Placeholders
// become IMAGE messages of key's screenshots; the text between them becomes
// TEXT messages, empty spans excluded.
func (s *Segmenter) Segment(ctx context.Context, rendered string, key *domain.Key) ([]domain.Message, error) {
	var (
		messages []domain.Message
		last     int
	)

	for _, m := range screenshotPlaceholder.FindAllStringSubmatchIndex(rendered, -1) {
		if m[0] > last {
			messages = append(messages, domain.TextMessage(rendered[last:m[0]]))
		}

		size := rendered[m[2]:m[3]]

		index, err := strconv.Atoi(rendered[m[4]:m[5]])
		if err != nil {
			return nil, coreerrors.NewNotFound(coreerrors.MsgScreenshotNotFound)
		}

		image, err := s.image(ctx, key, size, index)
		if err != nil {
			return nil, err
		}

		messages = append(messages, domain.ImageMessage(image))
		last = m[1]
	}

	if last < len(rendered) {
		messages = append(messages, domain.TextMessage(rendered[last:]))
	}

	return messages, nil
}

func (s *Segmenter) image(ctx context.Context, key *domain.Key, size string, index int) ([]byte, error) {
	if key == nil || index < 0 || index >= len(key.Screenshots) {
		return nil, coreerrors.NewNotFound(coreerrors.MsgScreenshotNotFound)
	}

	screenshot := key.Screenshots[index]

	filename := screenshot.Filename
	if size == ScreenshotSmall && screenshot.MiddleSizedFilename != "" {
		filename = screenshot.MiddleSizedFilename
	}

	image, err := s.store.ReadFile(ctx, s.store.ScreenshotPath(filename))
	if err != nil {
		return nil, fmt.Errorf("read screenshot %s: %w", filename, err)
	}

	if s.highlighter == nil || len(screenshot.AreasForKey(key.ID)) == 0 {
		return image, nil
	}

	highlighted, err := s.highlighter.Highlight(image, screenshot, []int64{key.ID})
	if err != nil {
		s.logger.Warn().Err(err).Int64("screenshot_id", screenshot.ID).Msg("screenshot highlight failed, sending original")

		return image, nil
	}

	return highlighted, nil
}
