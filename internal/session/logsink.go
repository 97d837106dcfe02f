package session

import (
	"github.com/rs/zerolog"

	"github.com/jfmyers9/threadplay/internal/media"
)

// LogSink is a headless playlist sink that reports through the logger.
// It also implements media.Navigator and media.TitleSink.
type LogSink struct {
	logger zerolog.Logger
}

var (
	_ media.PlaylistSink = (*LogSink)(nil)
	_ media.Navigator    = (*LogSink)(nil)
	_ media.TitleSink    = (*LogSink)(nil)
)

// NewLogSink creates a LogSink
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "playlist").Logger()}
}

// Render logs the new playlist
func (l *LogSink) Render(titles, thumbnails []string, label string, onSelect func(int)) {
	l.logger.Info().
		Str("label", label).
		Int("items", len(titles)).
		Msg("Playlist")

	for i, title := range titles {
		l.logger.Debug().Int("position", i+1).Str("title", title).Msg("Playlist item")
	}
}

// UpdateSelection logs the selected position
func (l *LogSink) UpdateSelection(index int, snap bool) {
	l.logger.Debug().Int("position", index+1).Msg("Selected")
}

// ShowStatus logs a status message
func (l *LogSink) ShowStatus(message string) {
	l.logger.Info().Msg(message)
}

// SetFragment logs the location fragment
func (l *LogSink) SetFragment(position int) {
	l.logger.Debug().Int("position", position).Msg("Location")
}

// SetTitle logs the now playing title
func (l *LogSink) SetTitle(title string) {
	l.logger.Info().Str("title", title).Msg("Now playing")
}
