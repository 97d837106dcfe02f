package media

// Item is a single playable entry of a playlist
type Item struct {
	URL       string // Resolved source locator
	Title     string // Display name
	Thumbnail string // Thumbnail URL (empty for local files)
}

// List is an ordered playlist. A List is replaced wholesale on every load,
// never mutated in place.
type List []Item

// Titles returns the display names in playlist order
func (l List) Titles() []string {
	titles := make([]string, len(l))
	for i, item := range l {
		titles[i] = item.Title
	}
	return titles
}

// Thumbnails returns the thumbnail URLs in playlist order
func (l List) Thumbnails() []string {
	thumbs := make([]string, len(l))
	for i, item := range l {
		thumbs[i] = item.Thumbnail
	}
	return thumbs
}

// URLs returns the source locators in playlist order
func (l List) URLs() []string {
	urls := make([]string, len(l))
	for i, item := range l {
		urls[i] = item.URL
	}
	return urls
}

// EventKind identifies a signal raised by a media sink
type EventKind int

const (
	EventReady     EventKind = iota // Source can start rendering
	EventCompleted                  // Source reached end-of-stream without looping
	EventFailed                     // Source could not be played
)

// String returns a human-readable representation of the EventKind
func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a signal raised by a media sink
type Event struct {
	Kind   EventKind
	Source string // Source the event refers to
	Err    error  // Set for EventFailed
}

// Sink controls actual media playback
type Sink interface {
	// SetSource replaces the current source without starting it
	SetSource(url string)

	// Load (re)loads the current source; the sink raises EventReady once it can play
	Load()

	// Play starts or resumes playback of the loaded source
	Play()

	// Pause pauses playback
	Pause()

	// SetLoop sets whether the current source repeats natively on completion
	SetLoop(loop bool)
}

// PlaylistSink renders the visual playlist
type PlaylistSink interface {
	// Render replaces the displayed playlist. onSelect is invoked with the
	// index of an entry the user picks.
	Render(titles, thumbnails []string, label string, onSelect func(index int))

	// UpdateSelection highlights index, scrolling it into view when snap is true
	UpdateSelection(index int, snap bool)

	// ShowStatus displays a transient status message
	ShowStatus(message string)
}

// Navigator records the user-visible location of the current item
type Navigator interface {
	// SetFragment stores the 1-based position of the current item
	SetFragment(position int)
}

// TitleSink receives the document-level title
type TitleSink interface {
	SetTitle(title string)
}
