package player

// State is the authoritative playback record.
//
// When Total > 0, Index is in [0, Total) and URL and Title match the
// playlist item at Index. When Total == 0, URL and Title are empty.
type State struct {
	Index  int    // Zero-based position in the playlist
	Total  int    // Playlist length
	URL    string // Source of the item at Index
	Title  string // Display name of the item at Index
	Loop   bool   // Current item repeats instead of advancing
	Paused bool   // Transport state
}

// Position returns the 1-based, human-facing position of the current item,
// or 0 when the playlist is empty
func (s State) Position() int {
	if s.Total == 0 {
		return 0
	}
	return s.Index + 1
}

// initialState is the record before anything is loaded
func initialState() State {
	return State{Paused: true}
}
