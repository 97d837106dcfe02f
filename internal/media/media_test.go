package media

import "testing"

func TestList_Projections(t *testing.T) {
	list := List{
		{URL: "https://example.com/a.webm", Title: "a.webm", Thumbnail: "https://example.com/a.jpg"},
		{URL: "https://example.com/b.webm", Title: "b.webm"},
	}

	titles := list.Titles()
	if len(titles) != 2 || titles[0] != "a.webm" || titles[1] != "b.webm" {
		t.Errorf("Titles() = %v", titles)
	}

	thumbs := list.Thumbnails()
	if len(thumbs) != 2 || thumbs[0] != "https://example.com/a.jpg" || thumbs[1] != "" {
		t.Errorf("Thumbnails() = %v", thumbs)
	}

	urls := list.URLs()
	if len(urls) != 2 || urls[1] != "https://example.com/b.webm" {
		t.Errorf("URLs() = %v", urls)
	}
}

func TestList_Empty(t *testing.T) {
	var list List
	if got := list.Titles(); len(got) != 0 {
		t.Errorf("Titles() on empty list = %v", got)
	}
}

func TestEventKind_String(t *testing.T) {
	tests := []struct {
		kind EventKind
		want string
	}{
		{EventReady, "ready"},
		{EventCompleted, "completed"},
		{EventFailed, "failed"},
		{EventKind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
