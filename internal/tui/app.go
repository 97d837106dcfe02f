package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/tview"

	"github.com/jfmyers9/threadplay/internal/media"
	"github.com/jfmyers9/threadplay/internal/player"
)

// maxTitleWidth caps playlist row width in display columns
const maxTitleWidth = 72

// Controls receives user actions. Implementations must not block on
// playlist sink calls, since those are made from the UI goroutine.
type Controls interface {
	Next()
	Prev()
	Toggle()
	ToggleLoop()
	Refresh()
	Dispatch(fn func()) bool
}

// App is the terminal playlist. It implements media.PlaylistSink,
// media.Navigator and media.TitleSink.
type App struct {
	app    *tview.Application
	header *tview.TextView
	list   *tview.List
	status *tview.TextView
	help   *tview.TextView

	controls Controls

	// stopped is set once the application has exited; sink calls are
	// dropped afterwards
	stopped atomic.Bool

	// Mutex protects the fields below, written by sink calls from the
	// session goroutine and read by queued draws
	mu       sync.Mutex
	onSelect func(int)
	titles   []string
	label    string
	title    string
	playing  int // Highlighted row, -1 if none
	position int // Last written fragment
	state    player.State
	message  string

	// Last-rendered content for change detection
	lastTitle  string
	lastHeader string
	lastStatus string
}

var (
	_ media.PlaylistSink = (*App)(nil)
	_ media.Navigator    = (*App)(nil)
	_ media.TitleSink    = (*App)(nil)
)

// New creates a new TUI application
func New() *App {
	a := &App{
		app:     tview.NewApplication(),
		playing: -1,
		state:   player.State{Paused: true},
	}
	a.setupUI()
	return a
}

// SetControls sets the receiver of user actions
func (a *App) SetControls(controls Controls) {
	a.controls = controls
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	// Now playing header
	a.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.header.SetBorder(true).
		SetTitle(" threadplay ").
		SetTitleAlign(tview.AlignLeft)

	// Playlist
	a.list = tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	a.list.SetBorder(true).
		SetTitle(" Playlist ").
		SetTitleAlign(tview.AlignLeft)
	a.list.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		a.selectItem(index)
	})

	// Transport state and transient messages
	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	a.help = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  space:play/pause  n/→:next  p/←:prev  l:loop  r:refresh  enter:play[-]")

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 4, 1, false).
		AddItem(a.list, 0, 1, true).
		AddItem(a.status, 1, 1, false).
		AddItem(a.help, 1, 1, false)

	// Handle keyboard input
	a.app.SetInputCapture(a.handleKeyEvent)

	a.app.SetRoot(flex, true).SetFocus(a.list)
}

// handleKeyEvent processes keyboard input
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRight:
		a.do(func(c Controls) { c.Next() })
		return nil
	case tcell.KeyLeft:
		a.do(func(c Controls) { c.Prev() })
		return nil
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case ' ':
		a.do(func(c Controls) { c.Toggle() })
		return nil
	case 'n', 'N':
		a.do(func(c Controls) { c.Next() })
		return nil
	case 'p', 'P':
		a.do(func(c Controls) { c.Prev() })
		return nil
	case 'l', 'L':
		a.do(func(c Controls) { c.ToggleLoop() })
		return nil
	case 'r', 'R':
		a.do(func(c Controls) { c.Refresh() })
		return nil
	}
	return event
}

func (a *App) do(fn func(Controls)) {
	if a.controls != nil {
		fn(a.controls)
	}
}

// selectItem forwards a picked row to the playlist's selection callback
func (a *App) selectItem(index int) {
	a.mu.Lock()
	onSelect := a.onSelect
	a.mu.Unlock()

	if onSelect == nil || a.controls == nil {
		return
	}
	a.controls.Dispatch(func() { onSelect(index) })
}

// Render replaces the playlist
func (a *App) Render(titles, thumbnails []string, label string, onSelect func(int)) {
	a.mu.Lock()
	a.titles = append([]string(nil), titles...)
	a.label = label
	a.onSelect = onSelect
	a.playing = -1
	a.message = ""
	rows := a.rowsLocked()
	a.mu.Unlock()

	a.queue(func() {
		a.list.Clear()
		for _, row := range rows {
			a.list.AddItem(row, "", 0, nil)
		}
		a.redraw()
	})
}

// UpdateSelection marks index as playing, moving the cursor to it if snap
func (a *App) UpdateSelection(index int, snap bool) {
	a.mu.Lock()
	if index < 0 || index >= len(a.titles) {
		a.mu.Unlock()
		return
	}
	prev := a.playing
	a.playing = index
	var prevRow string
	if prev >= 0 && prev < len(a.titles) {
		prevRow = formatItem(prev+1, a.titles[prev], false, maxTitleWidth)
	}
	row := formatItem(index+1, a.titles[index], true, maxTitleWidth)
	a.mu.Unlock()

	a.queue(func() {
		if prev >= 0 && prev < a.list.GetItemCount() {
			a.list.SetItemText(prev, prevRow, "")
		}
		if index < a.list.GetItemCount() {
			a.list.SetItemText(index, row, "")
			if snap {
				a.list.SetCurrentItem(index)
			}
		}
	})
}

// ShowStatus displays a transient message in the status bar
func (a *App) ShowStatus(message string) {
	a.mu.Lock()
	a.message = message
	a.mu.Unlock()

	a.queue(a.redraw)
}

// SetFragment records the 1-based position of the current item
func (a *App) SetFragment(position int) {
	a.mu.Lock()
	a.position = position
	a.mu.Unlock()

	a.queue(a.redraw)
}

// SetTitle sets the now playing title
func (a *App) SetTitle(title string) {
	a.mu.Lock()
	a.title = title
	a.mu.Unlock()

	a.queue(a.redraw)
}

// Observe updates the transport indicators. Register it with
// Controller.Subscribe.
func (a *App) Observe(state player.State) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	a.queue(a.redraw)
}

// queue schedules fn on the UI goroutine unless the application has exited
func (a *App) queue(fn func()) {
	if a.stopped.Load() {
		return
	}
	a.app.QueueUpdateDraw(fn)
}

// rowsLocked formats every playlist row. Must be called with a.mu held.
func (a *App) rowsLocked() []string {
	rows := make([]string, len(a.titles))
	for i, title := range a.titles {
		rows[i] = formatItem(i+1, title, i == a.playing, maxTitleWidth)
	}
	return rows
}

// redraw updates the header and status bar. Runs on the UI goroutine.
func (a *App) redraw() {
	a.mu.Lock()
	title := a.title
	header := headerText(a.label, a.position, a.state)
	status := statusText(a.state, a.message)
	a.mu.Unlock()

	if title != a.lastTitle {
		a.lastTitle = title
		a.header.SetTitle(" " + tview.Escape(title) + " ")
	}
	if header != a.lastHeader {
		a.lastHeader = header
		a.header.SetText(header)
	}
	if status != a.lastStatus {
		a.lastStatus = status
		a.status.SetText(status)
	}
}

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	err := a.app.Run()
	a.stopped.Store(true)
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Stop stops the TUI application
func (a *App) Stop() {
	a.app.Stop()
}

// formatItem renders a playlist row
func formatItem(position int, title string, playing bool, width int) string {
	marker := "  "
	if playing {
		marker = "[green]▶[-] "
	}
	return fmt.Sprintf("%s%3d. %s", marker, position, tview.Escape(truncate(title, width)))
}

// headerText renders the now playing panel
func headerText(label string, position int, state player.State) string {
	if state.Total == 0 {
		if label != "" {
			return fmt.Sprintf("[yellow]%s[-]\n[gray]Nothing to play[-]", tview.Escape(label))
		}
		return "[gray]Nothing loaded[-]"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(truncate(state.Title, maxTitleWidth))))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]", tview.Escape(truncate(label, maxTitleWidth))))
	if position > 0 {
		sb.WriteString(fmt.Sprintf(" [gray]#%d[-]", position))
	}
	return sb.String()
}

// statusText renders the status bar
func statusText(state player.State, message string) string {
	var sb strings.Builder

	stateIcon := "[green]▶[-]" // Play triangle
	if state.Paused {
		stateIcon = "[yellow]⏸[-]" // Pause icon
	}
	sb.WriteString(stateIcon)

	if state.Total > 0 {
		sb.WriteString(fmt.Sprintf(" %d/%d", state.Position(), state.Total))
	}
	if state.Loop {
		sb.WriteString(" [blue]↻ loop[-]")
	}
	if message != "" {
		sb.WriteString("  [gray]" + tview.Escape(message) + "[-]")
	}
	return sb.String()
}

// truncate shortens text to width display columns, adding "..." when cut
func truncate(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "...")
}
