// Package tui implements the terminal UI loop of spec §4.12: an editable
// query buffer, a ranked result list, Enter-to-copy, and a toast stack for
// transient status. Grounded directly on cli/cmd/top.go's termbox
// Init/pollInput/renderTable/tbprint/tbprintBold structure, generalized from
// a read-only streaming table to an editable input driving a live query.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	runewidth "github.com/mattn/go-runewidth"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"

	"github.com/codesearchtools/seeker/pkg/clip"
	"github.com/codesearchtools/seeker/pkg/dispatch"
	"github.com/codesearchtools/seeker/pkg/message"
	"github.com/codesearchtools/seeker/pkg/result"
	"github.com/codesearchtools/seeker/pkg/symbol"
)

const (
	headerHeight  = 3
	toastDuration = 3 * time.Second
	tickInterval  = 80 * time.Millisecond
)

// row is one result line as rendered in the list.
type row struct {
	filename string
	content  string
	line     uint32
	column   uint32
}

type toast struct {
	text    string
	expires time.Time
}

// TUI owns all interactive state. Like pkg/symbol's Index, every field below
// is reached only from the single goroutine running Run; no lock is needed.
type TUI struct {
	dispatcher *dispatch.Dispatcher
	clipboard  clip.Adapter
	stats      *symbol.Stats

	inbox chan message.Envelope

	buffer   []rune
	cursor   int
	killRing []rune
	mode     dispatch.Mode

	results  []row
	selected int
	finished bool
	count    int

	toasts []toast
}

// New constructs a TUI. dispatcher routes buffer edits to the search actors;
// clipboard performs Enter-to-copy; stats backs the index-status header
// segment.
func New(dispatcher *dispatch.Dispatcher, clipboard clip.Adapter, stats *symbol.Stats) *TUI {
	return &TUI{
		dispatcher: dispatcher,
		clipboard:  clipboard,
		stats:      stats,
		inbox:      make(chan message.Envelope, 4096),
	}
}

// Deliver feeds an inbound envelope (a PushSearchResult's UIAppendResult, or
// SearchFinished) into the UI's single-threaded loop. Registered with the
// routing fabric under the "tui" actor name.
func (t *TUI) Deliver(env message.Envelope) {
	select {
	case t.inbox <- env:
	default:
		log.Warn("tui: inbox full, dropping delivery")
	}
}

// Run drives the terminal UI until the user quits (Esc/Ctrl-C) or ctx is
// cancelled.
func (t *TUI) Run(ctx context.Context) error {
	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()
	termbox.SetInputMode(termbox.InputEsc)

	events := make(chan termbox.Event)
	stopPoll := make(chan struct{})
	go pollEvents(events, stopPoll)
	defer close(stopPoll)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	t.render()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !t.handleKey(ev) {
				return nil
			}
			t.render()
		case env := <-t.inbox:
			t.handleEnvelope(env)
			t.render()
		case <-ticker.C:
			if t.expireToasts() {
				t.render()
			}
		}
	}
}

// pollEvents bridges termbox's blocking PollEvent into a channel, the same
// separation cli/cmd/top.go's pollInput makes between input polling and the
// render loop's select.
func pollEvents(out chan<- termbox.Event, stop <-chan struct{}) {
	for {
		ev := termbox.PollEvent()
		select {
		case out <- ev:
		case <-stop:
			return
		}
	}
}

func (t *TUI) handleEnvelope(env message.Envelope) {
	switch env.Method {
	case result.MethodUIClearResults:
		t.clearResults()
	case result.MethodUIAppendResult:
		p := env.Payload.(result.UIAppendResult)
		t.results = append(t.results, row{
			filename: p.Filename,
			content:  p.Content,
			line:     p.Line,
			column:   p.Column,
		})
	case result.MethodSearchFinished:
		p := env.Payload.(result.SearchFinished)
		t.finished = true
		t.count = p.Count
	}
}

// clearResults resets the list state. Called both optimistically from
// onBufferChanged (so the list doesn't show stale rows for the instant
// before the round trip completes) and from the result handler's
// envelope-driven result.MethodUIClearResults (the authoritative clear
// spec §4.5/§4.10 describe) — idempotent either way.
func (t *TUI) clearResults() {
	t.results = nil
	t.selected = 0
	t.finished = false
	t.count = 0
}

// handleKey applies one keypress. It returns false when the UI should
// shut down.
func (t *TUI) handleKey(ev termbox.Event) bool {
	if ev.Type != termbox.EventKey {
		return true
	}

	switch ev.Key {
	case termbox.KeyEsc, termbox.KeyCtrlC:
		return false
	case termbox.KeyEnter:
		t.copySelected()
		return true
	case termbox.KeyTab:
		t.cycleMode()
		return true
	case termbox.KeyArrowUp, termbox.KeyCtrlP:
		t.moveSelection(-1)
		return true
	case termbox.KeyArrowDown, termbox.KeyCtrlN:
		t.moveSelection(1)
		return true
	case termbox.KeyArrowLeft:
		if t.cursor > 0 {
			t.cursor--
		}
		return true
	case termbox.KeyArrowRight:
		if t.cursor < len(t.buffer) {
			t.cursor++
		}
		return true
	case termbox.KeyCtrlA:
		t.cursor = 0
		return true
	case termbox.KeyCtrlE:
		t.cursor = len(t.buffer)
		return true
	case termbox.KeyCtrlK:
		t.killRing = append([]rune{}, t.buffer[t.cursor:]...)
		t.buffer = t.buffer[:t.cursor]
		t.onBufferChanged()
		return true
	case termbox.KeyCtrlY:
		t.insert(t.killRing)
		return true
	case termbox.KeyCtrlG:
		t.buffer = nil
		t.cursor = 0
		t.onBufferChanged()
		return true
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		if t.cursor > 0 {
			t.buffer = append(t.buffer[:t.cursor-1], t.buffer[t.cursor:]...)
			t.cursor--
			t.onBufferChanged()
		}
		return true
	case termbox.KeyDelete:
		if t.cursor < len(t.buffer) {
			t.buffer = append(t.buffer[:t.cursor], t.buffer[t.cursor+1:]...)
			t.onBufferChanged()
		}
		return true
	case termbox.KeySpace:
		t.insert([]rune{' '})
		return true
	}

	if ev.Ch != 0 {
		t.insert([]rune{ev.Ch})
	}
	return true
}

func (t *TUI) insert(chars []rune) {
	if len(chars) == 0 {
		return
	}
	buf := make([]rune, 0, len(t.buffer)+len(chars))
	buf = append(buf, t.buffer[:t.cursor]...)
	buf = append(buf, chars...)
	buf = append(buf, t.buffer[t.cursor:]...)
	t.buffer = buf
	t.cursor += len(chars)
	t.onBufferChanged()
}

// onBufferChanged re-dispatches the current buffer as a fresh search
// generation. It clears the result list optimistically so the UI doesn't
// keep showing the previous generation's rows while result.MethodUIClearResults
// makes its round trip back from the result handler.
func (t *TUI) onBufferChanged() {
	t.clearResults()
	params := t.dispatcher.Dispatch(string(t.buffer))
	t.mode = params.Mode
}

func (t *TUI) moveSelection(delta int) {
	if len(t.results) == 0 {
		return
	}
	t.selected += delta
	if t.selected < 0 {
		t.selected = 0
	}
	if t.selected >= len(t.results) {
		t.selected = len(t.results) - 1
	}
}

// cycleMode rewrites the buffer's leading sigil to the next mode in the
// cycle, preserving the query text after the sigil.
func (t *TUI) cycleMode() {
	_, query := dispatch.Classify(string(t.buffer))
	next := (t.mode + 1) % 5
	sigil := sigilForMode(next)
	t.buffer = append([]rune(sigil), []rune(query)...)
	t.cursor = len(t.buffer)
	t.onBufferChanged()
}

func sigilForMode(m dispatch.Mode) string {
	switch m {
	case dispatch.Symbol:
		return "#"
	case dispatch.Variable:
		return "$"
	case dispatch.Filepath:
		return "@"
	case dispatch.Regex:
		return "/"
	default:
		return ""
	}
}

func (t *TUI) copySelected() {
	if t.selected < 0 || t.selected >= len(t.results) {
		return
	}
	r := t.results[t.selected]
	text := clip.Format(r.filename, r.line, r.column)
	if err := t.clipboard.WriteAll(text); err != nil {
		t.pushToast("copy failed: " + err.Error())
		return
	}
	t.pushToast("copied " + text)
}

func (t *TUI) pushToast(text string) {
	t.toasts = append(t.toasts, toast{text: text, expires: time.Now().Add(toastDuration)})
}

// expireToasts drops toasts past their expiry, returning whether the stack
// changed (so Run only re-renders when something actually did).
func (t *TUI) expireToasts() bool {
	if len(t.toasts) == 0 {
		return false
	}
	now := time.Now()
	kept := t.toasts[:0]
	changed := false
	for _, ts := range t.toasts {
		if ts.expires.After(now) {
			kept = append(kept, ts)
		} else {
			changed = true
		}
	}
	t.toasts = kept
	return changed
}

func (t *TUI) render() {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	t.renderHeader()
	t.renderResults()
	t.renderToasts()
	termbox.SetCursor(len(modeLabel(t.mode))+1+t.cursor, 0)
	termbox.Flush()
}

func (t *TUI) renderHeader() {
	prompt := fmt.Sprintf("%s %s", modeLabel(t.mode), string(t.buffer))
	tbprint(0, 0, prompt)

	status := "searching..."
	if t.finished {
		status = fmt.Sprintf("%d result(s)", t.count)
	}
	tbprint(0, 1, status)

	if t.stats != nil {
		snap := t.stats.Snapshot()
		indexLine := fmt.Sprintf("indexed %d  skipped %d  errors %d  symbols %d",
			snap.FilesIndexed, snap.FilesSkipped, snap.FilesErrored, snap.SymbolsStored)
		tbprintBold(0, 2, indexLine)
	}
}

func modeLabel(m dispatch.Mode) string {
	return "[" + m.String() + "]"
}

func (t *TUI) renderResults() {
	_, height := termbox.Size()
	maxRows := height - headerHeight - 1
	for i, r := range t.results {
		if i >= maxRows {
			break
		}
		y := i + headerHeight
		line := fmt.Sprintf("%s: %s", r.filename, r.content)
		if i == t.selected {
			tbprintBold(0, y, line)
		} else {
			tbprint(0, y, line)
		}
	}
}

// toastMinWidth and toastMargin implement spec §4.12's box sizing rule: an
// absolutely-sized top-right box whose width is clamped between a minimum
// of 20 chars and the terminal width minus margins, and whose height wraps
// to content.
const (
	toastMinWidth = 20
	toastMargin   = 1
)

// renderToasts draws the toast stack, newest first, inside a bordered box
// anchored to the top-right corner.
func (t *TUI) renderToasts() {
	if len(t.toasts) == 0 {
		return
	}
	termWidth, termHeight := termbox.Size()

	available := termWidth - 2*toastMargin - 2 // minus box borders
	if available < 1 {
		return
	}
	content := toastMinWidth
	for _, ts := range t.toasts {
		if n := runewidth.StringWidth(ts.text); n > content {
			content = n
		}
	}
	if content > available {
		content = available
	}

	var lines []string
	for i := len(t.toasts) - 1; i >= 0; i-- {
		lines = append(lines, wrapToWidth(t.toasts[i].text, content)...)
	}

	maxLines := termHeight - headerHeight - 3
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	boxWidth := content + 2
	boxHeight := len(lines) + 2
	x0 := termWidth - boxWidth - toastMargin
	if x0 < 0 {
		x0 = 0
	}
	y0 := headerHeight

	drawBox(x0, y0, boxWidth, boxHeight)
	for i, line := range lines {
		tbprint(x0+1, y0+1+i, padToWidth(line, content))
	}
}

// wrapToWidth splits s into chunks of at most width display columns,
// breaking on rune boundaries; toast text is short status strings, not
// prose, so this is a hard wrap rather than a word wrap.
func wrapToWidth(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	runes := []rune(s)
	var lines []string
	for len(runes) > 0 {
		n, cols := 0, 0
		for n < len(runes) {
			rw := runewidth.RuneWidth(runes[n])
			if n > 0 && cols+rw > width {
				break
			}
			cols += rw
			n++
		}
		lines = append(lines, string(runes[:n]))
		runes = runes[n:]
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// padToWidth right-pads line with spaces so it fully covers the box
// interior column it occupies, erasing whatever renderResults/renderHeader
// drew underneath.
func padToWidth(line string, width int) string {
	n := runewidth.StringWidth(line)
	if n >= width {
		return line
	}
	return line + strings.Repeat(" ", width-n)
}

// drawBox draws a single-line border box at (x0,y0) sized w×h, clearing its
// interior first so the overlay is opaque over whatever was rendered below it.
func drawBox(x0, y0, w, h int) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			termbox.SetCell(x, y, ' ', termbox.ColorDefault, termbox.ColorDefault)
		}
	}
	termbox.SetCell(x0, y0, '┌', termbox.ColorDefault, termbox.ColorDefault)
	termbox.SetCell(x0+w-1, y0, '┐', termbox.ColorDefault, termbox.ColorDefault)
	termbox.SetCell(x0, y0+h-1, '└', termbox.ColorDefault, termbox.ColorDefault)
	termbox.SetCell(x0+w-1, y0+h-1, '┘', termbox.ColorDefault, termbox.ColorDefault)
	for x := x0 + 1; x < x0+w-1; x++ {
		termbox.SetCell(x, y0, '─', termbox.ColorDefault, termbox.ColorDefault)
		termbox.SetCell(x, y0+h-1, '─', termbox.ColorDefault, termbox.ColorDefault)
	}
	for y := y0 + 1; y < y0+h-1; y++ {
		termbox.SetCell(x0, y, '│', termbox.ColorDefault, termbox.ColorDefault)
		termbox.SetCell(x0+w-1, y, '│', termbox.ColorDefault, termbox.ColorDefault)
	}
}

func tbprint(x, y int, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, termbox.ColorDefault, termbox.ColorDefault)
		x += runewidth.RuneWidth(c)
	}
}

func tbprintBold(x, y int, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, termbox.AttrBold, termbox.ColorDefault)
		x += runewidth.RuneWidth(c)
	}
}
