package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-jeebie-dbg/jeebie/backend"
	"github.com/valerio/go-jeebie-dbg/jeebie/backend/terminal/render"
	"github.com/valerio/go-jeebie-dbg/jeebie/cpu"
	"github.com/valerio/go-jeebie-dbg/jeebie/debug"
	"github.com/valerio/go-jeebie-dbg/jeebie/input"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/action"
	"github.com/valerio/go-jeebie-dbg/jeebie/input/event"
)

const (
	leftPanelWidth = 26
	tableWidth     = 4 + 3*16 + 1
	logHeight      = 6
	minTermWidth   = 80
	minTermHeight  = 24
	logCapacity    = 200
)

// Key expiry timeout - slightly longer than typical key repeat interval.
// Terminals only report presses, so a held key is one that keeps repeating.
const keyTimeout = 100 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   slog.Level
	config     backend.BackendConfig
	eventQueue []backend.InputEvent
	signals    chan os.Signal
	now        func() time.Time

	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame

	// last rendered view, for the cursor and snapshots
	data   *debug.CompleteDebugData
	cursor cursor
}

// cursor selects a memory cell for breakpoint toggling.
type cursor struct {
	table   int
	region  string
	address uint16
	valid   bool
}

// New creates a new terminal backend. The log panel starts filtered at level.
func New(level slog.Level) *Backend {
	return &Backend{
		logLevel: level,
		now:      time.Now,
	}
}

// NewWithScreen creates a backend drawing on an existing screen, such as a
// tcell simulation screen.
func NewWithScreen(screen tcell.Screen, level slog.Level) *Backend {
	t := New(level)
	t.screen = screen
	return t
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// Capture everything; the panel filters by t.logLevel
	t.logBuffer = render.NewLogBuffer(logCapacity)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))
	slog.Info("Terminal backend initialized", "title", config.Title)

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Set up signal handling for graceful shutdown
	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	return nil
}

// Update renders the view and processes events
func (t *Backend) Update(data *debug.CompleteDebugData) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := t.now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, shutting down", "signal", sig)
		t.running = false
		if t.config.Callbacks.OnQuit != nil {
			t.config.Callbacks.OnQuit()
		}
	default:
	}

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	// Track which keys are currently active this frame
	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) < keyTimeout {
			currentlyActive[act] = true
			if !t.activeKeys[act] {
				slog.Debug("Key press", "action", act.String())
				events = append(events, backend.InputEvent{Action: act, Type: event.Press})
			} else {
				events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		} else {
			delete(t.keyStates, act)
		}
	}

	// Check for released keys (were active last frame but not this frame)
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act.String())
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	if data != nil {
		t.data = data
		t.syncCursor()
	}
	t.render()
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.DebuggerSnapshot:
		debug.TakeSnapshot(t.data)
	case action.DebuggerToggleBreakpoint:
		if region, address, ok := t.Cursor(); ok && t.config.Callbacks.OnToggleBreakpoint != nil {
			t.config.Callbacks.OnToggleBreakpoint(region, address)
		}
	case action.CursorUp:
		t.moveCursor(-16)
	case action.CursorDown:
		t.moveCursor(16)
	case action.CursorLeft:
		t.moveCursor(-1)
	case action.CursorRight:
		t.moveCursor(1)
	case action.CursorNextTable:
		t.nextTable()
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

// Cursor returns the region and address under the memory cursor.
func (t *Backend) Cursor() (string, uint16, bool) {
	return t.cursor.region, t.cursor.address, t.cursor.valid
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}

	if act == action.DebuggerQuit {
		t.running = false
	}

	info := action.GetInfo(act)
	slog.Debug("Key event", "key", ev.Name(), "action", info.Description)
	if info.Category == action.CategoryGameInput {
		if act == action.GBDPadUp || act == action.GBDPadDown ||
			act == action.GBDPadLeft || act == action.GBDPadRight {
			// Clear all d-pad directions to simulate exclusive directions
			delete(t.keyStates, action.GBDPadUp)
			delete(t.keyStates, action.GBDPadDown)
			delete(t.keyStates, action.GBDPadLeft)
			delete(t.keyStates, action.GBDPadRight)
		}
		t.keyStates[act] = now
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyTab:    "Tab",
	tcell.KeyEscape: "Escape",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.DebuggerQuit
	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for keyName, act := range input.DefaultKeyMap {
		if keyName == "Space" {
			mapping[' '] = act
			continue
		}
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel
	switch direction {
	case -1:
		switch t.logLevel {
		case slog.LevelDebug:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelError
		}
	case 1:
		switch t.logLevel {
		case slog.LevelError:
			t.logLevel = slog.LevelWarn
		case slog.LevelWarn:
			t.logLevel = slog.LevelInfo
		case slog.LevelInfo:
			t.logLevel = slog.LevelDebug
		}
	}
	if oldLevel != t.logLevel {
		slog.Info("Log filter changed", "from", oldLevel, "to", t.logLevel)
	}
}

// syncCursor keeps the cursor on a visible cell of the selected table. It
// jumps to the table anchor when the table scrolled away from it.
func (t *Backend) syncCursor() {
	tables := t.data.Tables
	if len(tables) == 0 {
		t.cursor = cursor{}
		return
	}
	if t.cursor.table >= len(tables) {
		t.cursor.table = 0
	}

	table := tables[t.cursor.table]
	if t.cursor.valid && t.cursor.region == table.Name && visible(table, t.cursor.address) {
		return
	}

	t.cursor.region = table.Name
	t.cursor.valid = false
	for _, l := range table.Lines {
		for _, c := range l.Cells {
			if !t.cursor.valid || c.Kind == debug.CellAnchor {
				t.cursor.address = c.Address
				t.cursor.valid = true
			}
		}
	}
}

func visible(table debug.Table, address uint16) bool {
	for _, l := range table.Lines {
		if n := len(l.Cells); n > 0 && address >= l.Address && address <= l.Cells[n-1].Address {
			return true
		}
	}
	return false
}

func (t *Backend) moveCursor(delta int) {
	if t.data == nil || !t.cursor.valid || t.cursor.table >= len(t.data.Tables) {
		return
	}
	target := int(t.cursor.address) + delta
	if target < 0 || target > 0xFFFF {
		return
	}
	if visible(t.data.Tables[t.cursor.table], uint16(target)) {
		t.cursor.address = uint16(target)
	}
}

func (t *Backend) nextTable() {
	if t.data == nil || len(t.data.Tables) == 0 {
		return
	}
	t.cursor.table = (t.cursor.table + 1) % len(t.data.Tables)
	t.cursor.valid = false
	t.syncCursor()
}

var (
	titleStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	borderStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	textStyle    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	changedStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	labelStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	anchorStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
	operandStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	bpStyle      = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon)
	errorStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

func (t *Backend) render() {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, errorStyle)
		return
	}

	dividerX := leftPanelWidth + 1
	logsY := termHeight - logHeight - 1
	t.drawBorders(termWidth, termHeight, dividerX, logsY)

	if t.data != nil {
		t.drawLeftPanel(1, 1, leftPanelWidth, logsY-1)
		t.drawTables(dividerX+2, 1, termWidth-dividerX-2, logsY-1)
	}
	t.drawLogs(1, logsY+1, termWidth-1, termHeight-1)
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX, logsY int) {
	for y := 0; y < logsY; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}
	for x := 0; x < termWidth; x++ {
		t.screen.SetContent(x, logsY, '─', nil, borderStyle)
	}
	t.screen.SetContent(dividerX, logsY, '┴', nil, borderStyle)

	title := " CPU "
	if t.config.Title != "" {
		title = fmt.Sprintf(" %s ", t.config.Title)
	}
	t.drawText(1, 0, leftPanelWidth, title, titleStyle)
	t.drawText(dividerX+2, 0, termWidth-dividerX-2, " Memory ", titleStyle)

	levelStr := strings.ToUpper(t.logLevel.String())
	t.drawText(2, logsY, termWidth-2, fmt.Sprintf(" Logs [%s] (-/+ filter) ", levelStr), titleStyle)

	help := " SPACE=step R=run B=breakpoint ARROWS=cursor TAB=table WASD/Z/X/ENTER/V=joypad F12=snapshot Q=quit "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

// drawText draws s clipped to width and returns the number of cells used.
func (t *Backend) drawText(x, y, width int, s string, style tcell.Style) int {
	n := 0
	for _, ch := range s {
		if n >= width {
			break
		}
		t.screen.SetContent(x+n, y, ch, nil, style)
		n++
	}
	return n
}

func (t *Backend) drawLeftPanel(x, y, width, maxY int) {
	d := t.data

	line := func(s string, style tcell.Style) {
		if y < maxY {
			t.drawText(x, y, width, s, style)
		}
		y++
	}
	section := func(title string) {
		line("── "+title, titleStyle)
	}

	line(fmt.Sprintf("%s  step %d", d.DebuggerState, d.Steps), textStyle)

	// registers flow left to right, changed ones highlighted
	col := 0
	for _, f := range cpu.Fields {
		token := fmt.Sprintf("%s %s", f, f.Format(d.Current.Value(f)))
		if col > 0 && col+1+len(token) > width {
			col = 0
			y++
		}
		if col > 0 {
			col++
		}
		style := textStyle
		if d.Changed(f) {
			style = changedStyle
		}
		if y < maxY {
			col += t.drawText(x+col, y, width-col, token, style)
		}
	}
	y++

	section("Updates")
	if len(d.Changes) == 0 {
		line("none", labelStyle)
	}
	for _, c := range d.Changes {
		line(c.String(), changedStyle)
	}

	section("Instruction")
	in := d.Instruction
	if in.Mnemonic == "" {
		line("-", labelStyle)
	} else {
		line(in.String(), textStyle)
		line(fmt.Sprintf("bytes %d cycles %s", in.Bytes, in.CyclesString()), textStyle)
		line(debug.FormatFlagEffects(in.Flags), textStyle)
	}
	if d.HasOperand {
		line("addr "+debug.FormatAddress(d.OperandAddress), textStyle)
	}

	if len(d.Breakpoints) > 0 {
		section("Breakpoints")
		for _, bp := range d.Breakpoints {
			s := fmt.Sprintf("%s:0x%04X", bp.Region, bp.Address)
			if bp.Pending {
				s += " (pending)"
			}
			line(s, textStyle)
		}
	}

	if len(d.SerialLines) > 0 || d.SerialPartial != "" {
		section("Serial")
		for _, s := range d.SerialLines {
			line(s, textStyle)
		}
		if d.SerialPartial != "" {
			line(d.SerialPartial+"_", textStyle)
		}
	}

	if d.LastError != "" {
		line("error: "+d.LastError, errorStyle)
	}
}

// drawTables draws the memory tables starting with the selected one, as
// many as fit.
func (t *Backend) drawTables(x, y, width, maxY int) {
	tables := t.data.Tables
	if len(tables) == 0 {
		t.drawText(x, y, width, "no memory maps", labelStyle)
		return
	}

	for i := range tables {
		idx := (t.cursor.table + i) % len(tables)
		table := tables[idx]
		if y+1+len(table.Lines) > maxY {
			break
		}

		header := fmt.Sprintf("%s @%s", table.Name, table.Anchor)
		style := labelStyle
		if idx == t.cursor.table {
			style = titleStyle
		}
		t.drawText(x, y, width, header, style)
		y++

		for _, l := range table.Lines {
			t.drawTableLine(x, y, width, l, idx == t.cursor.table)
			y++
		}
		y++
	}
}

func (t *Backend) drawTableLine(x, y, width int, l debug.Line, selected bool) {
	col := t.drawText(x, y, width, l.Label, labelStyle)
	for _, c := range l.Cells {
		if col+3 > width || col+3 > tableWidth {
			return
		}
		style := textStyle
		switch c.Kind {
		case debug.CellAnchor:
			style = anchorStyle
		case debug.CellOperand:
			style = operandStyle
		case debug.CellBreakpoint:
			style = bpStyle
		}
		if selected && t.cursor.valid && c.Address == t.cursor.address {
			style = style.Reverse(true)
		}
		col++
		col += t.drawText(x+col, y, width-col, fmt.Sprintf("%02X", c.Value), style)
	}
}

func (t *Backend) drawLogs(startX, startY, width, maxY int) {
	availableHeight := maxY - startY
	if width <= 0 || availableHeight <= 0 {
		return
	}

	allLogs := t.logBuffer.GetRecent(availableHeight * 4)
	logs := make([]render.LogEntry, 0, availableHeight)
	for _, entry := range allLogs {
		if entry.Level >= t.logLevel {
			logs = append(logs, entry)
			if len(logs) >= availableHeight {
				break
			}
		}
	}

	debugStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	infoStyle := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	warnStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	// oldest at the top
	for i := range logs {
		entry := logs[len(logs)-1-i]
		style := infoStyle
		switch {
		case entry.Level >= slog.LevelError:
			style = errorStyle
		case entry.Level >= slog.LevelWarn:
			style = warnStyle
		case entry.Level < slog.LevelInfo:
			style = debugStyle
		}

		logText := render.FormatLogEntry(entry)
		if len(logText) > width && width > 3 {
			logText = logText[:width-3] + "..."
		}
		t.drawText(startX, startY+i, width, logText, style)
	}
}
