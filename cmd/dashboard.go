package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/cloak-cli/internal/adapters/imageart"
	"github.com/kamal-hamza/cloak-cli/internal/core/domain"
	"github.com/kamal-hamza/cloak-cli/internal/core/ports"
	"github.com/kamal-hamza/cloak-cli/internal/core/services"
	"github.com/kamal-hamza/cloak-cli/internal/handle"
	"github.com/kamal-hamza/cloak-cli/pkg/config"
	"github.com/kamal-hamza/cloak-cli/pkg/ui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Launch interactive dashboard (alias: dash)",
	Long: `Launch a full-screen interactive dashboard for the stash.

The dashboard provides:
- Hidden files grouped by category, newest first
- Image thumbnails (grid view) and inline previews
- Quick actions: hide, preview, open, export, delete

Keyboard Shortcuts:
  Navigation:
    ↑/k         Move up
    ↓/j         Move down
    g           Jump to top
    G           Jump to bottom

  Actions:
    a           Hide a file
    Enter       Preview selected file
    o           Open in system viewer (from preview)
    x           Export to the export directory
    d           Delete from the stash

  Views:
    /           Search mode
    t           Toggle image grid / list
    Esc         Close preview / Exit mode
    ?           Show help

  General:
    q           Quit dashboard
    Ctrl+C      Force quit`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	m := newDashboardModel(ctx, dashboardDeps{
		hide:      hideService,
		list:      listService,
		preview:   previewService,
		export:    exportService,
		delete:    deleteService,
		opener:    fileOpener,
		handles:   handles,
		cfg:       appConfig,
		exportDir: exportDir(""),
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	final, err := p.Run()
	if dm, ok := final.(dashboardModel); ok {
		dm.teardown()
	}
	if err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}

// dashboardDeps are the collaborators the dashboard calls from tea.Cmds
type dashboardDeps struct {
	hide      *services.HideService
	list      *services.ListService
	preview   *services.PreviewService
	export    *services.ExportService
	delete    *services.DeleteService
	opener    ports.FileOpener
	handles   *handle.Registry
	cfg       *config.Config
	exportDir string
}

// Dashboard view modes
type viewMode int

const (
	modeList viewMode = iota
	modeSearch
	modeHelp
	modeConfirmDelete
	modeHidePrompt
	modePreview
	modeReminder
)

// Dashboard model
type dashboardModel struct {
	ctx  context.Context
	deps dashboardDeps

	items  []domain.FileMeta // Every hidden file, id descending
	order  []domain.FileMeta // Filtered and grouped, in display order
	cursor int               // Selected index into order
	offset int               // First visible index into order

	mode      viewMode
	prevMode  viewMode
	isLoading bool
	isBusy    bool // A hide is in flight
	gridView  bool

	searchInput textinput.Model
	pathInput   textinput.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	ready       bool

	message       string // Status message
	messageStyle  lipgloss.Style
	messageExpiry time.Time

	deleteTarget *domain.FileMeta // File pending deletion
	hidden       *services.HideResponse

	// Preview state. The slot owns the preview's handle.
	slot           *handle.Slot
	preview        *services.Preview
	previewArt     string
	previewInfo    string
	previewPending bool
	viewport       viewport.Model

	// Thumbnails for visible image items, each with its own handle
	thumbs       *handle.Set
	thumbArt     map[int64]string
	thumbPending map[int64]bool
	thumbFailed  map[int64]bool
}

// Key bindings
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	View    key.Binding
	Open    key.Binding
	Hide    key.Binding
	Export  key.Binding
	Delete  key.Binding
	Search  key.Binding
	Toggle  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.View, k.Hide, k.Export, k.Delete, k.Search, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.View, k.Open, k.Hide, k.Export, k.Delete},
		{k.Search, k.Toggle, k.Help, k.Escape, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G"),
		key.WithHelp("G", "bottom"),
	),
	View: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "preview"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Hide: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "hide"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "grid/list"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

func newDashboardModel(ctx context.Context, deps dashboardDeps) dashboardModel {
	if deps.cfg == nil {
		deps.cfg = config.DefaultConfig()
	}

	si := textinput.New()
	si.Placeholder = "Search hidden files..."
	si.CharLimit = 100
	si.Width = 50

	pi := textinput.New()
	pi.Placeholder = "~/Pictures/photo.jpg"
	pi.CharLimit = 4096
	pi.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.StylePrimary

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle().Foreground(ui.ColorDefault)

	return dashboardModel{
		ctx:          ctx,
		deps:         deps,
		mode:         modeList,
		isLoading:    true,
		gridView:     deps.cfg.DefaultView == config.ViewGrid,
		searchInput:  si,
		pathInput:    pi,
		spinner:      sp,
		help:         help.New(),
		keys:         keys,
		slot:         &handle.Slot{},
		viewport:     vp,
		thumbs:       handle.NewSet(),
		thumbArt:     make(map[int64]string),
		thumbPending: make(map[int64]bool),
		thumbFailed:  make(map[int64]bool),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadItems(), m.spinner.Tick)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

		// Update preview viewport size
		previewWidth := m.width - m.listWidth() - 6
		previewHeight := msg.Height - 18
		if previewHeight < 5 {
			previewHeight = 5
		}
		m.viewport.Width = previewWidth
		m.viewport.Height = previewHeight
		m.adjustViewport()
		return m, m.syncThumbs()

	case tea.KeyMsg:
		// Handle mode-specific key bindings
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeHelp:
			return m.updateHelp(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeHidePrompt:
			return m.updateHidePrompt(msg)
		case modePreview:
			return m.updatePreview(msg)
		case modeReminder:
			m.mode = modeList
			return m, nil
		default:
			return m.updateList(msg)
		}

	case spinner.TickMsg:
		if !m.isLoading && !m.isBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = time.Now().Add(3 * time.Second)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearMessageMsg{} })

	case clearMessageMsg:
		if time.Now().After(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case itemsLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.items = nil
			m.refresh()
			return m, errorStatus("Failed to load stash: " + msg.err.Error())
		}
		m.items = msg.files
		services.SortNewestFirst(m.items)
		m.refresh()
		return m, m.syncThumbs()

	case hiddenMsg:
		m.isBusy = false
		if msg.err != nil {
			return m, errorStatus(fmt.Sprintf("Failed to hide %s: %s", filepath.Base(msg.path), hideErrorText(msg.err)))
		}
		m.items = append([]domain.FileMeta{msg.resp.File}, m.items...)
		services.SortNewestFirst(m.items)
		m.refresh()
		m.selectID(msg.resp.File.ID)
		m.hidden = msg.resp

		switch m.mode {
		case modeList, modePreview:
			// The reminder replaces the preview, so its handle goes too
			if m.mode == modePreview {
				m.closePreview()
			}
			m.mode = modeReminder
			return m, m.syncThumbs()
		default:
			// Don't pull the user out of a confirm, search or help screen
			return m, tea.Batch(warningStatus("Hidden "+msg.resp.File.Name+". "+reminderText), m.syncThumbs())
		}

	case deletedMsg:
		if msg.err != nil {
			return m, errorStatus(fmt.Sprintf("Failed to delete %s: %v", msg.name, msg.err))
		}
		m.removeItem(msg.id)
		return m, tea.Batch(successStatus("Deleted "+msg.name), m.syncThumbs())

	case previewLoadedMsg:
		return m.applyPreview(msg)

	case thumbLoadedMsg:
		return m.applyThumb(msg)
	}

	// Let the preview viewport scroll with the mouse
	if m.mode == modePreview {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
			return m, m.syncThumbs()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.order)-1 {
			m.cursor++
			m.adjustViewport()
			return m, m.syncThumbs()
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.offset = 0
		return m, m.syncThumbs()

	case key.Matches(msg, m.keys.Bottom):
		if len(m.order) > 0 {
			m.cursor = len(m.order) - 1
			m.adjustViewport()
			return m, m.syncThumbs()
		}

	case key.Matches(msg, m.keys.View), key.Matches(msg, m.keys.Open):
		if f, ok := m.selected(); ok {
			cmd := m.openPreview(f)
			return m, cmd
		}

	case key.Matches(msg, m.keys.Hide):
		if m.isBusy {
			return m, warningStatus("Still hiding the previous file")
		}
		m.mode = modeHidePrompt
		m.pathInput.SetValue("")
		m.pathInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Export):
		if f, ok := m.selected(); ok {
			return m, m.exportFile(f)
		}

	case key.Matches(msg, m.keys.Delete):
		if f, ok := m.selected(); ok {
			m.deleteTarget = &f
			m.prevMode = modeList
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Toggle):
		m.gridView = !m.gridView
		return m, m.syncThumbs()

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m dashboardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.cursor = 0
		m.offset = 0
		m.refresh()
		return m, m.syncThumbs()

	case msg.Type == tea.KeyEnter:
		m.mode = modeList
		m.searchInput.Blur()
		if f, ok := m.selected(); ok {
			cmd := m.openPreview(f)
			return m, cmd
		}
		return m, nil

	// Only use arrow keys for navigation in search mode, not j/k
	case msg.Type == tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
			return m, m.syncThumbs()
		}

	case msg.Type == tea.KeyDown:
		if m.cursor < len(m.order)-1 {
			m.cursor++
			m.adjustViewport()
			return m, m.syncThumbs()
		}

	default:
		oldQuery := m.searchInput.Value()
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.searchInput.Value() != oldQuery {
			m.cursor = 0
			m.offset = 0
			m.refresh()
			return m, tea.Batch(cmd, m.syncThumbs())
		}
		return m, cmd
	}

	return m, nil
}

func (m dashboardModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
	}
	return m, nil
}

func (m dashboardModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		target := m.deleteTarget
		m.deleteTarget = nil
		m.mode = m.prevMode
		if target == nil {
			return m, nil
		}
		return m, m.deleteFile(*target)

	case key.Matches(msg, m.keys.Cancel):
		m.deleteTarget = nil
		m.mode = m.prevMode
	}
	return m, nil
}

func (m dashboardModel) updateHidePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.pathInput.Blur()
		return m, nil

	case tea.KeyEnter:
		m.mode = modeList
		m.pathInput.Blur()

		path := expandPath(strings.TrimSpace(m.pathInput.Value()))
		if path == "" || m.isBusy {
			return m, nil
		}
		m.isBusy = true
		return m, tea.Batch(m.hideFile(path), m.spinner.Tick)
	}

	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m dashboardModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.closePreview()
		return m, m.syncThumbs()

	case key.Matches(msg, m.keys.Open):
		if m.preview != nil && m.preview.Handle != nil {
			return m, m.openExternal(m.preview)
		}

	case key.Matches(msg, m.keys.Export):
		if m.preview != nil {
			return m, m.exportFile(m.preview.File)
		}

	case key.Matches(msg, m.keys.Delete):
		if m.preview != nil {
			f := m.preview.File
			m.deleteTarget = &f
			m.prevMode = modePreview
			m.mode = modeConfirmDelete
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// State helpers

// refresh rebuilds the display order from items and the search query
func (m *dashboardModel) refresh() {
	files := m.items
	if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
		files = services.Search(files, q)
	}

	order := make([]domain.FileMeta, 0, len(files))
	for _, g := range services.GroupByCategory(files) {
		order = append(order, g.Files...)
	}
	m.order = order

	if m.cursor >= len(m.order) {
		m.cursor = len(m.order) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustViewport()
}

func (m dashboardModel) selected() (domain.FileMeta, bool) {
	if m.cursor < 0 || m.cursor >= len(m.order) {
		return domain.FileMeta{}, false
	}
	return m.order[m.cursor], true
}

func (m *dashboardModel) selectID(id int64) {
	for i, f := range m.order {
		if f.ID == id {
			m.cursor = i
			m.adjustViewport()
			return
		}
	}
}

// removeItem drops a deleted file and everything holding its bytes
func (m *dashboardModel) removeItem(id int64) {
	kept := m.items[:0:0]
	for _, f := range m.items {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	m.items = kept

	m.thumbs.Drop(id)
	delete(m.thumbArt, id)
	delete(m.thumbFailed, id)

	if m.preview != nil && m.preview.File.ID == id {
		m.closePreview()
	}
	m.refresh()
}

// lineBudget is how many lines the list pane may use
func (m dashboardModel) lineBudget() int {
	listHeight := m.height - 10
	if listHeight < 3 {
		listHeight = 3
	}
	return listHeight
}

// windowEnd returns the exclusive end of the window that starts at offset,
// counting section headers and the height of each grid row of tiles
func (m dashboardModel) windowEnd(offset int) int {
	budget := m.lineBudget()
	_, rows := m.thumbSize()
	perRow := m.tilesPerRow(m.listWidth())

	used := 0
	var section domain.Category
	i := offset
	for i < len(m.order) {
		c := m.order[i].DisplayCategory()

		cost, n := 1, 1
		if c != section {
			cost++
		}
		if c == domain.CategoryImage && m.gridView {
			// border, art, caption
			cost += rows + 2
			for n < perRow && i+n < len(m.order) && m.order[i+n].DisplayCategory() == domain.CategoryImage {
				n++
			}
		}

		// Always show at least the first row
		if used+cost > budget && i > offset {
			break
		}
		used += cost
		section = c
		i += n
	}
	return i
}

func (m *dashboardModel) adjustViewport() {
	if m.offset > len(m.order) {
		m.offset = len(m.order)
	}

	// Scroll up
	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	// Scroll down
	for m.offset < m.cursor && m.cursor >= m.windowEnd(m.offset) {
		m.offset++
	}

	if m.offset < 0 {
		m.offset = 0
	}
}

func (m dashboardModel) visibleItems() []domain.FileMeta {
	start := m.offset
	if start > len(m.order) {
		start = len(m.order)
	}
	return m.order[start:m.windowEnd(start)]
}

func (m dashboardModel) tilesPerRow(width int) int {
	cols, _ := m.thumbSize()
	perRow := width / (cols + 2)
	if perRow < 1 {
		perRow = 1
	}
	return perRow
}

func (m dashboardModel) listWidth() int {
	w := int(float64(m.width) * 0.45)
	if w < 30 {
		w = 30
	}
	return w
}

func (m dashboardModel) thumbSize() (int, int) {
	cols := m.deps.cfg.ThumbnailWidth
	rows := cols / 2
	if rows < 2 {
		rows = 2
	}
	return cols, rows
}

// closePreview releases the preview's handle and invalidates pending loads
func (m *dashboardModel) closePreview() {
	m.slot.Clear()
	m.preview = nil
	m.previewArt = ""
	m.previewInfo = ""
	m.previewPending = false
	m.mode = modeList
}

// teardown releases every handle the dashboard holds
func (m dashboardModel) teardown() {
	m.slot.Clear()
	m.thumbs.Close()
	if m.deps.handles != nil {
		_ = m.deps.handles.Close()
	}
}

// Thumbnails

// syncThumbs keeps thumbnail handles only for visible image items and
// starts loads for the ones that are missing
func (m dashboardModel) syncThumbs() tea.Cmd {
	want := make(map[int64]string)
	if m.gridView && m.mode != modePreview {
		for _, f := range m.visibleItems() {
			if domain.PreviewKindFor(f.MimeType) == domain.PreviewImage {
				want[f.ID] = f.MimeType
			}
		}
	}

	m.thumbs.Sync(want)
	for id := range m.thumbArt {
		if _, ok := m.thumbs.Get(id); !ok {
			delete(m.thumbArt, id)
		}
	}

	if m.deps.preview == nil {
		return nil
	}

	var cmds []tea.Cmd
	for id, mt := range want {
		if m.thumbs.Has(id, mt) || m.thumbPending[id] || m.thumbFailed[id] {
			continue
		}
		m.thumbPending[id] = true
		cmds = append(cmds, m.loadThumb(id, mt))
	}
	return tea.Batch(cmds...)
}

func (m dashboardModel) applyThumb(msg thumbLoadedMsg) (tea.Model, tea.Cmd) {
	delete(m.thumbPending, msg.id)
	if msg.err != nil {
		m.thumbFailed[msg.id] = true
		return m, nil
	}

	stillVisible := false
	if m.gridView && m.mode != modePreview {
		for _, f := range m.visibleItems() {
			if f.ID == msg.id && f.MimeType == msg.mimeType {
				stillVisible = true
				break
			}
		}
	}
	if !stillVisible {
		_ = msg.thumb.Handle.Release()
		return m, nil
	}

	m.thumbs.Put(msg.id, msg.mimeType, msg.thumb.Handle)
	m.thumbArt[msg.id] = msg.thumb.Art
	return m, nil
}

// Preview

// openPreview starts a new preview generation; the previous handle is released
func (m *dashboardModel) openPreview(f domain.FileMeta) tea.Cmd {
	gen := m.slot.Begin()
	m.preview = nil
	m.previewArt = ""
	m.previewInfo = ""
	m.previewPending = true
	m.mode = modePreview
	m.thumbs.Sync(nil)

	svc := m.deps.preview
	ctx := m.ctx
	cols, rows := m.viewport.Width, m.viewport.Height

	return func() tea.Msg {
		p, err := svc.Load(ctx, f.ID)
		if err != nil {
			return previewLoadedMsg{gen: gen, name: f.Name, err: err}
		}
		msg := previewLoadedMsg{gen: gen, name: f.Name, preview: p}
		if p.Kind == domain.PreviewImage {
			msg.art, msg.artErr = svc.Art(p, cols, rows)
			if data, err := p.Handle.Bytes(); err == nil {
				if info, err := imageart.Describe(data); err == nil {
					msg.info = info.String()
				}
			}
		}
		return msg
	}
}

func (m dashboardModel) applyPreview(msg previewLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.gen != m.slot.Generation() {
			return m, nil
		}
		m.previewPending = false
		m.mode = modeList
		return m, tea.Batch(errorStatus(fmt.Sprintf("Failed to open %s: %v", msg.name, msg.err)), m.syncThumbs())
	}

	// Closed or replaced while loading: Fill releases the late handle
	if !m.slot.Fill(msg.gen, msg.preview.Handle) {
		return m, nil
	}

	m.preview = msg.preview
	m.previewPending = false
	m.previewArt = msg.art
	m.previewInfo = msg.info
	if msg.artErr != nil {
		m.previewArt = ""
	}

	if m.preview.Kind == domain.PreviewPDF {
		text := m.preview.Text
		switch {
		case m.preview.TextErr != nil:
			text = ui.StyleMuted.Render("Could not extract text: " + m.preview.TextErr.Error())
		case strings.TrimSpace(text) == "":
			text = ui.StyleMuted.Render("(no extractable text)")
		}
		m.viewport.SetContent(text)
		m.viewport.GotoTop()
	}
	return m, nil
}

// Commands

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

type itemsLoadedMsg struct {
	files []domain.FileMeta
	err   error
}

type hiddenMsg struct {
	path string
	resp *services.HideResponse
	err  error
}

type deletedMsg struct {
	id   int64
	name string
	err  error
}

type previewLoadedMsg struct {
	gen     uint64
	name    string
	preview *services.Preview
	art     string
	artErr  error
	info    string // Image format and pixel size
	err     error
}

type thumbLoadedMsg struct {
	id       int64
	mimeType string
	thumb    *services.Thumbnail
	err      error
}

func successStatus(msg string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: ui.IconSuccess + " " + msg, style: ui.StyleSuccess}
	}
}

func errorStatus(msg string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: ui.IconError + " " + msg, style: ui.StyleError}
	}
}

func warningStatus(msg string) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: ui.IconWarning + " " + msg, style: ui.StyleWarning}
	}
}

func (m dashboardModel) loadItems() tea.Cmd {
	svc, ctx := m.deps.list, m.ctx
	return func() tea.Msg {
		resp, err := svc.Execute(ctx, services.ListRequest{})
		if err != nil {
			return itemsLoadedMsg{err: err}
		}
		return itemsLoadedMsg{files: resp.Files}
	}
}

func (m dashboardModel) hideFile(path string) tea.Cmd {
	svc, ctx := m.deps.hide, m.ctx
	return func() tea.Msg {
		resp, err := svc.Execute(ctx, services.HideRequest{Path: path})
		return hiddenMsg{path: path, resp: resp, err: err}
	}
}

func (m dashboardModel) deleteFile(f domain.FileMeta) tea.Cmd {
	svc, ctx := m.deps.delete, m.ctx
	return func() tea.Msg {
		err := svc.Execute(ctx, f.ID)
		return deletedMsg{id: f.ID, name: f.Name, err: err}
	}
}

func (m dashboardModel) exportFile(f domain.FileMeta) tea.Cmd {
	svc, ctx, dir := m.deps.export, m.ctx, m.deps.exportDir
	return func() tea.Msg {
		resp, err := svc.Execute(ctx, services.ExportRequest{ID: f.ID, Dir: dir})
		if err != nil {
			return statusMsg{message: ui.IconError + " Export failed: " + err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: ui.IconSuccess + " Exported to " + shortenHome(resp.Path), style: ui.StyleSuccess}
	}
}

func (m dashboardModel) openExternal(p *services.Preview) tea.Cmd {
	opener, ctx := m.deps.opener, m.ctx
	path, viewer := p.Handle.Path(), m.deps.cfg.ViewerFor(p.File.MimeType)
	name := p.File.Name
	return func() tea.Msg {
		if opener == nil {
			return statusMsg{message: ui.IconError + " No viewer available", style: ui.StyleError}
		}
		if err := opener.Open(ctx, path, viewer); err != nil {
			return statusMsg{message: ui.IconError + " Failed to open: " + err.Error(), style: ui.StyleError}
		}
		return statusMsg{message: ui.IconSuccess + " Opened " + name, style: ui.StyleSuccess}
	}
}

func (m dashboardModel) loadThumb(id int64, mimeType string) tea.Cmd {
	svc, ctx := m.deps.preview, m.ctx
	cols, rows := m.thumbSize()
	return func() tea.Msg {
		th, err := svc.Thumbnail(ctx, id, cols, rows)
		return thumbLoadedMsg{id: id, mimeType: mimeType, thumb: th, err: err}
	}
}

// Views

func (m dashboardModel) View() string {
	if !m.ready {
		return "\n  Loading dashboard..."
	}

	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeConfirmDelete:
		return m.viewConfirmDelete()
	case modeReminder:
		return m.viewReminder()
	default:
		return m.viewMain()
	}
}

func (m dashboardModel) viewMain() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderTopBar())
	s.WriteString("\n\n")

	// Split screen: list on the left, preview or details on the right
	listWidth := m.listWidth()
	rightWidth := m.width - listWidth - 2

	listContent := m.renderList(listWidth)
	if rightWidth < 30 {
		s.WriteString(listContent)
	} else {
		var right string
		if m.mode == modePreview {
			right = m.renderPreview(rightWidth)
		} else {
			right = m.renderDetails(rightWidth)
		}

		listLines := strings.Split(listContent, "\n")
		rightLines := strings.Split(right, "\n")

		maxLines := len(listLines)
		if len(rightLines) > maxLines {
			maxLines = len(rightLines)
		}

		for i := 0; i < maxLines; i++ {
			var listLine, rightLine string
			if i < len(listLines) {
				listLine = listLines[i]
			}
			if i < len(rightLines) {
				rightLine = rightLines[i]
			}
			s.WriteString(padRight(listLine, listWidth))
			s.WriteString("  ")
			s.WriteString(rightLine)
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m dashboardModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	statsStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	var total int64
	for _, f := range m.items {
		total += f.SizeBytes
	}

	title := titleStyle.Render(ui.IconLock + " Cloak")
	if m.isLoading || m.isBusy {
		title += " " + m.spinner.View()
	}
	stats := statsStyle.Render(fmt.Sprintf("%d files  %s", len(m.items), ui.FormatSize(total)))

	spacer := m.width - lipgloss.Width(title) - lipgloss.Width(stats)
	if spacer < 0 {
		spacer = 0
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacer),
		stats,
	)
}

func (m dashboardModel) renderTopBar() string {
	borderColor := ui.ColorMuted
	if m.mode == modeSearch || m.mode == modeHidePrompt {
		borderColor = ui.ColorPrimary
	}

	barStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(m.width - 4)

	if m.mode == modeHidePrompt {
		return barStyle.Render(ui.StylePrimary.Render("Hide file: ") + m.pathInput.View())
	}

	prompt := ui.StyleMuted.Render("🔍 ")
	if m.mode == modeSearch {
		prompt = ui.StylePrimary.Render("🔍 ")
	}

	content := prompt + m.searchInput.View()
	if m.mode != modeSearch && m.searchInput.Value() == "" {
		content = prompt + ui.StyleMuted.Render("Press / to search, a to hide a file...")
	}

	return barStyle.Render(content)
}

func (m dashboardModel) renderList(width int) string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Italic(true).
		Padding(2, 2).
		Width(width)

	if m.isLoading {
		return emptyStyle.Render(m.spinner.View() + " Loading stash...")
	}
	if len(m.order) == 0 {
		if m.searchInput.Value() != "" {
			return emptyStyle.Render("No hidden files match your search.")
		}
		return emptyStyle.Render("The stash is empty. Press 'a' to hide a file.")
	}

	counts := make(map[domain.Category]int)
	for _, f := range m.order {
		counts[f.DisplayCategory()]++
	}

	var s strings.Builder
	visible := m.visibleItems()
	var section domain.Category

	for i := 0; i < len(visible); {
		f := visible[i]
		c := f.DisplayCategory()
		if c != section {
			section = c
			s.WriteString(ui.StyleHeader.Render(fmt.Sprintf("%s %s (%d)", ui.CategoryIcon(string(c)), c.DisplayName(), counts[c])))
			s.WriteString("\n")
		}

		if c == domain.CategoryImage && m.gridView {
			j := i
			for j < len(visible) && visible[j].DisplayCategory() == domain.CategoryImage {
				j++
			}
			s.WriteString(m.renderGrid(visible[i:j], m.offset+i, width))
			i = j
			continue
		}

		s.WriteString(m.renderItem(f, m.offset+i == m.cursor, width))
		i++
	}

	return s.String()
}

func (m dashboardModel) renderItem(f domain.FileMeta, selected bool, width int) string {
	cursor := "  "
	nameStyle := lipgloss.NewStyle().Foreground(ui.ColorDefault)
	if selected {
		cursor = ui.StylePrimary.Render("▶ ")
		nameStyle = ui.StylePrimary
	}

	meta := fmt.Sprintf("%8s  %s", ui.FormatSize(f.SizeBytes), formatRelativeTime(f.LastModified()))
	maxName := width - lipgloss.Width(meta) - 4
	if maxName < 10 {
		maxName = 10
	}

	line := cursor + padRight(nameStyle.Render(ui.Truncate(f.Name, maxName)), maxName) + " " + ui.StyleMuted.Render(meta)
	return padRight(line, width) + "\n"
}

// renderGrid lays image tiles out in rows; first is the order index of files[0]
func (m dashboardModel) renderGrid(files []domain.FileMeta, first int, width int) string {
	cols, rows := m.thumbSize()
	perRow := m.tilesPerRow(width)

	var lines []string
	for start := 0; start < len(files); start += perRow {
		end := start + perRow
		if end > len(files) {
			end = len(files)
		}

		tiles := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			tiles = append(tiles, m.renderTile(files[i], first+i == m.cursor, cols, rows))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m dashboardModel) renderTile(f domain.FileMeta, selected bool, cols, rows int) string {
	border := ui.ColorMuted
	if selected {
		border = ui.ColorPrimary
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(cols)

	art, ok := m.thumbArt[f.ID]
	if !ok {
		placeholder := ui.IconImage
		switch {
		case m.thumbPending[f.ID]:
			placeholder = "…"
		case m.thumbFailed[f.ID]:
			placeholder = ui.IconError
		}
		art = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, ui.StyleMuted.Render(placeholder))
	}

	caption := ui.Truncate(f.Name, cols)
	if selected {
		caption = ui.StylePrimary.Render(caption)
	} else {
		caption = ui.StyleMuted.Render(caption)
	}
	return style.Render(art + "\n" + caption)
}

func (m dashboardModel) renderDetails(width int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1).
		Width(width - 2)

	f, ok := m.selected()
	if !ok {
		return boxStyle.Render(ui.StyleSubtle.Render("No file selected"))
	}

	var s strings.Builder
	s.WriteString(ui.StylePrimary.Render(ui.CategoryIcon(string(f.DisplayCategory())) + " " + ui.Truncate(f.Name, width-8)))
	s.WriteString("\n\n")
	s.WriteString(ui.RenderKeyValue("ID", fmt.Sprintf("%d", f.ID)) + "\n")
	s.WriteString(ui.RenderKeyValue("Type", f.MimeType) + "\n")
	s.WriteString(ui.RenderKeyValue("Size", ui.FormatSize(f.SizeBytes)) + "\n")
	s.WriteString(ui.RenderKeyValue("Modified", f.GetDisplayDate(m.deps.cfg.DisplayDateFormat)) + "\n")
	s.WriteString(ui.RenderKeyValue("Category", f.DisplayCategory().DisplayName()) + "\n")
	s.WriteString("\n")
	s.WriteString(ui.StyleMuted.Render("[enter] preview  [x] export  [d] delete"))

	return boxStyle.Render(s.String())
}

func (m dashboardModel) renderPreview(width int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(0, 1).
		Width(width - 2)

	if m.previewPending || m.preview == nil {
		return boxStyle.Render(m.spinner.View() + ui.StyleSubtle.Render(" Loading preview..."))
	}

	p := m.preview
	var s strings.Builder
	s.WriteString(ui.StylePrimary.Render(ui.CategoryIcon(string(p.File.DisplayCategory())) + " " + ui.Truncate(p.File.Name, width-8)))
	s.WriteString("\n")
	meta := fmt.Sprintf("%s · %s", p.File.MimeType, ui.FormatSize(p.File.SizeBytes))
	if m.previewInfo != "" {
		meta += " · " + m.previewInfo
	}
	s.WriteString(ui.StyleMuted.Render(meta))
	s.WriteString("\n\n")

	switch p.Kind {
	case domain.PreviewImage:
		if m.previewArt != "" {
			s.WriteString(m.previewArt)
		} else {
			s.WriteString(ui.StyleSubtle.Render("Cannot draw this image here."))
		}
		s.WriteString("\n\n")
		s.WriteString(ui.StyleMuted.Render("[o] open in viewer  [x] export  [esc] close"))

	case domain.PreviewVideo, domain.PreviewAudio:
		verb := "Play"
		icon := ui.IconVideo
		if p.Kind == domain.PreviewAudio {
			icon = ui.IconAudio
		}
		card := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ui.ColorAccent).
			Padding(1, 3).
			Align(lipgloss.Center).
			Render(icon + "\n\n" + ui.StyleBold.Render(p.File.Name) + "\n" +
				ui.StyleMuted.Render(p.File.GetDisplayDate(m.deps.cfg.DisplayDateFormat)))
		s.WriteString(card)
		s.WriteString("\n\n")
		s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("[o] %s in system player  [x] export  [esc] close", verb)))

	case domain.PreviewPDF:
		s.WriteString(m.viewport.View())
		s.WriteString("\n")
		s.WriteString(ui.StyleMuted.Render(fmt.Sprintf("%d%%  [PgUp/PgDn] scroll  [o] open in PDF viewer  [esc] close",
			int(m.viewport.ScrollPercent()*100))))

	default:
		s.WriteString(ui.StyleSubtle.Render("Preview not available for this file type."))
		s.WriteString("\n\n")
		s.WriteString(ui.StyleMuted.Render("[x] export to " + shortenHome(m.deps.exportDir) + "  [esc] close"))
	}

	return boxStyle.Render(s.String())
}

func (m dashboardModel) renderFooter() string {
	// Status message
	var statusLine string
	if m.message != "" && time.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	} else if m.isBusy {
		statusLine = ui.StyleMuted.Render(m.spinner.View() + " Hiding file...")
	} else {
		statusLine = ui.StyleMuted.Render("Ready")
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		statusLine,
		m.help.ShortHelpView(m.keys.ShortHelp()),
	))
}

func (m dashboardModel) viewHelp() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	sectionStyle := lipgloss.NewStyle().
		Foreground(ui.ColorAccent).
		Bold(true).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ui.ColorSuccess).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ui.ColorDefault)

	s.WriteString(titleStyle.Render("Cloak Dashboard - Keyboard Shortcuts"))
	s.WriteString("\n\n")

	sections := []struct {
		title string
		keys  []struct{ key, desc string }
	}{
		{
			title: "Navigation",
			keys: []struct{ key, desc string }{
				{"↑ / k", "Move cursor up"},
				{"↓ / j", "Move cursor down"},
				{"g", "Jump to top"},
				{"G", "Jump to bottom"},
			},
		},
		{
			title: "Actions",
			keys: []struct{ key, desc string }{
				{"a", "Hide a file (the original stays where it is)"},
				{"Enter", "Preview the selected file"},
				{"o", "Open the preview in the system viewer"},
				{"x", "Export to " + shortenHome(m.deps.exportDir)},
				{"d", "Delete from the stash (with confirmation)"},
			},
		},
		{
			title: "Views & Search",
			keys: []struct{ key, desc string }{
				{"/", "Start search (type to filter, arrow keys to navigate)"},
				{"t", "Toggle image grid / list"},
				{"Esc", "Close preview / Cancel"},
				{"?", "Show this help"},
			},
		},
		{
			title: "Preview",
			keys: []struct{ key, desc string }{
				{"PgUp/PgDn", "Scroll PDF text"},
			},
		},
		{
			title: "General",
			keys: []struct{ key, desc string }{
				{"q", "Quit dashboard"},
				{"Ctrl+C", "Force quit"},
			},
		},
	}

	for _, section := range sections {
		s.WriteString(sectionStyle.Render(section.title))
		s.WriteString("\n")
		for _, binding := range section.keys {
			s.WriteString("  ")
			s.WriteString(keyStyle.Render(binding.key))
			s.WriteString(descStyle.Render(binding.desc))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(ui.StyleMuted.Render("  Press ESC or ? to return to dashboard"))
	s.WriteString("\n")

	return s.String()
}

func (m dashboardModel) viewConfirmDelete() string {
	if m.deleteTarget == nil {
		return ""
	}

	content := fmt.Sprintf("%s\n\n%s\n%s\n\n%s",
		lipgloss.NewStyle().Foreground(ui.ColorWarning).Bold(true).Render(ui.IconWarning+"  Delete permanently?"),
		ui.StylePrimary.Render(m.deleteTarget.Name),
		ui.StyleMuted.Render(fmt.Sprintf("id %d · %s", m.deleteTarget.ID, ui.FormatSize(m.deleteTarget.SizeBytes))),
		lipgloss.NewStyle().Foreground(ui.ColorDefault).Render("Press 'y' to confirm, 'n' or ESC to cancel"),
	)

	return m.centerBox(content, ui.ColorWarning)
}

func (m dashboardModel) viewReminder() string {
	if m.hidden == nil {
		return ""
	}

	content := fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n\n%s",
		ui.StylePrimary.Render(ui.IconLock+"  Hidden "+m.hidden.File.Name),
		lipgloss.NewStyle().Foreground(ui.ColorDefault).Render(reminderText),
		ui.StyleMuted.Render("Original:"),
		ui.StyleMuted.Render(shortenHome(m.hidden.SourcePath)),
		ui.StyleMuted.Render("Press any key to continue"),
	)

	return m.centerBox(content, ui.ColorPrimary)
}

func (m dashboardModel) centerBox(content string, border lipgloss.TerminalColor) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center).
		Render(content)

	// Center the box vertically
	verticalPadding := (m.height - lipgloss.Height(box)) / 2
	if verticalPadding < 0 {
		verticalPadding = 0
	}

	return strings.Repeat("\n", verticalPadding) +
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, box)
}

func padRight(s string, width int) string {
	// Strip ANSI codes to get real length
	realLen := lipgloss.Width(s)
	if realLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-realLen)
}

func formatRelativeTime(t time.Time) string {
	// Normalize both dates to midnight for day-based comparison
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())

	days := int(math.Round(today.Sub(day).Hours() / 24))

	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "1d ago"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < 14:
		return "1w ago"
	case days < 30:
		return fmt.Sprintf("%dw ago", days/7)
	case days < 60:
		return "1mo ago"
	case days < 365:
		return fmt.Sprintf("%dmo ago", days/30)
	case days < 730:
		return "1y ago"
	default:
		return fmt.Sprintf("%dy ago", days/365)
	}
}

// expandPath resolves a leading ~ in a typed path
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
