package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/migueltarga/kiddo-engine/internal/catalog"
	"github.com/migueltarga/kiddo-engine/internal/config"
	"github.com/migueltarga/kiddo-engine/internal/fetcher"
	"github.com/migueltarga/kiddo-engine/internal/imagecache"
	"github.com/migueltarga/kiddo-engine/internal/storage"
	"github.com/migueltarga/kiddo-engine/pkg/inventory"
	"github.com/migueltarga/kiddo-engine/pkg/markup"
	"github.com/migueltarga/kiddo-engine/pkg/session"
	"github.com/migueltarga/kiddo-engine/pkg/story"
)

const toastVisibleTicks = 15 // ~3s at the tick rate

type screen int

const (
	screenLibrary screen = iota
	screenStory
	screenSettings
)

// Settings rows, in display order.
const (
	settingLanguage = iota
	settingOnline
	settingClearStories
	settingClearImages
	settingCount
)

type imageState int

const (
	imagePending imageState = iota
	imageReady
	imageFailed
)

// libraryItem is one selectable row: either a story already on the
// store, or a catalog entry that still needs downloading.
type libraryItem struct {
	title  string
	lang   string
	file   string
	local  *story.Story
	remote bool
}

// ReaderUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ReaderUI struct {
	cfg      *config.Config
	logger   *slog.Logger
	loader   *catalog.Loader
	index    *storage.ContentIndex
	remote   *catalog.Remote
	images   *imagecache.Cache
	fetch    *fetcher.Fetcher
	sessions *storage.SessionStore

	width    int
	height   int
	ready    bool
	viewport viewport.Model

	screen     screen
	items      []libraryItem
	cursor     int
	refreshing bool
	statusMsg  string

	settingsCursor int
	langOptions    []string

	sess         *session.Session
	choiceCursor int
	downloading  string

	toast      string
	toastTicks int

	showQuitModal  bool
	showLeaveModal bool

	// Shared across model copies. Fetch callbacks and the inventory
	// OnAdd hook write here; everything runs on the Update goroutine.
	events      *[]fetcher.Result
	notices     *[]string
	imageStates map[string]imageState
}

type tickMsg struct{}

type snapshotLoadedMsg struct {
	snap *storage.Snapshot
	err  error
}

type snapshotSavedMsg struct {
	err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	storyTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // near white

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	selectedChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	disabledChoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")) // dark grey

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

func NewReaderUI(cfg *config.Config, logger *slog.Logger, loader *catalog.Loader, index *storage.ContentIndex, remote *catalog.Remote, images *imagecache.Cache, fetch *fetcher.Fetcher, sessions *storage.SessionStore) ReaderUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true

	events := make([]fetcher.Result, 0, 8)
	notices := make([]string, 0, 4)

	m := ReaderUI{
		cfg:         cfg,
		logger:      logger,
		loader:      loader,
		index:       index,
		remote:      remote,
		images:      images,
		fetch:       fetch,
		sessions:    sessions,
		viewport:    vp,
		screen:      screenLibrary,
		events:      &events,
		notices:     &notices,
		imageStates: make(map[string]imageState),
		langOptions: languageOptions(loader.Language()),
	}
	m.rebuildLibrary()
	if cfg.OnlineMode {
		m.refreshing = true
	}
	return m
}

func (m ReaderUI) Init() tea.Cmd {
	if m.cfg.OnlineMode {
		m.fetch.FetchCatalog(m.fetchCallback())
	}
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// fetchCallback queues completed results for the next tick.
func (m ReaderUI) fetchCallback() fetcher.Callback {
	events := m.events
	return func(r fetcher.Result) {
		*events = append(*events, r)
	}
}

func (m ReaderUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showLeaveModal {
		return m.updateLeaveModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.width - 4
		m.viewport.Height = m.height - 4
		m.ready = true
		m.render()
		return m, nil

	case tickMsg:
		changed := m.drainFetches()
		if m.toastTicks > 0 {
			m.toastTicks--
			if m.toastTicks == 0 {
				m.toast = ""
				changed = true
			}
		}
		if changed {
			m.render()
		}
		return m, tick()

	case snapshotLoadedMsg:
		if msg.err == nil && msg.snap != nil && m.sess != nil {
			m.resumeFrom(msg.snap)
			m.render()
		}
		return m, nil

	case snapshotSavedMsg:
		if msg.err != nil {
			m.logger.Warn("Failed to save session snapshot", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenLibrary:
			return m.updateLibrary(msg)
		case screenStory:
			return m.updateStory(msg)
		case screenSettings:
			return m.updateSettings(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// drainFetches delivers completed background work and folds it into
// the model. Reports whether anything visible changed.
func (m *ReaderUI) drainFetches() bool {
	m.fetch.Drain()

	changed := false
	for _, r := range *m.events {
		changed = true
		switch r.Kind {
		case fetcher.KindCatalog:
			m.refreshing = false
			if r.Err != nil {
				m.statusMsg = "Catalog unavailable. Press r to retry."
			} else {
				m.statusMsg = ""
			}
			m.rebuildLibrary()

		case fetcher.KindStory:
			if m.downloading == r.Target {
				m.downloading = ""
			}
			if r.Err != nil {
				m.statusMsg = "Download failed: " + r.Target
				break
			}
			m.statusMsg = ""
			m.rebuildLibrary()
			if st := m.storyByID(r.StoryID); st != nil {
				m.openStory(st)
			}

		case fetcher.KindImage:
			if r.Err != nil {
				m.imageStates[r.Target] = imageFailed
			} else {
				m.imageStates[r.Target] = imageReady
			}
		}
	}
	*m.events = (*m.events)[:0]

	for _, notice := range *m.notices {
		m.toast = "Got item: " + notice
		m.toastTicks = toastVisibleTicks
		changed = true
	}
	*m.notices = (*m.notices)[:0]

	return changed
}

func (m *ReaderUI) rebuildLibrary() {
	items := make([]libraryItem, 0)
	for _, st := range m.loader.Stories() {
		items = append(items, libraryItem{title: st.Title, lang: st.Language, local: st})
	}
	for _, e := range m.remote.Entries() {
		if m.index.Contains(e.File) {
			continue
		}
		items = append(items, libraryItem{title: e.Name, lang: e.Lang, file: e.File, remote: true})
	}
	m.items = items
	if m.cursor >= len(items) {
		m.cursor = 0
	}
}

func (m *ReaderUI) storyByID(id string) *story.Story {
	for _, st := range m.loader.Stories() {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (m ReaderUI) updateLibrary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			m.render()
		}
	case tea.KeyDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.render()
		}
	case tea.KeyEnter:
		if m.cursor >= len(m.items) {
			return m, nil
		}
		item := m.items[m.cursor]
		if item.remote {
			if m.downloading != "" {
				return m, nil
			}
			m.downloading = item.file
			m.statusMsg = ""
			m.fetch.DownloadStory(item.file, m.fetchCallback())
			m.render()
			return m, nil
		}
		cmd := m.openStory(item.local)
		m.render()
		return m, cmd
	default:
		switch msg.String() {
		case "q":
			m.showQuitModal = true
			return m, nil
		case "r":
			if m.cfg.OnlineMode && !m.refreshing {
				m.refreshing = true
				m.remote.Invalidate()
				m.fetch.FetchCatalog(m.fetchCallback())
				m.render()
			}
		case "s":
			m.screen = screenSettings
			m.settingsCursor = 0
			m.statusMsg = ""
			m.render()
		}
	}
	return m, nil
}

// languageOptions is the language cycle offered in settings. The
// configured language leads so cycling always returns to it.
func languageOptions(current string) []string {
	options := []string{current}
	for _, tag := range []string{"en", "pt-br"} {
		if tag != current {
			options = append(options, tag)
		}
	}
	return options
}

func (m ReaderUI) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.showQuitModal = true
		return m, nil
	case tea.KeyEsc:
		m.screen = screenLibrary
		m.statusMsg = ""
		m.rebuildLibrary()
		m.render()
		return m, nil
	case tea.KeyUp:
		if m.settingsCursor > 0 {
			m.settingsCursor--
			m.render()
		}
	case tea.KeyDown:
		if m.settingsCursor < settingCount-1 {
			m.settingsCursor++
			m.render()
		}
	case tea.KeyEnter:
		m.applySetting(m.settingsCursor)
		m.render()
	default:
		if msg.String() == "q" {
			m.showQuitModal = true
			return m, nil
		}
	}
	return m, nil
}

// applySetting activates one settings row.
func (m *ReaderUI) applySetting(idx int) {
	switch idx {
	case settingLanguage:
		m.cycleLanguage()
	case settingOnline:
		m.cfg.OnlineMode = !m.cfg.OnlineMode
		m.remote.SetOnline(m.cfg.OnlineMode)
		if !m.cfg.OnlineMode {
			m.refreshing = false
		}
		m.statusMsg = ""
	case settingClearStories:
		removed := m.remote.ClearDownloads()
		m.rebuildLibrary()
		m.statusMsg = fmt.Sprintf("Removed %d downloaded stories", removed)
	case settingClearImages:
		removed := m.images.Clear()
		for url := range m.imageStates {
			delete(m.imageStates, url)
		}
		m.statusMsg = fmt.Sprintf("Removed %d cached images", removed)
	}
}

// cycleLanguage switches to the next language option, reloads the
// local catalog for it, and invalidates the remote manifest so the
// next fetch is for the new language.
func (m *ReaderUI) cycleLanguage() {
	current := m.loader.Language()
	next := m.langOptions[0]
	for i, tag := range m.langOptions {
		if tag == current {
			next = m.langOptions[(i+1)%len(m.langOptions)]
			break
		}
	}

	m.loader.SetLanguage(next)
	m.loader.LoadAll()
	m.remote.Invalidate()
	if m.cfg.OnlineMode {
		m.refreshing = true
		m.fetch.FetchCatalog(m.fetchCallback())
	}
	m.rebuildLibrary()
	m.statusMsg = ""
}

// openStory starts a fresh session and, when snapshots are enabled,
// kicks off a resume lookup in the background.
func (m *ReaderUI) openStory(st *story.Story) tea.Cmd {
	inv := inventory.New()
	notices := m.notices
	inv.OnAdd = func(item story.InventoryItem) {
		*notices = append(*notices, item.Name)
	}

	sess := session.New(st, inv)
	if err := sess.Start(); err != nil {
		m.statusMsg = "Could not start story: " + st.Title
		m.logger.Error("Failed to start story", "story", st.ID, "error", err)
		return nil
	}

	m.sess = sess
	m.screen = screenStory
	m.choiceCursor = 0
	m.toast = ""
	m.toastTicks = 0
	m.requestNodeImages()

	if m.sessions == nil {
		return nil
	}
	return m.loadSnapshot(st.ID)
}

func (m *ReaderUI) closeStory() {
	m.sess = nil
	m.screen = screenLibrary
	m.choiceCursor = 0
	m.toast = ""
	m.toastTicks = 0
	m.rebuildLibrary()
}

func (m ReaderUI) updateStory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		m.closeStory()
		m.render()
		return m, nil
	}

	if m.sess.Terminal() {
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter, tea.KeyEsc:
			cmd := m.deleteSnapshot()
			m.closeStory()
			m.render()
			return m, cmd
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		m.showQuitModal = true
		return m, nil
	case tea.KeyEsc:
		if m.sess.ProgressMade() {
			m.showLeaveModal = true
			return m, nil
		}
		m.closeStory()
		m.render()
		return m, nil
	case tea.KeyUp:
		if m.choiceCursor > 0 {
			m.choiceCursor--
			m.render()
		}
	case tea.KeyDown:
		if m.choiceCursor < m.optionCount()-1 {
			m.choiceCursor++
			m.render()
		}
	case tea.KeyEnter:
		return m.selectOption()
	}
	return m, nil
}

// optionCount is the size of the combined cursor range: declared
// choices first, then the inventory entries when the node offers them.
func (m *ReaderUI) optionCount() int {
	node := m.sess.Current()
	if node == nil {
		return 0
	}
	count := len(m.sess.Choices())
	if node.InventoryChoice {
		count += len(m.sess.InventoryChoices())
	}
	return count
}

func (m ReaderUI) selectOption() (tea.Model, tea.Cmd) {
	node := m.sess.Current()
	if node == nil {
		return m, nil
	}

	choices := m.sess.Choices()
	switch {
	case m.choiceCursor < len(choices):
		cv := choices[m.choiceCursor]
		if cv.Disabled {
			return m, nil
		}
		if err := m.sess.SelectChoice(cv); err != nil {
			m.statusMsg = "This path leads nowhere."
			m.logger.Warn("Choice failed", "error", err)
			m.render()
			return m, nil
		}
	case node.InventoryChoice:
		items := m.sess.InventoryChoices()
		idx := m.choiceCursor - len(choices)
		if idx >= len(items) {
			return m, nil
		}
		if err := m.sess.SelectInventoryItem(items[idx]); err != nil {
			m.statusMsg = "This path leads nowhere."
			m.logger.Warn("Inventory choice failed", "error", err)
			m.render()
			return m, nil
		}
	default:
		return m, nil
	}

	m.choiceCursor = 0
	m.statusMsg = ""
	m.requestNodeImages()
	m.render()
	m.viewport.GotoTop()

	if m.sess.Terminal() {
		return m, m.deleteSnapshot()
	}
	return m, m.saveSnapshot()
}

// requestNodeImages queues a download for every image on the current
// node that is neither cached nor already in flight.
func (m *ReaderUI) requestNodeImages() {
	node := m.sess.Current()
	if node == nil {
		return
	}
	for _, url := range markup.ImageURLs(node.Text) {
		if m.images.IsCached(url) {
			m.imageStates[url] = imageReady
			continue
		}
		if _, inFlight := m.imageStates[url]; inFlight {
			continue
		}
		m.imageStates[url] = imagePending
		m.fetch.LoadImage(url, m.fetchCallback())
	}
}

func (m ReaderUI) snapshotID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("kiddo:"+m.sess.Story().ID))
}

func (m ReaderUI) loadSnapshot(storyID string) tea.Cmd {
	sessions := m.sessions
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("kiddo:"+storyID))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		snap, err := sessions.Load(ctx, id)
		return snapshotLoadedMsg{snap, err}
	}
}

// resumeFrom restores a saved position. The snapshot inventory is
// applied after entering the node so the restore is exact, not a
// replay.
func (m *ReaderUI) resumeFrom(snap *storage.Snapshot) {
	if snap.StoryID != m.sess.Story().ID || snap.NodeKey == m.sess.CurrentKey() {
		return
	}
	if err := m.sess.EnterNode(snap.NodeKey); err != nil {
		m.logger.Warn("Snapshot points at a missing node, starting fresh", "node", snap.NodeKey)
		return
	}
	m.sess.Inventory().Initialize(snap.Inventory)
	m.choiceCursor = 0
	m.toast = ""
	m.toastTicks = 0
	*m.notices = (*m.notices)[:0]
	m.requestNodeImages()
}

func (m ReaderUI) saveSnapshot() tea.Cmd {
	if m.sessions == nil || m.sess == nil {
		return nil
	}
	sessions := m.sessions
	snap := &storage.Snapshot{
		ID:           m.snapshotID(),
		StoryID:      m.sess.Story().ID,
		NodeKey:      m.sess.CurrentKey(),
		ProgressMade: m.sess.ProgressMade(),
		Inventory:    m.sess.Inventory().Items(),
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return snapshotSavedMsg{sessions.Save(ctx, snap)}
	}
}

func (m ReaderUI) deleteSnapshot() tea.Cmd {
	if m.sessions == nil || m.sess == nil {
		return nil
	}
	sessions := m.sessions
	id := m.snapshotID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return snapshotSavedMsg{sessions.Delete(ctx, id)}
	}
}

func (m ReaderUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				return m, nil
			}
		}
	}
	return m, nil
}

func (m ReaderUI) updateLeaveModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			m.showLeaveModal = false
			cmd := m.saveSnapshot()
			m.closeStory()
			m.render()
			return m, cmd
		case "n", "N", "esc":
			m.showLeaveModal = false
			return m, nil
		}
	}
	return m, nil
}

func (m *ReaderUI) render() {
	switch m.screen {
	case screenLibrary:
		m.viewport.SetContent(m.renderLibrary())
	case screenStory:
		m.viewport.SetContent(m.renderStory())
	case screenSettings:
		m.viewport.SetContent(m.renderSettings())
	}
}

func (m ReaderUI) renderLibrary() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 60
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("KIDDO LIBRARY") + "\n")
	content.WriteString(promptStyle.Render("Language: "+m.loader.Language()) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", min(width, 60))) + "\n\n")

	if len(m.items) == 0 {
		if m.refreshing {
			content.WriteString(loadingStyle.Render("Fetching catalog...") + "\n")
		} else {
			content.WriteString("No stories yet.\n")
			if m.cfg.OnlineMode {
				content.WriteString(promptStyle.Render("Press r to fetch the catalog.") + "\n")
			}
		}
	}

	for i, item := range m.items {
		label := item.title
		if item.remote {
			label += "  ↓"
			if m.downloading == item.file {
				label = item.title + "  " + loadingStyle.Render("downloading...")
			}
		}
		if i == m.cursor {
			content.WriteString(selectedChoiceStyle.Render("▶ "+label) + "\n")
		} else {
			content.WriteString(choiceStyle.Render("  "+label) + "\n")
		}
	}

	content.WriteString("\n")
	if m.refreshing && len(m.items) > 0 {
		content.WriteString(loadingStyle.Render("Refreshing catalog...") + "\n")
	}
	if m.statusMsg != "" {
		content.WriteString(errorStyle.Render(m.statusMsg) + "\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ navigate · Enter open · r refresh · s settings · q quit"))
	return content.String()
}

func (m ReaderUI) renderSettings() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 60
	}

	online := "off"
	if m.cfg.OnlineMode {
		online = "on"
	}
	rows := []string{
		"Language: " + m.loader.Language(),
		"Online mode: " + online,
		"Clear downloaded stories",
		"Clear image cache",
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("SETTINGS") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", min(width, 60))) + "\n\n")

	for i, row := range rows {
		if i == m.settingsCursor {
			content.WriteString(selectedChoiceStyle.Render("▶ "+row) + "\n")
		} else {
			content.WriteString(choiceStyle.Render("  "+row) + "\n")
		}
	}

	content.WriteString("\n")
	if m.statusMsg != "" {
		content.WriteString(loadingStyle.Render(m.statusMsg) + "\n\n")
	}
	content.WriteString(promptStyle.Render("↑/↓ navigate · Enter apply · Esc back"))
	return content.String()
}

func (m ReaderUI) renderStory() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 60
	}
	wrapWidth := width - 2

	st := m.sess.Story()
	node := m.sess.Current()

	var content strings.Builder
	content.WriteString(titleStyle.Render(st.Title) + "\n")
	if st.HasInventory {
		content.WriteString(promptStyle.Render(m.renderInventoryLine()) + "\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", min(width, 60))) + "\n\n")

	if node == nil {
		content.WriteString(errorStyle.Render("This page is missing. Press Esc to go back."))
		return content.String()
	}

	for _, seg := range markup.Parse(node.Text) {
		switch seg.Kind {
		case markup.SegmentText:
			content.WriteString(storyTextStyle.Render(wordwrap.String(seg.Content, wrapWidth)))
		case markup.SegmentImage:
			content.WriteString("\n" + imageStyle.Render(m.renderImage(seg.Content)) + "\n")
		}
	}
	content.WriteString("\n\n")

	if m.sess.Terminal() {
		content.WriteString(titleStyle.Render("The End") + "\n\n")
		content.WriteString(promptStyle.Render("Press Enter to return to the library"))
	} else {
		content.WriteString(m.renderOptions(node))
	}

	if m.toast != "" {
		content.WriteString("\n\n" + toastStyle.Render(m.toast))
	}
	if m.statusMsg != "" {
		content.WriteString("\n" + errorStyle.Render(m.statusMsg))
	}
	return content.String()
}

func (m ReaderUI) renderInventoryLine() string {
	items := m.sess.Inventory().Items()
	if len(items) == 0 {
		return "Inventory: empty"
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return "Inventory: " + strings.Join(names, ", ")
}

func (m ReaderUI) renderImage(url string) string {
	switch m.imageStates[url] {
	case imageReady:
		return "⟦ illustration ⟧"
	case imageFailed:
		return "⟦ illustration unavailable ⟧"
	default:
		return "⟦ illustration loading... ⟧"
	}
}

// renderOptions draws the combined option list: the node's declared
// choices first, then the reader's items when the node also offers its
// inventory. One cursor spans both sections.
func (m ReaderUI) renderOptions(node *story.Node) string {
	var content strings.Builder

	choices := m.sess.Choices()
	for i, cv := range choices {
		label := cv.Choice.Text
		switch {
		case i == m.choiceCursor && cv.Disabled:
			content.WriteString(disabledChoiceStyle.Render("▶ "+label+" (locked)") + "\n")
		case i == m.choiceCursor:
			content.WriteString(selectedChoiceStyle.Render("▶ "+label) + "\n")
		case cv.Disabled:
			content.WriteString(disabledChoiceStyle.Render("  "+label+" (locked)") + "\n")
		default:
			content.WriteString(choiceStyle.Render("  "+label) + "\n")
		}
	}

	if node.InventoryChoice {
		if len(choices) > 0 {
			content.WriteString("\n")
		}
		content.WriteString(loadingStyle.Render("Use an item:") + "\n")
		items := m.sess.InventoryChoices()
		if len(items) == 0 {
			content.WriteString(disabledChoiceStyle.Render("  (nothing to use)") + "\n")
		}
		for i, item := range items {
			if len(choices)+i == m.choiceCursor {
				content.WriteString(selectedChoiceStyle.Render("▶ "+item.Name) + "\n")
			} else {
				content.WriteString(choiceStyle.Render("  "+item.Name) + "\n")
			}
		}
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ navigate · Enter choose · Esc back"))
	return content.String()
}

func (m ReaderUI) renderModal(title, body, hint string) string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(title))
	content.WriteString("\n\n")
	content.WriteString(body)
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render(hint))
	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ReaderUI) View() string {
	if m.showQuitModal {
		return m.renderModal("Quit?", "Close the reader?", "Y to quit · N to stay")
	}
	if m.showLeaveModal {
		return m.renderModal("Leave story?", "Your place will be kept for next time.", "Y to leave · N to keep reading")
	}
	if !m.ready {
		return "\n  Initializing..."
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.viewport.View())
}
