// Package ui implements the interactive terminal frontend: a debounced
// search box, a results list, and a playback view driven by the session
// state machine. The UI renders session snapshots and forwards intents;
// it owns no playback state of its own.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"marquee/internal/config"
	"marquee/internal/history"
	"marquee/internal/media"
	"marquee/internal/player"
	"marquee/internal/provider"
	"marquee/internal/resolver"
	"marquee/internal/search"
	"marquee/internal/session"
	"marquee/internal/videourl"
)

type view int

const (
	viewSearch view = iota
	viewPlayback
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	badgeStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// resultItem adapts a search result to the bubbles list.
type resultItem struct {
	result media.SearchResult
}

func (i resultItem) Title() string { return provider.FormatDisplayTitle(i.result) }

func (i resultItem) Description() string {
	if i.result.Genre != "" {
		return i.result.Genre
	}
	return i.result.ID
}

func (i resultItem) FilterValue() string { return i.result.Title }

// Messages.
type (
	searchResultsMsg search.Results
	sessionUpdateMsg struct{}
	sessionClosedMsg struct{}
	selectedMsg      struct {
		title string
		src   string
	}
	selectErrMsg struct{ err error }
	playDoneMsg  struct{ err error }
)

// Model is the bubbletea model for the whole frontend.
type Model struct {
	cfg   *config.Config
	prov  provider.Provider
	res   *resolver.Resolver
	hist  *history.Store // nil when history is disabled
	coord *search.Coordinator

	view    view
	input   textinput.Model
	results list.Model
	spin    spinner.Model

	sess       *session.Session
	nowPlaying string // display title of the active selection
	status     string
	width      int
	height     int
}

// NewModel builds the frontend model. hist may be nil.
func NewModel(cfg *config.Config, prov provider.Provider, res *resolver.Resolver, hist *history.Store, initialQuery string) Model {
	input := textinput.New()
	input.Placeholder = "Search movies, paste a tt-id or a video URL"
	input.Focus()
	input.CharLimit = 128
	input.SetValue(initialQuery)

	delegate := list.NewDefaultDelegate()
	results := list.New(nil, delegate, 0, 0)
	results.Title = "Results"
	results.SetShowHelp(false)
	results.SetFilteringEnabled(false)
	results.SetShowStatusBar(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	coord := search.New(prov, cfg.Debounce())
	if initialQuery != "" {
		coord.Update(initialQuery)
	}

	return Model{
		cfg:     cfg,
		prov:    prov,
		res:     res,
		hist:    hist,
		coord:   coord,
		view:    viewSearch,
		input:   input,
		results: results,
		spin:    spin,
	}
}

// Run starts the interactive program.
func Run(cfg *config.Config, prov provider.Provider, res *resolver.Resolver, hist *history.Store, initialQuery string) error {
	m := NewModel(cfg, prov, res, hist, initialQuery)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.listenSearch())
}

// listenSearch forwards coordinator results into the program.
func (m Model) listenSearch() tea.Cmd {
	c := m.coord
	return func() tea.Msg {
		r, ok := <-c.Results()
		if !ok {
			return nil
		}
		return searchResultsMsg(r)
	}
}

// listenSession forwards session snapshot changes into the program.
func listenSession(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.Updates():
			return sessionUpdateMsg{}
		case <-s.Done():
			return sessionClosedMsg{}
		}
	}
}

// selectMovie resolves a catalog selection to its canonical embed URL.
func (m Model) selectMovie(r media.SearchResult) tea.Cmd {
	prov, res := m.prov, m.res
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		detail, err := prov.GetDetails(ctx, r.ID)
		if err != nil {
			return selectErrMsg{err: err}
		}
		return selectedMsg{
			title: detail.Title,
			src:   res.ResolveFromID(detail.IMDBID),
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		listHeight := m.height - 6
		if listHeight < 3 {
			listHeight = 3
		}
		m.results.SetSize(m.width, listHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case searchResultsMsg:
		if msg.Err != nil {
			m.status = "search failed: " + msg.Err.Error()
			m.results.SetItems(nil)
		} else {
			m.status = ""
			items := make([]list.Item, len(msg.Matches))
			for i, r := range msg.Matches {
				items[i] = resultItem{result: r}
			}
			m.results.SetItems(items)
		}
		return m, m.listenSearch()

	case selectedMsg:
		m.startSession(msg.title, msg.src)
		return m, listenSession(m.sess)

	case selectErrMsg:
		m.status = "lookup failed: " + msg.err.Error()
		return m, nil

	case sessionUpdateMsg:
		if m.sess == nil {
			return m, nil
		}
		return m, listenSession(m.sess)

	case sessionClosedMsg:
		return m, nil

	case playDoneMsg:
		if msg.err != nil {
			m.status = "playback failed: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	if m.view == viewPlayback {
		return m.handlePlaybackKey(msg)
	}
	return m.handleSearchKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.teardown()
		return m, tea.Quit

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case "enter":
		raw := strings.TrimSpace(m.input.Value())
		if strings.Contains(raw, "://") {
			// Direct source submission, no catalog round trip.
			m.startSession(raw, raw)
			return m, listenSession(m.sess)
		}
		if item, ok := m.results.SelectedItem().(resultItem); ok {
			m.status = "resolving " + item.result.Title + "..."
			return m, m.selectMovie(item.result)
		}
		return m, nil

	default:
		var cmd tea.Cmd
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.coord.Update(v)
		}
		return m, cmd
	}
}

func (m Model) handlePlaybackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sess := m.sess
	switch msg.String() {
	case "esc", "q":
		if sess != nil {
			sess.Close()
			m.sess = nil
		}
		m.view = viewSearch
		m.status = ""
		return m, nil

	case "r":
		return m, func() tea.Msg {
			_ = sess.Refresh(context.Background())
			return nil
		}

	case "e":
		return m, func() tea.Msg {
			sess.ExtractOriginal(context.Background())
			return nil
		}

	case "t":
		sess.ToggleMode()
		return m, nil

	case "enter", "o":
		snap := sess.Snapshot()
		if snap.State == session.StateError {
			return m, func() tea.Msg {
				_ = sess.Retry(context.Background())
				return nil
			}
		}
		return m.openSurface(snap)
	}
	return m, nil
}

// startSession replaces any active session with a new one for src.
func (m *Model) startSession(title, src string) {
	if m.sess != nil {
		m.sess.Close()
	}
	m.nowPlaying = title
	m.status = ""
	m.view = viewPlayback
	m.sess = session.New(m.res, src, session.Options{
		RefreshEvery: m.cfg.RefreshEvery.Duration,
		ExpiryCheck:  m.cfg.ExpiryCheck.Duration,
	})
}

// openSurface launches the playback surface for the current snapshot:
// a media player for direct streams, the system browser for embed pages.
func (m Model) openSurface(snap session.Snapshot) (tea.Model, tea.Cmd) {
	src := snap.CurrentSrc
	if snap.Mode == media.ModeDirect && !videourl.IsDirectVideoURL(src) {
		// Forced direct view: fall back to the extracted stream.
		if snap.DirectURL == "" {
			m.status = "no direct stream available yet (press e to extract)"
			return m, nil
		}
		src = snap.DirectURL
	}

	p := player.ForMode(snap.Mode, m.cfg.Player)
	if !p.Available() {
		m.status = fmt.Sprintf("%s not found in PATH", p.Name())
		return m, nil
	}

	m.recordHistory(snap, src)

	if snap.Mode != media.ModeDirect {
		// Browser launches return immediately.
		if err := p.Play(src, m.nowPlaying); err != nil {
			m.status = "opening browser failed: " + err.Error()
		}
		return m, nil
	}

	return m, tea.ExecProcess(p.Command(src, m.nowPlaying), func(err error) tea.Msg {
		return playDoneMsg{err: err}
	})
}

// recordHistory stores the launch in watch history when enabled.
func (m Model) recordHistory(snap session.Snapshot, src string) {
	if m.hist == nil {
		return
	}
	id := m.nowPlaying
	if parsed, err := videourl.Parse(snap.CurrentSrc); err == nil && parsed.VideoID != "" {
		id = parsed.VideoID
	}
	_ = m.hist.Save(media.HistoryEntry{
		ID:     id,
		Title:  m.nowPlaying,
		Source: src,
		Mode:   snap.Mode.String(),
	})
}

// teardown releases the coordinator and any active session.
func (m *Model) teardown() {
	m.coord.Close()
	if m.sess != nil {
		m.sess.Close()
		m.sess = nil
	}
}

func (m Model) View() string {
	if m.view == viewPlayback {
		return m.playbackView()
	}
	return m.searchView()
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("marquee"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.results.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("enter: select  up/down: navigate  esc: quit"))
	return b.String()
}

func (m Model) playbackView() string {
	if m.sess == nil {
		return ""
	}
	snap := m.sess.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("marquee"))
	b.WriteString("  ")
	b.WriteString(valueStyle.Render(m.nowPlaying))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("state "))
	b.WriteString(m.stateBadge(snap))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("mode  "))
	b.WriteString(valueStyle.Render(snap.Mode.String()))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("src   "))
	b.WriteString(valueStyle.Render(snap.CurrentSrc))
	b.WriteString("\n")

	if snap.DirectURL != "" {
		b.WriteString(labelStyle.Render("direct"))
		b.WriteString(" ")
		b.WriteString(noticeStyle.Render(snap.DirectURL))
		b.WriteString("\n")
	}

	if snap.IsExtracting {
		b.WriteString(m.spin.View())
		b.WriteString(labelStyle.Render(" extracting direct stream..."))
		b.WriteString("\n")
	}

	if snap.Err != nil {
		b.WriteString(errorStyle.Render(snap.Err.Error()))
		b.WriteString("\n")
	} else if snap.Notice != "" {
		b.WriteString(noticeStyle.Render(snap.Notice))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if snap.State == session.StateError {
		b.WriteString(helpStyle.Render("enter: retry  r: refresh  esc: back"))
	} else {
		b.WriteString(helpStyle.Render("enter: play  r: refresh  e: extract  t: toggle mode  esc: back"))
	}
	return b.String()
}

func (m Model) stateBadge(snap session.Snapshot) string {
	switch {
	case snap.IsLoading:
		return m.spin.View() + badgeStyle.Foreground(lipgloss.Color("214")).Render("loading")
	case snap.State == session.StateError:
		return badgeStyle.Foreground(lipgloss.Color("196")).Render("error")
	case snap.State == session.StatePlaying:
		return badgeStyle.Foreground(lipgloss.Color("114")).Render("playing")
	default:
		return badgeStyle.Render(snap.State.String())
	}
}
