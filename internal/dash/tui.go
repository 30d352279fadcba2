package dash

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hirewatch-dev/hirewatch/internal/logbuf"
	"github.com/hirewatch-dev/hirewatch/internal/model"
	"github.com/hirewatch-dev/hirewatch/internal/monitor"
)

// Lines per posting item in the list view (title + subtitle + blank separator).
const postingItemHeight = 3

const refreshInterval = 3 * time.Second

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	postingTitleStyle = lipgloss.NewStyle().
				Bold(true)

	postingSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")). // bright white
				Background(lipgloss.Color("24"))  // dark blue bg

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	levelStyles = map[logbuf.Level]lipgloss.Style{
		logbuf.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		logbuf.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		logbuf.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		logbuf.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
	}
)

type tickMsg time.Time

// refreshMsg carries one full API poll.
type refreshMsg struct {
	postings []model.Posting
	events   []logbuf.Event
	status   monitor.StatusSnapshot
	err      error
}

type controlDoneMsg struct {
	err error
}

type dashModel struct {
	client *Client

	postings []model.Posting
	events   []logbuf.Event
	status   monitor.StatusSnapshot
	fetchErr string

	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=postings, 1=events
	cursor        int
	width         int
	height        int
	ready         bool
}

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashModel) refreshCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		postings, err := client.Postings()
		if err != nil {
			return refreshMsg{err: err}
		}
		events, err := client.Logs()
		if err != nil {
			return refreshMsg{err: err}
		}
		status, err := client.Status()
		if err != nil {
			return refreshMsg{err: err}
		}
		return refreshMsg{postings: postings, events: events, status: status}
	}
}

func (m dashModel) controlCmd(f func() error) tea.Cmd {
	return func() tea.Msg {
		return controlDoneMsg{err: f()}
	}
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())

	case refreshMsg:
		if msg.err != nil {
			m.fetchErr = msg.err.Error()
			return m, nil
		}
		m.fetchErr = ""
		m.postings = msg.postings
		m.events = msg.events
		m.status = msg.status
		if m.cursor >= len(m.postings) {
			m.cursor = max(len(m.postings)-1, 0)
		}
		m.recalcContent()
		return m, nil

	case controlDoneMsg:
		if msg.err != nil {
			m.fetchErr = msg.err.Error()
			return m, nil
		}
		return m, m.refreshCmd()

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m dashModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor-1, 0, max(len(m.postings)-1, 0))
			m.recalcContent()
			m.ensureCursorVisible()
			return m, nil
		}
	case "down", "j":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor+1, 0, max(len(m.postings)-1, 0))
			m.recalcContent()
			m.ensureCursorVisible()
			return m, nil
		}
	case "o":
		if m.activePane == 0 && m.cursor < len(m.postings) {
			if url := m.postings[m.cursor].URL; url != "" {
				openURL(url)
			}
		}
		return m, nil
	case "s":
		if m.status.Running {
			return m, m.controlCmd(m.client.Stop)
		}
		return m, m.controlCmd(m.client.Start)
	case "R":
		return m, m.controlCmd(m.client.Restart)
	case "r":
		return m, m.refreshCmd()
	}

	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m *dashModel) ensureCursorVisible() {
	cursorTop := m.cursor * postingItemHeight
	cursorBottom := cursorTop + postingItemHeight - 1

	if cursorTop < m.leftViewport.YOffset {
		m.leftViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.leftViewport.YOffset+m.leftViewport.Height {
		m.leftViewport.SetYOffset(cursorBottom - m.leftViewport.Height + 1)
	}
}

func (m *dashModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *dashModel) recalcContent() {
	m.leftViewport.SetContent(renderPostings(m.postings, m.cursor, m.activePane == 0))
	m.rightViewport.SetContent(renderEvents(m.events))
	// Keep the event feed pinned to the newest entries.
	if m.activePane != 1 {
		m.rightViewport.GotoBottom()
	}
}

func renderPostings(postings []model.Posting, cursor int, active bool) string {
	if len(postings) == 0 {
		return postingSubtitleStyle.Render("  No postings tracked yet.")
	}

	var b strings.Builder
	for i, p := range postings {
		title := p.Title
		subtitle := p.Location
		if subtitle == "" {
			subtitle = "Location not listed"
		}
		subtitle += "  ·  seen " + p.LastSeen.Local().Format("Jan 2 15:04")

		if active && i == cursor {
			b.WriteString(selectedTitleStyle.Render("▸ " + title))
			b.WriteByte('\n')
			b.WriteString(selectedSubtitleStyle.Render("  " + subtitle))
		} else {
			b.WriteString(postingTitleStyle.Render("  " + title))
			b.WriteByte('\n')
			b.WriteString(postingSubtitleStyle.Render("  " + subtitle))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderEvents(events []logbuf.Event) string {
	if len(events) == 0 {
		return postingSubtitleStyle.Render("  No events yet.")
	}

	var b strings.Builder
	for _, e := range events {
		style, ok := levelStyles[e.Level]
		if !ok {
			style = levelStyles[logbuf.LevelInfo]
		}
		ts := e.Timestamp.Local().Format("15:04:05")
		b.WriteString(postingSubtitleStyle.Render(ts + " "))
		b.WriteString(style.Render(fmt.Sprintf("[%s] %s", e.Level, e.Message)))
		b.WriteByte('\n')
	}
	return b.String()
}

func (m dashModel) View() string {
	if !m.ready {
		return "Connecting..."
	}

	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" Postings (%d)", len(m.postings))
	rightHeader := fmt.Sprintf(" Events (%d)", len(m.events))

	var leftHeaderRendered, rightHeaderRendered string
	var leftBorder, rightBorder lipgloss.Style

	if m.activePane == 0 {
		leftHeaderRendered = activeHeaderStyle.Render(leftHeader)
		rightHeaderRendered = inactiveHeaderStyle.Render(rightHeader)
		leftBorder = activeBorderStyle.Width(paneWidth)
		rightBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		leftHeaderRendered = inactiveHeaderStyle.Render(leftHeader)
		rightHeaderRendered = activeHeaderStyle.Render(rightHeader)
		leftBorder = inactiveBorderStyle.Width(paneWidth)
		rightBorder = activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Render(m.leftViewport.View()),
		" ",
		rightBorder.Render(m.rightViewport.View()),
	)

	return headerRow + "\n" + panes + "\n" + m.statusBar()
}

func (m dashModel) statusBar() string {
	state := "stopped"
	if m.status.Running {
		state = "running"
	}
	text := fmt.Sprintf(" %s | interval %s | cycles %d | new %d | errors %d",
		state, m.status.PollInterval, m.status.TotalCycles,
		m.status.NewPostingsSession, m.status.TotalErrors)
	if m.status.Degraded {
		text += " | " + errorStyle.Render("DEGRADED")
	}
	if m.fetchErr != "" {
		text += " | " + errorStyle.Render("⚠ "+m.fetchErr)
	}
	text += "    Tab switch  ↑/↓ cursor  o open  s start/stop  R restart  q quit"
	return statusBarStyle.Width(m.width).Render(text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run launches the dashboard against the API at baseURL and blocks until the
// user quits.
func Run(baseURL string) error {
	m := dashModel{client: NewClient(baseURL)}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
