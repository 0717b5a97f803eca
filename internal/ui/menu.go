package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

const (
	MenuActionBack = "__back__"
	MenuActionQuit = "__quit__"

	infoRefreshEvery = 3 * time.Second
	fallbackHeight   = 26
)

// ErrNotInteractive is returned when a menu cannot be drawn.
var ErrNotInteractive = errors.New("non-interactive terminal")

// MenuItem represents a selectable item in a TUI list.
type MenuItem struct {
	ID        string
	TitleText string
	Details   string
}

// Title returns the menu label.
func (m MenuItem) Title() string { return m.TitleText }

// Description returns the menu details.
func (m MenuItem) Description() string { return m.Details }

// FilterValue returns the filterable text.
func (m MenuItem) FilterValue() string { return m.TitleText + " " + m.Details }

// InfoLine is one label/value pair in the menu's side panel.
type InfoLine struct {
	Label string
	Value string
}

type MenuOption func(*menuConfig)

type menuConfig struct {
	allowBack bool
	backLabel string
	selected  string
	info      func() []InfoLine
	version   string
}

func WithBackNavigation(label string) MenuOption {
	return func(cfg *menuConfig) {
		cfg.allowBack = true
		if label != "" {
			cfg.backLabel = label
		}
	}
}

// WithInitialSelectionID pre-selects an item by ID when the menu opens.
func WithInitialSelectionID(id string) MenuOption {
	return func(cfg *menuConfig) {
		cfg.selected = strings.TrimSpace(id)
	}
}

// WithInfo fills the side panel's keyboard section. info is called when
// the menu opens and again every few seconds.
func WithInfo(info func() []InfoLine) MenuOption {
	return func(cfg *menuConfig) {
		cfg.info = info
	}
}

// WithVersion shows the CLI version in the side panel.
func WithVersion(v string) MenuOption {
	return func(cfg *menuConfig) {
		cfg.version = v
	}
}

type menuKeyMap struct {
	Select key.Binding
	Jump   key.Binding
	Filter key.Binding
	Leave  key.Binding
}

func newMenuKeyMap(cfg menuConfig) menuKeyMap {
	leave := key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q/esc", "quit"))
	if cfg.allowBack {
		leave = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("esc/q", cfg.backLabel))
	}
	return menuKeyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Jump:   key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump")),
		Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Leave:  leave,
	}
}

func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Jump, k.Filter, k.Leave}
}

func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type rowDelegate struct {
	slot     lipgloss.Style
	title    lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		slot:     lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted))),
		title:    lipgloss.NewStyle().Foreground(lipgloss.Color(string(Foreground))),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color(string(Primary))).Bold(true),
	}
}

func (rowDelegate) Height() int { return 1 }

func (rowDelegate) Spacing() int { return 0 }

func (rowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(MenuItem)
	if !ok || m.Width() <= 0 {
		return
	}

	content := row.TitleText
	if row.Details != "" && m.Width() > 68 {
		content += " · " + row.Details
	}
	content = ansi.Truncate(content, max(14, m.Width()-6), "...")
	slot := fmt.Sprintf("%d.", index+1)

	if index == m.Index() && m.FilterState() != list.Filtering {
		fmt.Fprint(w, "> "+d.selected.Render(slot)+" "+d.selected.Render(content)) //nolint:errcheck
		return
	}
	fmt.Fprint(w, "  "+d.slot.Render(slot)+" "+d.title.Render(content)) //nolint:errcheck
}

type menuTickMsg time.Time

type menuModel struct {
	list     list.Model
	help     help.Model
	keys     menuKeyMap
	cfg      menuConfig
	title    string
	subtitle string

	choice   string
	quitting bool

	width  int
	height int
	now    time.Time
	lines  []InfoLine
}

func newMenuModel(title string, subtitle string, items []MenuItem, cfg menuConfig) menuModel {
	rows := make([]list.Item, 0, len(items))
	start := 0
	for i, item := range items {
		rows = append(rows, item)
		if cfg.selected != "" && item.ID == cfg.selected {
			start = i
		}
	}

	l := list.New(rows, newRowDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()

	h := help.New()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Accent))).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Muted)))
	h.Styles.ShortKey = keyStyle
	h.Styles.ShortDesc = descStyle
	h.Styles.FullKey = keyStyle
	h.Styles.FullDesc = descStyle

	m := menuModel{
		list:     l,
		help:     h,
		keys:     newMenuKeyMap(cfg),
		cfg:      cfg,
		title:    title,
		subtitle: subtitle,
		now:      time.Now(),
	}
	m.list.SetSize(m.listSize())
	m.list.Select(start)
	m.refreshInfo()
	return m
}

func menuTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return menuTickMsg(t)
	})
}

func (m menuModel) Init() tea.Cmd {
	return menuTick()
}

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.listSize())
	case menuTickMsg:
		prev := m.now
		m.now = time.Time(msg)
		if m.now.Truncate(infoRefreshEvery) != prev.Truncate(infoRefreshEvery) {
			m.refreshInfo()
		}
		return m, menuTick()
	case tea.KeyPressMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Select):
			if item, ok := m.list.SelectedItem().(MenuItem); ok {
				m.choice = item.ID
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.Jump):
			if m.jump(int(msg.String()[0] - '1')) {
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.Leave), msg.String() == "ctrl+c":
			m.quitting = true
			m.choice = MenuActionQuit
			if m.cfg.allowBack && msg.String() != "ctrl+c" {
				m.choice = MenuActionBack
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *menuModel) refreshInfo() {
	if m.cfg.info != nil {
		m.lines = m.cfg.info()
	}
}

// jump selects the offset-th item on the visible page.
func (m *menuModel) jump(offset int) bool {
	visible := m.list.VisibleItems()
	target := max(0, m.list.Index()-m.list.Cursor()) + offset
	if offset < 0 || target >= len(visible) {
		return false
	}
	m.list.Select(target)
	item, ok := visible[target].(MenuItem)
	if ok {
		m.choice = item.ID
	}
	return ok
}

func (m menuModel) dims() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = terminalWidth()
	}
	if height <= 0 {
		height = fallbackHeight
	}
	return width, height
}

// sideBySide reports whether the side panel fits next to the list.
func (m menuModel) sideBySide() bool {
	width, _ := m.dims()
	return width >= 90
}

func (m menuModel) listSize() (int, int) {
	width, height := m.dims()
	body := max(10, height-8)
	if !m.sideBySide() {
		return max(4, width-6), max(5, body*3/5-4)
	}
	return max(4, m.leftWidth()-5), max(5, body-6)
}

func (m menuModel) leftWidth() int {
	width, _ := m.dims()
	return max(40, width*62/100)
}

func (m menuModel) View() tea.View {
	if m.quitting {
		return tea.View{}
	}

	width, height := m.dims()
	body := max(10, height-8)

	var content string
	if m.sideBySide() {
		left := m.leftWidth()
		right := width - left - 2
		leftPanel := lipgloss.NewStyle().Width(left).Height(body).PaddingRight(1).Render(m.list.View())
		rightPanel := lipgloss.NewStyle().Width(right).Height(body).PaddingLeft(1).
			Render(m.renderSidePanel(right-1, body))
		content = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
	} else {
		listHeight := body * 3 / 5
		content = lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Height(listHeight).Render(m.list.View()),
			"",
			m.renderSidePanel(width-1, body-listHeight),
		)
	}

	v := tea.NewView(Frame(m.title, m.subtitle, content, m.help.View(m.keys)))
	v.AltScreen = true
	return v
}

func (m menuModel) renderSidePanel(width int, height int) string {
	heading := lipgloss.NewStyle().Foreground(lipgloss.Color(string(Accent))).Bold(true)
	lines := []string{heading.Render("Selection")}

	if item, ok := m.list.SelectedItem().(MenuItem); ok {
		lines = append(lines, PrimaryStyle().Render(ansi.Truncate(item.TitleText, max(8, width), "...")))
		if item.Details != "" {
			lines = append(lines, MutedStyle.Render(ansi.Truncate(item.Details, max(8, width), "...")))
		}
	} else {
		lines = append(lines, MutedStyle.Render("No selection"))
	}

	if len(m.lines) > 0 {
		lines = append(lines, "", heading.Render("Keyboard"))
		for _, l := range m.lines {
			lines = append(lines, menuInfoLine(l.Label, l.Value, width))
		}
	}

	lines = append(lines,
		"",
		heading.Render("Session"),
		menuInfoLine("CLI", m.cfg.version, width),
		menuInfoLine("Clock", m.now.Format("15:04:05"), width),
	)

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func menuInfoLine(label string, value string, width int) string {
	if strings.TrimSpace(value) == "" {
		value = "unknown"
	}
	line := fmt.Sprintf("%-9s %s", strings.ToLower(label)+":", value)
	return MutedStyle.Render(ansi.Truncate(line, max(10, width), "..."))
}

// RunMenu displays a TUI list and returns the selected item ID, or one of
// MenuActionBack and MenuActionQuit.
func RunMenu(title string, subtitle string, items []MenuItem, options ...MenuOption) (string, error) {
	if !IsInteractiveTerminal() {
		return "", ErrNotInteractive
	}
	cfg := menuConfig{backLabel: "back"}
	for _, opt := range options {
		opt(&cfg)
	}

	result, err := tea.NewProgram(newMenuModel(title, subtitle, items, cfg)).Run()
	if err != nil {
		return "", err
	}
	if final, ok := result.(menuModel); ok {
		return final.choice, nil
	}
	return "", nil
}
