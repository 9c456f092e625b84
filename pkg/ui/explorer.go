package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
)

const entityColumn = 24

type explorerKeys struct {
	PrevDays  key.Binding
	NextDays  key.Binding
	Toggle65  key.Binding
	Toggle95  key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newExplorerKeys() explorerKeys {
	return explorerKeys{
		PrevDays:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "fewer days")),
		NextDays:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "more days")),
		Toggle65:  key.NewBinding(key.WithKeys("6"), key.WithHelp("6", "toggle 65%")),
		Toggle95:  key.NewBinding(key.WithKeys("9"), key.WithHelp("9", "toggle 95%")),
		NextFocus: key.NewBinding(key.WithKeys("tab", "down", "j"), key.WithHelp("tab", "next entity")),
		PrevFocus: key.NewBinding(key.WithKeys("shift+tab", "up", "k"), key.WithHelp("shift+tab", "prev entity")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k explorerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDays, k.NextDays, k.Toggle65, k.Toggle95, k.Help, k.Quit}
}

func (k explorerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDays, k.NextDays},
		{k.Toggle65, k.Toggle95},
		{k.NextFocus, k.PrevFocus},
		{k.Help, k.Quit},
	}
}

// DatasetChangedMsg is sent when the backing store published a reload.
type DatasetChangedMsg struct {
	Diff datasource.DatasetDiff
}

// WaitForDatasetCmd waits for the next reload on updates. It yields nil
// once the channel is closed.
func WaitForDatasetCmd(updates <-chan datasource.DatasetDiff) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		diff, ok := <-updates
		if !ok {
			return nil
		}
		return DatasetChangedMsg{Diff: diff}
	}
}

// Source supplies the dataset snapshot the explorer draws from.
type Source interface {
	Snapshot() *model.Dataset
}

// Explorer is a bubbletea model that redraws the chart description as the
// user steps through days and toggles credible tiers.
type Explorer struct {
	source    Source
	updates   <-chan datasource.DatasetDiff
	assembler *chart.Assembler

	ds     *model.Dataset
	params []int
	req    chart.Request
	spec   model.ChartSpec
	focus  int
	status string

	keys   explorerKeys
	help   help.Model
	width  int
	height int
}

// NewExplorer starts on req against the source's current snapshot.
// updates may be nil when the dataset is static.
func NewExplorer(source Source, req chart.Request, updates <-chan datasource.DatasetDiff) Explorer {
	m := Explorer{
		source:    source,
		updates:   updates,
		assembler: chart.NewAssembler(),
		req:       req,
		keys:      newExplorerKeys(),
		help:      help.New(),
		width:     80,
	}
	m.req.Selection = model.NormalizeSelection(m.req.Selection)
	m.refresh()
	return m
}

func (m *Explorer) refresh() {
	if m.source != nil {
		m.ds = m.source.Snapshot()
	}
	m.params = m.ds.Parameters()
	m.rebuild()
}

func (m *Explorer) rebuild() {
	m.spec = m.assembler.Build(m.ds, m.req)
	if n := len(m.spec.Annotations); m.focus >= n {
		m.focus = max(n-1, 0)
	}
}

// Request returns the current selection.
func (m Explorer) Request() chart.Request { return m.req }

// Spec returns the chart for the current selection.
func (m Explorer) Spec() model.ChartSpec { return m.spec }

// Focus returns the index of the highlighted label row.
func (m Explorer) Focus() int { return m.focus }

func (m Explorer) Init() tea.Cmd {
	return WaitForDatasetCmd(m.updates)
}

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case DatasetChangedMsg:
		m.refresh()
		m.status = strings.SplitN(msg.Diff.Summary(), "\n", 2)[0]
		return m, WaitForDatasetCmd(m.updates)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.PrevDays):
			m.stepDays(-1)
		case key.Matches(msg, m.keys.NextDays):
			m.stepDays(1)
		case key.Matches(msg, m.keys.Toggle65):
			m.req.Bounds = m.req.Bounds.Toggle(model.Tier65)
			m.rebuild()
		case key.Matches(msg, m.keys.Toggle95):
			m.req.Bounds = m.req.Bounds.Toggle(model.Tier95)
			m.rebuild()
		case key.Matches(msg, m.keys.NextFocus):
			m.moveFocus(1)
		case key.Matches(msg, m.keys.PrevFocus):
			m.moveFocus(-1)
		}
	}
	return m, nil
}

// stepDays moves to the neighbouring days-infectious value present in the
// dataset. A current value outside the dataset snaps to the nearest one in
// the requested direction.
func (m *Explorer) stepDays(dir int) {
	if len(m.params) == 0 {
		return
	}
	i := sort.SearchInts(m.params, m.req.Parameter)
	found := i < len(m.params) && m.params[i] == m.req.Parameter
	switch {
	case dir > 0 && found:
		i++
	case dir < 0:
		i--
	}
	if i < 0 || i >= len(m.params) {
		return
	}
	m.req.Parameter = m.params[i]
	m.rebuild()
}

func (m *Explorer) moveFocus(dir int) {
	n := len(m.spec.Annotations)
	if n == 0 {
		return
	}
	m.focus = (m.focus + dir + n) % n
}

func (m Explorer) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Tracking R"))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("Days infectious: %d   Layers: %d   ", m.req.Parameter, len(m.spec.Layers))))
	sb.WriteString(tierBadge(m.req.Bounds, model.Tier65))
	sb.WriteString(" ")
	sb.WriteString(tierBadge(m.req.Bounds, model.Tier95))
	sb.WriteString("\n\n")

	switch {
	case m.spec.IsPlaceholder():
		sb.WriteString(statusStyle.Render(chart.PlaceholderText))
		sb.WriteString("\n")
	case m.spec.Notice != "":
		sb.WriteString(noticeStyle.Render(m.spec.Notice))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.labelTable())
	}

	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(statusStyle.Render(truncate(m.status, max(m.width, 20))))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m Explorer) labelTable() string {
	var sb strings.Builder
	header := fmt.Sprintf("   %s %8s %9s", padRight("Entity", entityColumn), "Last R", "Label at")
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n")
	for i, l := range m.spec.Annotations {
		row := fmt.Sprintf("%s %s %8.2f %9.2f",
			swatch(l.Color),
			padRight(truncate(l.EntityID, entityColumn), entityColumn),
			l.RawValue,
			l.DisplayPosition,
		)
		if i == m.focus {
			row = focusStyle.Render(row)
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}
	return sb.String()
}

func tierBadge(b model.Bounds, t model.Tier) string {
	if b.Has(t) {
		return onStyle.Render(t.String())
	}
	return offStyle.Render(t.String())
}
