package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mabhi256/jfreader"
	"github.com/mabhi256/jfreader/utils"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:               "watch [jfr-file]",
	Short:             "Replay a recording chunk by chunk as an interactive dashboard",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: utils.CompleteFilesByExtension([]string{".jfr"}, false),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		if _, err := os.Stat(filename); os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}

		stats, err := loadChunkStats(filename)
		if err != nil {
			return err
		}

		model := newWatchModel(filename, stats)
		program := tea.NewProgram(model, tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

const maxRecentThreads = 5
const revealInterval = 150 * time.Millisecond

// chunkStat summarizes one decoded chunk: its per-event-type counts and
// the thread names its jdk.ExecutionSample events referenced, resolved
// one constant-pool hop per spec.md §4.7's navigation rule.
type chunkStat struct {
	eventCount  map[string]int
	threadNames []string
}

func loadChunkStats(filename string) ([]chunkStat, error) {
	src, err := jfr.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var stats []chunkStat
	jr := jfr.Open(src, jfr.ReaderOptions{})
	for {
		chunk, err := jr.Next()
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			break
		}

		stat := chunkStat{eventCount: make(map[string]int)}
		it := chunk.Events()
		for {
			ev, ok := it.Next()
			if !ok {
				break
			}
			stat.eventCount[ev.Class.Name]++

			if ev.Class.Name != "jdk.ExecutionSample" {
				continue
			}
			acc := jfr.NewAccessor(chunk, ev.Value)
			threadField, ok := acc.GetField("sampledThread")
			if !ok {
				continue
			}
			osName, ok := threadField.GetField("osName")
			if !ok {
				continue
			}
			if name, ok := osName.Str(); ok {
				stat.threadNames = append(stat.threadNames, name)
			}
		}
		if err := it.Err(); err != nil {
			return nil, err
		}

		stats = append(stats, stat)
	}
	return stats, nil
}

type revealMsg struct{}

// watchModel animates loadChunkStats's already-decoded per-chunk
// summaries one chunk at a time, so the dashboard fills in the way a
// caller iterating the recording live would see it grow (SPEC_FULL.md §11).
type watchModel struct {
	filename string
	stats    []chunkStat
	revealed int

	cumulative    map[string]int
	recentThreads []string
	eventsPerChunk sparkline.Model
	counts        table.Model

	width, height int
}

func newWatchModel(filename string, stats []chunkStat) *watchModel {
	columns := []table.Column{
		{Title: "Event Type", Width: 40},
		{Title: "Count", Width: 10},
	}
	t := table.New(table.WithColumns(columns), table.WithFocused(false))

	return &watchModel{
		filename:       filename,
		stats:          stats,
		cumulative:     make(map[string]int),
		eventsPerChunk: sparkline.New(40, 4),
		counts:         t,
	}
}

func (m *watchModel) Init() tea.Cmd {
	if len(m.stats) == 0 {
		return nil
	}
	return tickReveal()
}

func tickReveal() tea.Cmd {
	return tea.Tick(revealInterval, func(time.Time) tea.Msg { return revealMsg{} })
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case revealMsg:
		if m.revealed >= len(m.stats) {
			return m, nil
		}
		m.applyChunk(m.stats[m.revealed])
		m.revealed++
		if m.revealed < len(m.stats) {
			return m, tickReveal()
		}
	}
	return m, nil
}

func (m *watchModel) applyChunk(stat chunkStat) {
	total := 0
	for name, n := range stat.eventCount {
		m.cumulative[name] += n
		total += n
	}
	m.eventsPerChunk.Push(float64(total))
	m.eventsPerChunk.Draw()

	m.recentThreads = append(m.recentThreads, stat.threadNames...)
	if len(m.recentThreads) > maxRecentThreads {
		m.recentThreads = m.recentThreads[len(m.recentThreads)-maxRecentThreads:]
	}

	m.counts.SetRows(buildCountRows(m.cumulative))
}

func buildCountRows(cumulative map[string]int) []table.Row {
	names := make([]string, 0, len(cumulative))
	for name := range cumulative {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return cumulative[names[i]] > cumulative[names[j]] })

	rows := make([]table.Row, len(names))
	for i, name := range names {
		rows[i] = table.Row{name, fmt.Sprintf("%d", cumulative[name])}
	}
	return rows
}

func (m *watchModel) View() string {
	title := utils.TitleStyle.Render(fmt.Sprintf("%s — chunk %d/%d", m.filename, m.revealed, len(m.stats)))

	threadsTitle := utils.InfoStyle.Render("Recent ExecutionSample threads")
	threads := utils.MutedStyle.Render("(none yet)")
	if len(m.recentThreads) > 0 {
		trimmed := make([]string, len(m.recentThreads))
		for i, name := range m.recentThreads {
			trimmed[i] = utils.TruncateString(name, 40)
		}
		threads = lipgloss.JoinVertical(lipgloss.Left, trimmed...)
	}

	sparkTitle := utils.InfoStyle.Render("Events per chunk")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		m.counts.View(),
		"",
		sparkTitle,
		m.eventsPerChunk.View(),
		"",
		threadsTitle,
		threads,
		"",
		utils.MutedStyle.Render("q to quit"),
	)

	return utils.BoxStyle.Render(body)
}
