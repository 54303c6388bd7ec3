package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/osa030/blackhand/internal/app/playback"
	"github.com/osa030/blackhand/internal/app/visualizer"
	"github.com/osa030/blackhand/internal/domain/catalog"
	"github.com/osa030/blackhand/internal/domain/track"
	"github.com/osa030/blackhand/internal/infra/output"
)

var (
	stateStyles = map[playback.State]lipgloss.Style{
		playback.StatePlaying: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		playback.StatePaused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		playback.StateStopped: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
	titleStyle = lipgloss.NewStyle().Bold(true)
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// bar glyphs by level, index 0 is silence
var barGlyphs = []rune(" ▁▂▃▄▅▆▇█")

// renderCatalog renders the catalog as a table.
func renderCatalog(cat *catalog.Catalog) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Genre", "Author", "Title", "Length"})

	for i, t := range cat.Tracks() {
		tw.AppendRow(table.Row{i, t.Genre, t.Author, t.Title, formatDuration(t.Duration)})
	}

	footer := fmt.Sprintf("%d tracks, %d genres", cat.Len(), len(cat.Genres()))
	tw.AppendFooter(table.Row{"", "", "", footer, formatDuration(cat.TotalDuration())})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	return tw.Render()
}

// renderOutputs lists the registered output drivers.
func renderOutputs() string {
	registered := output.GetRegistered()

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Driver", "Description"})
	for _, name := range output.Names() {
		tw.AppendRow(table.Row{name, registered[name]().Description()})
	}
	return tw.Render()
}

// formatDuration renders d as m:ss, or "-" when unknown.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Truncate(time.Second)
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// renderBars maps visualizer levels to block glyphs.
func renderBars(levels []uint8) string {
	var b strings.Builder
	for _, l := range levels {
		b.WriteRune(barGlyphs[min(int(l), visualizer.MaxLevel)])
	}
	return b.String()
}

// statusLine renders a single line describing the playback state.
func statusLine(state playback.State, t track.AudioFile, elapsed time.Duration, levels []uint8) string {
	style, ok := stateStyles[state]
	if !ok {
		style = lipgloss.NewStyle()
	}

	clock := formatDuration(elapsed)
	if elapsed < time.Second {
		clock = "0:00"
	}
	if t.Duration > 0 {
		clock += " / " + formatDuration(t.Duration)
	}

	return strings.Join([]string{
		style.Render(fmt.Sprintf("%-7s", state)),
		titleStyle.Render(t.DisplayName()),
		timeStyle.Render(clock),
		barStyle.Render(renderBars(levels)),
	}, "  ")
}
