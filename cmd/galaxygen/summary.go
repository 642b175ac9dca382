package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/scenario"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Width(22)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7B2CBF")).
			Padding(0, 1)
)

// renderSummary describes a generation for the terminal.
func renderSummary(name string, res *scenario.Result) string {
	sum := res.Summary
	rows := []struct {
		label string
		value string
	}{
		{"Stars", fmt.Sprint(sum.Stars)},
		{"Hyperlanes", fmt.Sprint(sum.Hyperlanes)},
		{"Wormholes", fmt.Sprint(sum.Wormholes)},
		{"Home stars", fmt.Sprintf("%d (%d preferred)", sum.HomeStars, sum.PreferredStars)},
		{"Spawn zone", fmt.Sprintf("%d one jump, %d two jumps", sum.OneJump, sum.TwoJumps)},
		{"Fallen empire spawns", fmt.Sprint(sum.FallenEmpires)},
		{"Nebulas", fmt.Sprintf("%d in %d groups", sum.Nebulas, sum.NebulaGroups)},
		{"Size tier", sum.SizeTier},
		{"Max AI empires", fmt.Sprint(sum.MaxAIEmpires)},
		{"Starting stars", fmt.Sprint(sum.StartingStars)},
		{"Seed", fmt.Sprint(res.Seed)},
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(name))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label))
		b.WriteString(valueStyle.Render(r.value))
		b.WriteString("\n")
	}
	if res.ID != "" {
		b.WriteString(dimStyle.Render("archived as " + res.ID))
		b.WriteString("\n")
	}
	return boxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

// renderArchive lists archived scenarios, newest first.
func renderArchive(list []*database.Scenario) string {
	if len(list) == 0 {
		return dimStyle.Render("No archived scenarios.")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d archived scenarios", len(list))))
	b.WriteString("\n")
	for _, s := range list {
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			valueStyle.Render(s.ID),
			labelStyle.Render(s.Name),
			dimStyle.Render(fmt.Sprintf("%d stars, %s, seed %d, %s",
				s.StarCount, s.SizeTier, s.Seed, s.CreatedAt.Format("2006-01-02 15:04")))))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderVerification reports whether an archived scenario still reproduces.
func renderVerification(v *scenario.Verification) string {
	status := "reproduces exactly"
	if !v.Match {
		status = "DIFFERS from the archived text"
	}
	return fmt.Sprintf("%s %s\n%s",
		valueStyle.Render(v.ID), headerStyle.Render(status),
		dimStyle.Render(fmt.Sprintf("seed %d", v.Seed)))
}
