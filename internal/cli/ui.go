package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gitdot/pkg/pipeline"
)

// Palette. The picker and the ref table share it with the status lines.
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNumber = lipgloss.NewStyle().Foreground(colorCyan)
	styleLink   = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleValue  = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarn   = lipgloss.NewStyle().Foreground(colorYellow)
	styleCmd    = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleWarn.Render(iconWarning) + " " + styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints one written output file.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

// printStats prints the shape of the emitted graph on one line, ending with
// whether the commit log came from the cache.
func printStats(stats pipeline.Stats, info pipeline.CacheInfo) {
	parts := []string{fmt.Sprintf("%d nodes", stats.Nodes)}
	if stats.Edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", stats.Edges))
	}
	if stats.NodesPruned > 0 {
		parts = append(parts, fmt.Sprintf("%d pruned", stats.NodesPruned))
	}
	if stats.Chains > 0 {
		parts = append(parts, fmt.Sprintf("%d squashed in %d chains", stats.Hidden, stats.Chains))
	}
	for i, p := range parts {
		parts[i] = styleDim.Render(p)
	}
	if info.LogHit {
		parts = append(parts, styleCached.Render("cached log"))
	} else {
		parts = append(parts, styleComputed.Render("fresh log"))
	}
	fmt.Println("  " + strings.Join(parts, styleDim.Render(" · ")))
}

// printNextStep prints a command the user can run next.
func printNextStep(description, cmd string) {
	fmt.Println(styleDim.Render(description+":") + " " + styleCmd.Render(cmd))
}
