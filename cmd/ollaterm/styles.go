package main

import "github.com/charmbracelet/lipgloss"

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	styleDim    = lipgloss.NewStyle().Faint(true)
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleFail   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleStdout = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleStderr = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
