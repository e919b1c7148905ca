package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorURL    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by command output and the interactive screen.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent) // package names
	StyleLink      = lipgloss.NewStyle().Foreground(colorURL).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)

	styleText         = lipgloss.NewStyle().Foreground(colorText)
	styleKey          = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleIconSpinner  = lipgloss.NewStyle().Foreground(colorAccent)
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listNormalStyle   = styleText
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconPending = "•"
)

// status prints one line prefixed by a colored marker.
func status(marker string, color lipgloss.Color, msg string) {
	fmt.Println(lipgloss.NewStyle().Foreground(color).Render(marker) + " " + msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, colorOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status("✗", colorFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	status("!", colorWarn, lipgloss.NewStyle().Foreground(colorWarn).Render(msg))
}

func printInfo(format string, args ...any) {
	status("›", colorGray, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a path written by the last command.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleText.Render(path))
}

// printKeyValue prints one aligned config or package field.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleText.Render(value))
}

// printNextStep suggests a gitpkg command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + lipgloss.NewStyle().Foreground(colorURL).Render(cmd))
}
