package main

import (
	"strings"

	"github.com/fatih/color"
)

var (
	excellentColor = color.New(color.FgGreen, color.Bold)
	goodColor      = color.New(color.FgBlue)
	needsWorkColor = color.New(color.FgYellow)
	poorColor      = color.New(color.FgRed)
	otherColor     = color.New(color.FgHiBlack)
)

// labelColor picks the display colour for a classification label.
func labelColor(label string) *color.Color {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "excellent":
		return excellentColor
	case "good":
		return goodColor
	case "needs work":
		return needsWorkColor
	case "poor":
		return poorColor
	default:
		return otherColor
	}
}

func colorLabel(label string) string {
	if label == "" {
		label = "-"
	}
	return labelColor(label).Sprint(label)
}
