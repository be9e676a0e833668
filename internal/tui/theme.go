package tui

import (
	"github.com/gdamore/tcell/v2"
)

// drivesave color palette
var (
	// Primary accent color
	DriveBlue = tcell.NewRGBColor(0, 120, 212) // #0078D4

	// Neutral colors
	DriveDark  = tcell.NewRGBColor(40, 40, 40)    // #282828
	DriveGray  = tcell.NewRGBColor(128, 128, 128) // #808080
	DriveLight = tcell.NewRGBColor(200, 200, 200) // #C8C8C8

	// Status colors
	SuccessGreen  = tcell.NewRGBColor(34, 197, 94)  // #22C55E
	ErrorRed      = tcell.NewRGBColor(239, 68, 68)  // #EF4444
	WarningYellow = tcell.NewRGBColor(234, 179, 8)  // #EAB308
	InfoBlue      = tcell.NewRGBColor(59, 130, 246) // #3B82F6

	// Additional UI colors
	White     = tcell.ColorWhite
	Black     = tcell.ColorBlack
	LightGray = tcell.ColorLightGray
	DarkGray  = tcell.ColorDarkGray
)

// Symbols and icons
const (
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolWarning  = "⚠"
	SymbolInfo     = "ℹ"
	SymbolArrow    = "→"
	SymbolBullet   = "•"
)

// StatusColor returns the appropriate color for a status
func StatusColor(status string) tcell.Color {
	switch status {
	case "applied", "ok", "done", "already satisfied":
		return SuccessGreen
	case "error", "failed", "fail":
		return ErrorRed
	case "warning", "skipped":
		return WarningYellow
	case "info", "pending", "running":
		return InfoBlue
	default:
		return LightGray
	}
}

// StatusSymbol returns the appropriate symbol for a status
func StatusSymbol(status string) string {
	switch status {
	case "applied", "ok", "done", "already satisfied":
		return SymbolSuccess
	case "error", "failed", "fail":
		return SymbolError
	case "warning", "skipped":
		return SymbolWarning
	case "info", "pending", "running":
		return SymbolInfo
	default:
		return SymbolBullet
	}
}
