// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parley TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Purple - Primary accent, assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - Brand color, info, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - Success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - Errors, danger states
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings, caution states
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// OverlayDim - Dimmer overlay for less prominent elements
var OverlayDim = lipgloss.AdaptiveColor{Light: "#D4D4D4", Dark: "#45475A"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Blue tones
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1D4ED8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#E0F2FE"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}

// Assistant message bubble - Soft purple/violet tones
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F5F3FF", Dark: "#3B3655"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#5B4B8A", Dark: "#E9E4F5"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}

// =============================================================================
// TONE COLORS
// =============================================================================

// Tone accents tint the message footer by classified tone.
var (
	TonePositiveColor    = Emerald
	ToneNegativeColor    = Rose
	ToneExcitedColor     = Amber
	ToneInquisitiveColor = Cyan
	ToneNeutralColor     = TextMuted
)

// ToneColor returns the accent color for a tone name. Unknown tones fall
// back to the neutral color.
func ToneColor(tone string) lipgloss.AdaptiveColor {
	switch tone {
	case "positive":
		return TonePositiveColor
	case "negative":
		return ToneNegativeColor
	case "excited":
		return ToneExcitedColor
	case "inquisitive":
		return ToneInquisitiveColor
	default:
		return ToneNeutralColor
	}
}

// =============================================================================
// SELECTION / FOCUS
// =============================================================================

// FocusRing highlights the focused pane border.
var FocusRing = Cyan

// SelectionBg highlights the selected sidebar entry.
var SelectionBg = lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A5F"}
