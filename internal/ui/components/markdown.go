// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the parley TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/parley/internal/markdown"
	"github.com/jeranaias/parley/internal/ui/styles"
)

// =============================================================================
// MARKDOWN NODE RENDERER
// =============================================================================

// RenderMarkdown converts parsed markdown nodes into a styled terminal
// string. Inline nodes flow onto the current line; line break and code
// block nodes terminate it.
func RenderMarkdown(nodes []markdown.Node, maxWidth int) string {
	var out strings.Builder
	var line strings.Builder

	flushLine := func() {
		out.WriteString(line.String())
		out.WriteString("\n")
		line.Reset()
	}

	for _, n := range nodes {
		switch n.Kind {
		case markdown.KindText:
			line.WriteString(n.Content)
		case markdown.KindBold:
			line.WriteString(styles.Bold.Render(n.Content))
		case markdown.KindItalic:
			line.WriteString(styles.Italic.Render(n.Content))
		case markdown.KindInlineCode:
			line.WriteString(styles.InlineCode.Render(n.Content))
		case markdown.KindLineBreak:
			flushLine()
		case markdown.KindCodeBlock:
			if line.Len() > 0 {
				flushLine()
			}
			out.WriteString(renderCodeBlock(n.Content, n.Lang, maxWidth))
			out.WriteString("\n")
		}
	}
	if line.Len() > 0 {
		flushLine()
	}

	return strings.TrimSuffix(out.String(), "\n")
}

// renderCodeBlock draws a fenced code block with syntax highlighting and a
// language badge.
func renderCodeBlock(code, lang string, maxWidth int) string {
	var header string
	if lang != "" {
		header = styles.LangBadge.Render(lang) + "\n"
	}

	content := highlightCode(code, lang)

	width := maxWidth - 4
	if width < 20 {
		width = 20
	}
	return styles.CodeBlock.MaxWidth(width).Render(header + content)
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma syntax highlighting for terminal output,
// returning the code unchanged when highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
