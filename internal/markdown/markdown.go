// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts assistant replies written in a constrained
// markdown-like syntax into a flat sequence of typed render nodes.
//
// The tokenizer is deliberately minimal: fenced code blocks, inline code,
// bold, italic and line breaks. Node content is always literal text - it is
// never re-parsed, never interpreted as markup, and code blocks are never
// evaluated. Malformed input degrades to literal text; rendering has no
// failure conditions.
package markdown

import (
	"strings"
)

// =============================================================================
// NODE TYPES
// =============================================================================

// Kind identifies the render treatment of a node.
type Kind int

const (
	// KindText is literal paragraph text.
	KindText Kind = iota
	// KindBold is emphasis text delimited by **.
	KindBold
	// KindItalic is emphasis text delimited by a single *.
	KindItalic
	// KindInlineCode is a literal span delimited by backticks.
	KindInlineCode
	// KindCodeBlock is a literal multi-line block delimited by ``` fences.
	KindCodeBlock
	// KindLineBreak marks the boundary of a source line.
	KindLineBreak
)

// String returns the node kind name, for tests and debugging.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBold:
		return "bold"
	case KindItalic:
		return "italic"
	case KindInlineCode:
		return "inlinecode"
	case KindCodeBlock:
		return "codeblock"
	case KindLineBreak:
		return "br"
	default:
		return "unknown"
	}
}

// Node is one typed unit of renderable output.
type Node struct {
	Kind    Kind
	Content string

	// Lang is the language annotation after an opening fence. The terminal
	// code-block component uses it as a syntax-highlighting hint; it carries
	// no semantics beyond that.
	Lang string
}

// =============================================================================
// RENDERER
// =============================================================================

const fence = "```"

// Render tokenizes input into an ordered node sequence. It is a pure
// function: same input, same nodes, no side effects, no errors.
func Render(input string) []Node {
	var nodes []Node

	lines := strings.Split(input, "\n")
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, fence) {
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, fence))

			// Collect verbatim until the closing fence, which is consumed.
			// An unterminated fence absorbs all remaining lines.
			var block []string
			i++
			for i < len(lines) {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), fence) {
					i++
					break
				}
				block = append(block, lines[i])
				i++
			}
			nodes = append(nodes, Node{
				Kind:    KindCodeBlock,
				Content: strings.Join(block, "\n"),
				Lang:    lang,
			})
			continue
		}

		nodes = append(nodes, renderInline(lines[i])...)
		nodes = append(nodes, Node{Kind: KindLineBreak})
		i++
	}

	return nodes
}

// renderInline scans one non-fence line left to right for the next-nearest
// of the three inline markers. Unmatched markers degrade to literal text.
func renderInline(line string) []Node {
	var nodes []Node

	rest := line
	for rest != "" {
		kind, idx := nextMarker(rest)
		if idx < 0 {
			nodes = append(nodes, Node{Kind: KindText, Content: rest})
			break
		}

		if idx > 0 {
			nodes = append(nodes, Node{Kind: KindText, Content: rest[:idx]})
		}

		open, close_ := markerDelims(kind)
		body := rest[idx+len(open):]
		end := strings.Index(body, close_)
		if end < 0 {
			// No closing marker on this line: the remainder, opening marker
			// included, is literal text and scanning stops.
			nodes = append(nodes, Node{Kind: KindText, Content: rest[idx:]})
			break
		}

		nodes = append(nodes, Node{Kind: kind, Content: body[:end]})
		rest = body[end+len(close_):]
	}

	return nodes
}

// nextMarker returns the kind and byte index of the earliest inline marker
// in s, or (KindText, -1) when none remains. A "**" at the same index as a
// lone "*" is bold, not italic.
func nextMarker(s string) (Kind, int) {
	best := -1
	kind := KindText

	if i := strings.Index(s, "`"); i >= 0 {
		best, kind = i, KindInlineCode
	}
	if i := strings.Index(s, "**"); i >= 0 && (best < 0 || i < best) {
		best, kind = i, KindBold
	}
	if i := strings.Index(s, "*"); i >= 0 && (best < 0 || i < best) {
		// A lone * is italic only when it is not the start of a **.
		if !strings.HasPrefix(s[i:], "**") {
			best, kind = i, KindItalic
		}
	}

	return kind, best
}

// markerDelims returns the opening and closing delimiter for an inline kind.
func markerDelims(k Kind) (string, string) {
	switch k {
	case KindBold:
		return "**", "**"
	case KindItalic:
		return "*", "*"
	default:
		return "`", "`"
	}
}
