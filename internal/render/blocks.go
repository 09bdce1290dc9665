// Package render converts upstream content blocks into HTML fragments
// for the site views and the JSON page endpoints.
package render

import (
	"fmt"
	"html"
	"strings"

	"rutanorte/api/internal/notion"
)

// RenderBlocks converts a flat block sequence into HTML. Consecutive
// bulleted or numbered list items collapse into a single <ul> or <ol>;
// a run ends at the first block of any other type.
func RenderBlocks(blocks []notion.Block) string {
	var b strings.Builder
	for i := 0; i < len(blocks); i++ {
		block := blocks[i]
		switch block.Type {
		case "bulleted_list_item":
			i = renderListRun(&b, blocks, i, "bulleted_list_item", "ul")
		case "numbered_list_item":
			i = renderListRun(&b, blocks, i, "numbered_list_item", "ol")
		default:
			b.WriteString(renderBlock(block))
		}
	}
	return b.String()
}

// renderListRun writes every consecutive item of the same list type as
// one container and returns the index of the last consumed block.
func renderListRun(b *strings.Builder, blocks []notion.Block, start int, blockType, tag string) int {
	end := start
	for end+1 < len(blocks) && blocks[end+1].Type == blockType {
		end++
	}
	b.WriteString("<" + tag + ">")
	for i := start; i <= end; i++ {
		b.WriteString("<li>" + RenderRichText(blocks[i].Content.RichText) + "</li>")
	}
	b.WriteString("</" + tag + ">")
	return end
}

func renderBlock(block notion.Block) string {
	text := RenderRichText(block.Content.RichText)
	switch block.Type {
	case "paragraph":
		// Empty paragraphs keep vertical rhythm in the rendered page.
		return "<p>" + text + "</p>"
	case "heading_1":
		return "<h1>" + text + "</h1>"
	case "heading_2":
		return "<h2>" + text + "</h2>"
	case "heading_3":
		return "<h3>" + text + "</h3>"
	case "to_do":
		checked := ""
		if block.Content.Checked {
			checked = " checked"
		}
		return `<div class="to-do"><input type="checkbox" disabled` + checked + `><span>` + text + "</span></div>"
	case "toggle":
		return "<details><summary>" + text + "</summary></details>"
	case "quote":
		return "<blockquote>" + text + "</blockquote>"
	case "code":
		return "<pre><code>" + escapedPlainText(block.Content.RichText) + "</code></pre>"
	case "divider":
		return "<hr>"
	case "callout":
		icon := "💡"
		if block.Content.Icon != nil && block.Content.Icon.Emoji != "" {
			icon = block.Content.Icon.Emoji
		}
		return `<div class="callout"><span class="callout-icon">` + icon + `</span><div>` + text + "</div></div>"
	case "child_page":
		// Child pages are links in the views, not inline content.
		return ""
	default:
		// Unknown block types still render their text when they have
		// any, so new upstream types degrade instead of vanishing.
		if len(block.Content.RichText) == 0 {
			return ""
		}
		return `<div class="block">` + text + "</div>"
	}
}

// escapedPlainText joins the raw text of all runs and escapes it,
// without any annotation markup. Code blocks keep their text verbatim.
func escapedPlainText(runs []notion.RichText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(run.PlainText)
	}
	return html.EscapeString(b.String())
}

// RenderRichText converts annotated runs into inline HTML. The text is
// escaped first, then wrapped: bold, italic, strikethrough, underline,
// code, and finally the link.
func RenderRichText(runs []notion.RichText) string {
	var b strings.Builder
	for _, run := range runs {
		b.WriteString(renderRun(run))
	}
	return b.String()
}

func renderRun(run notion.RichText) string {
	out := html.EscapeString(run.PlainText)
	a := run.Annotations
	if a.Bold {
		out = "<strong>" + out + "</strong>"
	}
	if a.Italic {
		out = "<em>" + out + "</em>"
	}
	if a.Strikethrough {
		out = "<del>" + out + "</del>"
	}
	if a.Underline {
		out = "<u>" + out + "</u>"
	}
	if a.Code {
		out = "<code>" + out + "</code>"
	}
	if run.Href != "" {
		out = fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			html.EscapeString(run.Href), out)
	}
	return out
}
