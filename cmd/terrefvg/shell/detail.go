package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"terrefvg/internal/directory"
	"terrefvg/internal/logging"
)

// DetailMarkdown describes a farm for the detail overlay.
func DetailMarkdown(f directory.Farm, visited bool, dir *directory.Directory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", f.Name)
	if visited {
		sb.WriteString("**✓ VISITATA**\n\n")
	}
	fmt.Fprintf(&sb, "📍 %s\n\n", f.Address)
	if f.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", f.Description)
	}
	if f.Specialty != "" {
		fmt.Fprintf(&sb, "## Specialità\n\n%s\n\n", f.Specialty)
	}
	if len(f.Products) > 0 {
		sb.WriteString("## Prodotti\n\n")
		for _, p := range f.Products {
			fmt.Fprintf(&sb, "- %s · %s\n", p.Name, p.Category.Label())
		}
		sb.WriteString("\n")
	}
	if len(f.Owners) > 0 {
		sb.WriteString("## Chi siamo\n\n")
		for _, o := range f.Owners {
			fmt.Fprintf(&sb, "- **%s**, %s\n", o.Name, o.Role)
		}
		sb.WriteString("\n")
	}
	if names := dir.Names(f.Connections); len(names) > 0 {
		sb.WriteString("## Collaborano con\n\n")
		for _, n := range names {
			fmt.Fprintf(&sb, "- %s\n", n)
		}
		sb.WriteString("\n")
	}
	if f.Logo != "" {
		fmt.Fprintf(&sb, "_Logo: %s_\n", f.Logo)
	}
	return sb.String()
}

// RenderMarkdown renders md with glamour, falling back to the raw text.
func RenderMarkdown(md, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		logging.ShellWarn("markdown renderer unavailable: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		logging.ShellWarn("markdown render failed: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}
