package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Italic(true).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFA500")).
				MarginTop(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// PanelKeys are the keyboard controls listed under "Keys:" in the help
var PanelKeys = [][2]string{
	{"tab / shift+tab", "Switch between Monitor Outputs, Monitor Inputs and Analog Volume"},
	{"←/→", "Select a strip"},
	{"↑/↓", "Raise or lower the gain one step"},
	{"pgup/pgdn", "Move to the next 6dB scale mark"},
	{"x", "Choose the left or right side of an unlinked strip"},
	{"m / l", "Toggle mute / stereo link"},
	{"s", "Cycle the sensitivity of an analog channel"},
	{"r", "Reset all peak-hold indicators"},
	{"q", "Quit"},
}

// StyledHelpPrinter creates a help printer with Lipgloss styling. Flags
// are listed under their kong group.
func StyledHelpPrinter(options kong.HelpOptions) func(options kong.HelpOptions, ctx *kong.Context) error {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(helpTitleStyle.Render("envymix"))
		sb.WriteString("\n")
		if ctx.Model.Help != "" {
			sb.WriteString(helpDescStyle.Render(ctx.Model.Help))
			sb.WriteString("\n")
		}

		sb.WriteString(helpSectionStyle.Render("Usage:"))
		fmt.Fprintf(&sb, "\n  %s [flags]\n", ctx.Model.Name)

		for _, g := range groupFlags(ctx) {
			sb.WriteString("\n")
			sb.WriteString(helpSectionStyle.Render(g.title + ":"))
			sb.WriteString("\n")
			for _, f := range g.flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(f.flags))
				if f.help != "" {
					sb.WriteString("  " + f.help)
				}
				if f.defaultVal != "" {
					sb.WriteString(" " + helpDefaultStyle.Render("(default: "+f.defaultVal+")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		sb.WriteString(helpSectionStyle.Render("Keys:"))
		sb.WriteString("\n")
		for _, k := range PanelKeys {
			fmt.Fprintf(&sb, "  %s  %s\n", helpFlagStyle.Render(fmt.Sprintf("%-15s", k[0])), k[1])
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type flag struct {
	flags      string
	help       string
	defaultVal string
}

type flagGroup struct {
	title string
	flags []flag
}

// groupFlags lists the model's flags by group, ungrouped flags first
func groupFlags(ctx *kong.Context) []flagGroup {
	groups := []flagGroup{{title: "Flags", flags: []flag{{flags: "-h, --help", help: "Show context-sensitive help."}}}}
	index := map[string]int{"": 0}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" || f.Hidden {
			continue
		}
		title := ""
		if f.Group != nil {
			title = f.Group.Title
		}
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, flagGroup{title: title})
		}
		groups[i].flags = append(groups[i].flags, describeFlag(f))
	}
	return groups
}

func describeFlag(f *kong.Flag) flag {
	name := "--" + f.Name
	if f.Short != 0 {
		name = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
	}
	if !f.IsBool() && f.PlaceHolder != "" {
		name += "=" + strings.ToUpper(f.PlaceHolder)
	}
	def := ""
	if f.HasDefault {
		def = f.Default
	}
	return flag{flags: name, help: f.Help, defaultVal: def}
}
