package dialog

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// DefaultTitle is used when a Request carries no title.
const DefaultTitle = "Important"

// Command is a program name followed by its arguments.
type Command []string

// Program returns the executable name.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns a copy of the arguments after the program name.
func (c Command) Args() []string {
	if len(c) < 2 {
		return nil
	}
	return append([]string(nil), c[1:]...)
}

// Wrap widens zenity dialogs whose message is longer than Threshold
// characters so long text is not squeezed into a narrow window.
type Wrap struct {
	Threshold int
	Width     int
}

// DefaultWrap is applied when a Builder has no Wrap configured.
var DefaultWrap = Wrap{Threshold: 30, Width: 300}

var (
	appleScriptIcons = map[Kind]string{
		KindError:   "0",
		KindInfo:    "1",
		KindWarning: "2",
	}

	// MsgBox icon constants: vbCritical, vbInformation, vbExclamation.
	msgBoxIcons = map[Kind]int{
		KindError:   16,
		KindInfo:    64,
		KindWarning: 48,
	}
)

// appleScriptIcon returns "" for kinds without an icon.
func appleScriptIcon(k Kind) string {
	return appleScriptIcons[k]
}

// msgBoxIcon returns 0 (no icon) for unknown kinds.
func msgBoxIcon(k Kind) int {
	return msgBoxIcons[k]
}

// Builder turns a Request into the Command for a platform.
type Builder struct {
	Wrap Wrap
}

// Build returns the Command showing req on p. scriptPath is the MsgBox
// helper handed to cscript and is ignored elsewhere.
func (b Builder) Build(p Platform, req Request, scriptPath string) (Command, error) {
	title := req.Title
	if title == "" {
		title = DefaultTitle
	}
	msg := escapeMetacharacters(req.Message)

	switch p {
	case PlatformLinux:
		return b.zenity(req.Kind, stripMarkup(msg), title), nil
	case PlatformMacOS:
		return osascript(req.Kind, quoteLiteral(msg), quoteAppleScriptTitle(title)), nil
	case PlatformWindows:
		return cscript(req.Kind, quoteLiteral(msg), quoteLiteral(title), scriptPath), nil
	default:
		return nil, ErrUnsupportedPlatform
	}
}

// zenity exits 0 on OK and 1 on cancel or window close.
func (b Builder) zenity(kind Kind, msg, title string) Command {
	wrap := b.Wrap
	if wrap == (Wrap{}) {
		wrap = DefaultWrap
	}
	cmd := Command{"zenity", "--" + string(kind), "--text", msg, "--title", title}
	if wrap.Width > 0 && utf8.RuneCountInString(msg) > wrap.Threshold {
		cmd = append(cmd, "--width", strconv.Itoa(wrap.Width))
	}
	return cmd
}

// osascript exits like zenity: 0 on OK, 1 when the dialog is dismissed.
func osascript(kind Kind, msg, title string) Command {
	script := fmt.Sprintf(`tell app "System Events" to display dialog "%s" with title "%s" buttons "OK"`, msg, title)
	if icon := appleScriptIcon(kind); icon != "" {
		script += " with icon " + icon
	}
	return Command{"osascript", "-e", script}
}

// cscript runs msgbox.vbs, which exits with the MsgBox result minus one.
func cscript(kind Kind, msg, title, scriptPath string) Command {
	return Command{"cscript", "//NOLOGO", scriptPath, msg, strconv.Itoa(msgBoxIcon(kind)), title}
}
