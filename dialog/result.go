package dialog

// Button is the control that closed a dialog.
type Button int

// Windows values follow the MsgBox return codes minus one.
const (
	ButtonOK Button = iota
	ButtonCancel
	ButtonAbort
	ButtonRetry
	ButtonIgnore
	ButtonYes
	ButtonNo
	ButtonUnknown
)

var buttonNames = [...]string{"ok", "cancel", "abort", "retry", "ignore", "yes", "no", "unknown"}

func (b Button) String() string {
	if b < ButtonOK || b > ButtonUnknown {
		return buttonNames[ButtonUnknown]
	}
	return buttonNames[b]
}

// Outcome is the result of a dialog program that ran to completion. A
// non-zero ExitCode is a normal outcome (the user cancelled), not an error.
type Outcome struct {
	Platform Platform
	ExitCode int
	Stdout   string
	Stderr   string
}

// Button decodes ExitCode for the platform that produced it.
func (o Outcome) Button() Button {
	switch o.Platform {
	case PlatformWindows:
		if o.ExitCode >= int(ButtonOK) && o.ExitCode < int(ButtonUnknown) {
			return Button(o.ExitCode)
		}
	default:
		switch o.ExitCode {
		case 0:
			return ButtonOK
		case 1:
			return ButtonCancel
		}
	}
	return ButtonUnknown
}

// Acknowledged reports whether the user pressed OK.
func (o Outcome) Acknowledged() bool {
	return o.Button() == ButtonOK
}
