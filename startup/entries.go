package startup

import (
	"fmt"
	"html"
)

const (
	agentLabel  = "com.harshvasudeva.dialog-companion"
	desktopName = "dialog-companion.desktop"
)

// desktopEntry is the XDG autostart file. Dialogs need the graphical
// session, so the entry is limited to desktops that start one and waits
// for the panel before the tray icon appears.
func desktopEntry(exePath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=Dialog Companion
GenericName=Message dialog service
Comment=Shows native error, info and warning dialogs for local scripts on 127.0.0.1
Exec="%s"
TryExec=%s
Icon=dialog-information
Terminal=false
NoDisplay=true
Categories=Utility;
X-GNOME-Autostart-enabled=true
X-GNOME-Autostart-Delay=5
`, exePath, exePath)
}

// launchAgentPlist keeps the companion in the Aqua (logged-in GUI) session,
// where osascript can reach System Events.
func launchAgentPlist(exePath string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
	</array>
	<key>LimitLoadToSessionType</key>
	<string>Aqua</string>
	<key>ProcessType</key>
	<string>Interactive</string>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<false/>
</dict>
</plist>
`, agentLabel, html.EscapeString(exePath))
}
