package dialog

import "embed"

const scriptName = "msgbox.vbs"

//go:embed msgbox.vbs
var assets embed.FS
