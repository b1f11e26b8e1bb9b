package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconInbox    = "\U000F02FA" // 󰋺
	IconUserPlus = "\U000F0014" // 󰀔
	IconChat     = "\U000F0369" // 󰍩
	IconUser     = " "
	IconBell     = "\U000F009A" // 󰂚
)
