package hotkey

import "golang.design/x/hotkey"

// Mod1 is Alt and Mod4 is Super under the usual X11 modifier map
var defaultModifiers = []hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1}

var knownConflicts = []ConflictInfo{
	{
		Name:        "Input Method",
		Description: "Switch input method (IBus, Fcitx)",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Input Source",
		Description: "GNOME input source switch",
		Modifiers:   []hotkey.Modifier{hotkey.Mod4},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Terminal",
		Description: "Open terminal (GNOME, Ubuntu)",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl, hotkey.Mod1},
		Key:         hotkey.KeyT,
	},
}

func modifierFor(name string) (hotkey.Modifier, bool) {
	switch name {
	case "ctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt":
		return hotkey.Mod1, true
	case "cmd":
		return hotkey.Mod4, true
	}
	return 0, false
}

func modifierLabel(mod hotkey.Modifier) string {
	switch mod {
	case hotkey.ModCtrl:
		return "Ctrl+"
	case hotkey.ModShift:
		return "Shift+"
	case hotkey.Mod1:
		return "Alt+"
	case hotkey.Mod4:
		return "Super+"
	}
	return ""
}
