package hotkey

import "golang.design/x/hotkey"

var defaultModifiers = []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModAlt}

var knownConflicts = []ConflictInfo{
	{
		Name:        "Input Language",
		Description: "Switch keyboard layout",
		Modifiers:   []hotkey.Modifier{hotkey.ModWin},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Task Manager",
		Description: "Open Task Manager",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift},
		Key:         hotkey.KeyEscape,
	},
}

func modifierFor(name string) (hotkey.Modifier, bool) {
	switch name {
	case "ctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt":
		return hotkey.ModAlt, true
	case "cmd":
		return hotkey.ModWin, true
	}
	return 0, false
}

func modifierLabel(mod hotkey.Modifier) string {
	switch mod {
	case hotkey.ModCtrl:
		return "Ctrl+"
	case hotkey.ModShift:
		return "Shift+"
	case hotkey.ModAlt:
		return "Alt+"
	case hotkey.ModWin:
		return "Win+"
	}
	return ""
}
