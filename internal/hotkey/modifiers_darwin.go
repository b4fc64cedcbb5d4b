package hotkey

import "golang.design/x/hotkey"

var defaultModifiers = []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModOption}

// knownConflicts contains macOS shortcuts that commonly clash
var knownConflicts = []ConflictInfo{
	{
		Name:        "Spotlight",
		Description: "macOS Spotlight search",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Input Source",
		Description: "Switch input source",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Character Viewer",
		Description: "Emoji and symbols",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModCmd},
		Key:         hotkey.KeySpace,
	},
	{
		Name:        "Force Quit",
		Description: "macOS Force Quit",
		Modifiers:   []hotkey.Modifier{hotkey.ModCmd, hotkey.ModOption},
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
		return hotkey.ModOption, true
	case "cmd":
		return hotkey.ModCmd, true
	}
	return 0, false
}

func modifierLabel(mod hotkey.Modifier) string {
	switch mod {
	case hotkey.ModCtrl:
		return "⌃"
	case hotkey.ModShift:
		return "⇧"
	case hotkey.ModOption:
		return "⌥"
	case hotkey.ModCmd:
		return "⌘"
	}
	return ""
}
