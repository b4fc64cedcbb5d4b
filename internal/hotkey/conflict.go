package hotkey

import "golang.design/x/hotkey"

// ConflictInfo is a shortcut the global hotkey would shadow
type ConflictInfo struct {
	Name        string
	Description string
	Modifiers   []hotkey.Modifier
	Key         hotkey.Key
}

// composerShortcuts are the terminal composer's own bindings. A global
// hotkey on one of them would swallow the key before the terminal sees it.
var composerShortcuts = []ConflictInfo{
	{
		Name:        "Composer Quit",
		Description: "Quits the terminal composer",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyC,
	},
	{
		Name:        "Composer Paste",
		Description: "Pastes clipboard text into the draft",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyV,
	},
	{
		Name:        "Composer Attach",
		Description: "Adds an attachment to the draft",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyT,
	},
}

// CheckConflicts reports the system and composer shortcuts that use the
// same chord
func CheckConflicts(modifiers []hotkey.Modifier, key hotkey.Key) []ConflictInfo {
	var conflicts []ConflictInfo
	for _, table := range [][]ConflictInfo{knownConflicts, composerShortcuts} {
		for _, known := range table {
			if sameChord(modifiers, key, known.Modifiers, known.Key) {
				conflicts = append(conflicts, known)
			}
		}
	}
	return conflicts
}

// Conflicts reports the shortcuts c would shadow
func (c Config) Conflicts() []ConflictInfo {
	return CheckConflicts(c.Modifiers, c.Key)
}

// String renders c as it is shown in menus, e.g. "⌃⌥Space"
func (c Config) String() string {
	return FormatHotkey(c.Modifiers, c.Key)
}

// sameChord compares modifier sets, ignoring order and repeats
func sameChord(mods1 []hotkey.Modifier, key1 hotkey.Key, mods2 []hotkey.Modifier, key2 hotkey.Key) bool {
	if key1 != key2 {
		return false
	}

	a, b := modifierSet(mods1), modifierSet(mods2)
	if len(a) != len(b) {
		return false
	}
	for mod := range a {
		if !b[mod] {
			return false
		}
	}
	return true
}

func modifierSet(mods []hotkey.Modifier) map[hotkey.Modifier]bool {
	set := make(map[hotkey.Modifier]bool, len(mods))
	for _, mod := range mods {
		set[mod] = true
	}
	return set
}

// FormatHotkey returns a human-readable string representation of the hotkey
func FormatHotkey(modifiers []hotkey.Modifier, key hotkey.Key) string {
	result := ""
	for _, mod := range modifiers {
		result += modifierLabel(mod)
	}
	return result + keyToString(key)
}
