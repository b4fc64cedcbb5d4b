package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

// Key codes are not alphabetical on every platform, so names are tabled
var keyNames = []struct {
	name string
	key  hotkey.Key
}{
	{"Space", hotkey.KeySpace},
	{"Return", hotkey.KeyReturn},
	{"Esc", hotkey.KeyEscape},
	{"Tab", hotkey.KeyTab},
	{"Delete", hotkey.KeyDelete},
	{"A", hotkey.KeyA}, {"B", hotkey.KeyB}, {"C", hotkey.KeyC}, {"D", hotkey.KeyD},
	{"E", hotkey.KeyE}, {"F", hotkey.KeyF}, {"G", hotkey.KeyG}, {"H", hotkey.KeyH},
	{"I", hotkey.KeyI}, {"J", hotkey.KeyJ}, {"K", hotkey.KeyK}, {"L", hotkey.KeyL},
	{"M", hotkey.KeyM}, {"N", hotkey.KeyN}, {"O", hotkey.KeyO}, {"P", hotkey.KeyP},
	{"Q", hotkey.KeyQ}, {"R", hotkey.KeyR}, {"S", hotkey.KeyS}, {"T", hotkey.KeyT},
	{"U", hotkey.KeyU}, {"V", hotkey.KeyV}, {"W", hotkey.KeyW}, {"X", hotkey.KeyX},
	{"Y", hotkey.KeyY}, {"Z", hotkey.KeyZ},
	{"0", hotkey.Key0}, {"1", hotkey.Key1}, {"2", hotkey.Key2}, {"3", hotkey.Key3},
	{"4", hotkey.Key4}, {"5", hotkey.Key5}, {"6", hotkey.Key6}, {"7", hotkey.Key7},
	{"8", hotkey.Key8}, {"9", hotkey.Key9},
}

// ParseKey converts a config key name such as "Space" or "r" to a key
func ParseKey(name string) (hotkey.Key, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "escape") {
		name = "Esc"
	}
	for _, k := range keyNames {
		if strings.EqualFold(k.name, name) {
			return k.key, nil
		}
	}
	return 0, fmt.Errorf("unsupported hotkey key: %q", name)
}

// keyToString converts a hotkey.Key to a display string
func keyToString(key hotkey.Key) string {
	for _, k := range keyNames {
		if k.key == key {
			return k.name
		}
	}
	return "Unknown"
}
