package action

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a virtual-key code resolved from a configured key name.
type Key struct {
	Name string
	Code uint16
}

func (k Key) String() string { return k.Name }

// Valid reports whether k was resolved from the key table.
func (k Key) Valid() bool { return k.Code != 0 }

// UnknownKeyError is returned for names missing from the key table.
type UnknownKeyError struct{ Name string }

func (e *UnknownKeyError) Error() string { return fmt.Sprintf("unknown key name %q", e.Name) }

// keyTable maps normalized names to Windows virtual-key codes. It is built once at
// package init and never mutated.
var (
	keyTable = buildKeyTable()
	keyNames = invert(keyTable)
)

func invert(t map[string]uint16) map[uint16]string {
	out := make(map[uint16]string, len(t))
	for name, code := range t {
		out[code] = name
	}
	return out
}

func buildKeyTable() map[string]uint16 {
	t := map[string]uint16{
		"backspace":    0x08,
		"tab":          0x09,
		"enter":        0x0D,
		"shift":        0x10,
		"ctrl":         0x11,
		"alt":          0x12,
		"pause":        0x13,
		"caps_lock":    0x14,
		"esc":          0x1B,
		"space":        0x20,
		"page_up":      0x21,
		"page_down":    0x22,
		"end":          0x23,
		"home":         0x24,
		"left":         0x25,
		"up":           0x26,
		"right":        0x27,
		"down":         0x28,
		"print_screen": 0x2C,
		"insert":       0x2D,
		"delete":       0x2E,
		"num_lock":     0x90,
		"scroll_lock":  0x91,
	}
	// F1=0x70 .. F24=0x87
	for n := 1; n <= 24; n++ {
		t["f"+strconv.Itoa(n)] = uint16(0x6F + n)
	}
	for c := 'a'; c <= 'z'; c++ {
		t[string(c)] = uint16(c - 'a' + 'A')
	}
	for c := '0'; c <= '9'; c++ {
		t[string(c)] = uint16(c)
	}
	return t
}

var keyAliases = map[string]string{
	"escape":     "esc",
	"return":     "enter",
	"control":    "ctrl",
	"pageup":     "page_up",
	"pagedown":   "page_down",
	"capslock":   "caps_lock",
	"numlock":    "num_lock",
	"del":        "delete",
	"ins":        "insert",
	"printscr":   "print_screen",
	"scrolllock": "scroll_lock",
}

func normalizeKeyName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	if alias, ok := keyAliases[n]; ok {
		return alias
	}
	return n
}

// ParseKey resolves a key name such as "F8", "f20", "space" or "a".
func ParseKey(name string) (Key, error) {
	n := normalizeKeyName(name)
	code, ok := keyTable[n]
	if !ok {
		return Key{}, &UnknownKeyError{Name: name}
	}
	return Key{Name: n, Code: code}, nil
}

// MustParseKey is ParseKey for names known to be valid; it panics otherwise.
func MustParseKey(name string) Key {
	k, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

// KeyByCode returns the key whose code is vk, if any.
func KeyByCode(vk uint16) (Key, bool) {
	name, ok := keyNames[vk]
	if !ok {
		return Key{}, false
	}
	return Key{Name: name, Code: vk}, true
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "unknown"
	}
}

// ParseButton resolves "left", "right" or "middle".
func ParseButton(name string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "":
		return ButtonLeft, nil
	case "right":
		return ButtonRight, nil
	case "middle":
		return ButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// Resolver validates names against the key table. It satisfies config.KeyResolver.
type Resolver struct{}

func (Resolver) ResolveKey(name string) error {
	_, err := ParseKey(name)
	return err
}

func (Resolver) ResolveButton(name string) error {
	_, err := ParseButton(name)
	return err
}
