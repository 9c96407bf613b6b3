package key

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModShift Modifier = 1 << (iota - 1)
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether every bit of mod is set in m.
func (m Modifier) Has(mod Modifier) bool {
	return mod != 0 && m&mod == mod
}

// prefixes lists modifiers in the order they are written in key names.
var prefixes = []struct {
	mod  Modifier
	text string
}{
	{ModCtrl, "C-"},
	{ModAlt, "A-"},
	{ModMeta, "M-"},
	{ModShift, "S-"},
}

// String returns the modifiers as a key name prefix, such as "C-A-".
func (m Modifier) String() string {
	var s string
	for _, p := range prefixes {
		if m.Has(p.mod) {
			s += p.text
		}
	}
	return s
}
