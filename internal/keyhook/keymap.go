package keyhook

// Key codes follow the Linux input-event numbering, which the evdev tap
// reports natively and other taps translate into.
const (
	keyMax = 128
)

// keymap is the constant-time key-code → character table covering the
// common unshifted/shifted alphanumeric and punctuation set (US layout).
// Index 0 is the unshifted character, index 1 the shifted one. A zero rune
// means no mapping; the caller then tries the fallback decoder.
var keymap [keyMax][2]rune

func init() {
	set := func(code uint16, plain, shifted rune) {
		keymap[code] = [2]rune{plain, shifted}
	}

	// Number row
	set(2, '1', '!')
	set(3, '2', '@')
	set(4, '3', '#')
	set(5, '4', '$')
	set(6, '5', '%')
	set(7, '6', '^')
	set(8, '7', '&')
	set(9, '8', '*')
	set(10, '9', '(')
	set(11, '0', ')')
	set(12, '-', '_')
	set(13, '=', '+')

	// Letter rows
	for i, r := range "qwertyuiop" {
		set(uint16(16+i), r, r-'a'+'A')
	}
	set(26, '[', '{')
	set(27, ']', '}')
	for i, r := range "asdfghjkl" {
		set(uint16(30+i), r, r-'a'+'A')
	}
	set(39, ';', ':')
	set(40, '\'', '"')
	set(41, '`', '~')
	for i, r := range "zxcvbnm" {
		set(uint16(44+i), r, r-'a'+'A')
	}
	set(43, '\\', '|')
	set(51, ',', '<')
	set(52, '.', '>')
	set(53, '/', '?')

	set(57, ' ', ' ')   // space
	set(28, '\n', '\n') // enter
	set(15, '\t', '\t') // tab
}

// lookup returns the character for a key-down event, or false when the
// table has no mapping. Constant time: one array index.
func lookup(code uint16, shift bool) (rune, bool) {
	if code >= keyMax {
		return 0, false
	}
	idx := 0
	if shift {
		idx = 1
	}
	r := keymap[code][idx]
	return r, r != 0
}
