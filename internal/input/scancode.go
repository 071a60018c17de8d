package input

// PC set 1 scan codes for the keys the compositor itself reacts to.
const (
	KeyEsc        byte = 0x01
	KeyBackspace  byte = 0x0E
	KeyTab        byte = 0x0F
	KeyEnter      byte = 0x1C
	KeyCtrl       byte = 0x1D
	KeyShift      byte = 0x2A
	KeyRightShift byte = 0x36
	KeyAlt        byte = 0x38
	KeySpace      byte = 0x39
	KeyF4         byte = 0x3E
	KeyUp         byte = 0x48
	KeyLeft       byte = 0x4B
	KeyRight      byte = 0x4D
	KeyDown       byte = 0x50
)

// US layout, unshifted, indexed by scan code.
var scanRunes = [0x3A]rune{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x0C: '-', 0x0D: '=', 0x0E: '\b', 0x0F: '\t',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1A: '[', 0x1B: ']', 0x1C: '\n',
	0x1E: 'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l', 0x27: ';',
	0x28: '\'', 0x29: '`', 0x2B: '\\',
	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm', 0x33: ',', 0x34: '.', 0x35: '/',
	0x39: ' ',
}

var shiftedRunes = map[rune]rune{
	'1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')',
	'-': '_', '=': '+', '[': '{', ']': '}', ';': ':',
	'\'': '"', '`': '~', '\\': '|', ',': '<', '.': '>', '/': '?',
}

var runeScans map[rune]scanEntry

type scanEntry struct {
	code  byte
	shift bool
}

func init() {
	runeScans = make(map[rune]scanEntry, 2*len(scanRunes))
	for code, r := range scanRunes {
		if r == 0 {
			continue
		}
		runeScans[r] = scanEntry{code: byte(code)}
		if s, ok := shiftedRunes[r]; ok {
			runeScans[s] = scanEntry{code: byte(code), shift: true}
		} else if r >= 'a' && r <= 'z' {
			runeScans[r-'a'+'A'] = scanEntry{code: byte(code), shift: true}
		}
	}
}

// RuneForScanCode returns the character a press of code produces, or 0.
// The release bit is ignored.
func RuneForScanCode(code byte, shift bool) rune {
	code &^= 0x80
	if int(code) >= len(scanRunes) {
		return 0
	}
	r := scanRunes[code]
	if !shift || r == 0 {
		return r
	}
	if s, ok := shiftedRunes[r]; ok {
		return s
	}
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// ScanCodeForRune returns the scan code typing r and whether Shift is needed.
func ScanCodeForRune(r rune) (code byte, shift bool, ok bool) {
	e, ok := runeScans[r]
	return e.code, e.shift, ok
}
