package pdfinspect

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// fontDecoder converts PDF glyph codes to Unicode text. ToUnicode CMaps
// take priority; simple fonts without one fall back to WinAnsi, which is
// what the browser engine emits for unembedded text.
type fontDecoder struct {
	// single maps one-byte glyph codes to runes (simple fonts).
	single [256]rune
	// multi holds ToUnicode entries for multi-byte CID fonts.
	multi    map[uint32]string
	isSimple bool
}

// newFontDecoder builds a decoder from a resolved PDF font object.
func newFontDecoder(fontObj *Object) *fontDecoder {
	d := &fontDecoder{
		isSimple: true,
		multi:    make(map[uint32]string),
	}
	for i := 0; i < 256; i++ {
		d.single[i] = rune(i)
	}
	for i, r := range winAnsiUpper128 {
		if r != 0 {
			d.single[128+i] = r
		}
	}

	if fontObj == nil || (fontObj.Type != ObjDict && fontObj.Type != ObjStream) {
		return d
	}
	if subtype, _ := fontObj.Dict.GetName("Subtype"); subtype == "Type0" {
		d.isSimple = false
	}
	if toUni, ok := fontObj.Dict["ToUnicode"]; ok && toUni.Type == ObjStream {
		d.parseToUnicodeCMap(toUni.Stream)
	}
	return d
}

// parseToUnicodeCMap reads beginbfchar/beginbfrange sections of a CMap.
func (d *fontDecoder) parseToUnicodeCMap(data []byte) {
	inChar := false
	inRange := false
	for _, rawLine := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(rawLine))
		switch {
		case strings.HasSuffix(line, "beginbfchar"):
			inChar = true
		case line == "endbfchar":
			inChar = false
		case strings.HasSuffix(line, "beginbfrange"):
			inRange = true
		case line == "endbfrange":
			inRange = false
		case inChar:
			d.addBFChar(line)
		case inRange:
			d.addBFRange(line)
		}
	}
}

// addBFChar handles one "<src> <dst>" mapping line.
func (d *fontDecoder) addBFChar(line string) {
	tokens := cmapTokens(line)
	if len(tokens) < 2 {
		return
	}
	src := hexCode(tokens[0])
	dst := hexUTF16(tokens[1])
	d.set(src, dst)
}

// addBFRange handles "<low> <high> <dstStart>" and the array form
// "<low> <high> [<dst1> <dst2> ...]".
func (d *fontDecoder) addBFRange(line string) {
	tokens := cmapTokens(line)
	if len(tokens) < 3 {
		return
	}
	low := hexCode(tokens[0])
	high := hexCode(tokens[1])
	if high < low || high-low > 0xFFFF {
		return
	}

	if strings.HasPrefix(tokens[2], "[") {
		joined := strings.Join(tokens[2:], " ")
		joined = strings.TrimPrefix(joined, "[")
		joined = strings.TrimSuffix(joined, "]")
		arr := cmapTokens(joined)
		for i, code := 0, low; code <= high && i < len(arr); code, i = code+1, i+1 {
			d.set(code, hexUTF16(arr[i]))
		}
		return
	}

	start := []rune(hexUTF16(tokens[2]))
	if len(start) == 0 {
		return
	}
	for code := low; code <= high; code++ {
		d.set(code, string(start[0]+rune(code-low)))
	}
}

func (d *fontDecoder) set(code uint32, s string) {
	if s == "" {
		return
	}
	if d.isSimple && code < 256 {
		d.single[code] = []rune(s)[0]
	} else {
		d.multi[code] = s
	}
}

// Decode converts a PDF text string's bytes to UTF-8.
func (d *fontDecoder) Decode(data []byte) string {
	var sb strings.Builder
	if d.isSimple {
		for _, b := range data {
			r := d.single[b]
			if r == 0 {
				r = rune(b)
			}
			if r > 0 && utf8.ValidRune(r) {
				sb.WriteRune(r)
			}
		}
		return sb.String()
	}

	// CID font: prefer 2-byte codes, fall back to single bytes.
	for i := 0; i < len(data); {
		if i+1 < len(data) {
			code := uint32(data[i])<<8 | uint32(data[i+1])
			if s, ok := d.multi[code]; ok {
				sb.WriteString(s)
				i += 2
				continue
			}
		}
		if s, ok := d.multi[uint32(data[i])]; ok {
			sb.WriteString(s)
		} else if r := d.single[data[i]]; r > 0 && utf8.ValidRune(r) {
			sb.WriteRune(r)
		}
		i++
	}
	return sb.String()
}

// cmapTokens splits a CMap line into <hex>, [...], and bare tokens.
func cmapTokens(line string) []string {
	var tokens []string
	i := 0
	for i < len(line) {
		switch {
		case line[i] == ' ' || line[i] == '\t' || line[i] == '\r':
			i++
		case line[i] == '<':
			j := strings.Index(line[i+1:], ">")
			if j < 0 {
				return tokens
			}
			tokens = append(tokens, line[i:i+j+2])
			i += j + 2
		case line[i] == '[':
			j := strings.Index(line[i:], "]")
			if j < 0 {
				tokens = append(tokens, line[i:])
				return tokens
			}
			tokens = append(tokens, line[i:i+j+1])
			i += j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			tokens = append(tokens, line[i:j])
			i = j
		}
	}
	return tokens
}

// hexCode parses a <HHHH> token as an integer code.
func hexCode(s string) uint32 {
	s = strings.Trim(s, "<> \t")
	var v uint32
	for _, c := range s {
		v = v<<4 | uint32(hexVal(byte(c)))
	}
	return v
}

// hexUTF16 parses a <HHHH...> token as UTF-16BE text and returns UTF-8.
func hexUTF16(s string) string {
	s = strings.Trim(s, "<> \t")
	if s == "" {
		return ""
	}
	if len(s)%4 != 0 && len(s)%2 == 0 {
		// Odd group count: treat as a single byte value.
		var b byte
		for _, c := range s {
			b = b<<4 | hexVal(byte(c))
		}
		return string(rune(b))
	}

	var units []uint16
	for i := 0; i+3 < len(s); i += 4 {
		unit := uint16(hexVal(s[i]))<<12 |
			uint16(hexVal(s[i+1]))<<8 |
			uint16(hexVal(s[i+2]))<<4 |
			uint16(hexVal(s[i+3]))
		units = append(units, unit)
	}

	var sb strings.Builder
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			low := units[i+1]
			if low >= 0xDC00 && low <= 0xDFFF {
				sb.WriteRune(0x10000 + rune(u-0xD800)<<10 + rune(low-0xDC00))
				i++
				continue
			}
		}
		sb.WriteRune(rune(u))
	}
	return sb.String()
}

// winAnsiUpper128 is the Windows-1252 upper half (codes 128-255).
var winAnsiUpper128 = [128]rune{
	0x20AC, 0, 0x201A, 0x0192, 0x201E, 0x2026, 0x2020, 0x2021,
	0x02C6, 0x2030, 0x0160, 0x2039, 0x0152, 0, 0x017D, 0,
	0, 0x2018, 0x2019, 0x201C, 0x201D, 0x2022, 0x2013, 0x2014,
	0x02DC, 0x2122, 0x0161, 0x203A, 0x0153, 0, 0x017E, 0x0178,
	0x00A0, 0x00A1, 0x00A2, 0x00A3, 0x00A4, 0x00A5, 0x00A6, 0x00A7,
	0x00A8, 0x00A9, 0x00AA, 0x00AB, 0x00AC, 0x00AD, 0x00AE, 0x00AF,
	0x00B0, 0x00B1, 0x00B2, 0x00B3, 0x00B4, 0x00B5, 0x00B6, 0x00B7,
	0x00B8, 0x00B9, 0x00BA, 0x00BB, 0x00BC, 0x00BD, 0x00BE, 0x00BF,
	0x00C0, 0x00C1, 0x00C2, 0x00C3, 0x00C4, 0x00C5, 0x00C6, 0x00C7,
	0x00C8, 0x00C9, 0x00CA, 0x00CB, 0x00CC, 0x00CD, 0x00CE, 0x00CF,
	0x00D0, 0x00D1, 0x00D2, 0x00D3, 0x00D4, 0x00D5, 0x00D6, 0x00D7,
	0x00D8, 0x00D9, 0x00DA, 0x00DB, 0x00DC, 0x00DD, 0x00DE, 0x00DF,
	0x00E0, 0x00E1, 0x00E2, 0x00E3, 0x00E4, 0x00E5, 0x00E6, 0x00E7,
	0x00E8, 0x00E9, 0x00EA, 0x00EB, 0x00EC, 0x00ED, 0x00EE, 0x00EF,
	0x00F0, 0x00F1, 0x00F2, 0x00F3, 0x00F4, 0x00F5, 0x00F6, 0x00F7,
	0x00F8, 0x00F9, 0x00FA, 0x00FB, 0x00FC, 0x00FD, 0x00FE, 0x00FF,
}
