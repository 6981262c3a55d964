// Package pdfinspect reads back PDF files produced by the browser engine
// so tests and the CLI can verify page geometry and rendered text. It
// understands the subset of PDF that Chrome's print pipeline emits:
// classic and stream cross-reference tables, Flate-compressed streams
// with PNG/TIFF predictors, object streams, and ToUnicode CMaps.
package pdfinspect

import (
	"bytes"
	"strconv"
)

// ObjectType identifies the kind of a PDF object.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjFloat
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjRef
)

// Object holds any PDF object value.
type Object struct {
	Type   ObjectType
	Bool   bool
	Int    int64
	Float  float64
	Str    []byte
	Name   string
	Array  []*Object
	Dict   Dict
	Stream []byte // raw stream data
	Ref    Reference
}

// Reference is an indirect object reference (N G R).
type Reference struct {
	Number int
	Gen    int
}

// Dict is a PDF dictionary (name -> object).
type Dict map[string]*Object

// GetInt returns the integer value of a Dict entry.
func (d Dict) GetInt(key string) (int64, bool) {
	obj, ok := d[key]
	if !ok {
		return 0, false
	}
	switch obj.Type {
	case ObjInt:
		return obj.Int, true
	case ObjFloat:
		return int64(obj.Float), true
	}
	return 0, false
}

// GetName returns the name value of a Dict entry.
func (d Dict) GetName(key string) (string, bool) {
	obj, ok := d[key]
	if !ok {
		return "", false
	}
	switch obj.Type {
	case ObjName:
		return obj.Name, true
	case ObjString:
		return string(obj.Str), true
	}
	return "", false
}

// GetArray returns the array value of a Dict entry. A single object is
// treated as a one-element array, as the PDF spec allows in most places.
func (d Dict) GetArray(key string) ([]*Object, bool) {
	obj, ok := d[key]
	if !ok {
		return nil, false
	}
	if obj.Type == ObjArray {
		return obj.Array, true
	}
	return []*Object{obj}, true
}

// GetDict returns the dict value of a Dict entry.
func (d Dict) GetDict(key string) (Dict, bool) {
	obj, ok := d[key]
	if !ok {
		return nil, false
	}
	if obj.Type == ObjDict || obj.Type == ObjStream {
		return obj.Dict, true
	}
	return nil, false
}

func floatValue(obj *Object) float64 {
	if obj == nil {
		return 0
	}
	switch obj.Type {
	case ObjFloat:
		return obj.Float
	case ObjInt:
		return float64(obj.Int)
	}
	return 0
}

const maxNesting = 100

// parser is a recursive-descent PDF object parser over a byte slice.
type parser struct {
	data  []byte
	pos   int
	depth int
}

func newParser(data []byte, pos int) *parser {
	return &parser{data: data, pos: pos}
}

// skipSpace skips PDF whitespace and comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		} else if isSpace(c) {
			p.pos++
		} else {
			break
		}
	}
}

// match advances past s if the upcoming bytes equal it.
func (p *parser) match(s string) bool {
	end := p.pos + len(s)
	if end > len(p.data) || string(p.data[p.pos:end]) != s {
		return false
	}
	p.pos = end
	return true
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

// parseObject parses one PDF object at the current position.
func (p *parser) parseObject() (*Object, error) {
	if p.depth > maxNesting {
		return nil, errNestingTooDeep
	}
	p.depth++
	defer func() { p.depth-- }()

	p.skipSpace()
	if p.pos >= len(p.data) {
		return &Object{Type: ObjNull}, nil
	}

	c := p.data[p.pos]
	switch {
	case c == 'n' && p.match("null"):
		return &Object{Type: ObjNull}, nil
	case c == 't' && p.match("true"):
		return &Object{Type: ObjBool, Bool: true}, nil
	case c == 'f' && p.match("false"):
		return &Object{Type: ObjBool, Bool: false}, nil
	case c == '(':
		return p.parseLiteralString(), nil
	case c == '<' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '<':
		return p.parseDict()
	case c == '<':
		return p.parseHexString(), nil
	case c == '/':
		return p.parseName(), nil
	case c == '[':
		return p.parseArray()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumberOrRef(), nil
	default:
		// Unknown token: skip a byte and report null.
		p.pos++
		return &Object{Type: ObjNull}, nil
	}
}

// parseLiteralString parses a (...) string with escapes and nesting.
func (p *parser) parseLiteralString() *Object {
	p.pos++ // consume '('
	var buf bytes.Buffer
	depth := 1
	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]
		switch {
		case c == '\\':
			p.pos++
			if p.pos >= len(p.data) {
				break
			}
			esc := p.data[p.pos]
			p.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\r':
				// Line continuation; swallow a following LF.
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
				// Line continuation.
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for i := 0; i < 2 && p.pos < len(p.data); i++ {
						d := p.data[p.pos]
						if d < '0' || d > '7' {
							break
						}
						oct = oct*8 + int(d-'0')
						p.pos++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		case c == '(':
			depth++
			buf.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				buf.WriteByte(c)
			}
			p.pos++
		default:
			buf.WriteByte(c)
			p.pos++
		}
	}
	return &Object{Type: ObjString, Str: buf.Bytes()}
}

// parseHexString parses a <...> hex string.
func (p *parser) parseHexString() *Object {
	p.pos++ // consume '<'
	var buf bytes.Buffer
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		p.skipSpace()
		if p.pos >= len(p.data) || p.data[p.pos] == '>' {
			break
		}
		hi := hexVal(p.data[p.pos])
		p.pos++
		var lo byte
		if p.pos < len(p.data) && p.data[p.pos] != '>' {
			lo = hexVal(p.data[p.pos])
			p.pos++
		}
		buf.WriteByte(hi<<4 | lo)
	}
	if p.pos < len(p.data) {
		p.pos++ // consume '>'
	}
	return &Object{Type: ObjString, Str: buf.Bytes()}
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

// parseName parses a /Name token, decoding #XX escapes.
func (p *parser) parseName() *Object {
	p.pos++ // consume '/'
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isSpace(c) || isDelim(c) {
			break
		}
		p.pos++
	}
	name := string(p.data[start:p.pos])
	if bytes.IndexByte([]byte(name), '#') >= 0 {
		var buf bytes.Buffer
		for i := 0; i < len(name); {
			if name[i] == '#' && i+2 < len(name) {
				buf.WriteByte(hexVal(name[i+1])<<4 | hexVal(name[i+2]))
				i += 3
			} else {
				buf.WriteByte(name[i])
				i++
			}
		}
		name = buf.String()
	}
	return &Object{Type: ObjName, Name: name}
}

// parseArray parses [...].
func (p *parser) parseArray() (*Object, error) {
	p.pos++ // consume '['
	var arr []*Object
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			break
		}
		if p.data[p.pos] == ']' {
			p.pos++
			break
		}
		obj, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
	return &Object{Type: ObjArray, Array: arr}, nil
}

// parseDict parses <<...>> and, when followed by a stream keyword, the
// stream body as well.
func (p *parser) parseDict() (*Object, error) {
	p.pos += 2 // consume '<<'
	d := make(Dict)
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			break
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			break
		}
		if p.data[p.pos] != '/' {
			// Key must be a name; skip malformed bytes.
			p.pos++
			continue
		}
		key := p.parseName()
		val, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		d[key.Name] = val
	}

	p.skipSpace()
	if !p.match("stream") {
		return &Object{Type: ObjDict, Dict: d}, nil
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\r' {
		p.pos++
	}
	if p.pos < len(p.data) && p.data[p.pos] == '\n' {
		p.pos++
	}

	start := p.pos
	length := -1
	if lenObj, ok := d["Length"]; ok && lenObj.Type == ObjInt {
		length = int(lenObj.Int)
	}

	var stream []byte
	if length >= 0 && start+length <= len(p.data) {
		stream = p.data[start : start+length]
		p.pos = start + length
	} else {
		// No usable /Length (it may be an unresolved indirect reference);
		// fall back to scanning for endstream.
		end := bytes.Index(p.data[start:], []byte("endstream"))
		if end < 0 {
			end = len(p.data) - start
		}
		stream = p.data[start : start+end]
		p.pos = start + end
	}

	p.skipSpace()
	p.match("endstream")
	return &Object{Type: ObjStream, Dict: d, Stream: stream}, nil
}

// parseNumberOrRef parses a number, or an indirect reference (N G R).
func (p *parser) parseNumberOrRef() *Object {
	numStr := p.readToken()
	n, errN := strconv.ParseInt(numStr, 10, 64)

	if errN == nil {
		afterN := p.pos
		p.skipSpace()
		genStr := p.readToken()
		if g, err := strconv.ParseInt(genStr, 10, 64); err == nil {
			p.skipSpace()
			if p.pos < len(p.data) && p.data[p.pos] == 'R' {
				next := p.pos + 1
				if next >= len(p.data) || isSpace(p.data[next]) || isDelim(p.data[next]) {
					p.pos++
					return &Object{Type: ObjRef, Ref: Reference{Number: int(n), Gen: int(g)}}
				}
			}
		}
		p.pos = afterN
		return &Object{Type: ObjInt, Int: n}
	}

	if f, err := strconv.ParseFloat(numStr, 64); err == nil {
		return &Object{Type: ObjFloat, Float: f}
	}
	return &Object{Type: ObjNull}
}

// readToken reads a run of non-whitespace, non-delimiter bytes.
func (p *parser) readToken() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isSpace(c) || isDelim(c) {
			break
		}
		p.pos++
	}
	return string(p.data[start:p.pos])
}
