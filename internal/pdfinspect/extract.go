package pdfinspect

import (
	"fmt"
	"sort"
	"strings"
)

// textSpan is one positioned run of decoded text.
type textSpan struct {
	text string
	x, y float64
}

// textState tracks the subset of graphics state the extractor needs.
type textState struct {
	font       *fontDecoder
	x, y       float64
	lineX      float64
	lineY      float64
	leading    float64
	inTextObj  bool
	defaultDec *fontDecoder
}

// PageText extracts the visible text of the page at index (0-based).
// Runs are grouped into lines by their vertical position.
func (doc *Document) PageText(index int) (string, error) {
	pages, err := doc.pageDicts()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(pages) {
		return "", fmt.Errorf("pdfinspect: page %d out of range (0-%d)", index, len(pages)-1)
	}

	content := doc.contentStreams(pages[index])
	if len(content) == 0 {
		return "", nil
	}

	fonts := make(map[string]*fontDecoder)
	for name, obj := range doc.pageFonts(pages[index]) {
		fonts[name] = newFontDecoder(obj)
	}
	spans := extractSpans(content, fonts)
	return spansToText(spans), nil
}

// Text extracts the text of every page, separated by form feeds.
func (doc *Document) Text() (string, error) {
	count, err := doc.PageCount()
	if err != nil {
		return "", err
	}
	var parts []string
	for i := 0; i < count; i++ {
		text, err := doc.PageText(i)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\f"), nil
}

// extractSpans runs the text-positioning operators of a content stream.
func extractSpans(content []byte, fonts map[string]*fontDecoder) []textSpan {
	var spans []textSpan
	st := textState{defaultDec: newFontDecoder(nil)}
	st.font = st.defaultDec

	p := newParser(content, 0)
	var stack []*Object

	popFloats := func(n int) []float64 {
		vals := make([]float64, n)
		for i := n - 1; i >= 0; i-- {
			if len(stack) == 0 {
				break
			}
			vals[i] = floatValue(stack[len(stack)-1])
			stack = stack[:len(stack)-1]
		}
		return vals
	}
	emit := func(data []byte) {
		if !st.inTextObj || len(data) == 0 {
			return
		}
		text := st.font.Decode(data)
		if text != "" {
			spans = append(spans, textSpan{text: text, x: st.x, y: st.y})
		}
	}

	for {
		p.skipSpace()
		if p.pos >= len(content) {
			break
		}

		c := content[p.pos]
		if c == '(' || c == '<' || c == '[' || c == '/' ||
			(c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' {
			obj, err := p.parseObject()
			if err != nil {
				break
			}
			stack = append(stack, obj)
			continue
		}

		op := p.readOperator()
		if op == "" {
			p.pos++
			continue
		}

		switch op {
		case "BT":
			st.inTextObj = true
			st.x, st.y, st.lineX, st.lineY = 0, 0, 0, 0
		case "ET":
			st.inTextObj = false
		case "Tf":
			if len(stack) >= 2 {
				nameObj := stack[len(stack)-2]
				if nameObj.Type == ObjName {
					if dec, ok := fonts[nameObj.Name]; ok {
						st.font = dec
					} else {
						st.font = st.defaultDec
					}
				}
			}
		case "TL":
			v := popFloats(1)
			st.leading = v[0]
			stack = nil
		case "Td":
			v := popFloats(2)
			st.lineX += v[0]
			st.lineY += v[1]
			st.x, st.y = st.lineX, st.lineY
		case "TD":
			v := popFloats(2)
			st.leading = -v[1]
			st.lineX += v[0]
			st.lineY += v[1]
			st.x, st.y = st.lineX, st.lineY
		case "Tm":
			v := popFloats(6)
			st.lineX, st.lineY = v[4], v[5]
			st.x, st.y = st.lineX, st.lineY
		case "T*":
			st.lineY -= st.leading
			st.x, st.y = st.lineX, st.lineY
		case "Tj":
			if len(stack) >= 1 {
				emit(stack[len(stack)-1].Str)
			}
		case "'":
			st.lineY -= st.leading
			st.x, st.y = st.lineX, st.lineY
			if len(stack) >= 1 {
				emit(stack[len(stack)-1].Str)
			}
		case "\"":
			st.lineY -= st.leading
			st.x, st.y = st.lineX, st.lineY
			if len(stack) >= 1 {
				emit(stack[len(stack)-1].Str)
			}
		case "TJ":
			if len(stack) >= 1 {
				arr := stack[len(stack)-1]
				if arr.Type == ObjArray {
					for _, el := range arr.Array {
						if el.Type == ObjString {
							emit(el.Str)
						}
					}
				}
			}
		}
		stack = nil
	}
	return spans
}

// readOperator consumes a content-stream operator token (letters plus the
// quote and star forms).
func (p *parser) readOperator() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			c == '*' || c == '\'' || c == '"' {
			p.pos++
			continue
		}
		break
	}
	return string(p.data[start:p.pos])
}

// spansToText groups spans into lines by Y coordinate (top to bottom)
// and orders runs within a line by X.
func spansToText(spans []textSpan) string {
	if len(spans) == 0 {
		return ""
	}

	const lineTolerance = 2.0
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].y != spans[j].y {
			return spans[i].y > spans[j].y
		}
		return spans[i].x < spans[j].x
	})

	var sb strings.Builder
	lineY := spans[0].y
	for i, span := range spans {
		if i > 0 && lineY-span.y > lineTolerance {
			sb.WriteByte('\n')
			lineY = span.y
		}
		sb.WriteString(strings.TrimRight(span.text, "\x00"))
	}
	return sb.String()
}
