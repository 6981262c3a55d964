package pdfinspect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	errNotPDF         = errors.New("pdfinspect: not a PDF file")
	errNestingTooDeep = errors.New("pdfinspect: object nesting too deep")
)

// xrefEntry describes one entry in the cross-reference table.
type xrefEntry struct {
	offset     int64
	inUse      bool
	compressed bool // stored inside an object stream (PDF 1.5+)
	streamObj  int
	streamIdx  int
}

// Document is a loaded PDF file.
type Document struct {
	data    []byte
	xref    map[int]xrefEntry
	trailer Dict
	cache   map[int]*Object // resolved indirect objects
	pages   []Dict          // leaf page dicts, lazily collected
}

// Open reads and parses a PDF file from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pdfinspect: reading file: %w", err)
	}
	return Load(data)
}

// Load parses a PDF from raw bytes.
func Load(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, errNotPDF
	}
	doc := &Document{
		data:  data,
		xref:  make(map[int]xrefEntry),
		cache: make(map[int]*Object),
	}
	if err := doc.loadXRef(); err != nil {
		return nil, fmt.Errorf("pdfinspect: loading xref: %w", err)
	}
	return doc, nil
}

// Version returns the PDF version string from the header (e.g. "1.4").
func (doc *Document) Version() string {
	limit := len(doc.data)
	if limit > 20 {
		limit = 20
	}
	end := bytes.IndexAny(doc.data[5:limit], "\r\n ")
	if end < 0 {
		return "?"
	}
	return string(doc.data[5 : 5+end])
}

// PageCount returns the number of pages.
func (doc *Document) PageCount() (int, error) {
	pages, err := doc.pageDicts()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// PageInfo holds the geometry of a single page. Width and Height are in
// points (1/72 inch).
type PageInfo struct {
	Width    float64
	Height   float64
	Rotation int
}

// Page returns geometry for the page at index (0-based).
func (doc *Document) Page(index int) (PageInfo, error) {
	pages, err := doc.pageDicts()
	if err != nil {
		return PageInfo{}, err
	}
	if index < 0 || index >= len(pages) {
		return PageInfo{}, fmt.Errorf("pdfinspect: page %d out of range (0-%d)", index, len(pages)-1)
	}

	var info PageInfo
	if mbObj, ok := pages[index]["MediaBox"]; ok {
		if mb := doc.resolve(mbObj); mb.Type == ObjArray && len(mb.Array) >= 4 {
			x0 := floatValue(mb.Array[0])
			y0 := floatValue(mb.Array[1])
			x1 := floatValue(mb.Array[2])
			y1 := floatValue(mb.Array[3])
			info.Width = x1 - x0
			info.Height = y1 - y0
		}
	}
	if rotObj, ok := pages[index]["Rotate"]; ok {
		if rot := doc.resolve(rotObj); rot.Type == ObjInt {
			info.Rotation = int(rot.Int)
		}
	}
	return info, nil
}

// --- Cross-reference loading ---

func (doc *Document) loadXRef() error {
	// Scan the tail for startxref.
	searchFrom := len(doc.data) - 1024
	if searchFrom < 0 {
		searchFrom = 0
	}
	idx := bytes.LastIndex(doc.data[searchFrom:], []byte("startxref"))
	if idx < 0 {
		return errors.New("startxref not found")
	}
	pos := searchFrom + idx + len("startxref")
	for pos < len(doc.data) && isSpace(doc.data[pos]) {
		pos++
	}
	end := pos
	for end < len(doc.data) && doc.data[end] >= '0' && doc.data[end] <= '9' {
		end++
	}
	offset, err := strconv.ParseInt(string(doc.data[pos:end]), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing startxref: %w", err)
	}
	return doc.loadXRefAt(offset)
}

// loadXRefAt loads the xref section (classic table or stream) at offset,
// following /Prev chains for incrementally updated files.
func (doc *Document) loadXRefAt(offset int64) error {
	if offset < 0 || int(offset) >= len(doc.data) {
		return fmt.Errorf("xref offset out of bounds: %d", offset)
	}

	p := newParser(doc.data, int(offset))
	p.skipSpace()
	if p.match("xref") {
		return doc.loadXRefTable(p)
	}
	return doc.loadXRefStream(p)
}

// loadXRefTable parses the classic "xref" subsections plus the trailer.
func (doc *Document) loadXRefTable(p *parser) error {
	for {
		p.skipSpace()
		if p.pos >= len(doc.data) {
			break
		}
		if p.match("trailer") {
			break
		}
		first, err1 := strconv.Atoi(p.readToken())
		p.skipSpace()
		count, err2 := strconv.Atoi(p.readToken())
		if err1 != nil || err2 != nil {
			break
		}
		p.skipSpace()
		// Each entry is exactly 20 bytes: "nnnnnnnnnn ggggg n\r\n".
		for i := 0; i < count; i++ {
			if p.pos+20 > len(doc.data) {
				break
			}
			entry := string(doc.data[p.pos : p.pos+20])
			p.pos += 20
			off, _ := strconv.ParseInt(strings.TrimSpace(entry[:10]), 10, 64)
			id := first + i
			if _, exists := doc.xref[id]; !exists {
				doc.xref[id] = xrefEntry{offset: off, inUse: entry[17] == 'n'}
			}
		}
	}

	p.skipSpace()
	trailerObj, err := p.parseObject()
	if err != nil {
		return fmt.Errorf("parsing trailer: %w", err)
	}
	if doc.trailer == nil && trailerObj.Type == ObjDict {
		doc.trailer = trailerObj.Dict
	}
	if prev, ok := trailerObj.Dict.GetInt("Prev"); ok && prev > 0 {
		return doc.loadXRefAt(prev)
	}
	return nil
}

// loadXRefStream parses a cross-reference stream object (PDF 1.5+).
func (doc *Document) loadXRefStream(p *parser) error {
	p.readToken() // object number
	p.skipSpace()
	p.readToken() // generation
	p.skipSpace()
	p.match("obj")
	p.skipSpace()

	obj, err := p.parseObject()
	if err != nil {
		return fmt.Errorf("parsing xref stream: %w", err)
	}
	if obj.Type != ObjStream {
		return errors.New("xref at offset is not a stream")
	}
	if doc.trailer == nil {
		doc.trailer = obj.Dict
	}

	data, err := decodeStream(obj.Dict, obj.Stream)
	if err != nil {
		return fmt.Errorf("decoding xref stream: %w", err)
	}

	w, _ := obj.Dict.GetArray("W")
	if len(w) < 3 {
		return errors.New("xref stream missing /W")
	}
	w1, w2, w3 := int(w[0].Int), int(w[1].Int), int(w[2].Int)
	entrySize := w1 + w2 + w3
	if entrySize == 0 {
		return errors.New("xref stream zero entry size")
	}

	size, _ := obj.Dict.GetInt("Size")
	var subsections [][2]int
	if indexArr, ok := obj.Dict.GetArray("Index"); ok {
		for i := 0; i+1 < len(indexArr); i += 2 {
			subsections = append(subsections, [2]int{int(indexArr[i].Int), int(indexArr[i+1].Int)})
		}
	} else {
		subsections = [][2]int{{0, int(size)}}
	}

	offset := 0
	for _, sub := range subsections {
		first, count := sub[0], sub[1]
		for i := 0; i < count; i++ {
			if offset+entrySize > len(data) {
				break
			}
			id := first + i
			t := readBigEndian(data[offset:], w1)
			f2 := readBigEndian(data[offset+w1:], w2)
			f3 := readBigEndian(data[offset+w1+w2:], w3)
			offset += entrySize

			if _, exists := doc.xref[id]; exists {
				continue
			}
			switch t {
			case 0:
				doc.xref[id] = xrefEntry{}
			case 1:
				doc.xref[id] = xrefEntry{offset: int64(f2), inUse: true}
			case 2:
				doc.xref[id] = xrefEntry{compressed: true, streamObj: f2, streamIdx: f3, inUse: true}
			}
		}
	}

	if prev, ok := obj.Dict.GetInt("Prev"); ok && prev > 0 {
		return doc.loadXRefAt(prev)
	}
	return nil
}

// readBigEndian reads n bytes as a big-endian integer. A zero-width field
// reads as zero, per the xref stream defaults.
func readBigEndian(data []byte, n int) int {
	v := 0
	for i := 0; i < n && i < len(data); i++ {
		v = v<<8 | int(data[i])
	}
	return v
}

// --- Object resolution ---

// resolve follows an indirect reference, returning ObjNull on any failure
// so callers can treat missing and malformed objects alike.
func (doc *Document) resolve(obj *Object) *Object {
	if obj == nil {
		return &Object{Type: ObjNull}
	}
	if obj.Type != ObjRef {
		return obj
	}
	return doc.resolveRef(obj.Ref.Number)
}

func (doc *Document) resolveRef(num int) *Object {
	if obj, ok := doc.cache[num]; ok {
		return obj
	}
	entry, ok := doc.xref[num]
	if !ok || !entry.inUse {
		return &Object{Type: ObjNull}
	}

	var obj *Object
	var err error
	if entry.compressed {
		obj, err = doc.resolveCompressed(entry)
	} else {
		obj, err = doc.resolveAtOffset(entry.offset)
	}
	if err != nil || obj == nil {
		obj = &Object{Type: ObjNull}
	}
	doc.cache[num] = obj
	return obj
}

// resolveAtOffset parses "N G obj ... endobj" at the given byte offset.
func (doc *Document) resolveAtOffset(offset int64) (*Object, error) {
	if offset < 0 || int(offset) >= len(doc.data) {
		return nil, fmt.Errorf("object offset %d out of bounds", offset)
	}
	p := newParser(doc.data, int(offset))
	p.readToken() // object number
	p.skipSpace()
	p.readToken() // generation
	p.skipSpace()
	if !p.match("obj") {
		return nil, fmt.Errorf("expected 'obj' at offset %d", offset)
	}

	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}

	// A stream /Length may be an indirect reference; resolve it and
	// re-parse so the stream body is sliced correctly.
	if obj.Type == ObjStream {
		if lenRef, ok := obj.Dict["Length"]; ok && lenRef.Type == ObjRef {
			if lenObj := doc.resolveRef(lenRef.Ref.Number); lenObj.Type == ObjInt {
				obj.Dict["Length"] = lenObj
				p2 := newParser(doc.data, int(offset))
				p2.readToken()
				p2.skipSpace()
				p2.readToken()
				p2.skipSpace()
				p2.match("obj")
				return p2.parseObject()
			}
		}
	}
	return obj, nil
}

// resolveCompressed reads an object stored inside an object stream.
func (doc *Document) resolveCompressed(entry xrefEntry) (*Object, error) {
	container := doc.resolveRef(entry.streamObj)
	if container.Type != ObjStream {
		return nil, errors.New("compressed object container is not a stream")
	}

	data, err := decodeStream(container.Dict, container.Stream)
	if err != nil {
		return nil, err
	}

	n, _ := container.Dict.GetInt("N")
	first, _ := container.Dict.GetInt("First")

	// The stream begins with n (id, offset) pairs.
	p := newParser(data, 0)
	offsets := make([]int, 0, n)
	for i := 0; i < int(n); i++ {
		p.skipSpace()
		p.readToken() // object id
		p.skipSpace()
		off, _ := strconv.Atoi(p.readToken())
		offsets = append(offsets, off)
	}
	if entry.streamIdx < 0 || entry.streamIdx >= len(offsets) {
		return nil, errors.New("object index outside object stream")
	}

	p2 := newParser(data, int(first)+offsets[entry.streamIdx])
	return p2.parseObject()
}

// --- Page tree ---

func (doc *Document) pageDicts() ([]Dict, error) {
	if doc.pages != nil {
		return doc.pages, nil
	}
	rootRef, ok := doc.trailer["Root"]
	if !ok {
		return nil, errors.New("pdfinspect: no /Root in trailer")
	}
	root := doc.resolve(rootRef)
	if root.Type != ObjDict {
		return nil, errors.New("pdfinspect: catalog is not a dict")
	}
	pagesObj, ok := root.Dict["Pages"]
	if !ok {
		return nil, errors.New("pdfinspect: no /Pages in catalog")
	}

	var pages []Dict
	doc.collectPages(doc.resolve(pagesObj).Dict, &pages, 0)
	doc.pages = pages
	return pages, nil
}

// collectPages walks the page tree depth-first, gathering leaf Page dicts.
func (doc *Document) collectPages(node Dict, pages *[]Dict, depth int) {
	if node == nil || depth > maxNesting {
		return
	}
	if typeName, _ := node.GetName("Type"); typeName == "Page" {
		*pages = append(*pages, node)
		return
	}
	kidsObj, ok := node["Kids"]
	if !ok {
		return
	}
	kids := doc.resolve(kidsObj)
	if kids.Type != ObjArray {
		return
	}
	for _, kidRef := range kids.Array {
		kid := doc.resolve(kidRef)
		if kid.Type == ObjDict || kid.Type == ObjStream {
			doc.collectPages(kid.Dict, pages, depth+1)
		}
	}
}

// contentStreams returns the combined decoded content stream data for a page.
func (doc *Document) contentStreams(page Dict) []byte {
	contentsObj, ok := page["Contents"]
	if !ok {
		return nil
	}
	contents := doc.resolve(contentsObj)

	streams := []*Object{contents}
	if contents.Type == ObjArray {
		streams = contents.Array
	}
	var result []byte
	for _, s := range streams {
		resolved := doc.resolve(s)
		if resolved.Type != ObjStream {
			continue
		}
		data, err := decodeStream(resolved.Dict, resolved.Stream)
		if err != nil {
			continue
		}
		result = append(result, data...)
		result = append(result, ' ')
	}
	return result
}

// pageFonts returns the font objects for a page, keyed by resource name.
func (doc *Document) pageFonts(page Dict) map[string]*Object {
	resourcesObj, ok := page["Resources"]
	if !ok {
		return nil
	}
	resources := doc.resolve(resourcesObj)
	if resources.Type != ObjDict && resources.Type != ObjStream {
		return nil
	}
	fontDictObj, ok := resources.Dict["Font"]
	if !ok {
		return nil
	}
	fontDict := doc.resolve(fontDictObj)
	if fontDict.Type != ObjDict {
		return nil
	}

	fonts := make(map[string]*Object, len(fontDict.Dict))
	for name, ref := range fontDict.Dict {
		fonts[name] = doc.resolveFont(doc.resolve(ref))
	}
	return fonts
}

// resolveFont resolves the pieces of a font dict the decoder needs
// (ToUnicode stream, Encoding dict) through their indirect references.
func (doc *Document) resolveFont(font *Object) *Object {
	if font.Type != ObjDict && font.Type != ObjStream {
		return font
	}
	if toUni, ok := font.Dict["ToUnicode"]; ok && toUni.Type == ObjRef {
		resolved := doc.resolve(toUni)
		if resolved.Type == ObjStream {
			if data, err := decodeStream(resolved.Dict, resolved.Stream); err == nil {
				resolved = &Object{Type: ObjStream, Dict: resolved.Dict, Stream: data}
			}
		}
		font.Dict["ToUnicode"] = resolved
	} else if ok && toUni.Type == ObjStream {
		if data, err := decodeStream(toUni.Dict, toUni.Stream); err == nil {
			font.Dict["ToUnicode"] = &Object{Type: ObjStream, Dict: toUni.Dict, Stream: data}
		}
	}
	if enc, ok := font.Dict["Encoding"]; ok && enc.Type == ObjRef {
		font.Dict["Encoding"] = doc.resolve(enc)
	}
	// Composite fonts keep their descendant subtype behind a reference.
	if desc, ok := font.Dict["DescendantFonts"]; ok && desc.Type == ObjRef {
		font.Dict["DescendantFonts"] = doc.resolve(desc)
	}
	return font
}
