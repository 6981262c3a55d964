package pdfinspect

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// maxDecodedSize caps stream decompression at 256 MB to bound memory use
// on corrupt input.
const maxDecodedSize = 256 * 1024 * 1024

// decodeStream decodes a PDF stream given its dictionary and raw bytes.
// Chrome's print pipeline emits FlateDecode (optionally with a PNG or
// TIFF predictor) and raw streams; other filters are passed through
// untouched, which keeps geometry inspection working on any input.
func decodeStream(dict Dict, data []byte) ([]byte, error) {
	filterObj, ok := dict["Filter"]
	if !ok {
		return data, nil
	}

	var filters []string
	var params []Dict
	switch filterObj.Type {
	case ObjName:
		filters = []string{filterObj.Name}
		if p, ok := dict.GetDict("DecodeParms"); ok {
			params = []Dict{p}
		} else {
			params = []Dict{nil}
		}
	case ObjArray:
		for _, f := range filterObj.Array {
			if f.Type == ObjName {
				filters = append(filters, f.Name)
			}
		}
		if pArr, ok := dict["DecodeParms"]; ok && pArr.Type == ObjArray {
			for _, p := range pArr.Array {
				if p != nil && p.Type == ObjDict {
					params = append(params, p.Dict)
				} else {
					params = append(params, nil)
				}
			}
		}
		for len(params) < len(filters) {
			params = append(params, nil)
		}
	default:
		return data, nil
	}

	current := data
	for i, filter := range filters {
		var err error
		switch filter {
		case "FlateDecode", "Fl":
			current, err = flateDecode(params[i], current)
		case "ASCIIHexDecode", "AHx":
			current, err = asciiHexDecode(current)
		default:
			// Image and exotic filters: pass through as-is.
		}
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", filter, err)
		}
	}
	return current, nil
}

// flateDecode inflates zlib data and undoes any declared predictor.
func flateDecode(parms Dict, data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	result, err := io.ReadAll(io.LimitReader(r, maxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(result) > maxDecodedSize {
		return nil, fmt.Errorf("decoded stream exceeds %d bytes", maxDecodedSize)
	}

	if parms == nil {
		return result, nil
	}
	predictor, ok := parms.GetInt("Predictor")
	if !ok || predictor == 1 {
		return result, nil
	}
	if predictor == 2 {
		return undoTIFFPredictor(parms, result), nil
	}
	if predictor >= 10 && predictor <= 15 {
		return undoPNGPredictor(parms, result), nil
	}
	return result, nil
}

// predictorRowBytes computes the encoded row width from the DecodeParms.
func predictorRowBytes(parms Dict) int {
	colors, _ := parms.GetInt("Colors")
	bits, _ := parms.GetInt("BitsPerComponent")
	columns, _ := parms.GetInt("Columns")
	if colors == 0 {
		colors = 1
	}
	if bits == 0 {
		bits = 8
	}
	if columns == 0 {
		columns = 1
	}
	return int((columns*colors*bits + 7) / 8)
}

// undoTIFFPredictor reverses TIFF horizontal differencing.
func undoTIFFPredictor(parms Dict, data []byte) []byte {
	rowBytes := predictorRowBytes(parms)
	if rowBytes == 0 {
		return data
	}
	result := make([]byte, len(data))
	for row := 0; row*rowBytes < len(data); row++ {
		start := row * rowBytes
		end := start + rowBytes
		if end > len(data) {
			end = len(data)
		}
		copy(result[start:end], data[start:end])
		for i := start + 1; i < end; i++ {
			result[i] += result[i-1]
		}
	}
	return result
}

// undoPNGPredictor reverses PNG row filters (predictors 10-15).
func undoPNGPredictor(parms Dict, data []byte) []byte {
	rowBytes := predictorRowBytes(parms)
	stride := rowBytes + 1 // leading filter byte per row
	if len(data) == 0 || stride <= 1 {
		return data
	}

	numRows := len(data) / stride
	result := make([]byte, numRows*rowBytes)
	prev := make([]byte, rowBytes)

	for row := 0; row < numRows; row++ {
		src := data[row*stride : row*stride+stride]
		filterType := src[0]
		dst := result[row*rowBytes : row*rowBytes+rowBytes]
		copy(dst, src[1:])

		switch filterType {
		case 0: // None
		case 1: // Sub
			for i := 1; i < rowBytes; i++ {
				dst[i] += dst[i-1]
			}
		case 2: // Up
			for i := 0; i < rowBytes; i++ {
				dst[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowBytes; i++ {
				var left byte
				if i > 0 {
					left = dst[i-1]
				}
				dst[i] += byte((int(left) + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowBytes; i++ {
				var left, upLeft byte
				if i > 0 {
					left = dst[i-1]
					upLeft = prev[i-1]
				}
				dst[i] += paeth(left, prev[i], upLeft)
			}
		}
		copy(prev, dst)
	}
	return result
}

// paeth is the PNG Paeth predictor function.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// asciiHexDecode decodes an ASCIIHex stream terminated by '>'.
func asciiHexDecode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var hi byte
	haveHi := false
	for _, b := range data {
		if isSpace(b) {
			continue
		}
		if b == '>' {
			break
		}
		if haveHi {
			buf.WriteByte(hi<<4 | hexVal(b))
			haveHi = false
		} else {
			hi = hexVal(b)
			haveHi = true
		}
	}
	if haveHi {
		buf.WriteByte(hi << 4) // odd final digit implies trailing zero
	}
	return buf.Bytes(), nil
}
