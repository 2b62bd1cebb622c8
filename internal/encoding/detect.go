// Package encoding converts uploaded bank exports to UTF-8. Norwegian banks
// still ship Latin-1 family files, mostly Windows-1252 or ISO-8859-15.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO885915   = "ISO-8859-15"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

const sniffSize = 4096

// Reader is a UTF-8 view of an upload together with the charset it was
// decoded from.
type Reader struct {
	io.Reader
	Charset string
}

// NewUTF8Reader detects the encoding of the input and returns a reader that
// yields UTF-8.
//
// Detection order:
//  1. BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Valid UTF-8 passes through
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252
func NewUTF8Reader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return &Reader{Reader: br, Charset: CharsetUTF8}, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decoded(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), CharsetUTF16LE), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decoded(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), CharsetUTF16BE), nil
	case utf8.Valid(trimPartialRune(buf)):
		return &Reader{Reader: br, Charset: CharsetUTF8}, nil
	}

	result, detectErr := chardet.NewTextDetector().DetectBest(buf)
	if detectErr == nil {
		switch result.Charset {
		case "UTF-8":
			return &Reader{Reader: br, Charset: CharsetUTF8}, nil
		case "ISO-8859-1", "windows-1252":
			return decoded(br, charmap.Windows1252, CharsetWindows1252), nil
		case "ISO-8859-15":
			return decoded(br, charmap.ISO8859_15, CharsetISO885915), nil
		}
	}

	return decoded(br, charmap.Windows1252, CharsetWindows1252), nil
}

// DecodeString reads a whole upload as UTF-8 text.
func DecodeString(b []byte) (string, string, error) {
	r, err := NewUTF8Reader(bytes.NewReader(b))
	if err != nil {
		return "", "", err
	}

	out, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", r.Charset, err)
	}

	return string(out), r.Charset, nil
}

func decoded(r io.Reader, enc encoding.Encoding, charset string) *Reader {
	return &Reader{Reader: transform.NewReader(r, enc.NewDecoder()), Charset: charset}
}

// trimPartialRune drops an incomplete UTF-8 sequence cut off by the sniff
// window so a valid file is not mistaken for Latin-1.
func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
