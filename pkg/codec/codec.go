// Package codec turns a Draw.io file's on-disk payload into canonical XML.
//
// Draw.io stores diagrams in three shapes:
//
//   - bare XML: <mxGraphModel>…</mxGraphModel>
//   - wrapped XML: <mxfile><diagram><mxGraphModel>…</mxGraphModel></diagram></mxfile>
//   - wrapped compressed: <mxfile><diagram>PAYLOAD</diagram></mxfile>
//
// where PAYLOAD is base64(rawDeflate(encodeURIComponent(xml))). No format
// metadata distinguishes them, so decoding is an ordered list of fallible
// transforms where the first success wins.
//
// # Usage
//
//	xml, err := codec.Decode(raw)          // file bytes or a bare page payload
//	model, err := codec.Unwrap(xml)        // graph-model XML of the first page
//	payload, err := codec.Encode(modelXML) // inverse of the compressed scheme
package codec

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// MaxInflatedSize bounds the size of an inflated page payload.
const MaxInflatedSize = 64 << 20

// utf8BOM is stripped before sniffing the first character of a payload.
const utf8BOM = "\ufeff"

// Decode converts a raw payload into XML text.
//
// A payload whose first non-whitespace character is '<' is returned
// unchanged. Anything else is treated as an encoded page blob and decoded
// with [DecodePage].
func Decode(raw []byte) (string, error) {
	text := string(raw)
	if isXML(text) {
		return text, nil
	}
	return DecodePage(text)
}

// DecodePage decodes the text content of a <diagram> page element.
//
// Plain XML is returned unchanged. Otherwise the text is base64-decoded and
// the following interpretations are tried in order:
//
//  1. raw DEFLATE, then percent-decoding (the canonical Draw.io scheme)
//  2. percent-decoding of the base64 bytes (uncompressed payload)
//  3. the base64 bytes as UTF-8 text
//
// When inflation succeeds but percent-decoding does not, the inflated text is
// returned, and the base64 bytes themselves are the last resort. Only an
// empty or undecodable base64 payload fails, with
// [errs.ErrCodeDecodeMalformed].
func DecodePage(text string) (string, error) {
	if isXML(text) {
		return text, nil
	}

	data, err := decodeBase64(text)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeDecodeMalformed, err, "payload is not valid base64")
	}
	if len(data) == 0 {
		return "", errs.New(errs.ErrCodeDecodeMalformed, "payload is empty")
	}

	return firstSuccess(data, inflateThenUnescape, unescapeBytes, rawText)
}

// transform is one candidate interpretation of base64-decoded bytes.
type transform func(data []byte) (string, error)

// firstSuccess applies transforms in order and returns the first result that
// does not fail. The last failure is reported when none succeeds.
func firstSuccess(data []byte, transforms ...transform) (string, error) {
	var lastErr error
	for _, t := range transforms {
		out, err := t(data)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", errs.Wrap(errs.ErrCodeDecodeMalformed, lastErr, "payload could not be decoded")
}

// inflateThenUnescape inflates raw DEFLATE data and percent-decodes the
// result. If only the percent-decoding fails, the inflated text is the best
// available answer and is returned as-is.
func inflateThenUnescape(data []byte) (string, error) {
	inflated, err := inflate(data)
	if err != nil {
		return "", err
	}
	if out, err := unescape(string(inflated)); err == nil {
		return out, nil
	}
	return string(inflated), nil
}

func unescapeBytes(data []byte) (string, error) {
	return unescape(string(data))
}

// rawText never fails. Bytes that are not text are left for the XML parser
// to reject.
func rawText(data []byte) (string, error) {
	return string(data), nil
}

// unescape mirrors decodeURIComponent: %XX sequences are decoded, '+' is
// kept literally, and the result must be valid UTF-8.
func unescape(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(out) {
		return "", errs.New(errs.ErrCodeDecodeMalformed, "percent-decoded text is not UTF-8")
	}
	return out, nil
}

// inflate decompresses DEFLATE data that carries no zlib or gzip header.
func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, MaxInflatedSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > MaxInflatedSize {
		return nil, errs.New(errs.ErrCodeDecodeMalformed, "inflated payload exceeds %d bytes", MaxInflatedSize)
	}
	return out, nil
}

// decodeBase64 accepts padded and unpadded standard base64 and ignores
// whitespace, which line-wrapped files contain.
func decodeBase64(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return -1
		}
		return r
	}, text)

	data, err := base64.StdEncoding.DecodeString(compact)
	if err == nil {
		return data, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func isXML(text string) bool {
	trimmed := strings.TrimLeft(strings.TrimPrefix(text, utf8BOM), " \t\r\n")
	return strings.HasPrefix(trimmed, "<")
}
