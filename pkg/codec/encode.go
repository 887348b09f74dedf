package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"

	errs "github.com/matzehuels/drawview/pkg/errors"
)

// Encode compresses XML text into a Draw.io page payload:
// base64(rawDeflate(percentEncode(xml))).
func Encode(xmlText string) (string, error) {
	escaped := url.PathEscape(xmlText)

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "create deflate writer")
	}
	if _, err := w.Write([]byte(escaped)); err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "deflate payload")
	}
	if err := w.Close(); err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "deflate payload")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// WrapOptions configures the <mxfile> wrapper written by [Compress].
type WrapOptions struct {
	Name string // page name (default "Page-1")
	ID   string // page id (default: random)
	Host string // mxfile host attribute (default "drawview")
}

// Compress wraps graph-model XML in a single-page <mxfile> document whose
// page payload is compressed with [Encode].
func Compress(modelXML string, opts WrapOptions) (string, error) {
	payload, err := Encode(strings.TrimSpace(modelXML))
	if err != nil {
		return "", err
	}
	if opts.Name == "" {
		opts.Name = "Page-1"
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Host == "" {
		opts.Host = "drawview"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<mxfile host="%s" compressed="true">`, attr(opts.Host))
	fmt.Fprintf(&b, `<diagram name="%s" id="%s">%s</diagram>`, attr(opts.Name), attr(opts.ID), payload)
	b.WriteString("</mxfile>\n")
	return b.String(), nil
}

func attr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
