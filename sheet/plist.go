package sheet

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
)

const plistHeader = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
`

// Plist writes a Cocos2d property list (format 3).
type Plist struct{}

func (Plist) Format() string { return "plist" }
func (Plist) Ext() string    { return ".plist" }

// plistWriter emits the token stream of a property list. A plist dict is
// an ordered key/value sequence, which encoding/xml struct tags cannot
// express.
type plistWriter struct {
	enc *xml.Encoder
	err error
}

func (w *plistWriter) token(t xml.Token) {
	if w.err == nil {
		w.err = w.enc.EncodeToken(t)
	}
}

func (w *plistWriter) start(name string) { w.token(xml.StartElement{Name: xml.Name{Local: name}}) }
func (w *plistWriter) end(name string)   { w.token(xml.EndElement{Name: xml.Name{Local: name}}) }

func (w *plistWriter) element(name, text string) {
	w.start(name)
	w.token(xml.CharData(text))
	w.end(name)
}

func (w *plistWriter) key(k string)  { w.element("key", k) }
func (w *plistWriter) str(s string)  { w.element("string", s) }
func (w *plistWriter) integer(n int) { w.element("integer", strconv.Itoa(n)) }
func (w *plistWriter) boolean(b bool) {
	name := "false"
	if b {
		name = "true"
	}
	w.start(name)
	w.end(name)
}

func plistNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (Plist) Export(s *Sheet) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(plistHeader)
	w := &plistWriter{enc: xml.NewEncoder(&buf)}
	w.enc.Indent("", "\t")

	w.token(xml.StartElement{Name: xml.Name{Local: "plist"}, Attr: []xml.Attr{{Name: xml.Name{Local: "version"}, Value: "1.0"}}})
	w.start("dict")

	w.key("frames")
	w.start("dict")
	for _, e := range s.Entries {
		size := e.Size()
		// Offset of the trimmed rectangle's centre from the source centre, y up.
		ox := float64(e.SpriteSource.Min.X) + float64(size.X)/2 - float64(e.SourceSize.X)/2
		oy := float64(e.SourceSize.Y)/2 - (float64(e.SpriteSource.Min.Y) + float64(size.Y)/2)

		w.key(e.Name)
		w.start("dict")
		w.key("aliases")
		w.start("array")
		w.end("array")
		w.key("spriteOffset")
		w.str(fmt.Sprintf("{%s,%s}", plistNum(ox), plistNum(oy)))
		w.key("spriteSize")
		w.str(fmt.Sprintf("{%d,%d}", size.X, size.Y))
		w.key("spriteSourceSize")
		w.str(fmt.Sprintf("{%d,%d}", e.SourceSize.X, e.SourceSize.Y))
		w.key("textureRect")
		w.str(fmt.Sprintf("{{%d,%d},{%d,%d}}", e.Frame.Min.X, e.Frame.Min.Y, size.X, size.Y))
		w.key("textureRotated")
		w.boolean(e.Rotated)
		if s.MultiPage() {
			w.key("page")
			w.integer(e.Page)
		}
		w.end("dict")
	}
	w.end("dict")

	w.key("metadata")
	w.start("dict")
	w.key("format")
	w.integer(3)
	w.key("pixelFormat")
	w.str("RGBA8888")
	w.key("premultiplyAlpha")
	w.boolean(false)
	if len(s.Pages) > 0 {
		p := s.Pages[0]
		w.key("realTextureFileName")
		w.str(p.Image)
		w.key("size")
		w.str(fmt.Sprintf("{%d,%d}", p.Width, p.Height))
		w.key("textureFileName")
		w.str(p.Image)
	}
	if s.MultiPage() {
		w.key("textureFileNames")
		w.start("array")
		for _, p := range s.Pages {
			w.str(p.Image)
		}
		w.end("array")
	}
	if len(s.Related) > 0 {
		w.key("relatedMultiPacks")
		w.start("array")
		for _, r := range s.Related {
			w.str(r)
		}
		w.end("array")
	}
	w.end("dict")

	w.end("dict")
	w.end("plist")
	if w.err == nil {
		w.err = w.enc.Flush()
	}
	if w.err != nil {
		return nil, w.err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
