package sheet

import (
	"bytes"
	"encoding/json"
)

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Filename         string   `json:"filename,omitempty"`
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
	Page             *int     `json:"page,omitempty"`
}

type jsonPage struct {
	Image string   `json:"image"`
	Size  jsonSize `json:"size"`
}

type jsonMeta struct {
	App               string     `json:"app"`
	Version           string     `json:"version"`
	Image             string     `json:"image"`
	Format            string     `json:"format"`
	Size              jsonSize   `json:"size"`
	Scale             string     `json:"scale"`
	Pages             []jsonPage `json:"pages,omitempty"`
	RelatedMultiPacks []string   `json:"related_multi_packs,omitempty"`
}

// jsonFrames is a JSON object whose keys keep insertion order.
type jsonFrames []jsonFrame

func (f jsonFrames) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fr := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fr.Filename)
		if err != nil {
			return nil, err
		}
		fr.Filename = ""
		val, err := json.Marshal(fr)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// toJSONFrame converts an entry. TexturePacker reports the upright size of
// rotated frames in "frame".
func toJSONFrame(s *Sheet, e Entry) jsonFrame {
	size := e.Size()
	f := jsonFrame{
		Filename: e.Name,
		Frame:    jsonRect{X: e.Frame.Min.X, Y: e.Frame.Min.Y, W: size.X, H: size.Y},
		Rotated:  e.Rotated,
		Trimmed:  e.Trimmed,
		SpriteSourceSize: jsonRect{
			X: e.SpriteSource.Min.X, Y: e.SpriteSource.Min.Y,
			W: e.SpriteSource.Dx(), H: e.SpriteSource.Dy(),
		},
		SourceSize: jsonSize{W: e.SourceSize.X, H: e.SourceSize.Y},
	}
	if s.MultiPage() {
		page := e.Page
		f.Page = &page
	}
	return f
}

func toJSONMeta(s *Sheet) jsonMeta {
	m := jsonMeta{
		App:               App,
		Version:           Version,
		Format:            "RGBA8888",
		Scale:             "1",
		RelatedMultiPacks: s.Related,
	}
	if len(s.Pages) > 0 {
		m.Image = s.Pages[0].Image
		m.Size = jsonSize{W: s.Pages[0].Width, H: s.Pages[0].Height}
	}
	if s.MultiPage() {
		for _, p := range s.Pages {
			m.Pages = append(m.Pages, jsonPage{Image: p.Image, Size: jsonSize{W: p.Width, H: p.Height}})
		}
	}
	return m
}

// JSONHash writes the TexturePacker "JSON (Hash)" layout read by Pixi and
// Phaser: frames keyed by name, in animation order.
type JSONHash struct{}

func (JSONHash) Format() string { return "json" }
func (JSONHash) Ext() string    { return ".json" }

func (JSONHash) Export(s *Sheet) ([]byte, error) {
	doc := struct {
		Frames     jsonFrames          `json:"frames"`
		Animations map[string][]string `json:"animations,omitempty"`
		Meta       jsonMeta            `json:"meta"`
	}{
		Meta: toJSONMeta(s),
	}
	for _, e := range s.Entries {
		doc.Frames = append(doc.Frames, toJSONFrame(s, e))
	}
	if s.Animation != "" && len(s.Entries) > 0 {
		doc.Animations = map[string][]string{s.Animation: s.Names()}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// JSONArray writes the TexturePacker "JSON (Array)" layout.
type JSONArray struct{}

func (JSONArray) Format() string { return "json-array" }
func (JSONArray) Ext() string    { return ".json" }

func (JSONArray) Export(s *Sheet) ([]byte, error) {
	doc := struct {
		Frames []jsonFrame `json:"frames"`
		Meta   jsonMeta    `json:"meta"`
	}{
		Frames: []jsonFrame{},
		Meta:   toJSONMeta(s),
	}
	for _, e := range s.Entries {
		doc.Frames = append(doc.Frames, toJSONFrame(s, e))
	}
	return json.MarshalIndent(doc, "", "  ")
}
