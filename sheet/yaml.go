package sheet

import (
	"gopkg.in/yaml.v3"
)

type yamlRect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type yamlFrame struct {
	Name             string   `yaml:"name"`
	Page             int      `yaml:"page"`
	Frame            yamlRect `yaml:"frame"`
	Rotated          bool     `yaml:"rotated"`
	Trimmed          bool     `yaml:"trimmed"`
	SpriteSourceSize yamlRect `yaml:"sprite_source_size"`
	SourceSize       struct {
		W int `yaml:"w"`
		H int `yaml:"h"`
	} `yaml:"source_size"`
}

type yamlPage struct {
	Image  string `yaml:"image"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type yamlDoc struct {
	App       string      `yaml:"app"`
	Version   string      `yaml:"version"`
	Animation string      `yaml:"animation,omitempty"`
	Pages     []yamlPage  `yaml:"pages"`
	Frames    []yamlFrame `yaml:"frames"`
	Related   []string    `yaml:"related,omitempty"`
}

// YAML writes frames as an ordered list.
type YAML struct{}

func (YAML) Format() string { return "yaml" }
func (YAML) Ext() string    { return ".yaml" }

func (YAML) Export(s *Sheet) ([]byte, error) {
	doc := yamlDoc{
		App:       App,
		Version:   Version,
		Animation: s.Animation,
		Related:   s.Related,
		Pages:     []yamlPage{},
		Frames:    []yamlFrame{},
	}
	for _, p := range s.Pages {
		doc.Pages = append(doc.Pages, yamlPage{Image: p.Image, Width: p.Width, Height: p.Height})
	}
	for _, e := range s.Entries {
		size := e.Size()
		f := yamlFrame{
			Name:    e.Name,
			Page:    e.Page,
			Frame:   yamlRect{X: e.Frame.Min.X, Y: e.Frame.Min.Y, W: size.X, H: size.Y},
			Rotated: e.Rotated,
			Trimmed: e.Trimmed,
			SpriteSourceSize: yamlRect{
				X: e.SpriteSource.Min.X, Y: e.SpriteSource.Min.Y,
				W: e.SpriteSource.Dx(), H: e.SpriteSource.Dy(),
			},
		}
		f.SourceSize.W, f.SourceSize.H = e.SourceSize.X, e.SourceSize.Y
		doc.Frames = append(doc.Frames, f)
	}
	return yaml.Marshal(&doc)
}
