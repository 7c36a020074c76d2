// Package web serves the atlas pipeline over HTTP: animations are uploaded,
// packed, and their pages, sheets and a reconstructed preview are served
// back.
package web

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"net/http"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/spriteatlas/atlas"
	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/packer"
	"badc0de.net/pkg/spriteatlas/sink"
	"badc0de.net/pkg/spriteatlas/trim"
)

// MaxUploadSize bounds the body of a pack request.
const MaxUploadSize = 64 << 20

// generation is bumped whenever the way responses are generated changes, so
// cached ETags stop matching.
const generation = 1

type packed struct {
	res     *atlas.Result
	delays  []int
	pngs    [][]byte
	etags   []string
	created time.Time
}

type Handler struct {
	cfg atlas.Config

	lock    sync.Mutex
	atlases map[string]*packed
}

// NewHandler constructs a web handler that packs uploads with cfg.
func NewHandler(cfg atlas.Config) *Handler {
	return &Handler{
		cfg:     cfg,
		atlases: make(map[string]*packed),
	}
}

// Names lists the packed atlases in name order.
func (h *Handler) Names() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	var out []string
	for name := range h.atlases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (h *Handler) get(name string) *packed {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.atlases[name]
}

// Pack runs the pipeline over an animated GIF and keeps the result under
// name, replacing any previous atlas of that name.
func (h *Handler) Pack(ctx context.Context, name string, r io.Reader) (*atlas.Result, error) {
	src, err := frames.NewGIFSource(r, name)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return h.Add(ctx, name, src)
}

type delayer interface {
	Delay(i int) int
}

// Add runs the pipeline over any frame source and keeps the result under
// name. Frame delays are kept when src knows them.
func (h *Handler) Add(ctx context.Context, name string, src frames.Source) (*atlas.Result, error) {
	tr := trace.New("web.Pack", name)
	defer tr.Finish()
	tr.LazyPrintf("%d frames", src.FrameCount())

	delays := make([]int, src.FrameCount())
	if d, ok := src.(delayer); ok {
		for i := range delays {
			delays[i] = d.Delay(i)
		}
	}

	res, err := atlas.Run(ctx, h.cfg, name, src)
	if err != nil {
		tr.LazyPrintf("packing: %v", err)
		tr.SetError()
		return nil, err
	}
	tr.LazyPrintf("%d page(s), %.1f%% used", res.Stats.Pages, 100*res.Stats.Utilization)

	p := &packed{res: res, delays: delays, created: time.Now()}
	for _, page := range res.Pages {
		var buf bytes.Buffer
		if err := sink.EncodePNG(&buf, page.Image); err != nil {
			tr.SetError()
			return nil, errors.Wrapf(err, "encoding %s", page.Name)
		}
		sum := sha256.Sum256(buf.Bytes())
		p.pngs = append(p.pngs, buf.Bytes())
		p.etags = append(p.etags, fmt.Sprintf(`W/"page:%d:%x"`, generation, sum[:12]))
	}

	h.lock.Lock()
	h.atlases[name] = p
	h.lock.Unlock()
	return res, nil
}

// status maps pipeline failures to HTTP status codes.
func status(err error) int {
	var (
		de *frames.DecodeError
		ce *atlas.ConfigurationError
		oe *packer.OversizedFrameError
		ee *trim.EmptyFrameError
	)
	switch {
	case errors.As(err, &de):
		return http.StatusBadRequest
	case errors.As(err, &ce), errors.As(err, &oe), errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".plist":
		return "application/x-plist"
	case ".yaml":
		return "application/yaml"
	}
	return "application/octet-stream"
}

func (h *Handler) packHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	body := http.MaxBytesReader(w, r.Body, MaxUploadSize)
	defer body.Close()

	res, err := h.Pack(r.Context(), name, body)
	if err != nil {
		glog.Errorf("packing %s: %v", name, err)
		http.Error(w, err.Error(), status(err))
		return
	}

	doc := res.Sheets[0]
	w.Header().Set("Content-Type", contentType(doc.Name))
	w.Header().Set("Location", fmt.Sprintf("/atlas/%s/sheet/0", name))
	w.WriteHeader(http.StatusCreated)
	w.Write(doc.Data)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*packed, int, bool) {
	vars := mux.Vars(r)
	p := h.get(vars["name"])
	if p == nil {
		http.Error(w, "no such atlas", http.StatusNotFound)
		return nil, 0, false
	}
	idxs, ok := vars["idx"]
	if !ok {
		return p, 0, true
	}
	idx, err := strconv.Atoi(idxs)
	if err != nil {
		http.Error(w, "idx not a number", http.StatusBadRequest)
		return nil, 0, false
	}
	return p, idx, true
}

func (h *Handler) pageHandler(w http.ResponseWriter, r *http.Request) {
	p, idx, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if idx < 0 || idx >= len(p.pngs) {
		http.Error(w, "no such page", http.StatusNotFound)
		return
	}

	etag := p.etags[idx]
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Last-Modified", p.created.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	w.Write(p.pngs[idx])
}

func (h *Handler) sheetHandler(w http.ResponseWriter, r *http.Request) {
	p, idx, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if idx < 0 || idx >= len(p.res.Sheets) {
		http.Error(w, "no such sheet", http.StatusNotFound)
		return
	}
	doc := p.res.Sheets[idx]
	w.Header().Set("Content-Type", contentType(doc.Name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Name))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

// Animation rebuilds the original animation from the atlas pages and the
// frame entries alone.
func Animation(res *atlas.Result, delays []int) *gif.GIF {
	g := &gif.GIF{}
	q := quantize.MedianCutQuantizer{}
	for i, e := range res.Entries {
		img := e.Reconstruct(res.Pages[e.Page].Image)

		// Up to 255 colors plus the transparent one in front, so the
		// zeroed paletted image starts out transparent.
		pal := color.Palette{color.Transparent}
		if _, ok := trim.Bounds(img); ok {
			pal = append(pal, q.Quantize(make(color.Palette, 0, 255), img)...)
		}
		pm := image.NewPaletted(img.Bounds(), pal)
		draw.Draw(pm, img.Bounds(), img, img.Bounds().Min, draw.Over)

		delay := 10
		if i < len(delays) && delays[i] > 0 {
			delay = delays[i]
		}
		g.Image = append(g.Image, pm)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0
	return g
}

func (h *Handler) animationHandler(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	etag := fmt.Sprintf(`W/"animation:%d:%s:%d"`, generation, p.res.Name, p.created.UnixNano())
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, Animation(p.res, p.delays)); err != nil {
		glog.Errorf("encoding animation %s: %v", p.res.Name, err)
		http.Error(w, "animation could not be generated", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html><head><title>atlases</title></head>
<body>
<h1>atlases</h1>
{{range $a := .}}<h2>{{$a.Name}}</h2>
<p>{{$a.Frames}} frames on {{len $a.Pages}} page(s), {{printf "%.1f" $a.Used}}% used. <a href="/atlas/{{$a.Name}}/animation.gif">animation</a></p>
{{range $a.Pages}}<a href="/atlas/{{$a.Name}}/page/{{.Index}}.png"><img src="{{.Thumb}}" title="{{.File}}"></a>
{{end}}{{range $i, $s := $a.Sheets}}<a href="/atlas/{{$a.Name}}/sheet/{{$i}}">{{$s}}</a>
{{end}}{{else}}<p>Nothing packed yet. POST a GIF to /pack/{name}.</p>
{{end}}</body></html>
`))

type indexPage struct {
	Index int
	File  string
	Thumb template.URL
}

type indexAtlas struct {
	Name   string
	Frames int
	Used   float64
	Pages  []indexPage
	Sheets []string
}

// thumbnail returns a data URL of a small preview of img.
func thumbnail(img image.Image) (template.URL, error) {
	var buf bytes.Buffer
	if err := sink.EncodePNG(&buf, resize.Thumbnail(128, 128, img, resize.Bilinear)); err != nil {
		return "", err
	}
	return template.URL(dataurl.New(buf.Bytes(), "image/png").String()), nil
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	var atlases []indexAtlas
	for _, name := range h.Names() {
		p := h.get(name)
		if p == nil {
			continue
		}
		a := indexAtlas{Name: name, Frames: p.res.Stats.Frames, Used: 100 * p.res.Stats.Utilization}
		for _, page := range p.res.Pages {
			thumb, err := thumbnail(page.Image)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			a.Pages = append(a.Pages, indexPage{Index: page.Index, File: page.Name, Thumb: thumb})
		}
		for _, doc := range p.res.Sheets {
			a.Sheets = append(a.Sheets, doc.Name)
		}
		atlases = append(atlases, a)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, atlases); err != nil {
		glog.Errorf("rendering index: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/pack/{name:[A-Za-z0-9_.-]+}", h.packHandler).Methods(http.MethodPost, http.MethodPut)
	r.HandleFunc("/atlas/{name:[A-Za-z0-9_.-]+}/page/{idx:[0-9]+}.png", h.pageHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/atlas/{name:[A-Za-z0-9_.-]+}/sheet/{idx:[0-9]+}", h.sheetHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/atlas/{name:[A-Za-z0-9_.-]+}/animation.gif", h.animationHandler).Methods(http.MethodGet, http.MethodHead)
}
