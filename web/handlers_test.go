package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"badc0de.net/pkg/spriteatlas/atlas"
	"badc0de.net/pkg/spriteatlas/ttesting"
)

func testServer(t *testing.T, cfg atlas.Config) (*Handler, *httptest.Server) {
	t.Helper()
	h := NewHandler(cfg)
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return h, srv
}

func testGIF(t *testing.T) []byte {
	t.Helper()
	g := ttesting.Animation(24, 16,
		image.Rect(1, 1, 9, 9),
		image.Rect(12, 2, 24, 16),
		image.Rect(0, 0, 0, 0),
	)
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("encoding test gif: %v", err)
	}
	return buf.Bytes()
}

func get(t *testing.T, url string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func pack(t *testing.T, srv *httptest.Server, name string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/pack/"+name, "image/gif", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPackAndServe(t *testing.T) {
	h, srv := testServer(t, atlas.DefaultConfig())

	resp := pack(t, srv, "blink", testGIF(t))
	ttesting.AssertEqualInt(t, "pack status", resp.StatusCode, http.StatusCreated)
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("pack content type %q", ct)
	}
	var doc struct {
		Frames map[string]json.RawMessage `json:"frames"`
		Meta   struct {
			Image string `json:"image"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding sheet: %v", err)
	}
	ttesting.AssertEqualInt(t, "frames in sheet", len(doc.Frames), 3)
	if doc.Meta.Image != "blink.png" {
		t.Errorf("meta.image = %q, want blink.png", doc.Meta.Image)
	}
	if names := h.Names(); len(names) != 1 || names[0] != "blink" {
		t.Errorf("Names() = %v", names)
	}

	page := get(t, srv.URL+"/atlas/blink/page/0.png", nil)
	ttesting.AssertEqualInt(t, "page status", page.StatusCode, http.StatusOK)
	if _, err := png.Decode(page.Body); err != nil {
		t.Errorf("page is not a png: %v", err)
	}
	etag := page.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"page:`) {
		t.Errorf("unexpected etag %q", etag)
	}
	cached := get(t, srv.URL+"/atlas/blink/page/0.png", http.Header{"If-None-Match": {etag}})
	ttesting.AssertEqualInt(t, "conditional page status", cached.StatusCode, http.StatusNotModified)

	sheet := get(t, srv.URL+"/atlas/blink/sheet/0", nil)
	ttesting.AssertEqualInt(t, "sheet status", sheet.StatusCode, http.StatusOK)

	anim := get(t, srv.URL+"/atlas/blink/animation.gif", nil)
	ttesting.AssertEqualInt(t, "animation status", anim.StatusCode, http.StatusOK)
	g, err := gif.DecodeAll(anim.Body)
	if err != nil {
		t.Fatalf("animation is not a gif: %v", err)
	}
	ttesting.AssertEqualInt(t, "animation frames", len(g.Image), 3)
	ttesting.AssertEqualInt(t, "animation delay", g.Delay[0], 10)
	ttesting.AssertEqualRect(t, "animation bounds", g.Image[1].Bounds(), image.Rect(0, 0, 24, 16))

	// Visible pixels survive quantization.
	_, _, _, a := g.Image[1].At(13, 3).RGBA()
	ttesting.AssertEqualBool(t, "pixel inside sprite visible", a != 0, true)
	_, _, _, a = g.Image[1].At(2, 2).RGBA()
	ttesting.AssertEqualBool(t, "pixel outside sprite visible", a != 0, false)

	index := get(t, srv.URL+"/", nil)
	var body bytes.Buffer
	body.ReadFrom(index.Body)
	if !strings.Contains(body.String(), "data:image/png;base64,") {
		t.Errorf("index has no thumbnail:\n%s", body.String())
	}
}

func TestServeMissing(t *testing.T) {
	_, srv := testServer(t, atlas.DefaultConfig())
	pack(t, srv, "blink", testGIF(t))

	for _, path := range []string{
		"/atlas/nope/page/0.png",
		"/atlas/blink/page/7.png",
		"/atlas/blink/sheet/3",
		"/atlas/nope/animation.gif",
	} {
		t.Run(path, func(t *testing.T) {
			resp := get(t, srv.URL+path, nil)
			ttesting.AssertEqualInt(t, "status", resp.StatusCode, http.StatusNotFound)
		})
	}
}

func TestPackRejectsBadInput(t *testing.T) {
	cfg := atlas.DefaultConfig()
	cfg.PageWidth, cfg.PageHeight = 8, 8
	h, srv := testServer(t, cfg)

	resp := pack(t, srv, "garbage", []byte("not a gif"))
	ttesting.AssertEqualInt(t, "garbage status", resp.StatusCode, http.StatusBadRequest)

	resp = pack(t, srv, "huge", testGIF(t))
	ttesting.AssertEqualInt(t, "oversized status", resp.StatusCode, http.StatusUnprocessableEntity)

	ttesting.AssertEqualInt(t, "atlases kept", len(h.Names()), 0)
}

func TestIndex(t *testing.T) {
	for _, tc := range []struct {
		name  string
		packs []string
		want  []string
	}{
		{
			name: "empty",
			want: []string{"Nothing packed yet"},
		},
		{
			name:  "packed",
			packs: []string{"blink", "wink"},
			want: []string{
				`<h2>blink</h2>`,
				`href="/atlas/blink/page/0.png"`,
				`href="/atlas/blink/sheet/0"`,
				`href="/atlas/blink/animation.gif"`,
				`href="/atlas/wink/page/0.png"`,
				`href="/atlas/wink/sheet/0"`,
				"data:image/png;base64,",
				"</body></html>",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, srv := testServer(t, atlas.DefaultConfig())
			for _, name := range tc.packs {
				resp := pack(t, srv, name, testGIF(t))
				ttesting.AssertEqualInt(t, "pack status", resp.StatusCode, http.StatusCreated)
			}

			resp := get(t, srv.URL+"/", nil)
			ttesting.AssertEqualInt(t, "index status", resp.StatusCode, http.StatusOK)
			var body bytes.Buffer
			body.ReadFrom(resp.Body)
			for _, w := range tc.want {
				if !strings.Contains(body.String(), w) {
					t.Errorf("index lacks %q:\n%s", w, body.String())
				}
			}
		})
	}
}
