// Command atlasweb packs uploaded animated GIFs into texture atlases and
// serves the pages, spritesheets and a preview rebuilt from them.
//
//	atlasweb -listen_address=:8080 [pipeline flags] [animations to pack at startup]
//	curl --data-binary @walk.gif http://localhost:8080/pack/walk
//
// Pack requests are traced on /debug/requests.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/spriteatlas/atlas"
	"badc0de.net/pkg/spriteatlas/frames"
	"badc0de.net/pkg/spriteatlas/paths"
	"badc0de.net/pkg/spriteatlas/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for atlasweb")

	pipelineFlags = atlas.RegisterFlags(flag.CommandLine)
)

func prepack(ctx context.Context, h *web.Handler, args []string) {
	inputs, err := paths.Animations(args)
	if err != nil {
		glog.Errorf("%v", err)
		return
	}
	for _, in := range inputs {
		src, err := frames.Open(in)
		if err != nil {
			glog.Errorf("%s: %v", in, err)
			continue
		}
		if _, err := h.Add(ctx, paths.BaseName(in), src); err != nil {
			glog.Errorf("%s: %v", in, err)
		}
		src.Close()
	}
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	figure.NewFigure("atlasweb", "", true).Print()

	cfg, err := pipelineFlags.Config(flag.CommandLine)
	if err != nil {
		glog.Exit(err)
	}

	h := web.NewHandler(cfg)
	if flag.NArg() > 0 {
		prepack(context.Background(), h, flag.Args())
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	glog.Infof("listening on %s", *listenAddress)
	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.CompressHandler(handlers.LoggingHandler(os.Stderr, r))))
}
