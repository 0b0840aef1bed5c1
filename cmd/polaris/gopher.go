package main

import (
	"path"

	"git.mills.io/prologic/go-gopher"
)

type indexHandler struct {
	rootPath    string
	rootHandler gopher.Handler
}

func (f *indexHandler) ServeGopher(w gopher.ResponseWriter, r *gopher.Request) {
	upath := r.Selector
	if gopher.GetItemType(f.rootPath+upath) == gopher.DIRECTORY && upath != "/" {
		w.WriteItem(&gopher.Item{
			Type:        gopher.DIRECTORY,
			Selector:    path.Dir(upath),
			Description: "Go Back",
		})
	}
	f.rootHandler.ServeGopher(w, r)
}

func index(root gopher.FileSystem) *indexHandler {
	return &indexHandler{root.Name(), gopher.FileServer(root)}
}

// holeMux builds a dedicated mux for one hole. Sharing the package
// default would make a second hole re-register "/".
func holeMux(root string) *gopher.ServeMux {
	mux := gopher.NewServeMux()
	mux.Handle("/", index(gopher.Dir(root)))
	return mux
}

func serveHole(h HoleConfig) error {
	return gopher.ListenAndServe(h.Hostname+":"+h.Port, holeMux(h.RootDir))
}
