package main

import (
	"flag"
	stdlog "log"

	"github.com/elpatron68/focustasks/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml, then ../../config.yaml)")
	listen := flag.String("listen", "", "listen address, overrides FOCUS_LISTEN and config")
	flag.Parse()

	a, err := app.Open(*configPath)
	if err != nil {
		stdlog.Fatalf("%v", err)
	}
	defer a.Close()

	if err := a.Serve(app.ResolveListenAddress(a.Config, *listen)); err != nil {
		stdlog.Fatalf("server error: %v", err)
	}
}
