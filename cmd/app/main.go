package main

import (
	"github.com/bmmjam/taptap/internal/app"
	"github.com/bmmjam/taptap/internal/config"
)

func main() {
	app.Go(config.Load())
}
