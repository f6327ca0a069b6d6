//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/zrs99/aipdf/webapp"
)

func main() {
	// Register routes for the client-side app - all use App component with navbar
	app.Route("/", func() app.Composer { return &webapp.App{} })
	app.Route("/viewer", func() app.Composer { return &webapp.App{} })
	app.Route("/history", func() app.Composer { return &webapp.App{} })
	app.Route("/about", func() app.Composer { return &webapp.App{} })

	// This main function is for the WASM build only
	// It initializes the go-app when running in the browser
	app.RunWhenOnBrowser()
}
