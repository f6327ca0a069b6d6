package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// AboutPage describes the application
type AboutPage struct {
	app.Compo
}

// Render renders the about page
func (a *AboutPage) Render() app.UI {
	return app.Div().
		Class("about-page").
		Body(
			app.H2().Text("About aiPDF"),
			app.P().Text("aiPDF translates PDF documents while preserving their layout. Upload a document, pick a target language and follow the translation progress live. When the translation finishes you can read the original and the translated document side by side."),
			app.H3().Text("How it works"),
			app.Ul().Body(
				app.Li().Text("Uploads go to the translation backend, which processes the document page by page."),
				app.Li().Text("Progress is streamed back over a websocket while the backend works."),
				app.Li().Text("The viewer renders only the pages near your scroll position, so large documents stay responsive."),
			),
			app.P().Body(
				app.Text("Version: "+Version),
			),
		)
}
