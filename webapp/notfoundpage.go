package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// NotFoundPage is shown for unknown routes
type NotFoundPage struct {
	app.Compo
}

// Render renders the not found page
func (n *NotFoundPage) Render() app.UI {
	return app.Div().
		Class("notfound-page").
		Body(
			app.H2().Text("Page Not Found"),
			app.P().Text("The page you are looking for does not exist."),
			app.A().
				Href("/").
				Class("btn-primary").
				Body(app.Text("Back to Home")),
		)
}
