package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// fetchText performs a fetch and hands the response status and body text to
// then on the UI goroutine. opts follows the JavaScript fetch options object;
// pass nil for a plain GET. catch runs on network failure.
func fetchText(ctx app.Context, url string, opts map[string]interface{}, then func(ctx app.Context, status int, body string), catch func(ctx app.Context)) {
	ctx.Async(func() {
		var res app.Value
		if opts == nil {
			res = app.Window().Call("fetch", url)
		} else {
			res = app.Window().Call("fetch", url, opts)
		}

		res.Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
			if len(args) == 0 {
				return nil
			}
			response := args[0]
			status := response.Get("status").Int()

			response.Call("text").Call("then", app.FuncOf(func(this app.Value, args []app.Value) any {
				if len(args) == 0 {
					return nil
				}
				body := args[0].String()
				ctx.Dispatch(func(ctx app.Context) {
					then(ctx, status, body)
				})
				return nil
			}))

			return nil
		})).Call("catch", app.FuncOf(func(this app.Value, args []app.Value) any {
			if catch != nil {
				ctx.Dispatch(catch)
			}
			return nil
		}))
	})
}

// fetchJSONBody posts a JSON document with the given method
func fetchJSONBody(ctx app.Context, method, url, body string, then func(ctx app.Context, status int, body string), catch func(ctx app.Context)) {
	fetchText(ctx, url, map[string]interface{}{
		"method":  method,
		"headers": map[string]interface{}{"Content-Type": "application/json"},
		"body":    body,
	}, then, catch)
}

// fetchForm posts a FormData body
func fetchForm(ctx app.Context, url string, form app.Value, then func(ctx app.Context, status int, body string), catch func(ctx app.Context)) {
	fetchText(ctx, url, map[string]interface{}{
		"method": "POST",
		"body":   form,
	}, then, catch)
}
