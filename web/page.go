// Package web renders the server-side dashboard page.
package web

// PageData is what the dashboard shell needs from the server
type PageData struct {
	Title      string
	Benchmarks []string
	Period     string
}

func pageTitle(data PageData) string {
	if data.Title == "" {
		return "Investment Tracker"
	}
	return data.Title
}
