package callback

import (
	"html/template"
)

const pageLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - mdb</title>
<style>
body { font-family: system-ui, sans-serif; background: #f8fafc; color: #1e293b; display: flex; align-items: center; justify-content: center; min-height: 100vh; margin: 0; }
.card { background: #fff; border-radius: 12px; padding: 2rem 2.5rem; box-shadow: 0 4px 16px rgba(15, 23, 42, .08); max-width: 28rem; text-align: center; }
h1 { font-size: 1.4rem; margin: 0 0 .75rem; }
.ok { color: #15803d; }
.fail { color: #b91c1c; }
p { margin: .4rem 0; }
code { background: #f1f5f9; padding: .1rem .3rem; border-radius: 4px; }
</style>
</head>
<body>
<div class="card">
<h1 class="{{if .Failed}}fail{{else}}ok{{end}}">{{.Title}}</h1>
{{range .Lines}}<p>{{.}}</p>
{{end}}<p>You can close this window and return to the terminal.</p>
</div>
</body>
</html>
`

var pageTemplate = template.Must(template.New("page").Parse(pageLayout))

type pageData struct {
	Title  string
	Failed bool
	Lines  []string
}

// resultPage builds the page shown after the redirect home.
func resultPage(errorCode string, outcome *Outcome) pageData {
	switch errorCode {
	case ErrorAuthFailed:
		lines := []string{"The identity provider did not complete the login."}
		if outcome != nil && outcome.ProviderError != "" {
			lines = append(lines, "Reason: "+outcome.ProviderError)
		}
		return pageData{Title: "Authentication failed", Failed: true, Lines: lines}
	case ErrorNoToken:
		return pageData{
			Title:  "Authentication failed",
			Failed: true,
			Lines:  []string{"No token was received from the server."},
		}
	}

	if outcome == nil {
		return pageData{Title: "Waiting for authentication", Lines: []string{"Complete the login in the provider window."}}
	}
	if outcome.User != nil {
		return pageData{
			Title: "Authentication successful",
			Lines: []string{"Signed in as " + outcome.User.Username + " (" + outcome.User.Email + ")."},
		}
	}
	return pageData{
		Title: "Authentication completed",
		Lines: []string{"The profile could not be verified yet. Run mdb auth status in the terminal."},
	}
}
