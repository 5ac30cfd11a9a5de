package dashboard

import (
	"html/template"

	"github.com/IshaanNene/PostPulse/internal/types"
)

type commentsView struct {
	Selected string
	Labels   []labelCount
	Rows     []types.LabeledComment
	Total    int
}

var commentsTemplate = template.Must(template.New("comments").Parse(commentsHTML))

const commentsHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>PostPulse Comments</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .header a { color: #38bdf8; text-decoration: none; margin-left: 1rem; }
        .filters { padding: 1.5rem 2rem 0; display: flex; gap: 0.5rem; flex-wrap: wrap; }
        .filters a { padding: 0.5rem 1rem; border-radius: 9999px; font-size: 0.875rem; font-weight: 600; background: #1e293b; border: 1px solid #334155; color: #e2e8f0; text-decoration: none; }
        .filters a.active { border-color: #38bdf8; color: #38bdf8; }
        .summary { padding: 1rem 2rem; color: #94a3b8; font-size: 0.875rem; }
        table { width: calc(100% - 4rem); margin: 0 2rem 2rem; border-collapse: collapse; background: #1e293b; border-radius: 12px; overflow: hidden; }
        th, td { text-align: left; padding: 0.75rem 1rem; border-bottom: 1px solid #334155; font-size: 0.875rem; vertical-align: top; }
        th { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; }
        td.label { white-space: nowrap; color: #38bdf8; }
        .empty { padding: 2rem; color: #fbbf24; }
    </style>
</head>
<body>
    <div class="header">
        <h1>PostPulse Comments</h1>
        <div><a href="/?sentiment={{.Selected}}">Charts</a><a href="/export.csv?sentiment={{.Selected}}">Export CSV ({{.Selected}})</a></div>
    </div>
    <div class="filters">
        <a href="/comments?sentiment=all"{{if eq .Selected "all"}} class="active"{{end}}>All</a>
        {{range .Labels}}<a href="/comments?sentiment={{.Label}}"{{if eq $.Selected .Label}} class="active"{{end}}>{{.Label}} ({{.Count}})</a>
        {{end}}
    </div>
    <div class="summary">Showing {{len .Rows}} / {{.Total}} comments</div>
    {{if .Rows}}
    <table>
        <thead><tr><th>Comment</th><th>Sentiment</th><th>Post</th></tr></thead>
        <tbody>
        {{range .Rows}}<tr><td>{{.Comment}}</td><td class="label">{{.Sentiment}}</td><td><a href="{{.URL}}" style="color:#64748b">link</a></td></tr>
        {{end}}
        </tbody>
    </table>
    {{else}}
    <div class="empty">No comments with sentiment "{{.Selected}}"</div>
    {{end}}
</body>
</html>`
