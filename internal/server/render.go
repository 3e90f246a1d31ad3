package server

import (
	_ "embed"
	"html"
	"html/template"
	"net/http"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/elpatron68/focustasks/internal/auth"
	applog "github.com/elpatron68/focustasks/internal/log"
	"github.com/elpatron68/focustasks/internal/tasks"
)

//go:embed help.md
var helpMarkdown string

const layoutHTML = `<!doctype html><html><head><meta charset="utf-8"><title>{{.AppTitle}}</title><link rel="icon" href="/favicon.svg" type="image/svg+xml">
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,Helvetica,Arial,sans-serif;margin:16px;max-width:760px}
nav a{padding:6px 10px;text-decoration:none;color:#0f766e;border-radius:4px}
nav a.active{background:#0f766e;color:#fff}
nav{margin-bottom:12px}
#analytics{color:#374151;font-weight:600;margin:8px 0}
.flash{padding:8px;margin-bottom:8px;border:1px solid}
.flash.error{background:#fee2e2;border-color:#fecaca;color:#991b1b}
.flash.info{background:#d4edda;border-color:#c3e6cb;color:#155724}
ul.tasks{list-style:none;padding-left:0}
ul.tasks li{display:flex;gap:8px;align-items:center;padding:4px 0;border-bottom:1px solid #eee}
ul.tasks li .title{flex:1}
ul.tasks li.done .title{text-decoration:line-through;color:#6a737d}
ul.tasks form{display:inline}
.activity{margin-top:16px;border-top:1px solid #eee;padding-top:8px;font-size:13px}
.activity .ts{color:#6a737d}
.help h1{font-size:1.5em}
.help code{background:#f6f8fa;padding:2px 4px;border-radius:3px}
</style>
</head><body>
<nav>
  <a href="/" class="{{if eq .Active "home"}}active{{end}}">Tasks</a>
  <a href="/export/pdf">Export PDF</a>
  <a href="/export/md">Export Markdown</a>
  <a href="/help" class="{{if eq .Active "help"}}active{{end}}">Help</a>
</nav>
{{with .Flash}}<div class="flash {{.Type}}">{{.Text}}</div>{{end}}
{{template "content" .}}
{{if .ShowActivity}}
<div class="activity">
  <strong>Recent activity</strong>
  {{if .Activity}}<ul>{{range .Activity}}<li><span class="ts">{{.When.Format "15:04:05"}}</span> {{.Text}}</li>{{end}}</ul>{{else}}<p>No activity yet.</p>{{end}}
</div>
{{end}}
</body></html>`

const indexContent = `
<h2>{{.AppTitle}}</h2>
<div id="analytics">{{.Summary}}</div>
<form method="post" action="/tasks" id="add-form">
  <input type="hidden" name="csrf" value="{{.CSRF}}"/>
  <input id="new-task" name="title" placeholder="What needs doing?" style="width:70%" autofocus/>
  <button id="add-task" type="submit">Add</button>
</form>
<div id="task-list">
  <h3>Active</h3>
  <ul class="tasks" id="active-list">
  {{range .ActiveTasks}}{{template "item" .}}{{else}}<li>Nothing to do.</li>{{end}}
  </ul>
  <h3>Done</h3>
  <ul class="tasks" id="done-list">
  {{range .DoneTasks}}{{template "item" .}}{{end}}
  </ul>
</div>
`

const itemContent = `<li{{if .Task.Done}} class="done"{{end}}>
  <span class="title">{{plain .Task.Title}}</span>
  <form method="post" action="/tasks/{{.Task.ID}}/toggle"><input type="hidden" name="csrf" value="{{.CSRF}}"/><button class="toggle-btn" data-id="{{.Task.ID}}">{{if .Task.Done}}Undo{{else}}Done{{end}}</button></form>
  <form method="post" action="/tasks/{{.Task.ID}}/remove"><input type="hidden" name="csrf" value="{{.CSRF}}"/><button class="delete-btn" data-id="{{.Task.ID}}">Delete</button></form>
</li>`

const helpContent = `<div class="help">{{renderMarkdown .Help}}</div>`

type itemView struct {
	Task tasks.Task
	CSRF string
}

// plainTitle turns a stored title back into text; the template escapes it
// again on output.
func plainTitle(s string) string { return html.UnescapeString(s) }

func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(src), p, r))
}

// page renders content inside the layout with the data every page shares.
func (s *Server) page(w http.ResponseWriter, r *http.Request, active, content string, data map[string]any) {
	t := template.Must(s.layoutTpl.Clone())
	template.Must(t.New("content").Parse(content))
	template.Must(t.New("item").Parse(itemContent))

	username, _ := auth.UsernameFromRequest(r)
	data["AppTitle"] = s.cfg.UI.Title
	data["Active"] = active
	data["Flash"] = s.takeFlash(w, r)
	data["ShowActivity"] = s.showActivity(r)
	data["Activity"] = s.activity.Recent(username, 5)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		applog.Errorf("render %s: %v", r.URL.Path, err)
	}
}

// showActivity honors an "activity=off|on" cookie over the config default.
func (s *Server) showActivity(r *http.Request) bool {
	show := s.cfg.UI.ShowActivityLog
	if c, err := r.Cookie("activity"); err == nil {
		switch c.Value {
		case "off":
			show = false
		case "on":
			show = true
		}
	}
	return show
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, store := s.storeFor(r)
	csrf := s.ensureCSRFToken(w, r)
	list := store.List()
	active, done := tasks.Partition(list)
	s.page(w, r, "home", indexContent, map[string]any{
		"CSRF":        csrf,
		"Summary":     tasks.Summarize(list).String(),
		"ActiveTasks": views(active, csrf),
		"DoneTasks":   views(done, csrf),
	})
}

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, "help", helpContent, map[string]any{"Help": helpMarkdown})
}

func views(list []tasks.Task, csrf string) []itemView {
	out := make([]itemView, len(list))
	for i, t := range list {
		out[i] = itemView{Task: t, CSRF: csrf}
	}
	return out
}
