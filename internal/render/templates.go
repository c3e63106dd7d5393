package render

import "html/template"

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<header>
<p><a href="{{.Back}}">&larr; all datasets</a></p>
<h1>{{.Title}}{{with .Version}} <small>{{.}}</small>{{end}}</h1>
{{- with .Header.Boxes}}
<div class="boxes">
{{- range .}}
<div class="box"><div class="label">{{.Label}}</div><div class="value">{{.Text}}</div></div>
{{- end}}
</div>
{{- end}}
{{- with .Header.Extra}}
<details><summary>Other fields</summary><table>
{{- range .}}
<tr><th>{{.Key}}</th><td>{{.Text}}</td></tr>
{{- end}}
</table></details>
{{- end}}
{{- with .Header.Pretty}}
<details><summary>info.json</summary><pre>{{.}}</pre></details>
{{- end}}
</header>
{{- with .Fallback}}
<p class="fallback">{{.}}</p>
{{- end}}
{{- range .Notes}}
<p class="note"><strong>{{.Section}}:</strong> {{.Message}}</p>
{{- end}}
{{- if .Columns}}
<section>
<h2>Sample rows <small>{{len .Rows}} of {{.Total}}</small></h2>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
</section>
{{- end}}
{{- if .Videos}}
<section>
<h2>Videos</h2>
<ul>
{{- range .Videos}}
<li><a href="{{.URL}}">{{.Name}}</a> <small>{{.Path}}</small></li>
{{- end}}
</ul>
</section>
{{- end}}
`))

var catalogTmpl = template.Must(template.New("catalog").Parse(`<header>
<h1>{{.Namespace}} datasets</h1>
<form method="get" action="/">
<input type="search" name="q" value="{{.Search}}" list="suggestions" placeholder="Search datasets">
<datalist id="suggestions">{{range .Suggestions}}<option value="{{.}}">{{end}}</datalist>
<input type="hidden" name="dark" value="{{.Dark}}">
<input type="hidden" name="version" value="{{.Prefs.Version}}">
<input type="hidden" name="order" value="{{.Prefs.Order}}">
</form>
<nav>
Version:{{range .Versions}} <a href="{{.URL}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}
| Order:{{range .Orders}} <a href="{{.URL}}"{{if .Active}} class="active"{{end}}>{{.Label}}</a>{{end}}
| <a href="{{.Theme.URL}}">{{.Theme.Label}}</a>
</nav>
</header>
{{- with .Err}}
<p class="note">{{.}}</p>
{{- end}}
<div class="cards">
{{- range .Cards}}
<a class="card" href="{{.URL}}">
<h3>{{.Name}}</h3>
<div>{{if .Version}}{{.Version}}{{else}}unknown version{{end}}</div>
{{- with .Updated}}<div>updated {{.}}</div>{{end}}
<div>{{.Likes}} likes &middot; {{.Downloads}} downloads</div>
</a>
{{- else}}
<p>No datasets match.</p>
{{- end}}
</div>
`))
