package main

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/V4T54L/causeway/internal/transform"
)

// renderText lays the rendering out host by host. Each event line lists the
// events it sends a message to.
func renderText(r transform.Rendering) string {
	var b strings.Builder

	inMotif := make(map[int]bool)
	for _, m := range r.Motifs {
		for _, i := range m {
			inMotif[i] = true
		}
	}
	sends := make(map[int][]int)
	for i, l := range r.Graph.Links {
		if r.Graph.Nodes[l.Source].Group != r.Graph.Nodes[l.Target].Group {
			sends[l.Source] = append(sends[l.Source], i)
		}
	}

	for i, n := range r.Graph.Nodes {
		if n.StartNode {
			if i > 0 {
				b.WriteString("\n")
			}
			header := hostStyle(n.Group).Render(n.Group)
			if r.NodeStyles[i].Highlighted {
				header = styles.Highlighted.Render(header)
			}
			if r.NodeStyles[i].Unique {
				header += styles.Unique.Render(" (unique)")
			}
			b.WriteString(header + "\n")
			continue
		}

		style := r.NodeStyles[i]
		text := strings.ReplaceAll(n.Name, "\n", " | ")
		switch {
		case inMotif[i]:
			text = styles.Motif.Render("* " + text)
		case style.Unique:
			text = styles.Unique.Render("+ " + text)
		case style.Opacity < 1:
			text = styles.Dimmed.Render(text)
		}
		if style.Label != "" {
			text = styles.Collapsed.Render(fmt.Sprintf("[%s events]", style.Label)) + " " + text
		}
		fmt.Fprintf(&b, "  %s %s", styles.Muted.Render(fmt.Sprintf("%4d", n.Line)), text)

		for _, li := range sends[i] {
			target := r.Graph.Nodes[r.Graph.Links[li].Target]
			arrow := "->"
			if r.LinkStyles[li].Dashed {
				arrow = "~>"
			}
			fmt.Fprintf(&b, " %s %s", arrow, hostStyle(target.Group).Render(fmt.Sprintf("%s:%d", target.Group, target.Line)))
		}
		if style.HasHiddenParent || style.HasHiddenChild {
			b.WriteString(styles.Muted.Render(" (hidden peers)"))
		}
		b.WriteString("\n")
	}

	if len(r.HiddenHosts) > 0 {
		b.WriteString("\n" + styles.Muted.Render("hidden: "+strings.Join(r.HiddenHosts, ", ")) + "\n")
	}
	if len(r.Motifs) > 0 {
		b.WriteString(styles.Motif.Render(fmt.Sprintf("%d motifs", len(r.Motifs))) + "\n")
	}
	for _, d := range r.Diffs {
		fmt.Fprintf(&b, "%s unique hosts [%s], common hosts [%s], %d unique events\n",
			styles.Unique.Render("diff "+d.Against+":"), strings.Join(d.UniqueHosts, " "), strings.Join(d.CommonHosts, " "), d.UniqueEvents)
	}
	return b.String()
}

type htmlHost struct {
	Name   string
	Unique bool
	Events []htmlEvent
}

type htmlEvent struct {
	Line    int
	Text    string
	Label   string
	Opacity float64
	InMotif bool
	Unique  bool
	Sends   []string
}

type htmlPage struct {
	Title       string
	Hosts       []htmlHost
	HiddenHosts []string
	Motifs      int
	Diffs       []transform.Diff
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body{font-family:monospace;background:#0d1117;color:#c9d1d9;font-size:13px;padding:16px}
.hosts{display:flex;gap:16px;align-items:flex-start}
.host{background:#161b22;border:1px solid #30363d;border-radius:6px;min-width:220px}
.host h2{font-size:13px;padding:8px 12px;border-bottom:1px solid #30363d;margin:0;color:#58a6ff}
.ev{padding:4px 12px;border-bottom:1px solid #21262d}
.ev .ln{color:#8b949e;margin-right:8px}
.ev .lbl{color:#f59e0b}
.ev .to{color:#8b949e;font-size:11px}
.motif{color:#56d364;font-weight:700}
.dim{color:#8b949e}
.unique{border-left:3px solid #ff7b72}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .HiddenHosts}}<p class="dim">hidden: {{range $i, $h := .HiddenHosts}}{{if $i}}, {{end}}{{$h}}{{end}}</p>{{end}}
{{if .Motifs}}<p class="motif">{{.Motifs}} motifs</p>{{end}}
{{range .Diffs}}<p class="dim">diff {{.Against}}: {{len .UniqueHosts}} unique hosts, {{.UniqueEvents}} unique events</p>{{end}}
<div class="hosts">
{{range .Hosts}}<div class="host{{if .Unique}} unique{{end}}">
<h2>{{.Name}}</h2>
{{range .Events}}<div class="ev{{if .InMotif}} motif{{end}}{{if .Unique}} unique{{end}}" style="opacity:{{.Opacity}}">
<span class="ln">{{.Line}}</span>{{if .Label}}<span class="lbl">[{{.Label}}]</span> {{end}}{{.Text}}
{{range .Sends}}<div class="to">&rarr; {{.}}</div>{{end}}
</div>
{{end}}</div>
{{end}}</div>
</body>
</html>
`))

func renderHTML(w io.Writer, title string, r transform.Rendering) error {
	page := htmlPage{Title: title, HiddenHosts: r.HiddenHosts, Motifs: len(r.Motifs), Diffs: r.Diffs}

	inMotif := make(map[int]bool)
	for _, m := range r.Motifs {
		for _, i := range m {
			inMotif[i] = true
		}
	}
	sends := make(map[int][]string)
	for _, l := range r.Graph.Links {
		src, dst := r.Graph.Nodes[l.Source], r.Graph.Nodes[l.Target]
		if src.Group != dst.Group {
			sends[l.Source] = append(sends[l.Source], fmt.Sprintf("%s:%d", dst.Group, dst.Line))
		}
	}

	for i, n := range r.Graph.Nodes {
		if n.StartNode {
			page.Hosts = append(page.Hosts, htmlHost{Name: n.Group, Unique: r.NodeStyles[i].Unique})
			continue
		}
		host := &page.Hosts[len(page.Hosts)-1]
		host.Events = append(host.Events, htmlEvent{
			Line:    n.Line,
			Text:    n.Name,
			Label:   r.NodeStyles[i].Label,
			Opacity: r.NodeStyles[i].Opacity,
			InMotif: inMotif[i],
			Unique:  r.NodeStyles[i].Unique,
			Sends:   sends[i],
		})
	}
	return pageTmpl.Execute(w, page)
}
