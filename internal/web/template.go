package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sweeney/plotview/internal/status"
)

var numbers = message.NewPrinter(language.English)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	// num groups thousands: 1234567 -> 1,234,567
	"num": func(v interface{}) string {
		return numbers.Sprintf("%d", v)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>plotview</title>
<style>
body { font-family: monospace; max-width: 960px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 30%; }
.plot { overflow-x: auto; border: 1px solid #ddd; }
.plot svg { display: block; cursor: crosshair; }
.swatch { display: inline-block; width: 10px; height: 10px; margin-right: 6px; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>plotview</h1>

<p>
<button onclick="send('/wheel?delta=1')">zoom in</button>
<button onclick="send('/wheel?delta=-1')">zoom out</button>
zoom {{.View.Zoom.Num}}/{{.View.Zoom.Den}},
cursor at <span id="poi">{{num .View.PointOfInterest}}</span>
</p>

<div class="plot" id="plot">{{.SVG}}</div>

<h2>Signals</h2>
<table>
<tr><th>Name</th><th>Transitions</th><th>Last</th></tr>
{{range .View.Signals}}<tr><td>{{.Name}}</td><td>{{num .Transitions}}</td><td>{{num .End}}</td></tr>
{{else}}<tr><td colspan="3">none</td></tr>
{{end}}</table>

<h2>Marks</h2>
<table>
<tr><th>Label</th><th>Condition</th></tr>
{{range .View.Markers}}<tr><td><span class="swatch" style="background: {{.Color}}"></span>{{.Label}}</td><td>{{.Spec}}</td></tr>
{{else}}<tr><td colspan="2">none</td></tr>
{{end}}</table>

<h2>Matches</h2>
<table>
<tr><th>Signal</th><th>Label</th><th>Interval</th></tr>
{{range .View.Frame.Matches}}<tr><td>{{.Signal}}</td><td>{{.Label}}</td><td>{{num .From}} .. {{num .To}}</td></tr>
{{else}}<tr><td colspan="3">none</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
{{if .Capturing}}<tr><th>Capture</th><td>{{if .Baselined}}live{{else}}settling{{end}} ({{num .Counts.Rises}} rises, {{num .Counts.Falls}} falls)</td></tr>{{end}}
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Frame</th><td>{{.View.FrameID}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
{{if .Config.ViewFile}}<tr><th>View file</th><td>{{.Config.ViewFile}}</td></tr>{{end}}
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> <a href="/frame.svg">SVG</a></p>
<script>
function send(path) {
  fetch(path, { method: "POST" }).then(function() { location.reload(); });
}
document.getElementById("plot").addEventListener("click", function(e) {
  var svg = this.querySelector("svg");
  if (!svg) { return; }
  var box = svg.getBoundingClientRect();
  send("/press?x=" + Math.round(e.clientX - box.left) + "&y=" + Math.round(e.clientY - box.top));
});
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	var svg bytes.Buffer
	WriteSVG(&svg, snap.View.Frame)

	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		SVG    template.HTML
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		SVG:      template.HTML(svg.String()),
	}
	indexTmpl.Execute(w, data)
}
