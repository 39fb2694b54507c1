package render

const panelSVG = `{{define "panel"}}<svg xmlns="http://www.w3.org/2000/svg" class="panel" data-panel="{{.Panel}}" width="{{.ViewWidth}}" height="{{.ViewHeight}}" viewBox="0 0 {{.ViewWidth}} {{.ViewHeight}}">
{{- if eq .State "error"}}
<text class="error" x="10" y="30">{{.Error}}</text>
{{- else if eq .State "loading"}}
<text class="loading" x="10" y="30">loading…</text>
{{- else}}
<g class="map">
{{- range .Regions}}
<path class="state" data-region="{{.Name}}" d="{{.Path}}" fill="{{.Fill}}" opacity="{{.Opacity}}"><title>{{.Name}}</title></path>
{{- end}}
</g>
{{- with .Legend}}
<g class="legend" transform="translate(0,{{$.Height}})">
{{- range .Swatches}}
<rect x="{{num .X}}" y="{{swatchY}}" width="{{num .Width}}" height="{{swatchHeight}}" fill="{{.Color}}"/>
{{- end}}
<g class="axis" transform="translate(0,{{axisY}})" font-size="10" text-anchor="middle">
{{- range .Ticks}}
<g class="tick" transform="translate({{num .X}},0)"><line y2="{{tickSize}}" stroke="currentColor"/><text y="{{add (tickSize) 10}}">{{.Label}}</text></g>
{{- end}}
</g>
{{- with $.Marker}}
<polygon class="marker" points="{{points .Points}}" fill="{{.Fill}}"/>
{{- end}}
</g>
{{- end}}
{{- end}}
</svg>{{end}}`

const pageHTML = `{{define "page"}}<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; }
.panels { display: flex; gap: 2em; }
.state { stroke: #ffffff; stroke-width: 0.5; }
#tooltip { position: absolute; padding: 4px 8px; opacity: 0.8; pointer-events: none; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="panels">
{{- range $side := list .LeftSVG .RightSVG}}
<section data-panel="{{$side.Panel}}">
<form>
<select name="metric" data-panel="{{$side.Panel}}">
{{- range $side.Metrics}}
<option value="{{.Key}}"{{if .Selected}} selected{{end}}{{if not .Enabled}} disabled{{end}}>{{.Label}}</option>
{{- end}}
</select>
<select name="year" data-panel="{{$side.Panel}}">
{{- range $side.Years}}
<option value="{{.}}"{{if eq . $side.Year}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
</form>
{{template "panel" $side}}
</section>
{{- end}}
</div>
<div id="tooltip" style="visibility: {{if .Tooltip.Visible}}visible{{else}}hidden{{end}}; left: {{num .Tooltip.X}}px; top: {{num .Tooltip.Y}}px; background-color: {{.Tooltip.Background}}">{{.Tooltip.Text}}</div>
<script>
const api = (side, op, body) => fetch("/api/panels/" + side + "/" + op, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body || {})});
const tip = document.getElementById("tooltip");
async function refreshTooltip() {
  const t = await (await fetch("/api/tooltip")).json();
  tip.style.visibility = t.visible ? "visible" : "hidden";
  tip.textContent = t.text || "";
  tip.style.backgroundColor = t.background || "";
  tip.style.left = t.x + "px";
  tip.style.top = t.y + "px";
}
document.querySelectorAll("select").forEach(sel => sel.addEventListener("change", async () => {
  const body = sel.name === "year" ? {year: Number(sel.value)} : {metric: sel.value};
  await api(sel.dataset.panel, sel.name, body);
  location.reload();
}));
document.querySelectorAll("svg.panel").forEach(svg => {
  const side = svg.dataset.panel;
  svg.querySelectorAll("path.state").forEach(p => {
    p.addEventListener("mouseenter", async e => { await api(side, "hover", {region: p.dataset.region, x: e.pageX, y: e.pageY}); await refreshTooltip(); });
    p.addEventListener("mousemove", async e => { await api(side, "move", {x: e.pageX, y: e.pageY}); await refreshTooltip(); });
    p.addEventListener("mouseout", async () => { await api(side, "hover/end"); await refreshTooltip(); });
  });
});
</script>
</body>
</html>{{end}}`
