package health

import (
	"bytes"
	"html/template"
)

var dashboard = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"ok": func(s string) bool { return s == "connected" },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Hatchery Operations API · Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --green: #2f6b3a; --dark: #1f2a1f; --amber: #e0a526; --bg: #f7f6f1; --muted: #6b705c; --red: #c0392b; }
    * { box-sizing: border-box; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 1000px; margin: 0 auto; }
    h1 { font-size: clamp(28px, 5vw, 48px); font-weight: 900; letter-spacing: -2px; margin: 0; }
    h1.issue { color: var(--red); }
    .subtext { color: var(--muted); font-weight: 700; margin: 10px 0 30px; }
    .card { background: #fff; border-radius: 24px; box-shadow: 0 20px 60px -20px rgba(47,107,58,0.2); overflow: hidden; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 35px; border-right: 1px solid rgba(0,0,0,0.05); }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: var(--muted); margin-bottom: 20px; }
    .big { font-size: 36px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid rgba(0,0,0,0.04); font-size: 14px; font-weight: 700; }
    .row:last-child { border-bottom: none; }
    .pill { padding: 4px 10px; border-radius: 8px; font-size: 11px; font-weight: 900; }
    .up { background: rgba(47,107,58,0.1); color: var(--green); }
    .down { background: rgba(192,57,43,0.1); color: var(--red); }
    .footer { background: rgba(31,42,31,0.03); padding: 16px 35px; display: flex; justify-content: space-between; font-family: monospace; font-size: 13px; }
    .actions { margin-top: 24px; display: flex; gap: 12px; }
    .actions a { color: var(--green); font-weight: 800; font-size: 13px; }
    @media (max-width: 800px) { .grid { grid-template-columns: 1fr; } .col { border-right: none; } .footer { flex-direction: column; gap: 8px; } }
  </style>
</head>
<body>
  <div class="container">
    {{if eq .Status "ok"}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">System Issues Detected</h1>{{end}}
    <p class="subtext">Hatchery Operations API · request traffic, open grids and dependencies.</p>
    <div class="card">
      <div class="grid">
        <div class="col">
          <div class="label">Traffic</div>
          <div class="big">{{.Traffic.TotalRequests}}</div>
          <div class="row"><span>Successful</span><span>{{.Traffic.SuccessCount}}</span></div>
          <div class="row"><span>Failed</span><span>{{.Traffic.FailedCount}}</span></div>
          <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
          <div class="row"><span>Avg Latency</span><span>{{.Traffic.AvgResponseTime}} ms</span></div>
        </div>
        <div class="col">
          <div class="label">Runtime</div>
          <div class="big">{{.Runtime.UptimeSeconds}}s</div>
          <div class="row"><span>Heap In Use</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
          <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
          <div class="row"><span>Open Grids</span><span>{{.Grid.OpenWorkspaces}}</span></div>
          <div class="row"><span>Platform</span><span>{{.Runtime.Platform}} · {{.Runtime.GoVersion}}</span></div>
        </div>
        <div class="col">
          <div class="label">Connectivity</div>
          {{range $name, $dep := .Dependencies}}
          <div class="row"><span>{{$name}}</span><span class="pill {{if ok $dep.Status}}up{{else}}down{{end}}">{{$dep.Status}}{{with $dep.PingMs}} · {{.}} ms{{end}}</span></div>
          {{end}}
        </div>
      </div>
      <div class="footer">
        {{with .Traffic.LastRequest}}
        <span>LAST INBOUND {{.Method}}</span><span>{{.Path}}</span><span>{{.IP}}</span>
        {{else}}
        <span>LAST INBOUND -</span>
        {{end}}
      </div>
    </div>
    <div class="actions"><a href="/health/json">/health/json</a><a href="/health/errors">/health/errors</a></div>
  </div>
</body>
</html>`))

// RenderDashboardHTML renders the status page served at GET /.
func RenderDashboardHTML(health CollectResult) (string, error) {
	var buf bytes.Buffer
	if err := dashboard.Execute(&buf, health); err != nil {
		return "", err
	}
	return buf.String(), nil
}
