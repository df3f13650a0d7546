// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// dashboardHandler serves a minimal operations page.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests with an inline HTML page
// that polls /stats. Chart rendering proper lives in the frontend; this
// page exists for operators poking at a bare deployment.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(dashboardHTML))
}

const dashboardHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Casebook</title>
    <style>body{font-family:sans-serif;margin:2rem}pre{background:#f4f4f4;padding:1rem}</style>
  </head>
  <body>
    <h1>Casebook portfolio service</h1>
    <pre id="stats">loading...</pre>
    <script>
      async function refresh() {
        const res = await fetch('/stats');
        document.getElementById('stats').textContent = JSON.stringify(await res.json(), null, 2);
      }
      refresh();
      setInterval(refresh, 5000);
    </script>
  </body>
</html>`
