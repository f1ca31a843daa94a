package gateway

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/itstimwhite/jovie-gateway/internal/dsp"
)

// pickerTemplate is the self-contained destination picker. Each choice fires
// a click beacon before opening the destination; the beacon is best effort
// and never blocks navigation. The page is cacheable for a minute and asks
// search engines to stay away.
var pickerTemplate = template.Must(template.New("picker").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="robots" content="noindex, nofollow, nosnippet, noarchive">
<title>Listen to {{.Name}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:24rem;margin:3rem auto;padding:0 1rem}
h1{font-size:1.25rem;text-align:center}
a.dest{display:block;margin:.5rem 0;padding:.875rem 1rem;border:1px solid #ddd;border-radius:.5rem;text-decoration:none;color:inherit;text-align:center}
a.dest:hover{background:#f5f5f5}
</style>
</head>
<body>
<h1>Listen to {{.Name}}</h1>
{{range .Destinations}}<a class="dest" href="{{.URL}}" data-platform="{{.Platform}}" target="_blank" rel="noopener">{{.Label}}</a>
{{end}}<script>
document.querySelectorAll("a.dest").forEach(function (a) {
  a.addEventListener("click", function () {
    var payload = JSON.stringify({ target: a.dataset.platform });
    if (navigator.sendBeacon) {
      navigator.sendBeacon("/{{.Handle}}/link/click", payload);
    } else {
      fetch("/{{.Handle}}/link/click", { method: "POST", body: payload, keepalive: true });
    }
  });
});
</script>
</body>
</html>
`))

var notFoundTemplate = template.Must(template.New("notfound").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Not found</title></head>
<body><h1>Profile not found</h1></body>
</html>
`))

type pickerData struct {
	Name         string
	Handle       string
	Destinations []dsp.Destination
}

func (g *Gateway) renderPicker(w http.ResponseWriter, artist *dsp.Artist, destinations []dsp.Destination) {
	var buf bytes.Buffer

	data := pickerData{
		Name:         artist.Name,
		Handle:       artist.Handle,
		Destinations: destinations,
	}

	if err := pickerTemplate.Execute(&buf, data); err != nil {
		g.logger.Error("picker render failed", zap.String("handle", artist.Handle), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60, s-maxage=60")
	w.Header().Set("X-Robots-Tag", "noindex, nofollow")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func notFoundPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_ = notFoundTemplate.Execute(w, nil)
}
