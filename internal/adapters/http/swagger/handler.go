// Package swagger serves the kickhub API reference.
package swagger

import (
	"context"
	_ "embed"
	"net/http"
)

// OpenAPI is the kickhub OpenAPI 3 document.
//
//go:embed openapi.yaml
var OpenAPI []byte

// Register attaches the reference routes to mux:
//
//	GET /api-docs      ReDoc page rendering /openapi.yaml
//	GET /openapi.yaml  the raw document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.HandleFunc("GET /api-docs", serve("text/html; charset=utf-8", []byte(redocPage)))
	mux.HandleFunc("GET /openapi.yaml", serve("application/yaml; charset=utf-8", OpenAPI))
}

func serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}

const redocPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>kickhub API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
