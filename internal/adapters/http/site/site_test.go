package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestViewer(t *testing.T) {
	Convey("Given the viewer registered on a mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)
		get := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(method, path, nil))
			return w
		}

		Convey("Then / is the page that opens a session websocket", func() {
			w := get(http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-cache")
			So(w.Body.String(), ShouldContainSubstring, "/live/sessions")
			So(w.Body.String(), ShouldContainSubstring, "WebSocket")
		})

		Convey("Then unknown files are 404", func() {
			So(get(http.MethodGet, "/nope.js").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then writes are refused", func() {
			So(get(http.MethodPost, "/").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("A nil mux panics", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
