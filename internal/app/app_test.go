package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAppMount(t *testing.T) {
	Convey("Given an app pointing at a fake backend", t, func() {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
		}))
		defer backend.Close()

		u, err := url.Parse(backend.URL)
		So(err, ShouldBeNil)

		a := New(WithBackend(u))
		mux := http.NewServeMux()
		So(a.Mount(context.Background(), mux), ShouldBeNil)

		srv := httptest.NewServer(mux)
		defer srv.Close()

		get := func(path string) (int, string) {
			resp, err := http.Get(srv.URL + path)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			return resp.StatusCode, string(b)
		}

		Convey("Then /api requests should reach the backend unchanged", func() {
			code, body := get("/api/classmates/7")
			So(code, ShouldEqual, http.StatusOK)
			So(body, ShouldEqual, `{"path":"/api/classmates/7"}`)
		})

		Convey("And the site shell should own the root and unknown routes", func() {
			code, body := get("/")
			So(code, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `id="app"`)

			code, body = get("/statistics")
			So(code, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, `id="app"`)
		})

		Convey("And the API reference should be served", func() {
			code, body := get("/openapi.yaml")
			So(code, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, "openapi:")

			code, _ = get("/api-docs")
			So(code, ShouldEqual, http.StatusOK)
		})

		Convey("And health should answer", func() {
			code, body := get("/healthz")
			So(code, ShouldEqual, http.StatusOK)
			So(body, ShouldContainSubstring, "ok")
		})

		Convey("When mounting a second time", func() {
			err := a.Mount(context.Background(), http.NewServeMux())

			Convey("Then it should fail", func() {
				So(errors.Is(err, ErrMount), ShouldBeTrue)
				So(errors.Is(err, ErrRemounting), ShouldBeTrue)
			})
		})
	})
}

func TestAppMountErrors(t *testing.T) {
	Convey("Given invalid mount inputs", t, func() {
		u, _ := url.Parse("http://localhost:5001")

		Convey("When the mux is nil", func() {
			err := New(WithBackend(u)).Mount(context.Background(), nil)

			Convey("Then Mount should fail", func() {
				So(errors.Is(err, ErrMount), ShouldBeTrue)
				So(errors.Is(err, ErrNilMux), ShouldBeTrue)
			})
		})

		Convey("When no backend is configured", func() {
			err := New().Mount(context.Background(), http.NewServeMux())

			Convey("Then Mount should fail", func() {
				So(errors.Is(err, ErrNoBackend), ShouldBeTrue)
			})
		})

		Convey("When the base path is the root", func() {
			a := New(WithBackend(u), WithBasePath("/"))
			err := a.Mount(context.Background(), http.NewServeMux())

			Convey("Then the router should refuse it", func() {
				So(errors.Is(err, ErrMount), ShouldBeTrue)
			})

			Convey("And the app should stay unmounted", func() {
				So(a.mounted, ShouldBeFalse)
			})
		})
	})
}
