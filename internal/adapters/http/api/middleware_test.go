package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped in the metrics middleware", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		}, "test")

		Convey("When it is called", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the response should be untouched", func() {
				So(w.Code, ShouldEqual, http.StatusTeapot)
				So(w.Body.String(), ShouldEqual, "short and stout")
			})
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(errorType(http.StatusBadGateway), ShouldEqual, "upstream")
		So(errorType(http.StatusGatewayTimeout), ShouldEqual, "upstream")
		So(errorType(http.StatusInternalServerError), ShouldEqual, "server_error")
		So(errorType(http.StatusMethodNotAllowed), ShouldEqual, "method_not_allowed")
		So(errorType(http.StatusTooManyRequests), ShouldEqual, "rate_limit")
		So(errorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(errorType(http.StatusBadRequest), ShouldEqual, "client_error")
		So(errorType(http.StatusOK), ShouldEqual, "unknown")

		So(errorSeverity(http.StatusInternalServerError), ShouldEqual, "high")
		So(errorSeverity(http.StatusNotFound), ShouldEqual, "medium")
		So(errorSeverity(http.StatusOK), ShouldEqual, "low")
	})
}
