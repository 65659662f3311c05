package response_test

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/gvera/internal/adapters/http/response"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriter_Respond(t *testing.T) {
	Convey("Given a JSON response writer", t, func() {
		rec := httptest.NewRecorder()
		w := response.New(rec)

		Convey("When responding with a keyed payload", func() {
			err := w.Respond(map[string]string{"asd": "asd"})

			Convey("Then the body is exactly the JSON text", func() {
				So(err, ShouldBeNil)
				So(rec.Body.String(), ShouldEqual, `{"asd":"asd"}`)
				So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When responding with a struct and a status", func() {
			err := w.RespondStatus(http.StatusCreated, struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			}{ID: 1, Name: "x"})

			Convey("Then fields keep their declared order", func() {
				So(err, ShouldBeNil)
				So(rec.Code, ShouldEqual, http.StatusCreated)
				So(rec.Body.String(), ShouldEqual, `{"id":1,"name":"x"}`)
			})
		})

		Convey("When the payload cannot be marshalled", func() {
			err := w.Respond(math.Inf(1))

			Convey("Then nothing is written", func() {
				So(err, ShouldNotBeNil)
				So(rec.Body.Len(), ShouldEqual, 0)
			})
		})

		Convey("When responding with an error", func() {
			err := w.RespondError(http.StatusNotFound, "not_found", errors.New("parameter not found"))

			Convey("Then the error envelope is written", func() {
				So(err, ShouldBeNil)
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(rec.Body.String(), ShouldEqual, `{"code":"not_found","message":"parameter not found"}`)
			})
		})

		Convey("When responding with a nil error", func() {
			_ = w.RespondError(http.StatusTeapot, "teapot", nil)

			Convey("Then the status text is the message", func() {
				So(rec.Body.String(), ShouldContainSubstring, "I'm a teapot")
			})
		})
	})
}
