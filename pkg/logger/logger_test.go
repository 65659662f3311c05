package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get should return a logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)

		Convey("When logging with a request id on the context", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Get().With(String("component", "test")).Info(ctx, "hello", Int("n", 3))

			var line map[string]any
			err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line)

			Convey("Then the line carries fields, request id and source", func() {
				So(err, ShouldBeNil)
				So(line["msg"], ShouldEqual, "hello")
				So(line["component"], ShouldEqual, "test")
				So(line["n"], ShouldEqual, 3.0)
				So(line["request_id"], ShouldEqual, "req-1")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Debug(context.Background(), "hidden")
			Get().Info(context.Background(), "hidden")

			Convey("Then nothing is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
			_ = SetLevelString("info")
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		Convey("Then known levels are accepted case-insensitively", func() {
			for _, lvl := range []string{"debug", "INFO", "", "warn", "Warning", "error"} {
				So(SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Then unknown levels are rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
		})
	})
}

func TestLoggerNamedAndNop(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(Init(), ShouldBeNil)

		Convey("Then Named returns a usable logger", func() {
			named := Named("test")
			So(named, ShouldNotBeNil)
			named.Info(context.Background(), "test message")
		})

		Convey("Then Nop discards without panicking", func() {
			Nop().Error(context.Background(), "dropped", Error(nil))
		})
	})
}
