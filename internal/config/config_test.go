package config_test

import (
	"testing"
	"time"

	"github.com/okian/gvera/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, 1<<20)
			convey.So(cfg.MaxMultipartMemory, convey.ShouldEqual, 32<<20)
			convey.So(cfg.UploadDir, convey.ShouldEqual, "uploads")
			convey.So(cfg.AllowedFileTypes, convey.ShouldContain, "image/png")
			convey.So(cfg.Metrics.Enabled, convey.ShouldBeTrue)
			convey.So(cfg.Metrics.RefreshInterval, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}
