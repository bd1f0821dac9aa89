package config_test

import (
	"errors"
	"testing"

	"github.com/okian/volmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.TaskCategories, convey.ShouldResemble,
				[]string{"tshirts", "ticketSales", "raffleTicketSales", "trafficParking", "cleanupGrounds"})
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with an empty alias phrase", t, func() {
		cfg := config.New()
		cfg.LabelAliases = []config.LabelAlias{{Phrase: " ", Level: "open"}}

		convey.Convey("Then validation should fail", func() {
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
