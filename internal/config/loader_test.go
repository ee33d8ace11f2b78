package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/kickhub/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

// setenv sets an override for the current leaf and removes it afterwards.
func setenv(key, value string) {
	_ = os.Setenv(key, value)
	convey.Reset(func() { _ = os.Unsetenv(key) })
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			setenv("KICKHUB_ADDR", ":8080")
			setenv("KICKHUB_TRANSPORT", "mqtt")
			setenv("KICKHUB_MQTT_TOPIC_PREFIX", "hax")
			setenv("KICKHUB_TICK_INTERVAL_MS", "20")
			setenv("KICKHUB_TIES_COUNT_AS_WINS", "true")
			setenv("KICKHUB_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Transport, convey.ShouldEqual, config.TransportMQTT)
				convey.So(cfg.MQTTTopicPrefix, convey.ShouldEqual, "hax")
				convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 20)
				convey.So(cfg.TiesCountAsWins, convey.ShouldBeTrue)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble,
					[]string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := filepath.Join(t.TempDir(), "kickhub.yaml")
			yaml := "addr: \":7000\"\nstore_path: /tmp/kicks.db\nlegacy_zero_swallow: false\ntop_teammates: 5\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			setenv("KICKHUB_CONFIG", path)
			setenv("KICKHUB_TOP_TEAMMATES", "4")

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/kicks.db")
				convey.So(cfg.LegacyZeroSwallow, convey.ShouldBeFalse)
				convey.So(cfg.TopTeammates, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the config file is missing", func() {
			setenv("KICKHUB_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When validation fails", func() {
			setenv("KICKHUB_TICK_INTERVAL_MS", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
