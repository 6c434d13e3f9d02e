package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token         string
		AdminChatID   int64 `mapstructure:"admin_chat_id"`
		UpdateTimeout int   `mapstructure:"update_timeout"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Storage struct {
		// Driver: file | sqlite | postgres
		Driver string
		Path   string
		Seed   bool
	} `mapstructure:"storage"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Alerts struct {
		Loose  string
		Packed int64
	} `mapstructure:"alerts"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "Asia/Kolkata")
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("telegram.update_timeout", 60)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "data/stock.json")
	v.SetDefault("storage.seed", false)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("alerts.loose", "10")
	v.SetDefault("alerts.packed", 5)
}

// Load читает YAML (если path не пустой), затем .env и переменные APP_*,
// например APP_TELEGRAM_TOKEN или APP_STORAGE_DRIVER.
func Load(path string) (Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if _, err := c.Thresholds(); err != nil {
		return c, err
	}
	if _, err := c.Location(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) Thresholds() (analytics.Thresholds, error) {
	loose, err := decimal.NewFromString(c.Alerts.Loose)
	if err != nil {
		return analytics.Thresholds{}, fmt.Errorf("alerts.loose: %w", err)
	}
	if loose.IsNegative() || c.Alerts.Packed < 0 {
		return analytics.Thresholds{}, fmt.Errorf("alerts: thresholds must not be negative")
	}
	return analytics.Thresholds{Loose: loose, Packed: c.Alerts.Packed}, nil
}

// Location: часовой пояс бизнес-дат («сегодня»).
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}
	return loc, nil
}
