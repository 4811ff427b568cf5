package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the subset of Config that may be set from a YAML file.
type fileConfig struct {
	Env  string `yaml:"env"`
	Port int    `yaml:"port"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Session struct {
		Secret     string `yaml:"secret"`
		CookieName string `yaml:"cookie_name"`
		MaxAge     string `yaml:"max_age"`
		UpdateAge  string `yaml:"update_age"`
		Domain     string `yaml:"cookie_domain"`
	} `yaml:"session"`

	Admin struct {
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Role     string `yaml:"role"`
	} `yaml:"admin"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	LoginThrottle struct {
		Limit  int    `yaml:"limit"`
		Window string `yaml:"window"`
	} `yaml:"login_throttle"`

	OTel struct {
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`

	PublicPaths []string `yaml:"public_paths"`
}

func applyFile(cfg *Config, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var fc fileConfig
	if err := yaml.NewDecoder(file).Decode(&fc); err != nil {
		return fmt.Errorf("decode config file: %w", err)
	}

	return fc.apply(cfg)
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.Env, fc.Env)
	if fc.Port > 0 {
		cfg.Port = fc.Port
	}
	setString(&cfg.DBURL, fc.Database.URL)

	setString(&cfg.SessionSecret, fc.Session.Secret)
	setString(&cfg.SessionCookieName, fc.Session.CookieName)
	setString(&cfg.CookieDomain, fc.Session.Domain)
	if err := setDuration(&cfg.SessionMaxAge, fc.Session.MaxAge); err != nil {
		return fmt.Errorf("session.max_age: %w", err)
	}
	if err := setDuration(&cfg.SessionUpdateAge, fc.Session.UpdateAge); err != nil {
		return fmt.Errorf("session.update_age: %w", err)
	}

	setString(&cfg.AdminEmail, fc.Admin.Email)
	setString(&cfg.AdminPassword, fc.Admin.Password)
	setString(&cfg.AdminName, fc.Admin.Name)
	setString(&cfg.AdminRole, fc.Admin.Role)

	setString(&cfg.RedisAddr, fc.Redis.Addr)
	setString(&cfg.RedisPassword, fc.Redis.Password)
	if fc.Redis.DB > 0 {
		cfg.RedisDB = fc.Redis.DB
	}

	if fc.LoginThrottle.Limit > 0 {
		cfg.LoginRateLimit = fc.LoginThrottle.Limit
	}
	if err := setDuration(&cfg.LoginRateWindow, fc.LoginThrottle.Window); err != nil {
		return fmt.Errorf("login_throttle.window: %w", err)
	}

	setString(&cfg.OTelEndpoint, fc.OTel.Endpoint)
	if fc.OTel.SampleRatio > 0 {
		cfg.OTelSampleRatio = fc.OTel.SampleRatio
	}

	if len(fc.PublicPaths) > 0 {
		cfg.PublicPaths = fc.PublicPaths
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
