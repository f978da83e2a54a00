package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development | production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
	NotifyTo string `yaml:"notify_to" json:"notify_to"`
}

type PortalConfig struct {
	// FormRateLimit is the max public form submissions per client IP per hour.
	FormRateLimit int `yaml:"form_rate_limit" json:"form_rate_limit"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
	Smtp     SmtpConfig   `yaml:"smtp" json:"smtp"`
	Portal   PortalConfig `yaml:"portal" json:"portal"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "viewguard",
		Location: "Asia/Shanghai",
		Workdir:  "/var/viewguard",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-viewguard-1816-portal",
		JwtExpire: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "viewguard",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/viewguard/viewguard.log",
	},
	Portal: PortalConfig{
		FormRateLimit: 20,
	},
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v == "true" || v == "1" || v == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		var iv int
		if _, err := fmt.Sscanf(v, "%d", &iv); err == nil {
			*val = iv
		}
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides (VIEWGUARD_ prefix). A missing file falls back to defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			cfg = new(AppConfig)
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(fmt.Errorf("parse config %s: %w", cfile, err))
			}
		}
	}

	setEnvValue("VIEWGUARD_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("VIEWGUARD_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("VIEWGUARD_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("VIEWGUARD_WEB_PORT", &cfg.Web.Port)
	setEnvValue("VIEWGUARD_WEB_SECRET", &cfg.Web.Secret)

	setEnvValue("VIEWGUARD_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("VIEWGUARD_DB_PORT", &cfg.Database.Port)
	setEnvValue("VIEWGUARD_DB_NAME", &cfg.Database.Name)
	setEnvValue("VIEWGUARD_DB_USER", &cfg.Database.User)
	setEnvValue("VIEWGUARD_DB_PWD", &cfg.Database.Passwd)

	setEnvValue("VIEWGUARD_SMTP_HOST", &cfg.Smtp.Host)
	setEnvIntValue("VIEWGUARD_SMTP_PORT", &cfg.Smtp.Port)
	setEnvValue("VIEWGUARD_SMTP_USERNAME", &cfg.Smtp.Username)
	setEnvValue("VIEWGUARD_SMTP_PASSWORD", &cfg.Smtp.Password)

	if cfg.System.Workdir != "" {
		_ = os.MkdirAll(cfg.System.Workdir, 0o755)
		_ = os.MkdirAll(filepath.Join(cfg.System.Workdir, "data"), 0o755)
	}

	return cfg
}
