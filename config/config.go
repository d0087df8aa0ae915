package config

import (
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	JwtSecret    string `yaml:"jwt_secret" json:"jwt_secret"`
	SessionKey   string `yaml:"session_key" json:"session_key"`
	DocsPassword string `yaml:"docs_password" json:"docs_password"`
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

type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
	Bucket    string `yaml:"bucket" json:"bucket"`
	PublicURL string `yaml:"public_url" json:"public_url"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
}

type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url" json:"webhook_url"`
	SMTPHost   string `yaml:"smtp_host" json:"smtp_host"`
	SMTPPort   int    `yaml:"smtp_port" json:"smtp_port"`
	SMTPUser   string `yaml:"smtp_user" json:"smtp_user"`
	SMTPPasswd string `yaml:"smtp_passwd" json:"smtp_passwd"`
	MailFrom   string `yaml:"mail_from" json:"mail_from"`
	Workers    int    `yaml:"workers" json:"workers"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Storage  StorageConfig `yaml:"storage" json:"storage"`
	Notify   NotifyConfig  `yaml:"notify" json:"notify"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Barbershop",
		Location: "Asia/Jakarta",
		Workdir:  "/var/barbershop",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1989,
		JwtSecret: "9b6de5cc-barbers-0000-0000-secret",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "barbershop",
		User:     "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Notify: NotifyConfig{
		Workers: 8,
	},
	Logger: LogConfig{
		Mode:     "development",
		Filename: "/var/barbershop/barbershop.log",
	},
}

// LoadConfig reads the YAML config file and overlays BARBERSHOP_* process
// environment values on top, so containers can override single settings
// without a config file rewrite.
func LoadConfig(cfile string) *AppConfig {
	cc := *DefaultAppConfig
	cfg := &cc
	if _, err := os.Stat(cfile); err == nil {
		data, err := os.ReadFile(cfile)
		if err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	applyEnv(cfg)
	return cfg
}

func applyEnv(cfg *AppConfig) {
	overlay := map[string]interface{}{}
	set := func(section, key, value string) {
		m, ok := overlay[section].(map[string]interface{})
		if !ok {
			m = map[string]interface{}{}
			overlay[section] = m
		}
		m[key] = value
	}

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "BARBERSHOP_") {
			continue
		}
		// BARBERSHOP_DATABASE_HOST -> database.host
		path := strings.SplitN(strings.ToLower(strings.TrimPrefix(parts[0], "BARBERSHOP_")), "_", 2)
		if len(path) != 2 {
			continue
		}
		set(path[0], path[1], parts[1])
	}

	if len(overlay) == 0 {
		return
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return
	}
	_ = decoder.Decode(overlay)
}

func (c *AppConfig) WebListen() string {
	return c.Web.Host + ":" + cast.ToString(c.Web.Port)
}
