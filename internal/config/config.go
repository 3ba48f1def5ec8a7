package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config 配置文件结构体
type Config struct {
	Version string `yaml:"version"`

	Log struct {
		Level  string   `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
		Writer []string `yaml:"writer" validate:"dive,oneof=console file stderr"`
		File   string   `yaml:"file" validate:"required_if_file"`
	} `yaml:"log"`

	Interception struct {
		ServerHost       string `yaml:"serverHost" validate:"required"`
		GraceMS          int    `yaml:"graceMS" validate:"gte=0"`
		Workers          int    `yaml:"workers" validate:"gte=0"`
		ProcessTimeoutMS int    `yaml:"processTimeoutMS" validate:"gt=0"`
	} `yaml:"interception"`

	DevTools struct {
		URL            string `yaml:"url" validate:"required,url"`
		Target         string `yaml:"target"`
		AttachAttempts uint   `yaml:"attachAttempts" validate:"gte=1"`
	} `yaml:"devtools"`

	Journal struct {
		DSN string `yaml:"dsn"`
	} `yaml:"journal"`

	RulesFile string `yaml:"rulesFile"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	c := &Config{Version: "1.0.0"}
	c.Log.Level = "info"
	c.Log.Writer = []string{"console"}
	c.Interception.ServerHost = "127.0.0.1"
	c.Interception.GraceMS = 200
	c.Interception.Workers = 16
	c.Interception.ProcessTimeoutMS = 3000
	c.DevTools.URL = "http://127.0.0.1:9222"
	c.DevTools.AttachAttempts = 10
	return c
}

// Load 在默认配置之上读取 YAML 配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	c := NewConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// file 输出必须配置路径
	_ = v.RegisterValidation("required_if_file", func(fl validator.FieldLevel) bool {
		if fl.Field().String() != "" {
			return true
		}
		writers, ok := fl.Parent().FieldByName("Writer").Interface().([]string)
		if !ok {
			return true
		}
		for _, w := range writers {
			if w == "file" {
				return false
			}
		}
		return true
	}, true)
	return v
}

// Validate 校验配置
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Grace 停止拦截后的等待时间
func (c *Config) Grace() time.Duration {
	return time.Duration(c.Interception.GraceMS) * time.Millisecond
}

// ProcessTimeout 单次拦截事件的处理超时
func (c *Config) ProcessTimeout() time.Duration {
	return time.Duration(c.Interception.ProcessTimeoutMS) * time.Millisecond
}
