package rulespec

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 规则文件结构
type Config struct {
	Rules []RuleSpec  `yaml:"rules"`
	Allow []MatchSpec `yaml:"allow"`
}

// MatchSpec URL 与方法描述，url/exact/pattern 三选一
type MatchSpec struct {
	URL     string `yaml:"url"`
	Exact   string `yaml:"exact"`
	Pattern string `yaml:"pattern"`
	Method  string `yaml:"method"`
}

// RuleSpec 规则文件中的单条规则
type RuleSpec struct {
	MatchSpec `yaml:",inline"`
	Response  string         `yaml:"response"`
	JSON      map[string]any `yaml:"json"`
}

var errMatcherCount = errors.New("exactly one of url, exact, pattern is required")

// LoadConfig 读取并解析规则文件
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析 YAML 规则
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return &cfg, nil
}

// Matcher 构造匹配器
func (s MatchSpec) Matcher() (Matcher, error) {
	n := 0
	for _, v := range []string{s.URL, s.Exact, s.Pattern} {
		if v != "" {
			n++
		}
	}
	if n != 1 {
		return Matcher{}, errMatcherCount
	}
	switch {
	case s.URL != "":
		return Literal(s.URL), nil
	case s.Exact != "":
		return Exact(s.Exact), nil
	default:
		return CompilePattern(s.Pattern)
	}
}

// Build 将配置转换为规则与放行列表，保持文件中的顺序
func (c *Config) Build() ([]Rule, []AllowEntry, error) {
	if c == nil {
		return nil, nil, nil
	}
	rules := make([]Rule, 0, len(c.Rules))
	for i, rs := range c.Rules {
		m, err := rs.Matcher()
		if err != nil {
			return nil, nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		body := rs.Response
		if len(rs.JSON) > 0 {
			if body != "" {
				return nil, nil, fmt.Errorf("rules[%d]: response and json are mutually exclusive", i)
			}
			if body, err = JSONFromMap(rs.JSON); err != nil {
				return nil, nil, fmt.Errorf("rules[%d]: %w", i, err)
			}
		}
		rules = append(rules, NewRule(m, ParseMethod(rs.Method), body))
	}
	allow := make([]AllowEntry, 0, len(c.Allow))
	for i, as := range c.Allow {
		m, err := as.Matcher()
		if err != nil {
			return nil, nil, fmt.Errorf("allow[%d]: %w", i, err)
		}
		allow = append(allow, Allow(m, ParseMethod(as.Method)))
	}
	return rules, allow, nil
}
