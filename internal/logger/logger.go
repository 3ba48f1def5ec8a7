package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 键值对风格的日志接口
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Err(err error, msg string, kv ...any)
	With(kv ...any) Logger
}

// Options 日志配置
type Options struct {
	Level  string
	Writer []string // console, file, stderr
	File   string
}

type zlog struct {
	z zerolog.Logger
}

// New 根据配置创建 zerolog 日志
func New(opts Options) Logger {
	var ws []io.Writer
	for _, w := range opts.Writer {
		switch strings.ToLower(w) {
		case "console":
			ws = append(ws, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime})
		case "stderr":
			ws = append(ws, os.Stderr)
		case "file":
			if opts.File == "" {
				continue
			}
			ws = append(ws, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			})
		}
	}
	if len(ws) == 0 {
		ws = append(ws, os.Stderr)
	}
	z := zerolog.New(zerolog.MultiLevelWriter(ws...)).
		Level(ParseLevel(opts.Level)).
		With().Timestamp().Logger()
	return &zlog{z: z}
}

// NewTest 将日志输出到测试的 t.Log
func NewTest(t zerolog.TestingLog) Logger {
	z := zerolog.New(zerolog.NewTestWriter(t)).With().Timestamp().Logger()
	return &zlog{z: z}
}

// NewWriter 输出 JSON 行到 w
func NewWriter(w io.Writer) Logger {
	return &zlog{z: zerolog.New(w)}
}

// NewNop 丢弃所有日志
func NewNop() Logger {
	return &zlog{z: zerolog.Nop()}
}

// ParseLevel 解析日志级别，无法识别时使用 info
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *zlog) Debug(msg string, kv ...any) { l.z.Debug().Fields(kv).Msg(msg) }
func (l *zlog) Info(msg string, kv ...any)  { l.z.Info().Fields(kv).Msg(msg) }
func (l *zlog) Warn(msg string, kv ...any)  { l.z.Warn().Fields(kv).Msg(msg) }
func (l *zlog) Error(msg string, kv ...any) { l.z.Error().Fields(kv).Msg(msg) }

func (l *zlog) Err(err error, msg string, kv ...any) {
	l.z.Error().Err(err).Fields(kv).Msg(msg)
}

func (l *zlog) With(kv ...any) Logger {
	return &zlog{z: l.z.With().Fields(kv).Logger()}
}
