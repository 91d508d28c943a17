package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config はロガーの設定
type Config struct {
	Level  slog.Level
	Format string // "json" or "text"
}

// DefaultConfig はデフォルトのロガー設定
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
	}
}

// ParseLevel はログレベル文字列を slog.Level に変換する
// 未知の文字列は Info 扱いとする
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は新しいロガーを作成し、デフォルトロガーとして設定します
func New(cfg Config) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, cfg))
	slog.SetDefault(logger)
	return logger
}

// NewWithFile は標準出力と実行ログファイルの両方へ出力するロガーを作成し、
// デフォルトロガーとして設定します。返されるクローザは終了時に必ず呼ぶこと。
func NewWithFile(cfg Config, path string) (*slog.Logger, func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file %s: %w", path, err)
	}

	logger := slog.New(newHandler(io.MultiWriter(os.Stdout, f), cfg))
	slog.SetDefault(logger)

	return logger, f.Close, nil
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
	}

	switch cfg.Format {
	case "json":
		return slog.NewJSONHandler(w, opts)
	default: // "text"
		return slog.NewTextHandler(w, opts)
	}
}
