package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// 外部プログラム設定
	Fitter FitterConfig

	// ロギング設定
	Log LogConfig

	// CPUバジェット（0 はホストから自動取得）
	NCPUs int
}

// FitterConfig は外部モデルフィッティングプログラムの設定
type FitterConfig struct {
	Program     string // フィッティングプログラム（例: phydms）
	TreeBuilder string // 初期ツリー推定プログラム（例: raxml）
}

// LogConfig は実行ログの設定
type LogConfig struct {
	Level  string // debug / info / warn / error
	Format string // "json" or "text"
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Fitter: FitterConfig{
			Program:     getEnv("PHYDMS_PROG", "phydms"),
			TreeBuilder: getEnv("PHYDMS_TREE_BUILDER", "raxml"),
		},
		Log: LogConfig{
			Level:  getEnv("PHYDMS_LOG_LEVEL", "info"),
			Format: getEnv("PHYDMS_LOG_FORMAT", "text"),
		},
		NCPUs: getEnvAsInt("PHYDMS_NCPUS", 0),
	}

	return cfg, nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
