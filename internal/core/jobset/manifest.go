package jobset

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest は実行バッチのYAML定義を表す
// CLIフラグはマニフェストの値を上書きする
type Manifest struct {
	Alignment       string   `yaml:"alignment" validate:"required"`
	Prefs           string   `yaml:"prefs" validate:"required"`
	Tree            string   `yaml:"tree"`        // 省略時は外部ツリービルダーで推定
	DivPressure     []string `yaml:"divpressure"` // 多様化圧ファイルのリスト
	Randomizations  int      `yaml:"randomizations" validate:"gte=0"`
	NCPUs           int      `yaml:"ncpus" validate:"gte=0"` // 0 はホストから自動取得
	OutPrefix       string   `yaml:"outprefix"`
	ModelFamily     string   `yaml:"model"`
	OmegaBySite     bool     `yaml:"omegabysite"`
	DiffPrefsBySite bool     `yaml:"diffprefsbysite"`
}

// LoadManifest はYAMLマニフェストを読み込み、構造を検証する
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if err := validator.New().Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return &m, nil
}
