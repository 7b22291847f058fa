// Package country は対応国の一覧（名称、タイムゾーン、公開開始日）を提供する。
// 既定の一覧は埋め込みのcountries.yamlから読み込み、COUNTRIES_FILEで差し替えられる。
package country

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/model"
)

//go:embed countries.yaml
var defaultCountries []byte

// DefaultLaunchDay は公開開始日が未指定の国に使う日付。
var DefaultLaunchDay = dayview.CalendarDate{Year: 2024, Month: time.July, Day: 4}

// Country は対応国1件分の設定。
type Country struct {
	Key      string `yaml:"key" json:"key"`
	English  string `yaml:"english" json:"english"`
	Hebrew   string `yaml:"hebrew" json:"hebrew"`
	Timezone string `yaml:"timezone" json:"timezone"`
	Flag     string `yaml:"flag" json:"flag"`
	Launch   string `yaml:"launch" json:"launch"`

	launchDay dayview.CalendarDate
}

// LaunchDay はデータ提供開始日を返す。
func (c *Country) LaunchDay() dayview.CalendarDate {
	if c.launchDay.IsZero() {
		return DefaultLaunchDay
	}
	return c.launchDay
}

// Zone は国のタイムゾーン名を返す。未設定の場合は "UTC"。
func (c *Country) Zone() string {
	if c.Timezone == "" {
		return "UTC"
	}
	return c.Timezone
}

// Name はロケールに応じた国名を返す。ヘブライ語名が無い場合は英語名を使う。
func (c *Country) Name(locale string) string {
	if locale == model.LocaleHebrew && c.Hebrew != "" {
		return c.Hebrew
	}
	if c.English != "" {
		return c.English
	}
	return c.Key
}

// Registry は国キーから国設定を引く読み取り専用のテーブル。
type Registry struct {
	byKey map[string]*Country
	keys  []string
}

type registryFile struct {
	Countries []*Country `yaml:"countries"`
}

// Load はYAMLから国一覧を読み込む。
// キーの重複、空のキー、不正な公開開始日はエラーになる。
func Load(r io.Reader) (*Registry, error) {
	var f registryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}

	reg := &Registry{byKey: make(map[string]*Country, len(f.Countries))}
	for _, c := range f.Countries {
		if c.Key == "" {
			return nil, fmt.Errorf("country without key")
		}
		if _, dup := reg.byKey[c.Key]; dup {
			return nil, fmt.Errorf("duplicate country key: %s", c.Key)
		}
		if c.Launch != "" {
			d, err := dayview.ParseISODate(c.Launch)
			if err != nil {
				return nil, fmt.Errorf("country %s: %w", c.Key, err)
			}
			c.launchDay = d
		}
		reg.byKey[c.Key] = c
		reg.keys = append(reg.keys, c.Key)
	}

	return reg, nil
}

// Default は埋め込みの国一覧を返す。
func Default() (*Registry, error) {
	return Load(bytes.NewReader(defaultCountries))
}

// LoadFile はpathが空なら埋め込みの一覧を、そうでなければファイルから読み込む。
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open countries file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup は国キーに対応する設定を返す。見つからない場合はfalse。
func (r *Registry) Lookup(key string) (*Country, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// Keys はファイルに記載された順で国キーを返す。
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// All はファイルに記載された順で全ての国を返す。
func (r *Registry) All() []*Country {
	out := make([]*Country, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.byKey[k])
	}
	return out
}
