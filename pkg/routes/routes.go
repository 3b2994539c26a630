package routes

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Set は認証不要ルートの不変集合。
// 構築後に変更されないため、ロックなしで並行に参照できる。
type Set struct {
	// paths は正規化済みのパス集合。
	paths map[string]struct{}
}

// New は指定されたパスから認証不要ルートの集合を生成する。
// 各パスはNormalizeで正規化してから登録する。空文字列は無視する。
func New(paths ...string) *Set {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		set[Normalize(p)] = struct{}{}
	}
	return &Set{paths: set}
}

// IsUnprotected はパスが認証不要ルートに含まれるかを返す。
// 比較は正規化済みパスとの完全一致で行う。
func (s *Set) IsUnprotected(path string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[path]
	return ok
}

// Len は登録されているルート数を返す。
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Normalize はURLまたはリクエストターゲットからパス部分のみを取り出す。
// スキーム付きのURLのみホストを取り除く。"//x" のようなパスはそのまま扱う。
// クエリとフラグメントを取り除き、空のパスは "/" とする。
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		raw = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}

// file はLoadFileが読み込むYAMLファイルの構造。
type file struct {
	// UnprotectedRoutes は認証不要ルートの一覧。
	UnprotectedRoutes []string `yaml:"unprotected_routes"`
}

// LoadFile はYAMLファイルから認証不要ルートの一覧を読み込む。
//
//	unprotected_routes:
//	  - /health
//	  - /public/health
func LoadFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ルート定義ファイルの読み込みに失敗: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ルート定義ファイルのパースに失敗: %w", err)
	}
	return f.UnprotectedRoutes, nil
}
