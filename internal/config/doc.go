// Package config は環境変数からプロセス設定を読み込む。
package config
