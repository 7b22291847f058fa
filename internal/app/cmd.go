package app

import "strings"

// Command はプロセスの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーとして起動する。
	CommandServe Command = "serve"
	// CommandWorker はスナップショット作成とクリーンアップのワーカーとして起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はデータベースマイグレーションを実行して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中プロセスの /health を確認して終了する。
	// distrolessイメージにはcurlがないため、Dockerのヘルスチェックから使う。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandWorker):      CommandWorker,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 2つ目以降の引数は無視する。
// 引数が空またはサポート外の場合はCommandServeとfalseを返す。
func ParseCommand(args []string) (Command, bool) {
	if len(args) == 0 {
		return CommandServe, true
	}
	cmd, ok := knownCommands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return CommandServe, false
	}
	return cmd, true
}

// UsesDatabase はコマンドがDB接続を必要とするかを返す。
func (c Command) UsesDatabase() bool {
	return c != CommandHealthcheck
}
