package app

// Command はworkmatchバイナリのサブコマンド。
type Command string

const (
	// CommandServe はJSON APIを提供する。既定のサブコマンド。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションを定期的に削除する。
	// 永続化されたセッションストア（postgres/redis）が必要。
	CommandWorker Command = "worker"
	// CommandMigrate は求人・応募・プロフィール・セッションのスキーマを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のserveの/healthを確認する。
	// distrolessイメージのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

// commandDescriptions は起動ログに出力するサブコマンドの説明。
var commandDescriptions = map[Command]string{
	CommandServe:       "job marketplace API server",
	CommandWorker:      "expired session cleanup",
	CommandMigrate:     "schema migration",
	CommandHealthcheck: "API health probe",
}

// Description はサブコマンドの説明を返す。
func (c Command) Description() string {
	return commandDescriptions[c]
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	cmd := Command(args[0])
	if _, ok := commandDescriptions[cmd]; !ok {
		return CommandServe
	}
	return cmd
}
