// Command dayline はヘッドラインアーカイブのAPIサーバーとスナップショットワーカーを起動する。
//
// 使い方:
//
//	dayline [serve|worker|migrate|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/dayline/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "dayline: %v\n", err)
		os.Exit(1)
	}
}
