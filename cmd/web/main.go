package main

import (
	"os"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		hlog.Errorf("%v", err)
		os.Exit(1)
	}
}
