// Command nock is the Nock evaluator CLI.
package main

import (
	"os"

	"github.com/golang/glog"
)

func main() {
	err := newNockCmd().Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
