package main

import (
	"flag"
	"strconv"

	"github.com/golang/glog"
)

// initLogging points glog at stderr or its log files and sets its
// verbosity. glog only exposes these through the standard flag set.
func initLogging(logToStderr bool, verbose int) {
	if logToStderr {
		if err := flag.Set("logtostderr", "true"); err != nil {
			glog.Warningf("logtostderr: %v", err)
		}
	}
	if verbose > 0 {
		if err := flag.Lookup("v").Value.Set(strconv.Itoa(verbose)); err != nil {
			glog.Warningf("verbosity %d: %v", verbose, err)
		}
	}
}
