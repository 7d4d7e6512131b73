package constant

import (
	_ "embed"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/samber/lo"
)

//go:embed version
var version string

var (
	Version = strings.TrimSpace(version)

	// Set with -ldflags "-X github.com/xeptore/spotfolio/constant.compileTime=<RFC3339>".
	compileTime string

	// CompileTime falls back to the VCS commit time stamped by the toolchain,
	// and to the zero time when neither is available.
	CompileTime = parseCompileTime()
)

func parseCompileTime() time.Time {
	if compileTime == "" {
		return vcsTime()
	}
	t, err := time.Parse(time.RFC3339, compileTime)
	if nil != err {
		panic(fmt.Errorf("compileTime %q is not in RFC3339 format", compileTime))
	}
	return t
}

func vcsTime() time.Time {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return time.Time{}
	}
	setting, ok := lo.Find(info.Settings, func(s debug.BuildSetting) bool { return s.Key == "vcs.time" })
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, setting.Value)
	if nil != err {
		return time.Time{}
	}
	return t
}
