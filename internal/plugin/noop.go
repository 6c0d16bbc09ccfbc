package plugin

import (
	"context"
	"fmt"

	"github.com/relgate/relgate/internal/relerrors"
)

// NoopVerify is a trivial verifyConditions/verifyRelease reference plugin
// that always succeeds, so a freshly-configured pipeline is runnable
// out of the box without a real verification plugin.
func NoopVerify(ctx context.Context, pctx *Context) error { return nil }

// LoggingSuccess is the reference success plugin: it logs every release
// produced this invocation through the Context's Logger.
func LoggingSuccess(ctx context.Context, pctx *Context) error {
	if len(pctx.Releases) == 0 {
		pctx.Logger.Info("no releases published")
		return nil
	}
	for _, r := range pctx.Releases {
		pctx.Logger.Info(fmt.Sprintf("released %s on channel %q (%s)", r.Version, displayChannel(r.Channel), r.GitTag))
	}
	return nil
}

// LoggingFail is the reference fail plugin: it logs each semantic-release
// error the driver routed here.
func LoggingFail(ctx context.Context, pctx *Context, errs []*relerrors.Error) error {
	for _, e := range errs {
		pctx.Logger.Error(e.Error())
	}
	return nil
}

func displayChannel(channel string) string {
	if channel == "" {
		return "default"
	}
	return channel
}
