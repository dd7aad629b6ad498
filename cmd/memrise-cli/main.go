package main

import (
	"context"

	"memrise-uploader/cmd/memrise-cli/commands"
	"memrise-uploader/lib/telemetry"
	"memrise-uploader/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "memrise-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
