package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"custodia/internal/execbridge"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// Tool locates one external ledger tool: the interpreter or binary, an
// optional script argument, and the working directory the tool expects to be
// run from (its own checkouts carry wallets and connection profiles).
type Tool struct {
	Bin     string
	Script  string
	Workdir string
	Timeout time.Duration
}

// argv builds the base invocation. Script is optional; some deployments ship
// a compiled tool instead of an interpreted one.
func (t Tool) argv(extra ...string) []string {
	argv := []string{t.Bin}
	if t.Script != "" {
		argv = append(argv, t.Script)
	}
	return append(argv, extra...)
}

// SyncClient pushes one identity's records onto the ledger by invoking the
// configured sync tool. The tool reports success only through its exit code;
// there is no stdout contract.
type SyncClient struct {
	runner  execbridge.Runner
	tool    Tool
	logger  *slog.Logger
	metrics *Metrics
}

func NewSyncClient(runner execbridge.Runner, tool Tool, logger *slog.Logger, metrics *Metrics) *SyncClient {
	return &SyncClient{runner: runner, tool: tool, logger: logger, metrics: metrics}
}

// Sync refreshes the ledger records for one identity. A non-zero exit or a
// spawn failure is reported with the tool's own first stderr line as the
// reason. No retries happen here; retry policy belongs to the caller.
func (c *SyncClient) Sync(ctx context.Context, kind domain.IdentityKind, number string) error {
	start := time.Now()
	result := c.runner.Run(ctx, execbridge.Command{
		Argv:    c.tool.argv("--person", kind.String(), number),
		Dir:     c.tool.Workdir,
		Timeout: c.tool.Timeout,
	})
	c.metrics.ObserveToolDuration("sync", time.Since(start).Seconds())

	if result.Ok() {
		return nil
	}

	c.metrics.RecordToolFailure("sync")
	reason := firstNonBlankLine(result.Stderr)
	if reason == "" {
		reason = "ledger sync tool failed"
	}
	c.logger.WarnContext(ctx, "ledger sync failed",
		"identity_kind", kind.String(),
		"exit_code", result.ExitCode,
		"reason", reason,
	)
	return dErrors.Wrap(fmt.Errorf("sync tool exit code %d", result.ExitCode),
		dErrors.CodeExternalTool, reason)
}

// firstNonBlankLine extracts the first line of text that is not only
// whitespace; ledger tools prefix their real message with blank padding.
func firstNonBlankLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
