package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"custodia/internal/execbridge"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

// ListClient queries the documents visible on-chain for one identity.
type ListClient struct {
	runner  execbridge.Runner
	tool    Tool
	logger  *slog.Logger
	metrics *Metrics
}

func NewListClient(runner execbridge.Runner, tool Tool, logger *slog.Logger, metrics *Metrics) *ListClient {
	return &ListClient{runner: runner, tool: tool, logger: logger, metrics: metrics}
}

// ListDocuments runs the listing tool and maps its output. The tool's stdout
// interleaves log noise with one JSON array, so the array is cut out between
// the first '[' and the last ']' before parsing. A non-zero exit is a hard
// failure: an empty-but-successful listing must stay distinguishable from
// "the tool could not run".
func (c *ListClient) ListDocuments(ctx context.Context, kind domain.IdentityKind, number string) ([]Document, error) {
	start := time.Now()
	result := c.runner.Run(ctx, execbridge.Command{
		Argv:    c.tool.argv(kind.String(), number),
		Dir:     c.tool.Workdir,
		Timeout: c.tool.Timeout,
	})
	c.metrics.ObserveToolDuration("list", time.Since(start).Seconds())

	if !result.Ok() {
		c.metrics.RecordToolFailure("list")
		reason := firstNonBlankLine(result.Stderr)
		if reason == "" {
			reason = "ledger listing tool failed"
		}
		c.logger.WarnContext(ctx, "ledger listing failed",
			"identity_kind", kind.String(),
			"exit_code", result.ExitCode,
			"reason", reason,
		)
		return nil, dErrors.Wrap(fmt.Errorf("listing tool exit code %d", result.ExitCode),
			dErrors.CodeExternalTool, reason)
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(extractJSONArray(result.Stdout)), &rows); err != nil {
		c.metrics.RecordToolFailure("list")
		return nil, dErrors.Wrap(err, dErrors.CodeExternalTool, "ledger listing output is not valid JSON")
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs, nil
}

// extractJSONArray isolates the JSON payload from surrounding console noise:
// everything from the first '[' through the last ']'. When no array is
// present the listing is treated as empty.
func extractJSONArray(stdout string) string {
	first := strings.Index(stdout, "[")
	last := strings.LastIndex(stdout, "]")
	if first == -1 || last == -1 || last < first {
		return "[]"
	}
	return stdout[first : last+1]
}
