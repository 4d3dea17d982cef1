package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/execbridge"
	"custodia/pkg/domain"
	dErrors "custodia/pkg/domain-errors"
)

func TestSync_Success(t *testing.T) {
	runner := &fakeRunner{result: execbridge.Result{ExitCode: 0}}
	client := NewSyncClient(runner, Tool{Bin: "node", Script: "sync.js", Workdir: "/opt/ledger"}, discardLogger(), nil)

	err := client.Sync(context.Background(), domain.IdentityKindNationalID, "1020304050")

	require.NoError(t, err)
	assert.Equal(t, []string{"node", "sync.js", "--person", "CC", "1020304050"}, runner.last.Argv)
	assert.Equal(t, "/opt/ledger", runner.last.Dir)
}

func TestSync_NoScriptConfigured(t *testing.T) {
	runner := &fakeRunner{result: execbridge.Result{ExitCode: 0}}
	client := NewSyncClient(runner, Tool{Bin: "/usr/local/bin/ledger-sync"}, discardLogger(), nil)

	err := client.Sync(context.Background(), domain.IdentityKindMinorID, "99")

	require.NoError(t, err)
	assert.Equal(t, []string{"/usr/local/bin/ledger-sync", "--person", "TI", "99"}, runner.last.Argv)
}

func TestSync_FailureCarriesFirstStderrLine(t *testing.T) {
	runner := &fakeRunner{result: execbridge.Result{
		ExitCode: 2,
		Stderr:   "\n\n  connection to peer refused  \nat gateway.js:120",
	}}
	client := NewSyncClient(runner, testTool(), discardLogger(), nil)

	err := client.Sync(context.Background(), domain.IdentityKindNationalID, "1")

	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExternalTool))
	assert.Equal(t, "connection to peer refused", dErrors.Reason(err))
}

func TestSync_SpawnFailureHasFallbackReason(t *testing.T) {
	runner := &fakeRunner{result: execbridge.Result{ExitCode: execbridge.SpawnExitCode}}
	client := NewSyncClient(runner, testTool(), discardLogger(), nil)

	err := client.Sync(context.Background(), domain.IdentityKindNationalID, "1")

	require.Error(t, err)
	assert.Equal(t, "ledger sync tool failed", dErrors.Reason(err))
}

func TestFirstNonBlankLine(t *testing.T) {
	assert.Equal(t, "x", firstNonBlankLine("\n\t \nx\ny"))
	assert.Equal(t, "", firstNonBlankLine(" \n \n"))
	assert.Equal(t, "", firstNonBlankLine(""))
}
