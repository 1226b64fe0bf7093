package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sftpfetch/internal/models"
	"sftpfetch/internal/remote/remotetest"
	"sftpfetch/internal/rename"
)

func testOptions(root string, today time.Time) Options {
	return Options{
		RunID:     "run-1",
		Transport: "sftp",
		RemoteDir: "/out",
		Criteria: models.SelectionCriteria{
			DatePrefixFormat:    "2006-01-02",
			NamePatterns:        []string{"Vendas_Diario", "Estoque_Diario"},
			RequiredSuffix:      ".csv",
			ExclusionSubstrings: []string{"NãoPegar"},
		},
		Classifier: rename.Classifier{
			MarkerA: "Vendas_Diario",
			PrefixA: "Vendas",
			PrefixB: "Estoque",
			DirA:    filepath.Join(root, "vendas"),
			DirB:    filepath.Join(root, "estoque"),
		},
		Now:    func() time.Time { return today },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Thursday 2025-10-02 targets Wednesday 2025-10-01.
var thursday = time.Date(2025, 10, 2, 7, 30, 0, 0, time.UTC)

func TestRun(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").
		Add("2025-10-01_Vendas_Diario_b.csv", []byte("vendas-b")).
		Add("2025-10-01_Vendas_Diario_a.csv", []byte("vendas-a")).
		Add("2025-10-01_Estoque_Diario.csv", []byte("estoque")).
		Add("2025-10-01_Estoque_Diario_NãoPegar.csv", []byte("skip")).
		Add("2025-09-30_Estoque_Diario.csv", []byte("old"))

	result, err := New(session, testOptions(root, thursday)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, "2025-10-01", result.TargetDate)
	assert.False(t, result.FellBack)
	assert.Equal(t, 3, result.TotalFiles)
	assert.Equal(t, int64(len("vendas-b")+len("vendas-a")+len("estoque")), result.TotalSizeBytes)

	require.Len(t, result.Files, 3)
	assert.Equal(t, filepath.Join(root, "estoque", "Estoque-20251001.csv"), result.Files[0].FinalPath)
	assert.Equal(t, filepath.Join(root, "vendas", "Vendas-20251001.csv"), result.Files[1].FinalPath)
	assert.Equal(t, filepath.Join(root, "vendas", "Vendas-20251001_2.csv"), result.Files[2].FinalPath)

	content, err := os.ReadFile(result.Files[1].FinalPath)
	require.NoError(t, err)
	assert.Equal(t, "vendas-a", string(content))

	assert.Equal(t, []string{
		"/out/2025-10-01_Estoque_Diario.csv",
		"/out/2025-10-01_Vendas_Diario_a.csv",
		"/out/2025-10-01_Vendas_Diario_b.csv",
	}, session.Opens)
	assert.Equal(t, 1, session.Lists)
}

func TestRunFallback(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").Add("2025-09-30_Estoque_Diario.csv", []byte("old"))

	result, err := New(session, testOptions(root, thursday)).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, result.FellBack)
	assert.Equal(t, "2025-09-30", result.TargetDate)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "Estoque-20250930.csv", filepath.Base(result.Files[0].FinalPath))
}

func TestRunNothingToDo(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").Add("2025-09-01_Estoque_Diario.csv", []byte("ancient"))

	result, err := New(session, testOptions(root, thursday)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "nothing to do", result.Message)
	assert.Zero(t, result.TotalFiles)
	assert.NotNil(t, result.Files)
	assert.Empty(t, session.Opens)
	assert.NoDirExists(t, filepath.Join(root, "estoque"))
}

func TestRunListingError(t *testing.T) {
	session := remotetest.NewSession("/out")
	session.ListErr = errors.New("permission denied")

	_, err := New(session, testOptions(t.TempDir(), thursday)).Run(context.Background())

	assert.ErrorIs(t, err, models.ErrListing)
}

func TestDownloadAndRenameTransferFailureAbortsBatch(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").
		Add("2025-10-01_Estoque_Diario.csv", []byte("estoque")).
		Add("2025-10-01_Vendas_Diario.csv", []byte("vendas-a")).
		Add("2025-10-01_Vendas_Diario_x.csv", []byte("vendas-x"))
	session.ReadErr["/out/2025-10-01_Vendas_Diario.csv"] = errors.New("connection lost")

	p := New(session, testOptions(root, thursday))
	sel, err := p.FindTargetFiles(context.Background(), "/out")
	require.NoError(t, err)

	renamed, err := p.DownloadAndRename(context.Background(), sel.Files)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrTransfer)
	assert.Empty(t, renamed)
	assert.Len(t, session.Opens, 2)

	// Already downloaded files stay where they were downloaded, not renamed.
	assert.FileExists(t, filepath.Join(root, "estoque", "2025-10-01_Estoque_Diario.csv"))
	assert.NoFileExists(t, filepath.Join(root, "estoque", "Estoque-20251001.csv"))
}

func TestDownloadAndRenameSortsInput(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").
		Add("2025-10-01_Estoque_Diario_2.csv", []byte("second")).
		Add("2025-10-01_Estoque_Diario_1.csv", []byte("first"))

	files := []models.RemoteEntry{
		{Path: "/out/2025-10-01_Estoque_Diario_2.csv", Name: "2025-10-01_Estoque_Diario_2.csv", Size: 6},
		{Path: "/out/2025-10-01_Estoque_Diario_1.csv", Name: "2025-10-01_Estoque_Diario_1.csv", Size: 5},
	}

	renamed, err := New(session, testOptions(root, thursday)).DownloadAndRename(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, renamed, 2)
	assert.Equal(t, "2025-10-01_Estoque_Diario_1.csv", renamed[0].OriginalName)
	assert.Equal(t, "Estoque-20251001.csv", filepath.Base(renamed[0].FinalPath))
	assert.Equal(t, "Estoque-20251001_2.csv", filepath.Base(renamed[1].FinalPath))
	assert.Equal(t, "/out/2025-10-01_Estoque_Diario_2.csv", files[0].Path, "input slice is not reordered")
}

func TestDownloadAndRenameReportsDownloadedBytes(t *testing.T) {
	root := t.TempDir()
	session := remotetest.NewSession("/out").Add("2025-10-01_Vendas_Diario.csv", []byte("short"))

	files := []models.RemoteEntry{
		{Path: "/out/2025-10-01_Vendas_Diario.csv", Name: "2025-10-01_Vendas_Diario.csv", Size: 1024},
	}

	renamed, err := New(session, testOptions(root, thursday)).DownloadAndRename(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, renamed, 1)
	assert.Equal(t, int64(len("short")), renamed[0].Size)
}
