package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/ghettosync/internal/history"
	"github.com/vmunix/ghettosync/internal/inventory"
	"github.com/vmunix/ghettosync/internal/pipeline/mocks"
	"github.com/vmunix/ghettosync/internal/plan"
	"github.com/vmunix/ghettosync/internal/review"
	"github.com/vmunix/ghettosync/internal/source"
	"go.uber.org/mock/gomock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	srcDir    string
	destDir   string
	bufferDir string
	src       source.Source
	editor    *mocks.MockEditor
	confirmer *mocks.MockConfirmer
	out       *bytes.Buffer
	pipeline  *Pipeline
}

func newFixture(t *testing.T, store *history.Store) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	base := t.TempDir()

	f := &fixture{
		srcDir:    filepath.Join(base, "src"),
		destDir:   filepath.Join(base, "dest"),
		bufferDir: filepath.Join(base, "buffers"),
		editor:    mocks.NewMockEditor(ctrl),
		confirmer: mocks.NewMockConfirmer(ctrl),
		out:       &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(f.srcDir, 0755))
	require.NoError(t, os.MkdirAll(f.bufferDir, 0755))

	src, err := source.NewLocal(f.srcDir)
	require.NoError(t, err)
	f.src = src

	log := testLogger()
	resolver := inventory.NewResolver(
		inventory.NewCache(filepath.Join(base, "cache", "ghettosync.json")),
		inventory.NewScanner(1, false, log),
		log,
	)
	f.pipeline = New(Deps{
		Resolver:  resolver,
		Editor:    f.editor,
		Confirmer: f.confirmer,
		History:   store,
		Out:       f.out,
	}, log)
	return f
}

// exampleTree builds the two-album library used throughout: Artist A's
// album is 120 MB (sparse), Artist B's is a few bytes.
func (f *fixture) exampleTree(t *testing.T) {
	t.Helper()
	big := filepath.Join(f.srcDir, "Artist A", "Album 1", "01.flac")
	require.NoError(t, os.MkdirAll(filepath.Dir(big), 0755))
	fh, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, fh.Truncate(120<<20))
	require.NoError(t, fh.Close())

	writeFile(t, filepath.Join(f.srcDir, "Artist B", "Album 2", "01 Track.FLAC"), "flac")
	writeFile(t, filepath.Join(f.srcDir, "Artist B", "Album 2", "02 Track.flac"), "flac")
	writeFile(t, filepath.Join(f.srcDir, "Artist B", "Album 2", "._02 Track.flac"), "junk")
	writeFile(t, filepath.Join(f.srcDir, "Artist B", "Album 2", "folder.jpg"), "jpeg")

	// Artist A/Album 1 is already on the device.
	writeFile(t, filepath.Join(f.destDir, "Artist A", "Album 1", "01.flac"), "on device")
}

func (f *fixture) opts() Options {
	return Options{Source: f.src, Destination: f.destDir, BufferDir: f.bufferDir}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// rewrite returns an editor action that checks the buffer it was given
// and replaces it with edited.
func rewrite(t *testing.T, want, edited []string) func(context.Context, string) error {
	return func(_ context.Context, path string) error {
		got, err := review.ReadBuffer(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		return os.WriteFile(path, []byte(strings.Join(edited, "\n")+"\n"), 0644)
	}
}

var exampleLines = []string{
	"[x] (   120 MB) Artist A/Album 1",
	"[ ] (     0 MB) Artist B/Album 2",
}

func TestRun_AddExample(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[x] (   120 MB) Artist A/Album 1",
		"[x] (     0 MB) Artist B/Album 2",
	}))

	report, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)

	assert.Equal(t, &plan.Plan{ToAdd: []string{"Artist B/Album 2"}}, report.Plan)
	assert.Equal(t, []string{"Artist B/Album 2"}, report.Added)
	assert.Empty(t, report.Removed)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.Files)

	entries, err := os.ReadDir(filepath.Join(f.destDir, "Artist B", "Album 2"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"01 Track.FLAC", "02 Track.flac"}, names)
	assert.FileExists(t, filepath.Join(f.destDir, "Artist A", "Album 1", "01.flac"))
}

func TestRun_RemoveExample(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[ ] (   120 MB) Artist A/Album 1",
		"[ ] (     0 MB) Artist B/Album 2",
	}))
	f.confirmer.EXPECT().Confirm(gomock.Any(), "Remove 1 directories?").Return(true, nil)

	report, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)

	assert.Equal(t, &plan.Plan{ToRemove: []string{"Artist A/Album 1"}}, report.Plan)
	assert.Equal(t, []string{"Artist A/Album 1"}, report.Removed)
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist A"))
	assert.Contains(t, f.out.String(), "  Artist A/Album 1\n")
}

func TestRun_UneditedBufferIsNoop(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	for i := 0; i < 2; i++ {
		report, err := f.pipeline.Run(context.Background(), f.opts())
		require.NoError(t, err)
		assert.True(t, report.Plan.Empty())
	}
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist B"))
}

func TestRun_LineCountMismatchMakesNoChanges(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[x] (     0 MB) Artist B/Album 2",
	}))

	report, err := f.pipeline.Run(context.Background(), f.opts())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, plan.ErrLineCountMismatch)
	assert.FileExists(t, filepath.Join(f.destDir, "Artist A", "Album 1", "01.flac"))
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist B"))
}

func TestRun_MalformedLine(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[x] (   120 MB) Artist A/Album 1",
		"[X] (     0 MB) Artist B/Album 2",
	}))

	_, err := f.pipeline.Run(context.Background(), f.opts())
	require.Error(t, err)
	assert.ErrorIs(t, err, review.ErrMalformedLine)

	var lineErr *review.MalformedLineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 1, lineErr.Index)
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist B"))
}

func TestRun_DeclinedRemovalStillAdds(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[ ] (   120 MB) Artist A/Album 1",
		"[x] (     0 MB) Artist B/Album 2",
	}))
	f.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, nil)

	report, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)

	assert.True(t, report.Declined)
	assert.Empty(t, report.Removed)
	assert.Equal(t, []string{"Artist B/Album 2"}, report.Added)
	assert.DirExists(t, filepath.Join(f.destDir, "Artist A", "Album 1"))
	assert.DirExists(t, filepath.Join(f.destDir, "Artist B", "Album 2"))
}

func TestRun_ConfirmError(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[ ] (   120 MB) Artist A/Album 1",
		"[x] (     0 MB) Artist B/Album 2",
	}))
	f.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, context.Canceled)

	_, err := f.pipeline.Run(context.Background(), f.opts())
	assert.ErrorIs(t, err, context.Canceled)
	assert.DirExists(t, filepath.Join(f.destDir, "Artist A", "Album 1"))
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist B"))
}

func TestRun_DryRun(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[ ] (   120 MB) Artist A/Album 1",
		"[x] (     0 MB) Artist B/Album 2",
	}))

	opts := f.opts()
	opts.DryRun = true
	report, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"Artist B/Album 2"}, report.Plan.ToAdd)
	assert.Equal(t, []string{"Artist A/Album 1"}, report.Plan.ToRemove)
	assert.Empty(t, report.Added)
	assert.DirExists(t, filepath.Join(f.destDir, "Artist A", "Album 1"))
	assert.NoDirExists(t, filepath.Join(f.destDir, "Artist B"))
}

func TestRun_CleanupReviewsOnlyPresent(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t,
		[]string{"[x] (   120 MB) Artist A/Album 1"},
		[]string{"[x] (   120 MB) Artist A/Album 1"},
	))

	opts := f.opts()
	opts.Cleanup = true
	report, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reviewed)
	assert.True(t, report.Plan.Empty())
}

func TestRun_MatchFilter(t *testing.T) {
	f := newFixture(t, nil)
	writeFile(t, filepath.Join(f.srcDir, "Miles Davis", "Kind of Blue", "01.flac"), "x")
	writeFile(t, filepath.Join(f.srcDir, "Nirvana", "Nevermind", "01.flac"), "x")

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t,
		[]string{"[ ] (     0 MB) Nirvana/Nevermind"},
		[]string{"[x] (     0 MB) Nirvana/Nevermind"},
	))

	opts := f.opts()
	opts.Match = "nirvana"
	report, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reviewed)
	assert.Equal(t, []string{"Nirvana/Nevermind"}, report.Added)
}

func TestRun_NothingToReview(t *testing.T) {
	f := newFixture(t, nil)

	report, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)
	assert.Zero(t, report.Reviewed)
	assert.True(t, report.Plan.Empty())
}

func TestRun_SourceUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.RemoveAll(f.srcDir))

	_, err := f.pipeline.Run(context.Background(), f.opts())
	assert.ErrorIs(t, err, inventory.ErrSourceUnavailable)
}

func TestRun_SourceUnavailableWithCachedInventory(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	// First run fills the cache; the buffer is left unedited.
	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	_, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)

	// Library unmounted. The editor must not open again.
	require.NoError(t, os.RemoveAll(f.srcDir))

	report, err := f.pipeline.Run(context.Background(), f.opts())
	assert.Nil(t, report)
	assert.ErrorIs(t, err, inventory.ErrSourceUnavailable)
	assert.DirExists(t, filepath.Join(f.destDir, "Artist A", "Album 1"))
}

func TestRun_EditorFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).Return(errors.New("exit status 1"))

	_, err := f.pipeline.Run(context.Background(), f.opts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review: exit status 1")
}

func TestRun_RemovesReviewBuffer(t *testing.T) {
	f := newFixture(t, nil)
	f.exampleTree(t)

	var bufferPath string
	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, path string) error {
		bufferPath = path
		return nil
	})

	_, err := f.pipeline.Run(context.Background(), f.opts())
	require.NoError(t, err)
	assert.Equal(t, f.bufferDir, filepath.Dir(bufferPath))
	assert.NoFileExists(t, bufferPath)
}

func TestRun_Journal(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := newFixture(t, store)
	f.exampleTree(t)

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(rewrite(t, exampleLines, []string{
		"[ ] (   120 MB) Artist A/Album 1",
		"[x] (     0 MB) Artist B/Album 2",
	}))
	f.confirmer.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)

	ctx := context.Background()
	report, err := f.pipeline.Run(ctx, f.opts())
	require.NoError(t, err)
	require.NotZero(t, report.RunID)

	run, err := store.GetRun(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, f.src.Identity(), run.Source)
	assert.Equal(t, 1, run.Added)
	assert.Equal(t, 1, run.Removed)
	require.NotNil(t, run.FinishedAt)

	ops, err := store.Operations(ctx, report.RunID)
	require.NoError(t, err)
	assert.Len(t, ops, 4)

	incomplete, err := store.Incomplete(ctx, run.Destination)
	require.NoError(t, err)
	assert.Empty(t, incomplete)
}

func TestRun_SortAfterAdd(t *testing.T) {
	f := newFixture(t, nil)
	writeFile(t, filepath.Join(f.srcDir, "Zeta", "One", "01.mp3"), "x")
	writeFile(t, filepath.Join(f.srcDir, "Alpha", "One", "01.mp3"), "x")
	writeFile(t, filepath.Join(f.srcDir, "Alpha", "Two", "01.mp3"), "x")

	f.editor.EXPECT().Edit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, path string) error {
		lines, err := review.ReadBuffer(path)
		require.NoError(t, err)
		for i := range lines {
			lines[i] = "[x]" + strings.TrimPrefix(lines[i], "[ ]")
		}
		return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
	})

	opts := f.opts()
	opts.Sort = true
	report, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha/One", "Alpha/Two", "Zeta/One"}, report.Added)
	assert.Empty(t, report.Failures)
	assert.DirExists(t, filepath.Join(f.destDir, "Alpha", "Two"))
	assert.NoDirExists(t, filepath.Join(f.destDir, "sortdir"))
	assert.NoDirExists(t, filepath.Join(f.destDir, "Alpha", "sortdir"))
}
