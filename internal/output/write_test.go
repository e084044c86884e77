package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tropestats/internal/classify"
	"tropestats/internal/types"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestBatch_CommitRenames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	b, err := NewBatch(dir)
	require.NoError(t, err)

	f, err := b.Create("a.txt")
	require.NoError(t, err)
	_, err = f.WriteString("hello")
	require.NoError(t, err)
	require.NoError(t, b.Finish(f))

	// Nothing is visible at the final path before Commit.
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err))

	paths, err := b.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, paths)
	assert.Equal(t, []string{"a.txt"}, listDir(t, dir))

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	_, err = b.Create("b.txt")
	assert.Error(t, err)
	b.Abort()
	assert.Equal(t, []string{"a.txt"}, listDir(t, dir))
}

func TestBatch_AbortRemovesStaged(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBatch(dir)
	require.NoError(t, err)

	f1, err := b.Create("done.csv")
	require.NoError(t, err)
	require.NoError(t, b.Finish(f1))
	_, err = b.Create("open.csv")
	require.NoError(t, err)

	b.Abort()
	assert.Empty(t, listDir(t, dir))
}

func TestBatch_CommitRequiresFinish(t *testing.T) {
	dir := t.TempDir()
	b, err := NewBatch(dir)
	require.NoError(t, err)
	_, err = b.Create("open.csv")
	require.NoError(t, err)

	_, err = b.Commit()
	assert.Error(t, err)
	assert.Empty(t, listDir(t, dir))
}

func TestBatch_CommitBlockedLeavesNothing(t *testing.T) {
	res, d := sampleResult(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, TotalsName, "keep"), 0755))

	b, err := NewBatch(dir)
	require.NoError(t, err)
	require.NoError(t, WriteAll(b, DefaultNames(), res, d, nil))

	_, err = b.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIOFailure)
	b.Abort()

	assert.Equal(t, []string{TotalsName}, listDir(t, dir))
	assert.DirExists(t, filepath.Join(dir, TotalsName, "keep"))
}

func TestBatch_CommitRollsBack(t *testing.T) {
	res, d := sampleResult(t)
	dir := t.TempDir()
	previous := filepath.Join(dir, DocumentName)
	require.NoError(t, os.WriteFile(previous, []byte("old"), 0644))

	b, err := NewBatch(dir)
	require.NoError(t, err)
	totals := filepath.Join(dir, TotalsName)
	b.rename = func(oldpath, newpath string) error {
		if newpath == totals {
			return errors.New("disk full")
		}
		return os.Rename(oldpath, newpath)
	}
	require.NoError(t, WriteAll(b, DefaultNames(), res, d, nil))

	paths, err := b.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIOFailure)
	assert.Empty(t, paths)
	b.Abort()

	// Only the file that existed before the commit remains, unchanged.
	assert.Equal(t, []string{DocumentName}, listDir(t, dir))
	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestBatch_CommitReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("old"), 0644))

	b, err := NewBatch(dir)
	require.NoError(t, err)
	f, err := b.Create("a.txt")
	require.NoError(t, err)
	_, err = f.WriteString("new")
	require.NoError(t, err)
	require.NoError(t, b.Finish(f))

	_, err = b.Commit()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, listDir(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestWriteSeparate(t *testing.T) {
	res, _ := sampleResult(t)
	pining, _ := res.Category(classify.KeyPining)

	var buf bytes.Buffer
	require.NoError(t, WriteSeparate(&buf, pining))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"date", "tag", "count", "count_gay", "count_straight", "count_aroace", "count_polysexual"},
		{"2020-01-01", "pining", "1", "0", "0", "1", "0"},
		{"2020-01-02", "pining", "1", "1", "0", "0", "0"},
		{"2020-01-01", "slow burn", "1", "0", "1", "0", "0"},
	}, rows)
}

func TestWriteCombined_EmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCombined(&buf, "x.csv", nil))
	assert.Equal(t, "date,count,count_gay,count_straight,count_aroace,count_polysexual\n", buf.String())
}

func TestWriteAll(t *testing.T) {
	res, d := sampleResult(t)
	dir := t.TempDir()
	b, err := NewBatch(dir)
	require.NoError(t, err)

	var steps int64
	require.NoError(t, WriteAll(b, DefaultNames(), res, d, func(string) { steps++ }))
	assert.Equal(t, StepCount(res), steps)

	paths, err := b.Commit()
	require.NoError(t, err)
	assert.Len(t, paths, 2+2*len(classify.Categories()))

	want := []string{DocumentName, TotalsName}
	for _, c := range classify.Categories() {
		want = append(want, c.Key+SeparateSuffix, c.Key+CombinedSuffix)
	}
	sort.Strings(want)
	assert.Equal(t, want, listDir(t, dir))

	totals := readCSV(t, filepath.Join(dir, TotalsName))
	assert.Equal(t, [][]string{
		{"date", "count", "count_gay", "count_straight", "count_aroace", "count_polysexual"},
		{"2020-01-01", "2", "0", "1", "1", "0"},
		{"2020-01-02", "1", "1", "0", "0", "0"},
		{"2020-01-03", "2", "0", "0", "0", "0"},
	}, totals)

	f, err := os.Open(filepath.Join(dir, DocumentName))
	require.NoError(t, err)
	defer f.Close()
	doc, err := ReadDocument(f)
	require.NoError(t, err)
	assert.Equal(t, res.Meta, doc.Meta)
}
