package main

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRowsGzipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("Sample\tPredicted Serotype\tST\nS1\ttyphimurium\t19\t\ttyphimurium\ttyphimurium\t4\ti\t1,2\ttyphimurium (40, 93.02)\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	rows, err := readRows(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "S1", rows[0].Sample)
	assert.Equal(t, "19", rows[0].ST)
	assert.False(t, rows[0].IsFlagged())
}

func TestReadFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.txt")
	require.NoError(t, os.WriteFile(path, []byte("Filename\tFailed Analysis\tResult\nS7.fasta\tMLST\tfailed\n"), 0o644))

	got, err := readFailures(context.Background(), path, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MLST", got[0].Analysis)

	_, err = readFailures(context.Background(), "gs://bucket/failed.txt", nil)
	assert.Error(t, err)
}
