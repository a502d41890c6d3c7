package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/eiep13a"
	"github.com/georgesolomos/eiep/internal/eiep3"
	"github.com/georgesolomos/eiep/internal/store/sqlite"
	"github.com/georgesolomos/eiep/internal/usage"
)

const icphhFile = "HDR,ICPHH,10.0,SNDR,,RCPT,27/04/2019,00:00:00,000,00000003,201904,E,I\n" +
	"DET,ICP2,ABCDEFG,F,27/04/2019,1,1.00,0.00,null,X,null\n" +
	"DET,ICP1,ABCDEFG,F,27/04/2019,1,2.00,0.00,null,X,null\n" +
	"DET,ICP2,ABCDEFG,F,27/04/2019,2,3.00,0.00,null,X,null\n"

const icpconsFile = "HDR,ICPCONS,1.1,SNDR,,RCPT,27/04/2019,000,00000001,01/04/2019,30/04/2019\n" +
	"DET,AUTH,ICP1,000,NZST,COMP,X,REG,AV,01/04/2019 00:00:00,30/04/2019 00:00:00,RD,10.5,null\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestImporter(t *testing.T, withStore bool) *importer {
	imp := &importer{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if withStore {
		store, err := sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		imp.store = store
	}
	return imp
}

func TestImportICPHH(t *testing.T) {
	ctx := context.Background()
	imp := newTestImporter(t, true)
	path := writeFile(t, "SNDR_E_RCPT_ICPHH_201904_20190427_000.csv", icphhFile)

	report := eiep3.NewReport()
	s, err := runImport(ctx, imp, path, report, eiep3.NewParser(imp.logger, report), nil)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.ICPs.Cardinality())
	assert.Equal(t, map[string]int{"ICP1": 1, "ICP2": 2}, s.PerICP)
	require.NotZero(t, s.BatchID)

	n, err := imp.store.CountDetails(ctx, s.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	total, err := imp.store.ActiveEnergyTotal(ctx, s.BatchID)
	require.NoError(t, err)
	assert.Equal(t, "6", total.String())
}

func TestImportICPCONSWithoutStore(t *testing.T) {
	imp := newTestImporter(t, false)
	path := writeFile(t, "consumption.txt", icpconsFile)

	report := eiep13a.NewReport()
	s, err := runImport(context.Background(), imp, path, report, eiep13a.NewParser(imp.logger, report), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Records)
	assert.Zero(t, s.BatchID)
}

func TestImportEmptyFile(t *testing.T) {
	ctx := context.Background()
	imp := newTestImporter(t, true)
	path := writeFile(t, "empty.csv", "HDR,ICPHH,10.0,SNDR,,RCPT,27/04/2019,00:00:00,000,00000000,201904,E,I\n")

	report := eiep3.NewReport()
	s, err := runImport(ctx, imp, path, report, eiep3.NewParser(imp.logger, report), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Records)

	info, err := imp.store.GetBatch(ctx, s.BatchID)
	require.NoError(t, err)
	assert.Equal(t, 0, info.RecordCount)
}

func TestImportRollsBackOnBadFile(t *testing.T) {
	ctx := context.Background()
	imp := newTestImporter(t, true)
	// Declares four records but carries three
	bad := writeFile(t, "bad.csv", strings.Replace(icphhFile, "00000003", "00000004", 1))

	report := eiep3.NewReport()
	_, err := runImport(ctx, imp, bad, report, eiep3.NewParser(imp.logger, report), nil)
	require.ErrorIs(t, err, eiep.ErrRecordCount)
	assert.Equal(t, "bad file", classify(err))

	_, err = imp.store.GetBatch(ctx, 1)
	assert.ErrorIs(t, err, sqlite.ErrBatchNotFound)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, "environment", classify(eiep.ErrFileNotFound))
	assert.Equal(t, "unsupported version", classify(&eiep.VersionError{Version: "9.0"}))
	assert.Equal(t, "unknown", classify(io.ErrUnexpectedEOF))
}

func TestImportTally(t *testing.T) {
	imp := newTestImporter(t, false)
	path := writeFile(t, "SNDR_E_RCPT_ICPHH_201904_20190427_000.csv", icphhFile)

	calc := usage.NewCalculator(imp.logger)
	report := eiep3.NewReport()
	_, err := runImport(context.Background(), imp, path, report, eiep3.NewParser(imp.logger, report), func(r *eiep3.DetailRecord) {
		calc.Add(r)
	})
	require.NoError(t, err)

	icp, ok := calc.PrimaryICP()
	require.True(t, ok)
	assert.Equal(t, "ICP2", icp)
	// A single day isn't enough for a monthly figure
	_, err = calc.Monthly(icp)
	assert.ErrorIs(t, err, usage.ErrInsufficientData)
}

func TestDetectFileType(t *testing.T) {
	report := eiep13a.NewReport()
	report.SetSender("SNDR")
	report.SetRecipient("RCPT")
	report.SetIdentifier("000")

	tests := []struct {
		name    string
		file    string
		content string
		want    string
		ok      bool
	}{
		{name: "conventional name", file: "SNDR_E_RCPT_ICPHH_201904_20190427_000.csv", content: "", want: eiep.FileTypeICPHH, ok: true},
		{name: "ICPCONS name", file: report.FileName(), content: icpconsFile, want: eiep.FileTypeICPCONS, ok: true},
		{name: "unconventional name", file: "readings.csv", content: icphhFile, want: eiep.FileTypeICPHH, ok: true},
		{name: "no header", file: "readings.csv", content: "DET,ICP1\n", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := detectFileType(writeFile(t, tt.file, tt.content))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := detectFileType(filepath.Join(t.TempDir(), "missing.csv"))
	assert.False(t, ok)
}
