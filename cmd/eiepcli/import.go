package main

import (
	"context"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/georgesolomos/eiep/internal/eiep"
	"github.com/georgesolomos/eiep/internal/store/sqlite"
)

type importer struct {
	logger *slog.Logger
	// Optional. Without a store the file is only validated and summarised.
	store *sqlite.Store
}

type summary struct {
	Records int
	ICPs    mapset.Set[string]
	PerICP  map[string]int
	BatchID int64
}

// runImport streams the file at path through parser, handing each record to tally if
// it's set. With a store, every record goes into one batch that is rolled back if the
// read fails part way. The batch is opened on the first record because the header is
// only known once row 0 has been parsed.
func runImport[R sqlite.Detail](ctx context.Context, imp *importer, path string, header sqlite.Header, parser *eiep.Parser[R], tally func(R)) (*summary, error) {
	s := &summary{
		ICPs:   mapset.NewSet[string](),
		PerICP: make(map[string]int),
	}
	var batch *sqlite.Batch
	begin := func() error {
		b, err := imp.store.BeginBatch(ctx, header)
		if err != nil {
			return err
		}
		batch = b
		return nil
	}

	err := parser.ParseFile(path, func(record R) error {
		s.Records++
		icp := record.IcpIdentifier()
		s.ICPs.Add(icp)
		s.PerICP[icp]++
		if tally != nil {
			tally(record)
		}
		if imp.store == nil {
			return nil
		}
		if batch == nil {
			if err := begin(); err != nil {
				return err
			}
		}
		return batch.Add(ctx, record)
	})
	if err != nil {
		if batch != nil {
			batch.Rollback()
		}
		return nil, err
	}

	if imp.store != nil {
		if batch == nil {
			if err := begin(); err != nil {
				return nil, err
			}
		}
		if err := batch.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit batch: %w", err)
		}
		s.BatchID = batch.ID()
	}
	imp.log(path, header, s)
	return s, nil
}

func (imp *importer) log(path string, header sqlite.Header, s *summary) {
	icps := maps.Keys(s.PerICP)
	slices.Sort(icps)
	attrs := make([]any, 0, len(icps))
	for _, icp := range icps {
		attrs = append(attrs, slog.Int(icp, s.PerICP[icp]))
	}
	imp.logger.Info("Read EIEP file",
		slog.String("path", path),
		slog.String("fileType", header.FileType()),
		slog.String("sender", header.Sender()),
		slog.String("recipient", header.Recipient()),
		slog.Int("records", s.Records),
		slog.Int("uniqueICPs", s.ICPs.Cardinality()),
		slog.Group("recordsPerICP", attrs...),
	)
	if s.BatchID != 0 {
		imp.logger.Info("Stored batch", slog.Int64("batchID", s.BatchID))
	}
}
