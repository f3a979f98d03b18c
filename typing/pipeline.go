// Package typing runs the full serovar prediction for a sample: sequence
// typing and antigen prediction in parallel, then the MLST lookup, report
// parsing and consensus.
package typing

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/carbocation/serovar/antigen"
	"github.com/carbocation/serovar/consensus"
	"github.com/carbocation/serovar/exttools"
	"github.com/carbocation/serovar/mlst2serovar"
)

// Sample is one isolate to type. When ST is set the MLST program is not run.
type Sample struct {
	Name  string
	Files []string
	ST    *int
}

// Profile is the typing result for one sample.
type Profile struct {
	Sample  Sample
	ST      exttools.MLSTResult
	MLST    mlst2serovar.PredictedResult
	Report  string
	Antigen antigen.Profile
	Call    consensus.Call
}

type STCaller interface {
	SequenceType(ctx context.Context, files []string) (exttools.MLSTResult, error)
}

type AntigenCaller interface {
	Report(ctx context.Context, files []string, seqType exttools.SeqType) (string, error)
}

type Pipeline struct {
	Classifier    *mlst2serovar.Classifier
	STCaller      STCaller
	AntigenCaller AntigenCaller
	Dialect       antigen.Dialect
	SeqType       exttools.SeqType
}

// NewPipeline wires the external programs named in cfg around clf.
func NewPipeline(cfg Config, clf *mlst2serovar.Classifier) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, pfx.Err(err)
	}

	seqType, err := exttools.ParseSeqType(cfg.SeqType)
	if err != nil {
		return nil, pfx.Err(err)
	}
	dialect, err := antigen.ParseDialect(cfg.Method)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var pre []string
	if cfg.Python2Env != "" {
		if pre, err = exttools.ReadPreCommands(cfg.Python2Env); err != nil {
			return nil, pfx.Err(err)
		}
	}

	seqsero := exttools.SeqSero{
		Method:      dialect,
		Path:        cfg.Tools.SeqSero,
		Python2:     cfg.Tools.Python2,
		Python3:     cfg.Tools.Python3,
		Blastn:      cfg.Tools.Blastn,
		Makeblastdb: cfg.Tools.Makeblastdb,
		Samtools:    cfg.Tools.Samtools,
		Bwa:         cfg.Tools.Bwa,
		PreCommands: pre,
		TmpDir:      cfg.TmpDir,
	}
	if dialect == antigen.SeqSero2 {
		seqsero.Path = cfg.Tools.SeqSero2
	}

	return &Pipeline{
		Classifier: clf,
		STCaller: exttools.CGEMLST{
			Path:    cfg.Tools.CGEMLST,
			DBPath:  cfg.Tools.CGEMLSTDB,
			Python3: cfg.Tools.Python3,
			TmpDir:  cfg.TmpDir,
		},
		AntigenCaller: seqsero,
		Dialect:       dialect,
		SeqType:       seqType,
	}, nil
}

// Run types one sample. The MLST program and the antigen predictor run
// concurrently; if either fails the other is cancelled.
func (p *Pipeline) Run(ctx context.Context, s Sample) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.SeqType.Files(s.Files); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", s.Name, err))
	}

	out := &Profile{Sample: s}

	g, gctx := errgroup.WithContext(ctx)

	switch {
	case s.ST != nil:
		out.ST = exttools.KnownST(*s.ST)
	case p.STCaller != nil:
		g.Go(func() error {
			st, err := p.STCaller.SequenceType(gctx, s.Files)
			if err != nil {
				return fmt.Errorf("%s: sequence typing: %w", s.Name, err)
			}
			out.ST = st
			return nil
		})
	}

	if p.AntigenCaller != nil {
		g.Go(func() error {
			report, err := p.AntigenCaller.Report(gctx, s.Files, p.SeqType)
			if err != nil {
				return fmt.Errorf("%s: antigen prediction: %w", s.Name, err)
			}
			out.Report = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, pfx.Err(err)
	}

	if out.ST.Known && p.Classifier != nil {
		out.MLST = p.Classifier.Classify(out.ST.ST)
	}
	out.Antigen = antigen.ParseString(out.Report, p.Dialect)
	out.Call = consensus.Resolve(out.MLST, out.Antigen)

	zap.S().Infow("Typed sample",
		"sample", s.Name,
		"st", out.ST.String(),
		"mlst_serovar", out.MLST.Result,
		"antigen_serovars", strings.Join(out.Antigen.Serovars, ","),
		"call", out.Call.String(),
	)

	return out, nil
}

// RunAll types samples with at most parallel samples in flight. Profiles are
// returned in input order. The first failure cancels the remaining samples.
func (p *Pipeline) RunAll(ctx context.Context, samples []Sample, parallel int) ([]*Profile, error) {
	if parallel < 1 {
		parallel = 1
	}

	out := make([]*Profile, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, s := range samples {
		i, s := i, s
		g.Go(func() error {
			prof, err := p.Run(gctx, s)
			if err != nil {
				return err
			}
			out[i] = prof
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
