package main

import (
	"context"

	"cloud.google.com/go/storage"

	"github.com/carbocation/serovar"
	"github.com/carbocation/serovar/report"
)

func readRows(ctx context.Context, path string, client *storage.Client) ([]report.Row, error) {
	r, err := serovar.OpenInput(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return report.ReadTSV(r)
}

func readFailures(ctx context.Context, path string, client *storage.Client) ([]report.Failure, error) {
	r, err := serovar.OpenInput(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return report.ReadFailures(r)
}
