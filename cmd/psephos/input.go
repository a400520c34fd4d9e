package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/dataset/csv"
	"github.com/psephology/psephos/dataset/mongodataset"
	"github.com/psephology/psephos/dataset/sqldataset"
	"github.com/psephology/psephos/dataset/sqldataset/pgadapter"
	"github.com/psephology/psephos/dataset/sqldataset/sqlite3adapter"
	"github.com/psephology/psephos/feature"
	mgo "gopkg.in/mgo.v2"
)

type sampleWriter interface {
	Write(context.Context, []dataset.Sample) (int, error)
}

type writableDataset interface {
	sampleWriter
	Flush() error
}

type flushableSampleWriter struct {
	sampleWriter
}

func (fsw *flushableSampleWriter) Flush() error {
	return nil
}

// labelAndPredictors takes the features read from the metadata and the
// name of the label feature and returns the label feature and the
// remaining features to use as predictors.
func labelAndPredictors(features []feature.Feature, labelName string) (feature.Feature, []feature.Feature, error) {
	var label feature.Feature
	predictors := make([]feature.Feature, 0, len(features)-1)
	for _, f := range features {
		if f.Name() == labelName {
			label = f
			continue
		}
		predictors = append(predictors, f)
	}
	if label == nil {
		return nil, nil, fmt.Errorf("label feature '%s' is not defined", labelName)
	}
	return label, predictors, nil
}

/*
openDataset takes a context, an input reference, a slice of features
and a DatasetGenerator and returns a dataset with the referenced data.

The input is interpreted according to its form: a postgresql:// URL
opens a PostgreSQL-backed dataset, a mongodb:// URL a MongoDB-backed
one, a path ending in .db an SQLite3-backed one and any other path a
CSV file. An empty input reads CSV from STDIN.
*/
func openDataset(ctx context.Context, rootConfig *rootCmdConfig, input string, features []feature.Feature, dg csv.DatasetGenerator) (dataset.Dataset, error) {
	if strings.HasPrefix(input, "postgresql://") {
		rootConfig.Logf("Creating PostgreSQL adapter for url %s...", input)
		adapter, err := pgadapter.New(input)
		if err != nil {
			return nil, err
		}
		return sqldataset.Open(ctx, adapter, features)
	}
	if strings.HasPrefix(input, "mongodb://") {
		rootConfig.Logf("Dialing MongoDB at %s...", input)
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, err
		}
		return mongodataset.Open(ctx, session, features)
	}
	if strings.HasSuffix(input, ".db") {
		rootConfig.Logf("Creating SQLite3 adapter for file %s...", input)
		adapter, err := sqlite3adapter.New(input)
		if err != nil {
			return nil, err
		}
		return sqldataset.Open(ctx, adapter, features)
	}
	var f *os.File
	if input == "" {
		rootConfig.Logf("Reading dataset from STDIN...")
		f = os.Stdin
	} else {
		rootConfig.Logf("Opening %s to read dataset...", input)
		var err error
		f, err = os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("opening dataset at %s: %v", input, err)
		}
		defer f.Close()
	}
	ds, err := csv.ReadDataset(f, features, dg)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %v", err)
	}
	return ds, nil
}

/*
newDatasetWriter takes a context, an output reference and a slice of
features and returns a writableDataset the referenced backend can be
filled through, interpreting the output reference the way openDataset
interprets its input. An empty output writes CSV to STDOUT.
*/
func newDatasetWriter(ctx context.Context, rootConfig *rootCmdConfig, output string, features []feature.Feature) (writableDataset, error) {
	if strings.HasPrefix(output, "postgresql://") {
		rootConfig.Logf("Creating PostgreSQL adapter for url %s to dump dataset...", output)
		adapter, err := pgadapter.New(output)
		if err != nil {
			return nil, err
		}
		ds, err := sqldataset.Create(ctx, adapter, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{ds}, nil
	}
	if strings.HasPrefix(output, "mongodb://") {
		rootConfig.Logf("Dialing MongoDB at %s to dump dataset...", output)
		session, err := mgo.Dial(output)
		if err != nil {
			return nil, err
		}
		ds, err := mongodataset.Open(ctx, session, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{ds}, nil
	}
	if strings.HasSuffix(output, ".db") {
		rootConfig.Logf("Creating SQLite3 adapter for file %s to dump dataset...", output)
		adapter, err := sqlite3adapter.New(output)
		if err != nil {
			return nil, err
		}
		ds, err := sqldataset.Create(ctx, adapter, features)
		if err != nil {
			return nil, err
		}
		return &flushableSampleWriter{ds}, nil
	}
	var f *os.File
	if output == "" {
		rootConfig.Logf("Using STDOUT to dump dataset...")
		f = os.Stdout
	} else {
		rootConfig.Logf("Creating %s to dump dataset...", output)
		var err error
		f, err = os.Create(output)
		if err != nil {
			return nil, err
		}
	}
	return csv.NewWriter(f, features)
}
