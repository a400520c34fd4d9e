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
	"github.com/psephology/psephos/feature/yaml"
	"github.com/spf13/cobra"
	mgo "gopkg.in/mgo.v2"
)

type datasetCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	dataOutput    string
	ctx           context.Context
	cancelFunc    context.CancelFunc
}

func datasetCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &datasetCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Copy datasets between backends",
		Long:  `Stream a dataset from one backend into another: CSV files, SQLite3 files, PostgreSQL databases and MongoDB databases`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			config.Logf("Reading features from metadata at %s...", config.metadataInput)
			features, err := yaml.ReadFeaturesFromFile(config.metadataInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("Features from metadata read")

			output, err := newDatasetWriter(config.Context(), config.rootCmdConfig, config.dataOutput, features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}

			inputStream, errStream, err := config.InputStream(features)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}

			for s := range inputStream {
				_, err = output.Write(config.Context(), []dataset.Sample{s})
				if err != nil {
					config.ContextCancelFunc()()
					break
				}
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			err = <-errStream
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			config.Logf("Flushing output dataset...")
			err = output.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL with the dataset to copy (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input (required)")
	cmd.PersistentFlags().StringVarP(&(config.dataOutput), "output", "o", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL or MongoDB connection URL to dump the dataset (defaults to STDOUT in CSV)")
	return cmd
}

func (dcc *datasetCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	return nil
}

func (dcc *datasetCmdConfig) InputStream(features []feature.Feature) (<-chan dataset.Sample, <-chan error, error) {
	if strings.HasPrefix(dcc.dataInput, "postgresql://") {
		dcc.Logf("Creating PostgreSQL adapter for url %s to read input dataset...", dcc.dataInput)
		adapter, err := pgadapter.New(dcc.dataInput)
		if err != nil {
			return nil, nil, err
		}
		ds, err := sqldataset.Open(dcc.Context(), adapter, features)
		if err != nil {
			return nil, nil, err
		}
		sampleStream, errStream := ds.Read(dcc.Context())
		return sampleStream, errStream, nil
	}
	if strings.HasPrefix(dcc.dataInput, "mongodb://") {
		dcc.Logf("Dialing MongoDB at %s to read input dataset...", dcc.dataInput)
		session, err := mgo.Dial(dcc.dataInput)
		if err != nil {
			return nil, nil, err
		}
		ds, err := mongodataset.Open(dcc.Context(), session, features)
		if err != nil {
			return nil, nil, err
		}
		sampleStream, errStream := ds.Read(dcc.Context())
		return sampleStream, errStream, nil
	}
	if strings.HasSuffix(dcc.dataInput, ".db") {
		dcc.Logf("Creating SQLite3 adapter for file %s to read input dataset...", dcc.dataInput)
		adapter, err := sqlite3adapter.New(dcc.dataInput)
		if err != nil {
			return nil, nil, err
		}
		ds, err := sqldataset.Open(dcc.Context(), adapter, features)
		if err != nil {
			return nil, nil, err
		}
		sampleStream, errStream := ds.Read(dcc.Context())
		return sampleStream, errStream, nil
	}
	var f *os.File
	if dcc.dataInput == "" {
		dcc.Logf("Reading input dataset from STDIN and dumping it into output dataset...")
		f = os.Stdin
	} else {
		dcc.Logf("Opening %s to read input dataset...", dcc.dataInput)
		var err error
		f, err = os.Open(dcc.dataInput)
		if err != nil {
			return nil, nil, fmt.Errorf("reading input dataset from %s: %v", dcc.dataInput, err)
		}
		dcc.Logf("Dumping input dataset into output dataset...")
	}
	sampleStream := make(chan dataset.Sample)
	errStream := make(chan error)
	go func() {
		defer f.Close()
		err := csv.ReadDatasetBySample(f, features, func(i int, s dataset.Sample) (bool, error) {
			select {
			case <-dcc.Context().Done():
				return false, nil
			case sampleStream <- s:
			}
			return true, nil
		})
		if err != nil {
			go func() {
				errStream <- err
				close(errStream)
			}()
		} else {
			close(errStream)
		}
		close(sampleStream)
	}()
	return sampleStream, errStream, nil
}

func (dcc *datasetCmdConfig) Context() context.Context {
	dcc.setContextAndCancelFunc()
	return dcc.ctx
}

func (dcc *datasetCmdConfig) ContextCancelFunc() context.CancelFunc {
	dcc.setContextAndCancelFunc()
	return dcc.cancelFunc
}

func (dcc *datasetCmdConfig) setContextAndCancelFunc() {
	if dcc.ctx == nil {
		dcc.ctx, dcc.cancelFunc = context.WithCancel(context.Background())
	}
}
