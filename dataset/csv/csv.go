/*
Package csv provides functions to read and write datasets as CSV
streams and files.

The header or first row of the CSV content is expected to consist of the
names of the features describing the samples. The rest of the rows should
consist of valid values for all features and/or the '?' string to indicate
an undefined value.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/psephology/psephos/dataset"
	"github.com/psephology/psephos/feature"
)

// UndefinedValue is the cell content that marks a value as undefined
// on a CSV stream.
const UndefinedValue = "?"

/*
Writer is an interface for a destination to which samples
can be written.
*/
type Writer interface {
	// Write will attempt to write the given samples and will
	// return the number of samples actually written and an
	// error (if not all samples could be written)
	Write(context.Context, []dataset.Sample) (int, error)
	// Count returns the total number of samples written
	// to the writer
	Count() int
	// Flush ensures any pending write operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

/*
DatasetGenerator is a function that takes a slice of samples
and generates a dataset with them.
*/
type DatasetGenerator func([]dataset.Sample) dataset.Dataset

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

/*
ReadDataset takes an io.Reader for a CSV stream, a slice of features and a
DatasetGenerator and returns a dataset.Dataset built with the DatasetGenerator
and the samples parsed from the reader or an error.
*/
func ReadDataset(reader io.Reader, features []feature.Feature, dg DatasetGenerator) (dataset.Dataset, error) {
	samples := []dataset.Sample{}
	err := ReadDatasetBySample(reader, features, func(_ int, s dataset.Sample) (bool, error) {
		samples = append(samples, s)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dg(samples), nil
}

/*
ReadDatasetBySample takes an io.Reader for a CSV stream, a slice of features
and a lambda function on an integer and a dataset.Sample that returns a
boolean value. It parses the samples from the reader and for each it calls
the lambda function with the sample and its index as parameters. If the
lambda function returns true, it will continue processing the next sample,
otherwise it will stop. An error is returned if something goes wrong when
reading the stream or parsing a sample, in particular if the header row does
not match the given features.
*/
func ReadDatasetBySample(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	featuresByName := featureSliceToMap(features)
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	features, err = parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		sample, err := parseSampleFromCSVRow(row, features)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, sample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadDatasetFromFilePath takes a filepath string, a slice of features and a
DatasetGenerator, opens the file the filepath points to and uses ReadDataset
to return a dataset.Dataset read from it or an error. If the filepath is ""
os.Stdin is used instead. It will return an error if the given filepath
cannot be opened for reading.
*/
func ReadDatasetFromFilePath(filepath string, features []feature.Feature, dg DatasetGenerator) (dataset.Dataset, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading dataset: %v", err)
		}
	}
	defer f.Close()
	ds, err := ReadDataset(f, features, dg)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return ds, err
}

/*
ReadDatasetBySampleFromFilePath takes a filepath string for a CSV stream, a
slice of features and a lambda function on an integer and a dataset.Sample
that returns a boolean value. It opens the file for reading (if the filepath
is "" os.Stdin is used instead) and processes it with ReadDatasetBySample.
*/
func ReadDatasetBySampleFromFilePath(filepath string, features []feature.Feature, lambda func(int, dataset.Sample) (bool, error)) error {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return fmt.Errorf("reading dataset: %v", err)
		}
	}
	defer f.Close()
	err = ReadDatasetBySample(f, features, lambda)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return err
}

/*
NewWriter takes an io.Writer and a slice of features and returns a Writer
that serializes the samples written to it as CSV rows on the io.Writer,
after an initial header row with the feature names.
*/
func NewWriter(w io.Writer, features []feature.Feature) (Writer, error) {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(features))
	for _, f := range features {
		header = append(header, f.Name())
	}
	err := cw.Write(header)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{0, features, cw}, nil
}

func (cw *csvWriter) Write(ctx context.Context, samples []dataset.Sample) (int, error) {
	for i, s := range samples {
		row := make([]string, 0, len(cw.features))
		for _, f := range cw.features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return i, fmt.Errorf("serializing sample: %v", err)
			}
			if v == nil {
				row = append(row, UndefinedValue)
				continue
			}
			row = append(row, fmt.Sprintf("%v", v))
		}
		err := cw.w.Write(row)
		if err != nil {
			return i, fmt.Errorf("writing CSV row: %v", err)
		}
		cw.count++
	}
	return len(samples), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func featureSliceToMap(features []feature.Feature) map[string]feature.Feature {
	result := make(map[string]feature.Feature)
	for _, f := range features {
		result[f.Name()] = f
	}
	return result
}

func parseFeaturesFromCSVHeader(header []string, featuresByName map[string]feature.Feature) ([]feature.Feature, error) {
	if len(header) != len(featuresByName) {
		return nil, fmt.Errorf("header has %d columns but %d features are declared", len(header), len(featuresByName))
	}
	features := make([]feature.Feature, 0, len(header))
	for _, name := range header {
		f, ok := featuresByName[name]
		if !ok {
			return nil, fmt.Errorf("header column %q does not match any declared feature", name)
		}
		features = append(features, f)
	}
	return features, nil
}

func parseSampleFromCSVRow(row []string, features []feature.Feature) (dataset.Sample, error) {
	if len(row) != len(features) {
		return nil, fmt.Errorf("row has %d columns, expected %d", len(row), len(features))
	}
	featureValues := make(map[string]interface{})
	for i, f := range features {
		cell := row[i]
		if cell == UndefinedValue {
			continue
		}
		var value interface{}
		if _, ok := f.(*feature.ContinuousFeature); ok {
			fv, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("feature %s: parsing %q as number: %v", f.Name(), cell, err)
			}
			value = fv
		} else {
			value = cell
		}
		ok, err := f.Valid(value)
		if err != nil || !ok {
			return nil, fmt.Errorf("feature %s: invalid value %q: %v", f.Name(), cell, err)
		}
		featureValues[f.Name()] = value
	}
	return dataset.NewSample(featureValues), nil
}
