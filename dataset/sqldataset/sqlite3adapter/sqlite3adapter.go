/*
Package sqlite3adapter provides an implementation of the Adapter
interface in the sqldataset package that works over an SQLite3
database file.
*/
package sqlite3adapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/psephology/psephos/dataset/sqldataset"

	// Import of SQLite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// MaxSampleInsertionsPerStatement is the maximum number of samples
// that are added with a single insert command by the AddSamples
// method of the adapter. Adding more samples results in making more
// insertion commands.
const MaxSampleInsertionsPerStatement = 100

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter
that works on the database or an error if it fails to open it.
*/
func New(path string) (sqldataset.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return featureName, nil
}

func (a *adapter) CreateSampleTable(ctx context.Context, textFeatureColumns, realFeatureColumns []string) error {
	var createStmtBuf bytes.Buffer
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS samples(")
	for _, c := range textFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" TEXT NULL, `, c))
	}
	for _, c := range realFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" REAL NULL, `, c))
	}
	createStmtBuf.WriteString(`"id" INTEGER PRIMARY KEY AUTOINCREMENT)`)
	_, err := a.db.ExecContext(ctx, createStmtBuf.String())
	if err != nil {
		return fmt.Errorf("ensuring samples table exists: %v", err)
	}
	return nil
}

func (a *adapter) AddSamples(ctx context.Context, rawSamples []map[string]interface{}, textFeatureColumns, realFeatureColumns []string) (int, error) {
	if len(rawSamples) == 0 {
		return 0, nil
	}
	columns := append(append([]string{}, textFeatureColumns...), realFeatureColumns...)
	if len(columns) == 0 {
		return 0, fmt.Errorf("no features to store")
	}
	var inserted int
	for inserted < len(rawSamples) {
		chunkEnd := inserted + MaxSampleInsertionsPerStatement
		if chunkEnd > len(rawSamples) {
			chunkEnd = len(rawSamples)
		}
		chunk := rawSamples[inserted:chunkEnd]
		var insertStmtBuf bytes.Buffer
		insertStmtBuf.WriteString(`INSERT INTO samples ("`)
		insertStmtBuf.WriteString(strings.Join(columns, `", "`))
		insertStmtBuf.WriteString(`") VALUES `)
		values := make([]interface{}, 0, len(chunk)*len(columns))
		for i, rs := range chunk {
			if i > 0 {
				insertStmtBuf.WriteString(", ")
			}
			insertStmtBuf.WriteString("(?")
			insertStmtBuf.WriteString(strings.Repeat(", ?", len(columns)-1))
			insertStmtBuf.WriteString(")")
			for _, c := range columns {
				values = append(values, rs[c])
			}
		}
		_, err := a.db.ExecContext(ctx, insertStmtBuf.String(), values...)
		if err != nil {
			return inserted, fmt.Errorf("inserting %d samples: %v", len(chunk), err)
		}
		inserted = chunkEnd
	}
	return inserted, nil
}

func (a *adapter) ListSamples(ctx context.Context, criteria []*sqldataset.FeatureCriterion, textFeatureColumns, realFeatureColumns []string) ([]map[string]interface{}, error) {
	var result []map[string]interface{}
	err := a.IterateOnSamples(
		ctx,
		criteria,
		textFeatureColumns,
		realFeatureColumns,
		func(_ int, rawSample map[string]interface{}) (bool, error) {
			result = append(result, rawSample)
			return true, nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *adapter) IterateOnSamples(ctx context.Context, criteria []*sqldataset.FeatureCriterion, textFeatureColumns, realFeatureColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(`SELECT "`)
	queryBuffer.WriteString(strings.Join(textFeatureColumns, `", "`))
	if len(textFeatureColumns) > 0 && len(realFeatureColumns) > 0 {
		queryBuffer.WriteString(`", "`)
	}
	queryBuffer.WriteString(strings.Join(realFeatureColumns, `", "`))
	queryBuffer.WriteString(`" FROM samples`)
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for j := 0; rows.Next(); j++ {
		rawSample := make(map[string]interface{})
		textValues := make([]sql.NullString, len(textFeatureColumns))
		realValues := make([]sql.NullFloat64, len(realFeatureColumns))
		values := make([]interface{}, 0, len(textFeatureColumns)+len(realFeatureColumns))
		for i := range textValues {
			values = append(values, &textValues[i])
		}
		for i := range realValues {
			values = append(values, &realValues[i])
		}
		err = rows.Scan(values...)
		if err != nil {
			return err
		}
		for i, c := range textFeatureColumns {
			if textValues[i].Valid {
				rawSample[c] = textValues[i].String
			}
		}
		for i, c := range realFeatureColumns {
			if realValues[i].Valid {
				rawSample[c] = realValues[i].Float64
			}
		}
		ok, err := lambda(j, rawSample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return rows.Err()
}

func (a *adapter) CountSamples(ctx context.Context, criteria []*sqldataset.FeatureCriterion) (int, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(`SELECT COUNT(*) FROM samples`)
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	var count int
	err := a.db.QueryRowContext(ctx, queryBuffer.String(), whereValues...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (a *adapter) ListSampleTextFeatureValues(ctx context.Context, fc string, criteria []*sqldataset.FeatureCriterion) ([]string, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(fmt.Sprintf(`SELECT DISTINCT "%s" FROM samples`, fc))
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []string
	for rows.Next() {
		var value sql.NullString
		err = rows.Scan(&value)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result = append(result, value.String)
		}
	}
	return result, rows.Err()
}

func (a *adapter) ListSampleRealFeatureValues(ctx context.Context, fc string, criteria []*sqldataset.FeatureCriterion) ([]float64, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(fmt.Sprintf(`SELECT DISTINCT "%s" FROM samples`, fc))
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []float64
	for rows.Next() {
		var value sql.NullFloat64
		err = rows.Scan(&value)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result = append(result, value.Float64)
		}
	}
	return result, rows.Err()
}

func (a *adapter) CountSampleTextFeatureValues(ctx context.Context, fc string, criteria []*sqldataset.FeatureCriterion) (map[string]int, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(fmt.Sprintf(`SELECT "%s", COUNT("%s") FROM samples`, fc, fc))
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	queryBuffer.WriteString(fmt.Sprintf(` GROUP BY "%s"`, fc))
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]int)
	for rows.Next() {
		var value sql.NullString
		var count int
		err = rows.Scan(&value, &count)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result[value.String] = count
		}
	}
	return result, rows.Err()
}

func (a *adapter) CountSampleRealFeatureValues(ctx context.Context, fc string, criteria []*sqldataset.FeatureCriterion) (map[float64]int, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(fmt.Sprintf(`SELECT "%s", COUNT("%s") FROM samples`, fc, fc))
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	queryBuffer.WriteString(fmt.Sprintf(` GROUP BY "%s"`, fc))
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[float64]int)
	for rows.Next() {
		var value sql.NullFloat64
		var count int
		err = rows.Scan(&value, &count)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result[value.Float64] = count
		}
	}
	return result, rows.Err()
}

func (a *adapter) SummarizeSampleRealFeatureValues(ctx context.Context, fc string, criteria []*sqldataset.FeatureCriterion) (int, float64, float64, error) {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(fmt.Sprintf(`SELECT COUNT("%s"), COALESCE(SUM("%s"), 0), COALESCE(SUM("%s" * "%s"), 0) FROM samples`, fc, fc, fc, fc))
	whereClause, whereValues := buildWhereClause(criteria)
	queryBuffer.WriteString(whereClause)
	var count int
	var sum, sumOfSquares float64
	err := a.db.QueryRowContext(ctx, queryBuffer.String(), whereValues...).Scan(&count, &sum, &sumOfSquares)
	if err != nil {
		return 0, 0.0, 0.0, err
	}
	return count, sum, sumOfSquares, nil
}

func buildWhereClause(criteria []*sqldataset.FeatureCriterion) (string, []interface{}) {
	if len(criteria) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	var values []interface{}
	for i, fc := range criteria {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		if fc.Operator == "IN" {
			if len(fc.Values) == 0 {
				buf.WriteString("1 = 0")
				continue
			}
			buf.WriteString(fmt.Sprintf(`"%s" IN (?`, fc.FeatureColumn))
			buf.WriteString(strings.Repeat(", ?", len(fc.Values)-1))
			buf.WriteString(")")
			values = append(values, fc.Values...)
		} else {
			buf.WriteString(fmt.Sprintf(`"%s" %s ?`, fc.FeatureColumn, fc.Operator))
			values = append(values, fc.Value)
		}
	}
	return buf.String(), values
}
