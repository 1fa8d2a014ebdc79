package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// row is the BigQuery schema for one inventory insert.
type row struct {
	ApplianceType string    `bigquery:"appliance_type"`
	Make          string    `bigquery:"make"`
	Model         string    `bigquery:"model"`
	Location      string    `bigquery:"location"`
	Finish        string    `bigquery:"finish"`
	Notes         string    `bigquery:"notes"`
	UserID        string    `bigquery:"user_id"`
	Timestamp     time.Time `bigquery:"timestamp"`
}

// BigQueryWriter mirrors inventory entries into a BigQuery table. One writer
// is constructed at startup and shared by every session; the underlying
// client is safe for concurrent use.
type BigQueryWriter struct {
	inserter *bigquery.Inserter
	table    string
}

// NewBigQueryWriter connects to <project>.<dataset>.<table>.
func NewBigQueryWriter(ctx context.Context, project, dataset, table string) (*BigQueryWriter, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	return &BigQueryWriter{
		inserter: client.Dataset(dataset).Table(table).Inserter(),
		table:    fmt.Sprintf("%s.%s.%s", project, dataset, table),
	}, nil
}

// Insert writes one entry with a server-assigned timestamp.
func (w *BigQueryWriter) Insert(ctx context.Context, e Entry, at time.Time) error {
	r := &row{
		ApplianceType: e.ApplianceType,
		Make:          e.Make,
		Model:         e.Model,
		Location:      e.Location,
		Finish:        e.Finish,
		Notes:         e.Notes,
		UserID:        e.UserID,
		Timestamp:     at,
	}
	if err := w.inserter.Put(ctx, r); err != nil {
		return fmt.Errorf("insert into %s: %w", w.table, err)
	}
	return nil
}

// rowErrors flattens an insert error into the per-row detail list attached
// to the tool result.
func rowErrors(err error) []string {
	var multi bigquery.PutMultiError
	if errors.As(err, &multi) {
		out := make([]string, 0, len(multi))
		for i := range multi {
			out = append(out, multi[i].Error())
		}
		return out
	}
	return []string{err.Error()}
}
