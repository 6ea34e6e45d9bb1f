package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

// DateFormat is the fixed calendar date layout the loader accepts.
const DateFormat = "2006-01-02"

const (
	batchSize  = 5000
	maxWorkers = 8
)

// Column names are the bit-exact contract with the input file. Extra
// columns are ignored; order_id and quantity are optional.
var requiredColumns = []string{"date", "city", "channel", "category", "product", "revenue"}

type columnIndex map[string]int

// ParseCSV loads a dataset from CSV content. It fails with a
// DATA_FORMAT_ERROR when a required column is missing or a date does
// not parse; rows with a bad revenue or quantity value are skipped and
// counted instead of aborting the load.
func ParseCSV(ctx context.Context, r io.Reader) (models.Dataset, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, errors.DataFormat("input is empty")
	}
	if err != nil {
		return nil, 0, errors.DataFormatWrap(err, "read header")
	}

	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, 0, errors.DataFormat("missing required columns: " + strings.Join(missing, ", "))
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, errors.DataFormatWrap(err, "read rows")
	}
	if len(records) == 0 {
		return nil, 0, errors.DataFormat("no data rows")
	}

	// Coerce rows in indexed batches so the dataset keeps input order.
	sales := make([]models.Sale, len(records))
	valid := make([]bool, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			for i := start; i < end; i++ {
				sale, ok, err := coerceRow(cols, records[i])
				if err != nil {
					return fmt.Errorf("row %d: %w", i+1, err)
				}
				sales[i], valid[i] = sale, ok
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	dataset := make(models.Dataset, 0, len(records))
	skipped := 0
	for i := range sales {
		if valid[i] {
			dataset = append(dataset, sales[i])
		} else {
			skipped++
		}
	}

	return dataset, skipped, nil
}

// ParseFile is ParseCSV over a file on disk.
func ParseFile(ctx context.Context, path string) (models.Dataset, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	return ParseCSV(ctx, file)
}

// coerceRow turns one CSV record into a Sale. The second return value
// reports whether the row survived coercion; an error is returned only
// for failures that must abort the whole load. An unparseable date is
// fatal rather than silently dropped, per the loader contract.
func coerceRow(cols columnIndex, record []string) (models.Sale, bool, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := time.Parse(DateFormat, field("date"))
	if err != nil {
		return models.Sale{}, false, errors.DataFormat(fmt.Sprintf("unparseable date %q, want %s", field("date"), DateFormat))
	}

	revenue, err := decimal.NewFromString(field("revenue"))
	if err != nil || revenue.IsNegative() {
		return models.Sale{}, false, nil
	}

	quantity := 0
	if q := field("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity < 0 {
			return models.Sale{}, false, nil
		}
	}

	return models.Sale{
		Date:     date,
		OrderID:  field("order_id"),
		City:     field("city"),
		Channel:  field("channel"),
		Category: field("category"),
		Product:  field("product"),
		Revenue:  revenue,
		Quantity: quantity,
	}, true, nil
}
