package excel

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"guts/domain/guts"
	"guts/internal"
	"guts/internal/errors"
)

// DataReader reads exposure and survivor series from Excel or CSV files.
// Series are returned as read; validation is left to the model setters.
type DataReader struct {
	columns Columns
	logger  *internal.Logger
}

// NewDataReader creates a reader with the default column aliases
func NewDataReader(logger *internal.Logger) *DataReader {
	return NewDataReaderWithColumns(DefaultColumns(), logger)
}

// NewDataReaderWithColumns creates a reader with custom column aliases
func NewDataReaderWithColumns(columns Columns, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{columns: columns, logger: logger}
}

// ReadExposure reads a concentration profile
func (r *DataReader) ReadExposure(path string) (guts.ExposureSeries, error) {
	table, err := r.ReadTable(path)
	if err != nil {
		return guts.ExposureSeries{}, err
	}
	timeCol, valueCol := r.locate(table, r.columns.Exposure)

	times, err := parseFloats(table.Column(timeCol))
	if err != nil {
		return guts.ExposureSeries{}, errors.ParseError(path, eris.Wrap(err, "time column"))
	}
	conc, err := parseFloats(table.Column(valueCol))
	if err != nil {
		return guts.ExposureSeries{}, errors.ParseError(path, eris.Wrap(err, "concentration column"))
	}
	return guts.ExposureSeries{Time: times, Concentration: conc}, nil
}

// ReadSurvivors reads an observed survivor series. Counts must be whole numbers.
func (r *DataReader) ReadSurvivors(path string) (guts.SurvivorSeries, error) {
	table, err := r.ReadTable(path)
	if err != nil {
		return guts.SurvivorSeries{}, err
	}
	timeCol, valueCol := r.locate(table, r.columns.Survival)

	times, err := parseFloats(table.Column(timeCol))
	if err != nil {
		return guts.SurvivorSeries{}, errors.ParseError(path, eris.Wrap(err, "time column"))
	}
	counts, err := parseCounts(table.Column(valueCol))
	if err != nil {
		return guts.SurvivorSeries{}, errors.ParseError(path, eris.Wrap(err, "survivor column"))
	}
	return guts.SurvivorSeries{Time: times, Count: counts}, nil
}

// ReadTable reads the first sheet of an xlsx file or a CSV file. A first row
// whose first cell is not numeric is taken as the header.
func (r *DataReader) ReadTable(path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.IOError(path, eris.Wrap(err, "stat failed"))
	}

	startTime := time.Now()
	var (
		rows [][]string
		err  error
	)
	fileType := fileTypeOf(path)
	switch fileType {
	case "csv":
		rows, err = readCSVRows(path)
	default:
		rows, err = readExcelRows(path)
	}
	if err != nil {
		return nil, errors.IOError(path, err)
	}

	table := processRows(rows)
	if len(table.Rows) == 0 {
		return nil, errors.ParseError(path, eris.New("no data rows"))
	}
	if len(table.Rows[0]) < 2 {
		return nil, errors.ParseError(path, eris.New("need a time column and a value column"))
	}

	r.logger.Debug("read %s file %s: %d columns, %d rows in %.2fms",
		strings.ToUpper(fileType), path, len(table.Rows[0]), len(table.Rows),
		float64(time.Since(startTime).Nanoseconds())/1e6)
	return table, nil
}

// locate picks the time and value columns by header alias, falling back to
// the first two columns
func (r *DataReader) locate(table *Table, valueAliases []string) (int, int) {
	timeCol := findColumn(table.Headers, r.columns.Time)
	valueCol := findColumn(table.Headers, valueAliases)

	if timeCol < 0 {
		timeCol = 0
		if valueCol == 0 {
			timeCol = 1
		}
	}
	if valueCol < 0 {
		valueCol = 1
		if timeCol == 1 {
			valueCol = 0
		}
	}
	return timeCol, valueCol
}

func findColumn(headers, aliases []string) int {
	for _, alias := range aliases {
		for i, h := range headers {
			if strings.EqualFold(h, alias) {
				return i
			}
		}
	}
	return -1
}

func fileTypeOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "xlsx"
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, eris.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read sheet %s", sheets[0])
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read CSV file")
	}
	return rows, nil
}

// processRows trims cells, drops blank rows and splits off the header
func processRows(rows [][]string) *Table {
	table := &Table{}
	for _, row := range rows {
		cells := make([]string, len(row))
		blank := true
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
			if cells[j] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		if table.Headers == nil && len(table.Rows) == 0 && !isNumeric(cells[0]) {
			table.Headers = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseFloats(cells []string) ([]float64, error) {
	out := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "row %d: %q is not a number", i+1, cell)
		}
		out[i] = v
	}
	return out, nil
}

func parseCounts(cells []string) ([]int, error) {
	values, err := parseFloats(cells)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) || math.IsInf(v, 0) || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, eris.Errorf("row %d: %v is not a whole count", i+1, v)
		}
		out[i] = int(v)
	}
	return out, nil
}
