package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/config"
	"clinicpulse/internal/dataset"
	"clinicpulse/internal/ingest"
	"clinicpulse/internal/shared/testutil"
)

type stubFetcher struct {
	mu     sync.Mutex
	table  *ingest.Table
	err    error
	visits int
}

func (f *stubFetcher) Fetch(ctx context.Context, source string) (*ingest.Table, error) {
	f.mu.Lock()
	f.visits++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

func yearlyFixture() *ingest.Table {
	return &ingest.Table{
		Header: []string{
			"Year",
			"Births in Clinic 1",
			"Deaths in Clinic 1",
			"Births in Clinic 2",
			"Deaths in Clinic 2",
		},
		Rows: [][]string{
			{"1841", "3036", "237", "2442", "86"},
			{"1842", "3287", "518", "3287", "202"},
			{"1846", "4010", "459", "3754", "105"},
		},
	}
}

func newTestService(t *testing.T, fetcher TableFetcher) *DatasetService {
	t.Helper()
	svc, err := NewDatasetService(config.DatasetConfig{
		Source:  "memory://yearly",
		Variant: "yearly",
	}, fetcher, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	return svc
}

func TestCurrentLoadsOnceAndCaches(t *testing.T) {
	fetcher := &stubFetcher{table: yearlyFixture()}
	svc := newTestService(t, fetcher)

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Records, 3)

	second, err := svc.Current(context.Background())
	require.NoError(t, err)

	// Same instance, not a re-fetch: the cache returns the previously
	// computed Dataset unchanged.
	assert.Same(t, first, second)
	assert.Equal(t, 1, fetcher.visits)
}

func TestCurrentPropagatesFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: &ingest.SourceFetchError{Source: "memory://yearly", Err: assert.AnError}}
	svc := newTestService(t, fetcher)

	_, err := svc.Current(context.Background())
	var fetchErr *ingest.SourceFetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestCurrentPropagatesSchemaError(t *testing.T) {
	fetcher := &stubFetcher{table: &ingest.Table{Header: []string{"Year"}}}
	svc := newTestService(t, fetcher)

	_, err := svc.Current(context.Background())
	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.Missing, 4)
}

func TestRangeDefaultsToFullBounds(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	records, err := svc.Range(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRangeFiltersInclusive(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	records, err := svc.Range(context.Background(), "1842", "1846")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, dataset.PeriodKey(1842), records[0].PeriodKey)
	assert.Equal(t, dataset.PeriodKey(1846), records[1].PeriodKey)
}

func TestRangeInvalidBound(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	_, err := svc.Range(context.Background(), "before the war", "")
	assert.ErrorIs(t, err, ErrInvalidPeriodBound)
}

func TestSummaryPoolsTotals(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	m, err := svc.Summary(context.Background(), "1841", "1842")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Periods)
	assert.InDelta(t, 6323, m.TotalBirthsA, 1e-9)
	assert.InDelta(t, 755.0/6323.0, m.RateA, 1e-12)
}

func TestSummaryEmptyRangeIsZero(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	m, err := svc.Summary(context.Background(), "1900", "1950")
	require.NoError(t, err)
	assert.Equal(t, dataset.SummaryMetrics{}, m)
}

func TestUploadReplacesActiveDataset(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	content := []byte("Year,Births in Clinic 1,Deaths in Clinic 1,Births in Clinic 2,Deaths in Clinic 2\n" +
		"1847 (Before),100,5,90,10\n")
	ds, err := svc.Upload(context.Background(), "clinics.csv", content)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)

	current, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Same(t, ds, current)
}

func TestUploadIdenticalContentReusesDataset(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	content := []byte("Year,Births in Clinic 1,Deaths in Clinic 1,Births in Clinic 2,Deaths in Clinic 2\n" +
		"1847,100,5,90,10\n")
	first, err := svc.Upload(context.Background(), "a.csv", content)
	require.NoError(t, err)

	second, err := svc.Upload(context.Background(), "b.csv", content)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestUploadEmptyContent(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	_, err := svc.Upload(context.Background(), "empty.csv", nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestUploadSchemaMismatch(t *testing.T) {
	svc := newTestService(t, &stubFetcher{table: yearlyFixture()})

	_, err := svc.Upload(context.Background(), "wrong.csv", []byte("month,births_clinic1\n2020-01,3\n"))
	var schemaErr *dataset.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestLoadWarnsOnDroppedRows(t *testing.T) {
	table := yearlyFixture()
	table.Rows = append(table.Rows, []string{"unparsable", "1", "1", "1", "1"})

	logger, handler := testutil.NewTestLogger()
	svc, err := NewDatasetService(config.DatasetConfig{
		Source:  "memory://yearly",
		Variant: "yearly",
	}, &stubFetcher{table: table}, logger, nil)
	require.NoError(t, err)

	ds, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Dropped)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "rows dropped")
	assert.True(t, handler.ContainsAttr("dropped", int64(1)))
}

func TestNewDatasetServiceRejectsUnknownVariant(t *testing.T) {
	_, err := NewDatasetService(config.DatasetConfig{Source: "x", Variant: "weekly"}, &stubFetcher{}, nil, nil)
	assert.Error(t, err)
}
