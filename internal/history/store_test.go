package history

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thivinthegreat/gold-rate-tracker/internal/model"
)

func load(t *testing.T, csv string) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(csv), DefaultSchema())
	require.NoError(t, err)
	return s
}

func TestLoad_SortsAndParses(t *testing.T) {
	s := load(t, `date,gold,silver,note
2025-11-03,6120,78.5,x
2025-11-01,6100,78.0,
05/11/2025 10:00 AM,6150,79,y
`)
	assert.Equal(t, []model.Metal{model.Gold, model.Silver}, s.Metals())

	gold, err := s.Series(model.Gold)
	require.NoError(t, err)
	require.Equal(t, 3, gold.Len())
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), gold.Points[0].Date)
	assert.Equal(t, time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC), gold.Points[2].Date)
	assert.Equal(t, "6150", gold.Points[2].Price.Decimal.String())

	silver, err := s.Series(model.Silver)
	require.NoError(t, err)
	assert.Equal(t, "78.5", silver.Points[1].Price.Decimal.String())
}

func TestLoad_MissingMarkers(t *testing.T) {
	s := load(t, `date,gold,silver
2025-11-01,6100,NA
2025-11-02,,78
2025-11-03,6110,-
`)
	gold, err := s.Series(model.Gold)
	require.NoError(t, err)
	assert.Equal(t, 3, gold.Len())
	assert.True(t, gold.Points[1].Missing())
	assert.Len(t, gold.Observed(), 2)

	silver, err := s.Series(model.Silver)
	require.NoError(t, err)
	assert.Len(t, silver.Observed(), 1)
}

func TestLoad_MalformedPriceIsolatedToMetal(t *testing.T) {
	s := load(t, `date,gold,silver
2025-11-01,6100,78
2025-11-02,6110,abc
2025-11-03,6120,79
`)
	gold, err := s.Series(model.Gold)
	require.NoError(t, err)
	assert.Equal(t, 3, gold.Len())

	_, err = s.Series(model.Silver)
	var me *model.MalformedRecordError
	require.True(t, errors.As(err, &me), "got %v", err)
	assert.Equal(t, model.Silver, me.Metal)
	assert.Equal(t, 3, me.Line)
	assert.Equal(t, "silver", me.Column)
	assert.Equal(t, "abc", me.Value)
	assert.True(t, errors.Is(err, model.ErrBadPrice))
}

func TestLoad_NonPositivePrice(t *testing.T) {
	s := load(t, "date,gold,silver\n2025-11-01,0,78\n")
	_, err := s.Series(model.Gold)
	assert.True(t, errors.Is(err, model.ErrBadPrice))
	_, err = s.Series(model.Silver)
	assert.NoError(t, err)
}

func TestLoad_MalformedDateFailsEveryMetal(t *testing.T) {
	s := load(t, `date,gold,silver
2025-11-01,6100,78
yesterday,6110,79
`)
	for _, m := range s.Metals() {
		_, err := s.Series(m)
		assert.True(t, errors.Is(err, model.ErrBadDate), "%s: %v", m, err)
	}
}

func TestLoad_DuplicateDate(t *testing.T) {
	s := load(t, `date,gold,silver
2025-11-01,6100,78
2025-11-01,6110,79
`)
	_, err := s.Series(model.Gold)
	assert.True(t, errors.Is(err, model.ErrDuplicateDate))
}

func TestLoad_ShortRow(t *testing.T) {
	s := load(t, "date,gold,silver\n2025-11-01,6100\n")
	_, err := s.Series(model.Gold)
	assert.NoError(t, err)
	_, err = s.Series(model.Silver)
	assert.True(t, errors.Is(err, ErrShortRow))
}

func TestLoad_HeaderErrors(t *testing.T) {
	_, err := Load(strings.NewReader("day,gold,silver\n"), DefaultSchema())
	assert.ErrorContains(t, err, "date column")

	_, err = Load(strings.NewReader("date,gold\n"), DefaultSchema())
	assert.ErrorContains(t, err, `"silver"`)

	_, err = Load(strings.NewReader(""), DefaultSchema())
	assert.Error(t, err)
}

func TestLoad_UnknownMetal(t *testing.T) {
	s := load(t, "date,gold,silver\n2025-11-01,6100,78\n")
	_, err := s.Series("platinum")
	assert.ErrorContains(t, err, "unknown metal")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffdate,gold,silver\n2025-11-01,6100,78\n"), 0o644))

	s, err := LoadFile(path, DefaultSchema())
	require.NoError(t, err)
	gold, err := s.Series(model.Gold)
	require.NoError(t, err)
	assert.Equal(t, 1, gold.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultSchema())
	assert.Error(t, err)
}

func TestSchema_Validate(t *testing.T) {
	assert.NoError(t, DefaultSchema().Validate())

	bad := DefaultSchema()
	bad.Metals = map[model.Metal]string{model.Gold: "date"}
	assert.Error(t, bad.Validate())

	bad = DefaultSchema()
	bad.DateLayouts = nil
	assert.Error(t, bad.Validate())
}

func TestSuffixAndRange(t *testing.T) {
	s := load(t, `date,gold,silver
2025-11-01,6100,78
2025-11-02,6110,78
2025-11-04,6120,78
2025-11-05,6130,78
`)
	gold, err := s.Series(model.Gold)
	require.NoError(t, err)

	assert.Equal(t, 2, gold.Suffix(2).Len())
	assert.Equal(t, 4, gold.Suffix(0).Len())
	assert.Equal(t, 4, gold.Suffix(30).Len())

	r := gold.Range(time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC))
	require.Equal(t, 2, r.Len())
	assert.Equal(t, "6110", r.Points[0].Price.Decimal.String())

	empty := gold.Range(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, empty.Len())
}

func TestParseRange(t *testing.T) {
	for token, want := range map[string]int{"30": 30, "90": 90, "180": 180, "365": 365, "ALL": 0, "all": 0} {
		got, err := ParseRange(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}
	_, err := ParseRange("7")
	assert.Error(t, err)
}

func TestLoad_PriceOutsideFloatRange(t *testing.T) {
	for _, v := range []string{"1e400", "1e-400"} {
		s := load(t, "date,gold,silver\n2025-11-01,6100,78\n2025-11-02,"+v+",79\n")
		_, err := s.Series(model.Gold)
		var me *model.MalformedRecordError
		require.True(t, errors.As(err, &me), "%s: %v", v, err)
		assert.Equal(t, v, me.Value)
		assert.True(t, errors.Is(err, model.ErrBadPrice))

		silver, err := s.Series(model.Silver)
		require.NoError(t, err)
		assert.Equal(t, 2, silver.Len())
	}
}
