package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightrecorder/recorder/recorder"
	"github.com/flightrecorder/recorder/tweak"
)

func TestParseEmptyIsNoop(t *testing.T) {
	require.NoError(t, Parse(""))
	require.NoError(t, Parse("   "))
}

func TestParseSetsTraceByExactName(t *testing.T) {
	rec, err := recorder.New("config_test_exact", "", 8)
	require.NoError(t, err)

	require.NoError(t, Parse("config_test_exact=3"))
	assert.EqualValues(t, 3, rec.Trace())
}

func TestParseFullMatchOnly(t *testing.T) {
	rec, err := recorder.New("config_test_full_match", "", 8)
	require.NoError(t, err)

	// A pattern that only matches a prefix must not match: full-match
	// semantics, not substring search.
	require.NoError(t, Parse("config_test_full=5"))
	assert.EqualValues(t, 0, rec.Trace())

	require.NoError(t, Parse("config_test_full_match=5"))
	assert.EqualValues(t, 5, rec.Trace())
}

func TestParseSetsTweak(t *testing.T) {
	tw := tweak.New("config_test_tweak", "", 0)

	require.NoError(t, Parse("config_test_tweak=42"))
	assert.EqualValues(t, 42, tw.Value())
}

func TestParseBareNameSetsOne(t *testing.T) {
	rec, err := recorder.New("config_test_bare", "", 8)
	require.NoError(t, err)

	require.NoError(t, Parse("config_test_bare"))
	assert.EqualValues(t, 1, rec.Trace())
}

func TestParseAllMatchesEverything(t *testing.T) {
	rec, err := recorder.New("config_test_all_target", "", 8)
	require.NoError(t, err)

	require.NoError(t, Parse("all"))
	assert.Greater(t, rec.Trace(), int64(0))
}

func TestParseAllWithValueMatchesEverything(t *testing.T) {
	rec, err := recorder.New("config_test_all_value_target", "", 8)
	require.NoError(t, err)

	require.NoError(t, Parse("all=1"))
	assert.EqualValues(t, 1, rec.Trace())

	require.NoError(t, Parse("all=0"))
	assert.EqualValues(t, 0, rec.Trace())
}

func TestParseInvalidRegexReportsError(t *testing.T) {
	err := Parse("config_test_bad[=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestParseEmptyLabelReportsError(t *testing.T) {
	_, err := recorder.New("config_test_label_target", "", 8)
	require.NoError(t, err)

	err = Parse("config_test_label_target=a,,b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseContinuesAfterFirstError(t *testing.T) {
	rec, err := recorder.New("config_test_continue", "", 8)
	require.NoError(t, err)

	// The first item is malformed; the second must still be applied.
	err = Parse("bad[regex=1 config_test_continue=7")
	require.Error(t, err)
	assert.EqualValues(t, 7, rec.Trace())
}

func TestParseShareThenExportLabels(t *testing.T) {
	rec, err := recorder.New("config_test_export", "exports for testing", 8)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, Parse("share="+dir+"/shans"))

	require.NoError(t, Parse("config_test_export=temp,voltage"))
	assert.NotNil(t, rec.Export(0))
	assert.NotNil(t, rec.Export(1))
	assert.EqualValues(t, recorder.ChanMagic, rec.Trace())
}

func TestParseExportWithoutShareCreatesOneLazily(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RECORDER_SHARE", dir+"/shans")

	rec, err := recorder.New("config_test_export_noshare", "", 8)
	require.NoError(t, err)

	// No share= item precedes this: the export request itself must open
	// (or reuse) a shared-memory file rather than erroring.
	require.NoError(t, Parse("config_test_export_noshare=temp"))
	assert.NotNil(t, rec.Export(0))
	assert.EqualValues(t, recorder.ChanMagic, rec.Trace())
}

func TestParseListPrintsRegistries(t *testing.T) {
	_, err := recorder.New("config_test_list_target", "listed recorder", 8)
	require.NoError(t, err)

	var buf strings.Builder
	printRegistries(&buf)
	assert.Contains(t, buf.String(), "config_test_list_target")
}
