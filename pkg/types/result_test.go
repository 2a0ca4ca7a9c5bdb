package types

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, s := range []string{"run", "get", "all"} {
		m, err := ParseMode(s)
		require.NoError(t, err)
		assert.Equal(t, Mode(s), m)
	}

	for _, s := range []string{"delete", "", "RUN", "values"} {
		_, err := ParseMode(s)
		assert.ErrorIs(t, err, ErrInvalidMode, "mode %q", s)
	}
}

func TestParseMode_NamesReceivedMode(t *testing.T) {
	_, err := ParseMode("delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"delete"`)
}

func TestResult_MarshalRun(t *testing.T) {
	data, err := json.Marshal(&Result{Mode: ModeRun, Changes: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"changes":3}`, string(data))
}

func TestResult_MarshalAllEmptyIsArray(t *testing.T) {
	data, err := json.Marshal(&Result{Mode: ModeAll})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestResult_MarshalUnknownMode(t *testing.T) {
	_, err := json.Marshal(&Result{Mode: "bogus"})
	assert.Error(t, err)
}

func TestResult_Golden(t *testing.T) {
	task := DocumentFromRow(
		[]string{"id", "title", "sort_order", "score", "due_date", "attachment"},
		[]Value{Text("t1"), Text("Write report"), Integer(2), Float(0.75), Null{}, Null{}},
	)
	other := DocumentFromRow(
		[]string{"id", "title", "sort_order", "score", "due_date", "attachment"},
		[]Value{Text("t2"), Text("Café ☕"), Integer(-1), Float(1e-7), Integer(1767225600), Null{}},
	)

	g := goldie.New(t)

	get, err := json.Marshal(&Result{Mode: ModeGet, Row: task})
	require.NoError(t, err)
	g.Assert(t, "result_get", get)

	all, err := json.Marshal(&Result{Mode: ModeAll, Rows: []*Document{task, other}})
	require.NoError(t, err)
	g.Assert(t, "result_all", all)
}
