package csvutil

import (
	"errors"
	"strings"
	"testing"

	"github.com/lepinkainen/marginalia/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	City string
}

func parsePerson(r Record) (person, error) {
	if r.Get("name") == "" {
		return person{}, errors.New("name is empty")
	}
	return person{Name: r.Get("name"), City: r.Get("city")}, nil
}

func TestProcessCSVByHeaderName(t *testing.T) {
	in := "city,name\n NYC , Alice\nLA,Bob\n"

	people, err := ProcessCSV(strings.NewReader(in), parsePerson, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []person{{"Alice", "NYC"}, {"Bob", "LA"}}, people)
}

func TestProcessCSVMissingColumnIsEmpty(t *testing.T) {
	people, err := ProcessCSV(strings.NewReader("name\nAlice\n"), parsePerson, ProcessorOptions{})
	require.NoError(t, err)
	assert.Equal(t, []person{{Name: "Alice"}}, people)
}

func TestProcessCSVRequiredColumns(t *testing.T) {
	_, err := ProcessCSV(strings.NewReader("city\nNYC\n"), parsePerson, ProcessorOptions{Required: []string{"name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "name"`)
}

func TestProcessCSVInvalidRecords(t *testing.T) {
	in := "name,city\nAlice,NYC\n,LA\nCarol,Oslo\n"

	_, err := ProcessCSV(strings.NewReader(in), parsePerson, ProcessorOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	people, err := ProcessCSV(strings.NewReader(in), parsePerson, ProcessorOptions{SkipInvalid: true})
	require.NoError(t, err)
	assert.Equal(t, []person{{"Alice", "NYC"}, {"Carol", "Oslo"}}, people)
}

func TestProcessCSVStripsBOM(t *testing.T) {
	people, err := ProcessCSV(strings.NewReader("\uFEFFname,city\nAlice,NYC\n"), parsePerson, ProcessorOptions{Required: []string{"name"}})
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestProcessCSVFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("people.csv", "name,city\nAlice,NYC\n")

	people, err := ProcessCSVFile(env.Path("people.csv"), parsePerson, ProcessorOptions{})
	require.NoError(t, err)
	assert.Len(t, people, 1)

	env.WriteFileString("empty.csv", "")
	_, err = ProcessCSVFile(env.Path("empty.csv"), parsePerson, ProcessorOptions{})
	require.Error(t, err)

	_, err = ProcessCSVFile(env.Path("missing.csv"), parsePerson, ProcessorOptions{})
	require.Error(t, err)
}
