package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1967-05-30"`), &d))
	assert.Equal(t, 1967, d.Year())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"1967-05-30"`, string(b))

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, json.Unmarshal([]byte(`"30/05/1967"`), &d), &typeErr)
	assert.Equal(t, DateType, typeErr.Type)

	var in struct {
		Born *Date `json:"born"`
	}
	require.ErrorAs(t, json.Unmarshal([]byte(`{"born":"1967-02-30"}`), &in), &typeErr)
	assert.Equal(t, "born", typeErr.Field)
}

func TestDateDecade(t *testing.T) {
	assert.Equal(t, 1960, NewDate(1967, time.May, 30).Decade())
	assert.Equal(t, 2000, NewDate(2000, time.January, 1).Decade())
	assert.Equal(t, 2020, NewDate(2029, time.December, 31).Decade())
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1917, 6, 13, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "1917-06-13", d.String())
	assert.Error(t, d.Scan(42))
}

func TestLanguageDisplay(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageDisplay(LangSpanish))
	assert.Equal(t, "German", LanguageDisplay(LangGerman))
	assert.Equal(t, "Other", LanguageDisplay(LangOther))
	assert.True(t, IsLanguage("pt"))
	assert.False(t, IsLanguage("de"))
}

func TestFieldPresence(t *testing.T) {
	var p struct {
		A Field[string] `json:"a"`
		B Field[*Date]  `json:"b"`
		C Field[int]    `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &p))
	assert.True(t, p.A.Set)
	assert.Equal(t, "x", p.A.V)
	assert.True(t, p.B.Set)
	assert.True(t, p.B.Null)
	assert.False(t, p.C.Set)
}
