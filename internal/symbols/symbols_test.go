package symbols

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseAccepts(t *testing.T) {
	u := NewUniverse([]string{"aapl", "TSLA", "GME"}, []string{"gme", "yolo"})

	tests := []struct {
		token string
		want  bool
	}{
		{"AAPL", true},
		{"TSLA", true},
		{"SPY", true},  // ETF allow-list
		{"GME", false}, // ignored beats listed
		{"YOLO", false},
		{"MSFT", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, u.Accepts(tt.token), tt.token)
	}
	assert.Equal(t, 3, u.Len())
	assert.False(t, u.IsListed("SPY"))
}

func TestFilterListed(t *testing.T) {
	u := NewUniverse([]string{"AAPL", "AMC"}, nil)
	assert.Equal(t, []string{"AMC", "AAPL"}, u.FilterListed([]string{"AMC", "SPY", "AAPL", "XYZ"}))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	tickers := filepath.Join(dir, "tickers")
	require.NoError(t, os.Mkdir(tickers, 0755))

	nasdaq := "Symbol,Name,Sector\nAAPL,Apple Inc.,Technology\nBRK/B,Berkshire,Finance\nAMD,Advanced Micro Devices,Technology\n"
	nyse := "Name,Symbol\nGameStop,GME\n"
	require.NoError(t, os.WriteFile(filepath.Join(tickers, "nasdaq.csv"), []byte(nasdaq), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tickers, "nyse.csv"), []byte(nyse), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tickers, "notes.txt"), []byte("Symbol\nZZZZ\n"), 0644))

	ignore := filepath.Join(dir, "ignore.txt")
	require.NoError(t, os.WriteFile(ignore, []byte("dd\nDD\n\nceo\n"), 0644))

	u, err := Load(tickers, ignore)
	require.NoError(t, err)

	assert.Equal(t, 3, u.Len())
	assert.True(t, u.IsListed("GME"))
	assert.False(t, u.IsListed("ZZZZ"))
	assert.True(t, u.IsIgnored("DD"))
	assert.True(t, u.IsIgnored("CEO"))
}

func TestLoadMissingIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("Symbol\nAAPL\n"), 0644))

	u, err := Load(dir, filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.True(t, u.Accepts("AAPL"))
}

func TestLoadEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	assert.True(t, errors.Is(err, ErrNoSymbols))
}

func TestLoadIgnoreListDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ignore.txt")
	require.NoError(t, os.WriteFile(path, []byte("yolo\nYOLO\n moon \n"), 0644))

	words, err := LoadIgnoreList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"YOLO", "MOON"}, words)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "GME"}, ParseList(" aapl, ,gme"))
	assert.Nil(t, ParseList(""))
}
