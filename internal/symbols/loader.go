package symbols

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoSymbols is returned when no ticker could be read from the listing files
var ErrNoSymbols = errors.New("no ticker symbols found")

// Load reads every exchange CSV in tickerDir plus the ignore-list file and
// builds the universe. A missing ignore file is treated as empty.
func Load(tickerDir, ignoreFile string) (*Universe, error) {
	listed, err := LoadTickerDir(tickerDir)
	if err != nil {
		return nil, err
	}

	ignore, err := LoadIgnoreList(ignoreFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return NewUniverse(listed, ignore), nil
}

// LoadTickerDir reads the Symbol column of every *.csv file in dir.
// Files that cannot be parsed are skipped; an empty result is an error.
func LoadTickerDir(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	var all []string
	for _, path := range paths {
		syms, err := readSymbolColumn(path)
		if err != nil {
			continue
		}
		all = append(all, syms...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSymbols, dir)
	}
	return all, nil
}

func readSymbolColumn(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s has no Symbol column", path)
	}

	var out []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if col < len(rec) && isValidSymbol(strings.TrimSpace(rec[col])) {
			out = append(out, strings.ToUpper(strings.TrimSpace(rec[col])))
		}
	}
	return out, nil
}

// LoadIgnoreList reads one word per line, upper-cased and deduplicated
func LoadIgnoreList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ignore list: %w", err)
	}
	defer f.Close()

	seen := make(map[string]struct{})
	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := normalize(sc.Text())
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore list: %w", err)
	}
	return words, nil
}

// ParseList splits a comma separated symbol list from the command line
func ParseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isValidSymbol checks if a symbol is a standard ticker
func isValidSymbol(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 5 {
		return false
	}
	for _, c := range symbol {
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			return false
		}
	}
	return true
}
