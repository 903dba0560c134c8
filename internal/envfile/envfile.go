package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrNotFound indicates that the environment file does not exist.
var ErrNotFound = errors.New("env file not found")

// ErrMissingKeys indicates that one or more required keys are absent.
var ErrMissingKeys = errors.New("missing required keys")

// Load reads a KEY=VALUE environment file and returns the values for keys.
// Every requested key must be present after parsing; a missing file or any
// missing key is a hard error, and the error names all missing keys at once.
func Load(path string, keys ...string) (map[string]string, error) {
	values, err := parse(path, keys)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range keys {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w in %s: %s",
			ErrMissingKeys, path, strings.Join(missing, ", "))
	}
	return values, nil
}

// LoadOptional reads the same format but treats an absent file as an empty
// mapping, and requested keys are extracted only if present.
func LoadOptional(path string, keys ...string) (map[string]string, error) {
	values, err := parse(path, keys)
	if errors.Is(err, ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return values, nil
}

// parse scans the file line by line. Blank lines and #-comments are skipped,
// lines without '=' are skipped, and each remaining line splits on the first
// '=' with key and value trimmed. The last occurrence of a key wins. When
// keys is non-empty, only those keys are retained.
func parse(path string, keys []string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open env file %s: %w", path, err)
	}
	defer f.Close()

	wanted := make(map[string]bool, len(keys))
	for _, key := range keys {
		wanted[key] = true
	}

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if len(wanted) > 0 && !wanted[key] {
			continue
		}
		values[key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}
