package trafficpush

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LoadPatterns reads a traffic configuration file and returns the ordered
// pattern list. A *.json file contains a JSON array of patterns; any other
// file is in the native format: blocks of key=value lines separated by blank
// lines, '#' starts a comment line. Unknown parameters are logged and
// ignored; a line without '=' is fatal.
func LoadPatterns(filename string) ([]Pattern, error) {
	body, e := os.ReadFile(filename)
	if e != nil {
		return nil, &ConfigError{File: filename, Err: e}
	}

	var patterns []Pattern
	if filepath.Ext(filename) == ".json" {
		if e := json.Unmarshal(body, &patterns); e != nil {
			return nil, &ConfigError{File: filename, Err: e}
		}
	} else if patterns, e = parseNative(filename, body); e != nil {
		return nil, e
	}

	if e := ValidatePatterns(patterns); e != nil {
		return nil, &ConfigError{File: filename, Err: e}
	}
	return patterns, nil
}

func parseNative(filename string, body []byte) (patterns []Pattern, e error) {
	var cur *Pattern
	flush := func() {
		if cur != nil {
			patterns = append(patterns, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			flush()
			continue
		case strings.HasPrefix(line, "#"):
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &ConfigError{File: filename, Line: lineNum,
				Err: fmt.Errorf("invalid syntax: %s", line)}
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		if cur == nil {
			cur = new(Pattern)
		}
		ok, e := cur.applyParameter(key, value)
		if e != nil {
			return nil, &ConfigError{File: filename, Line: lineNum, Err: e}
		}
		if !ok {
			logger.Warn("ignoring unknown parameter",
				zap.Int("line", lineNum),
				zap.String("parameter", key),
			)
		}
	}
	if e := scanner.Err(); e != nil {
		return nil, &ConfigError{File: filename, Err: e}
	}
	flush()
	return patterns, nil
}

// ValidatePatterns checks semantic correctness of a pattern list.
func ValidatePatterns(patterns []Pattern) error {
	if len(patterns) == 0 {
		return ErrNoPatterns
	}
	for i, p := range patterns {
		if e := p.Validate(); e != nil {
			return fmt.Errorf("pattern %d: %w", i+1, e)
		}
	}
	return nil
}
