// Package config reads the header-keyed configuration file format of a
// queueing-system run: four headers (Requests, Buffer, Sources, Devices),
// in any order, each appearing at most once.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/smo-sim/smo/qnet"
)

// Error is a configuration error: missing/duplicate/unknown header,
// malformed number, or an out-of-range value. The CLI maps any non-nil
// Error to the configuration-error exit code.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Config is the parsed contents of a configuration file: a target request
// count, a buffer capacity, and one inter-arrival period per source /
// one processing-time coefficient per device.
type Config struct {
	Target             int64
	BufferCapacity     int
	SourcePeriods      []qnet.Time
	DeviceCoefficients []qnet.Time
}

const (
	headerRequests = "Requests:"
	headerBuffer   = "Buffer:"
	headerSources  = "Sources:"
	headerDevices  = "Devices:"
)

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorf("config: %v", err)
	}
	return Parse(string(data))
}

// Parse parses configuration text directly.
func Parse(text string) (*Config, error) {
	tokens := tokenize(text)

	var (
		cfg        Config
		seen       = map[string]bool{}
		sources    []qnet.Time
		devices    []qnet.Time
		haveTarget bool
		haveBuffer bool
	)

	i := 0
	for i < len(tokens) {
		header := tokens[i]
		i++
		switch header {
		case headerRequests:
			if seen[header] {
				return nil, errorf("config: duplicate header %q", header)
			}
			seen[header] = true
			n, consumed, err := readInts(tokens, i, 1)
			if err != nil {
				return nil, err
			}
			if n[0] <= 0 {
				return nil, errorf("config: Requests must be positive, got %d", n[0])
			}
			cfg.Target = int64(n[0])
			haveTarget = true
			i += consumed
		case headerBuffer:
			if seen[header] {
				return nil, errorf("config: duplicate header %q", header)
			}
			seen[header] = true
			n, consumed, err := readInts(tokens, i, 1)
			if err != nil {
				return nil, err
			}
			if n[0] < 0 {
				return nil, errorf("config: Buffer must be non-negative, got %d", n[0])
			}
			cfg.BufferCapacity = n[0]
			haveBuffer = true
			i += consumed
		case headerSources:
			if seen[header] {
				return nil, errorf("config: duplicate header %q", header)
			}
			seen[header] = true
			n, consumed := readGreedyInts(tokens, i)
			if len(n) == 0 {
				return nil, errorf("config: Sources must list at least one period")
			}
			for _, v := range n {
				if v <= 0 {
					return nil, errorf("config: source periods must be positive, got %d", v)
				}
				sources = append(sources, qnet.Time(v))
			}
			i += consumed
		case headerDevices:
			if seen[header] {
				return nil, errorf("config: duplicate header %q", header)
			}
			seen[header] = true
			n, consumed := readGreedyInts(tokens, i)
			if len(n) == 0 {
				return nil, errorf("config: Devices must list at least one coefficient")
			}
			for _, v := range n {
				if v <= 0 {
					return nil, errorf("config: device coefficients must be positive, got %d", v)
				}
				devices = append(devices, qnet.Time(v))
			}
			i += consumed
		default:
			return nil, errorf("config: unknown header %q", header)
		}
	}

	if !haveTarget {
		return nil, errorf("config: missing %q header", headerRequests)
	}
	if !haveBuffer {
		return nil, errorf("config: missing %q header", headerBuffer)
	}
	if len(sources) == 0 {
		return nil, errorf("config: missing %q header", headerSources)
	}
	if len(devices) == 0 {
		return nil, errorf("config: missing %q header", headerDevices)
	}

	cfg.SourcePeriods = sources
	cfg.DeviceCoefficients = devices
	return &cfg, nil
}

// tokenize splits the configuration text into whitespace-separated
// tokens across the whole file, so a header's numeric values may span
// multiple lines. Greedy consumption works over the token stream, not per
// physical line.
func tokenize(text string) []string {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Split(bufio.ScanWords)
	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	return tokens
}

func isKnownHeader(tok string) bool {
	switch tok {
	case headerRequests, headerBuffer, headerSources, headerDevices:
		return true
	default:
		return false
	}
}

// readInts requires at least want integers starting at tokens[i], failing
// if a non-numeric token or EOF is reached too soon. Any further integers
// before the next non-numeric token are consumed and discarded.
func readInts(tokens []string, i, want int) ([]int, int, error) {
	vals, consumed := readGreedyInts(tokens, i)
	if len(vals) < want {
		return nil, 0, errorf("config: expected %d value(s) after header, got %d", want, len(vals))
	}
	return vals[:want], consumed, nil
}

// readGreedyInts consumes integer tokens starting at tokens[i] until a
// non-numeric token, a known header, or EOF.
func readGreedyInts(tokens []string, i int) ([]int, int) {
	var vals []int
	start := i
	for i < len(tokens) {
		if isKnownHeader(tokens[i]) {
			break
		}
		v, err := strconv.Atoi(tokens[i])
		if err != nil {
			break
		}
		vals = append(vals, v)
		i++
	}
	return vals, i - start
}
