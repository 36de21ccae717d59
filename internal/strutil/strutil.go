// File: internal/strutil/strutil.go
// Author: momentics <momentics@gmail.com>
//
// Path expansion, delimiter mapping and hash sizing helpers used by
// dispatcher callbacks.

package strutil

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
)

var (
	// ErrOutDelimiterPresent means the target delimiter already occurs in the name.
	ErrOutDelimiterPresent = errors.New("target delimiter present in name")
	// ErrNoOutDelimiter means the source delimiter occurs but no target was given.
	ErrNoOutDelimiter = errors.New("source delimiter present but no target delimiter")
)

// ExpandHome expands a leading "~" or "~user". Other paths are returned as is.
func ExpandHome(path string) (string, error) {
	return expandHome(path, os.UserHomeDir, lookupHome)
}

func lookupHome(name string) (string, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

func expandHome(path string, home func() (string, error), lookup func(string) (string, error)) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	rest := path[1:]
	if rest == "" || rest[0] == '/' {
		h, err := home()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", path, err)
		}
		return h + rest, nil
	}
	name, tail := rest, ""
	if k := strings.IndexByte(rest, '/'); k >= 0 {
		name, tail = rest[:k], rest[k:]
	}
	h, err := lookup(name)
	if err != nil {
		return "", fmt.Errorf("expand %q: unknown user %q: %w", path, name, err)
	}
	return h + tail, nil
}

// MapName replaces every occurrence of the delimiter in with out.
// A name without in is returned unchanged; an empty in, or in == out, is a no-op.
func MapName(name, in, out string) (string, error) {
	if in == "" || in == out {
		return name, nil
	}
	num := 0
	for i := 0; i < len(name); {
		if strings.HasPrefix(name[i:], in) {
			num++
			i += len(in)
			continue
		}
		if out != "" && strings.HasPrefix(name[i:], out) {
			return "", fmt.Errorf("map %q: %w", name, ErrOutDelimiterPresent)
		}
		i++
	}
	if num == 0 {
		return name, nil
	}
	if out == "" {
		return "", fmt.Errorf("map %q: %w", name, ErrNoOutDelimiter)
	}
	return strings.ReplaceAll(name, in, out), nil
}

// primeDeltas[b] is the distance from 1<<b to the next prime at or above it;
// zero entries fall back to the power of two itself.
var primeDeltas = [...]int{
	0, 0, 1, 3, 1, 5, 3, 3, 1, 9, 7, 5, 3, 17, 27, 3,
	1, 29, 3, 21, 7, 17, 15, 9, 43, 35, 15, 0, 0, 0, 0, 0,
}

// BucketsForSize returns a hash table bucket count of at least size.
func BucketsForSize(size int) int {
	base, bits := 4, 2
	for {
		prime := base + primeDeltas[bits]
		if prime >= size || bits == len(primeDeltas)-1 {
			return prime
		}
		base <<= 1
		bits++
	}
}
