package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/csstree/pkg/safeconv"
	"github.com/Sumatoshi-tech/csstree/pkg/textutil"
)

// stdinPath names standard input in file arguments.
const stdinPath = "-"

var (
	// ErrDirectoryPath indicates a file operation was attempted on a directory.
	ErrDirectoryPath = errors.New("path points to a directory")
	// ErrEmptyPath indicates a path argument was empty.
	ErrEmptyPath = errors.New("path is empty")
	// ErrPathContainsNUL indicates the path contains a NUL byte.
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	// ErrInputTooLarge indicates an input above limits.max_input_size.
	ErrInputTooLarge = errors.New("input exceeds maximum size")
	// ErrBinaryInput indicates an input that is not text, such as a compressed tree.
	ErrBinaryInput = errors.New("input looks binary")
)

// readInput reads path, or stdin for "" and "-", refusing more than
// maxBytes. It returns the content and the name to report it under.
func readInput(stdin io.Reader, path string, maxBytes int) (content, name string, err error) {
	var data []byte

	if path == "" || path == stdinPath {
		name = "<stdin>"

		data, err = io.ReadAll(io.LimitReader(stdin, int64(maxBytes)+1))
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, name, err = safeReadFile(path)
		if err != nil {
			return "", "", err
		}
	}

	if len(data) > maxBytes {
		return "", "", fmt.Errorf("%w: %s is over %s", ErrInputTooLarge, name, humanize.Bytes(safeconv.MustIntToUint64(maxBytes)))
	}

	content = string(data)
	if textutil.IsBinary(content) {
		return "", "", fmt.Errorf("%w: %s", ErrBinaryInput, name)
	}

	return content, name, nil
}

func safeReadFile(path string) (content []byte, resolvedPath string, err error) {
	resolvedPath, err = resolveUserFilePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve path %q: %w", path, err)
	}

	//nolint:gosec // resolvedPath is normalized and existence/type checked in resolveUserFilePath.
	content, err = os.ReadFile(resolvedPath)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", resolvedPath, err)
	}

	return content, resolvedPath, nil
}

func resolveUserFilePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("%w: %q", ErrPathContainsNUL, path)
	}

	cleanPath := filepath.Clean(path)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}

	//nolint:gosec // absPath is normalized by filepath.Clean + filepath.Abs.
	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", absPath, err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrDirectoryPath, absPath)
	}

	return absPath, nil
}

// sanitizeForTerminal flattens line breaks and drops control characters
// so source fragments print on one table row.
func sanitizeForTerminal(input string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t' || r == '\f':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, input)
}

// firstArg returns args[0] or "" when there are no arguments.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
