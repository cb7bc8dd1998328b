package directory

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// FileFormat identifies how a directory file is encoded.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // one name per line
	FormatMsgpack            // msgpack array of strings
)

func (f FileFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// DetectFormat picks a format from the file extension.
func DetectFormat(filename string) FileFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".list":
		return FormatText
	case ".msgpack", ".mpk", ".bin":
		return FormatMsgpack
	default:
		return FormatUnknown
	}
}

// LoadFile adds the names stored in filename and returns how many were new.
func (d *Directory) LoadFile(filename string) (int, error) {
	format := DetectFormat(filename)
	if format == FormatUnknown {
		return 0, fmt.Errorf("unsupported directory file %s (expected .txt or .msgpack)", filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open directory file %s: %w", filename, err)
	}
	defer f.Close()

	var names []string
	switch format {
	case FormatText:
		names, err = ReadText(f)
	case FormatMsgpack:
		names, err = ReadMsgpack(f)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s file %s: %w", format, filename, err)
	}

	added := d.AddAll(names)
	log.Debugf("Loaded %d names (%d new) from %s", len(names), added, filename)
	return added, nil
}

// ReadText reads one name per line. Surrounding whitespace is trimmed;
// blank lines and lines starting with '#' are skipped.
func ReadText(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

// ReadMsgpack decodes a msgpack array of strings.
func ReadMsgpack(r io.Reader) ([]string, error) {
	var names []string
	if err := msgpack.NewDecoder(r).Decode(&names); err != nil {
		return nil, err
	}
	return names, nil
}

// Save writes every name to filename as msgpack.
func (d *Directory) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	if err := msgpack.NewEncoder(f).Encode(d.Names()); err != nil {
		return fmt.Errorf("failed to encode directory: %w", err)
	}
	return f.Sync()
}
