// Package netcode reads the multiplayer protocol version a release was built
// with out of its source archive.
package netcode

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/ulikunitz/xz"
)

// Source files carrying the version constants, in precedence order.
const (
	GeneratedConfigPath = "warzone2100/lib/netplay/netplay_config.gen"
	LegacySourcePath    = "warzone2100/lib/netplay/netplay.cpp"
)

var (
	generatedMajorRe = regexp.MustCompile(`static\s+uint32_t\s+NETCODE_VERSION_MAJOR\s*=\s*(\w+)\s*;`)
	generatedMinorRe = regexp.MustCompile(`static\s+uint32_t\s+NETCODE_VERSION_MINOR\s*=\s*(\w+)\s*;`)
	legacyMajorRe    = regexp.MustCompile(`static\s+int\s+NETCODE_VERSION_MAJOR\s*=\s*(\w+)\s*;`)
	legacyMinorRe    = regexp.MustCompile(`static\s+int\s+NETCODE_VERSION_MINOR\s*=\s*(\w+)\s*;`)
)

// ProtocolVersion is an opaque major/minor pair. Tokens are compared verbatim.
type ProtocolVersion struct {
	Major string
	Minor string
}

func (v ProtocolVersion) String() string { return v.Major + "." + v.Minor }

// FormatError reports an archive without usable version markers.
type FormatError struct {
	Archive string
	// File is the marker file inspected, empty when none was found.
	File   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("source archive %s: %s", e.Archive, e.Reason)
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// ExtractFile opens the .tar.xz archive at path and extracts its version.
func ExtractFile(archivePath string) (ProtocolVersion, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return ProtocolVersion{}, err
	}
	defer f.Close()
	return Extract(f, archivePath)
}

// Extract reads an xz-compressed source tarball from r. name identifies the
// archive in errors.
//
// The generated config file wins whenever it is present: if its markers are
// missing the archive is rejected without consulting the legacy source file.
func Extract(r io.Reader, name string) (ProtocolVersion, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return ProtocolVersion{}, &FormatError{Archive: name, Reason: "not an xz stream", Err: err}
	}

	var generated, legacy []byte
	var haveGenerated, haveLegacy bool

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ProtocolVersion{}, &FormatError{Archive: name, Reason: "read tar entry", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		switch entryName(hdr.Name) {
		case GeneratedConfigPath:
			if generated, err = io.ReadAll(tr); err != nil {
				return ProtocolVersion{}, &FormatError{Archive: name, File: GeneratedConfigPath, Reason: "read file", Err: err}
			}
			haveGenerated = true
		case LegacySourcePath:
			if legacy, err = io.ReadAll(tr); err != nil {
				return ProtocolVersion{}, &FormatError{Archive: name, File: LegacySourcePath, Reason: "read file", Err: err}
			}
			haveLegacy = true
		}
	}

	switch {
	case haveGenerated:
		return match(name, GeneratedConfigPath, generated, generatedMajorRe, generatedMinorRe)
	case haveLegacy:
		return match(name, LegacySourcePath, legacy, legacyMajorRe, legacyMinorRe)
	default:
		return ProtocolVersion{}, &FormatError{Archive: name, Reason: "neither " + GeneratedConfigPath + " nor " + LegacySourcePath + " found"}
	}
}

func match(archive, file string, contents []byte, majorRe, minorRe *regexp.Regexp) (ProtocolVersion, error) {
	major := majorRe.FindSubmatch(contents)
	minor := minorRe.FindSubmatch(contents)
	if major == nil || minor == nil {
		return ProtocolVersion{}, &FormatError{Archive: archive, File: file, Reason: "NETCODE_VERSION_MAJOR/MINOR not found"}
	}
	return ProtocolVersion{Major: string(major[1]), Minor: string(minor[1])}, nil
}

func entryName(n string) string {
	return strings.TrimPrefix(path.Clean(n), "./")
}
