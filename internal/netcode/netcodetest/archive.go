// Package netcodetest builds source archives for tests.
package netcodetest

import (
	"archive/tar"
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/ulikunitz/xz"
)

// Archive returns an xz-compressed tarball holding files (name -> contents).
func Archive(t testing.TB, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz writer: %v", err)
	}
	tw := tar.NewWriter(zw)
	for _, n := range names {
		body := []byte(files[n])
		if err := tw.WriteHeader(&tar.Header{Name: n, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatalf("tar header %s: %v", n, err)
		}
		if _, err := tw.Write(body); err != nil {
			t.Fatalf("tar write %s: %v", n, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("xz close: %v", err)
	}
	return buf.Bytes()
}

// GeneratedConfig renders a netplay_config.gen body.
func GeneratedConfig(major, minor string) string {
	return fmt.Sprintf("// generated\nstatic uint32_t NETCODE_VERSION_MAJOR = %s;\nstatic uint32_t NETCODE_VERSION_MINOR = %s;\n", major, minor)
}

// LegacySource renders the pre-generator netplay.cpp declarations.
func LegacySource(major, minor string) string {
	return fmt.Sprintf("#include \"netplay.h\"\n\nstatic int NETCODE_VERSION_MAJOR = %s;\nstatic int  NETCODE_VERSION_MINOR=%s ;\n", major, minor)
}

// SourceTarball is a minimal archive using the generated config layout.
func SourceTarball(t testing.TB, major, minor string) []byte {
	t.Helper()
	return Archive(t, map[string]string{
		"warzone2100/lib/netplay/netplay_config.gen": GeneratedConfig(major, minor),
		"warzone2100/README.md":                      "readme",
	})
}
