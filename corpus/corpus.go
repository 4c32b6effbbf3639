// Package corpus enumerates class files from directories, jars, zips and
// jmods so their signatures can be checked in bulk.
package corpus

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Entry is one class file. Source names the file or archive it came from
// (nested archives are joined with "!"); Name is the path inside the archive,
// or the file path for loose class files.
type Entry struct {
	Source string
	Name   string
	Data   []byte
}

func (e Entry) String() string {
	if e.Source == e.Name {
		return e.Name
	}
	return e.Source + "!" + e.Name
}

var ErrUnsupported = errors.New("unsupported file type")

var jmodMagic = []byte{'J', 'M', 0x01, 0x00}

// Walk calls fn for every class file reachable from path. Returning an
// error from fn stops the walk and Walk returns that error.
func Walk(ctx context.Context, path string, fn func(Entry) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return walkDirectory(ctx, path, fn)
	}
	if !isCandidate(path) {
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return walkFile(ctx, path, fn)
}

func isCandidate(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".class", ".jar", ".zip", ".jmod":
		return true
	}
	return false
}

func walkDirectory(ctx context.Context, root string, fn func(Entry) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", p, err)
		}
		if d.IsDir() || !isCandidate(p) {
			return nil
		}
		return walkFile(ctx, p, fn)
	})
}

func walkFile(ctx context.Context, path string, fn func(Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".class") {
		return fn(Entry{Source: path, Name: path, Data: data})
	}
	return walkArchive(ctx, path, data, true, fn)
}

func walkArchive(ctx context.Context, source string, data []byte, nested bool, fn func(Entry) error) error {
	if bytes.HasPrefix(data, jmodMagic) {
		data = data[len(jmodMagic):]
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open %s as zip: %w", source, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".class" && !(nested && ext == ".jar") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		entryData, err := readZipEntry(f)
		if err != nil {
			return fmt.Errorf("read %s in %s: %w", f.Name, source, err)
		}
		if ext == ".jar" {
			if err := walkArchive(ctx, source+"!"+f.Name, entryData, false, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(Entry{Source: source, Name: f.Name, Data: entryData}); err != nil {
			return err
		}
	}
	return nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

var javaHomeProperty = regexp.MustCompile(`java\.home\s*=\s*(.+)`)

// JavaHome returns $JAVA_HOME, falling back to asking the java launcher on
// PATH for its java.home property.
func JavaHome() (string, error) {
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		return jh, nil
	}

	cmd := exec.Command("java", "-XshowSettings:properties", "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run java: %w", err)
	}

	matches := javaHomeProperty.FindSubmatch(output)
	if len(matches) < 2 {
		return "", fmt.Errorf("could not find java.home in output")
	}
	return strings.TrimSpace(string(matches[1])), nil
}

// DefaultPaths lists the platform class archives of a JDK: the jmods
// directory on JDK 9 and later, rt.jar on JDK 8.
func DefaultPaths(javaHome string) ([]string, error) {
	candidates := []string{
		filepath.Join(javaHome, "jmods"),
		filepath.Join(javaHome, "jre", "lib", "rt.jar"),
		filepath.Join(javaHome, "lib", "rt.jar"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return []string{c}, nil
		}
	}
	return nil, fmt.Errorf("no jmods directory or rt.jar under %s", javaHome)
}
