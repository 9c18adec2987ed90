package installer

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"jdkprov/internal/java"
	"jdkprov/internal/logging"
	"jdkprov/internal/platform"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

var (
	// ErrUnsupportedArchive is returned for archive names with an unknown suffix
	ErrUnsupportedArchive = errors.New("unsupported archive format")
	// ErrNoBasePath is returned when an archive has no directory entry to install into
	ErrNoBasePath = errors.New("unable to determine base path of archive")
)

var errStopWalk = errors.New("stop walking archive")

type archiveFormat int

const (
	formatTarGz archiveFormat = iota
	formatTarXz
	formatZip
)

// detectFormat picks the archive format from the file name alone
func detectFormat(name string) (archiveFormat, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return formatTarGz, nil
	case strings.HasSuffix(lower, ".tar.xz"):
		return formatTarXz, nil
	case strings.HasSuffix(lower, ".zip"):
		return formatZip, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(name))
	}
}

type entryKind int

const (
	entryDir entryKind = iota
	entryFile
	entrySymlink
	entryHardlink
	entryOther
)

// archiveEntry is one entry of a tar or zip stream
type archiveEntry struct {
	name     string
	kind     entryKind
	mode     fs.FileMode
	linkname string
	body     io.Reader
}

// Extractor unpacks JDK/JRE archives
type Extractor struct {
	OS     platform.OS
	logger *log.Logger
}

// NewExtractor creates an extractor applying the layout and permission rules of system
func NewExtractor(system platform.OS, logger *log.Logger) *Extractor {
	return &Extractor{
		OS:     system,
		logger: logging.Component(logger, "extract"),
	}
}

// Extract unpacks archive into destRoot and returns the installation directory,
// named after the first directory entry of the archive. Directory entries are
// not created explicitly; parents of files are. Existing files are overwritten.
// Symlinks are created after every other entry and must resolve inside destRoot.
func (e *Extractor) Extract(destRoot, archive string) (string, error) {
	format, err := detectFormat(archive)
	if err != nil {
		return "", err
	}

	base, err := basePath(archive, format)
	if err != nil {
		return "", err
	}
	installDir := filepath.Join(destRoot, base)

	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	root, err := filepath.EvalSymlinks(destRoot)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", destRoot, err)
	}

	e.logger.Info("extracting archive", "archive", archive, "dest", destRoot)

	var links []archiveEntry
	err = walkArchive(archive, format, func(entry archiveEntry) error {
		if entry.kind == entrySymlink {
			links = append(links, archiveEntry{name: entry.name, kind: entrySymlink, linkname: entry.linkname})
			return nil
		}
		return e.writeEntry(root, entry)
	})
	if err != nil {
		return "", err
	}

	if err := e.writeSymlinks(root, links); err != nil {
		return "", err
	}

	if err := e.makeExecutable(installDir); err != nil {
		return "", err
	}

	return installDir, nil
}

// basePath returns the top-level name of the first directory entry in stream order
func basePath(archive string, format archiveFormat) (string, error) {
	var base string
	err := walkArchive(archive, format, func(entry archiveEntry) error {
		if entry.kind != entryDir {
			return nil
		}
		cleaned := cleanEntryName(entry.name)
		if cleaned == "" {
			return nil
		}
		base, _, _ = strings.Cut(cleaned, "/")
		return errStopWalk
	})
	if err != nil {
		return "", err
	}
	if base == "" {
		return "", fmt.Errorf("%w: %s", ErrNoBasePath, filepath.Base(archive))
	}
	return base, nil
}

// cleanEntryName normalizes an entry name to a relative slash path, "" for the root
func cleanEntryName(name string) string {
	cleaned := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// resolveEntry joins an entry name onto root, rejecting names that escape it
// or that would be written through a symlink
func resolveEntry(root, name string) (string, error) {
	cleaned := cleanEntryName(name)
	if cleaned == "" {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	if err := checkNoSymlinkParents(root, cleaned); err != nil {
		return "", fmt.Errorf("archive entry %q: %w", name, err)
	}
	return filepath.Join(root, filepath.FromSlash(cleaned)), nil
}

// checkNoSymlinkParents fails when an existing directory between root and the
// slash path rel is a symlink
func checkNoSymlinkParents(root, rel string) error {
	dir := path.Dir(rel)
	if dir == "." {
		return nil
	}
	cur := root
	for _, part := range strings.Split(dir, "/") {
		cur = filepath.Join(cur, part)
		info, err := os.Lstat(cur)
		if err != nil {
			return nil
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("parent %s is a symlink", cur)
		}
	}
	return nil
}

func (e *Extractor) writeEntry(root string, entry archiveEntry) error {
	if entry.kind == entryDir {
		return nil
	}

	target, err := resolveEntry(root, entry.name)
	if err != nil || target == "" {
		return err
	}

	switch entry.kind {
	case entryFile:
		return writeFile(target, entry.mode, entry.body)
	case entryHardlink:
		source, err := resolveEntry(root, entry.linkname)
		if err != nil || source == "" {
			return fmt.Errorf("invalid hard link %q -> %q", entry.name, entry.linkname)
		}
		if info, err := os.Lstat(source); err == nil && info.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("invalid hard link %q -> %q", entry.name, entry.linkname)
		}
		if err := prepareTarget(target); err != nil {
			return err
		}
		if err := os.Link(source, target); err != nil {
			return fmt.Errorf("failed to link %s: %w", entry.name, err)
		}
		return nil
	default:
		e.logger.Debug("skipping special archive entry", "name", entry.name)
		return nil
	}
}

// prepareTarget creates parent directories and removes a previous file at target
func prepareTarget(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to replace %s: %w", target, err)
		}
	}
	return nil
}

func writeFile(target string, mode fs.FileMode, body io.Reader) error {
	if err := prepareTarget(target); err != nil {
		return err
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	_, err = io.Copy(outFile, body)
	closeErr := outFile.Close()
	if err != nil {
		return fmt.Errorf("failed to extract file: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to extract file: %w", closeErr)
	}
	return nil
}

// writeSymlinks creates links in archive order, then checks that each one
// resolves inside root once all of them exist. Offending links are removed.
func (e *Extractor) writeSymlinks(root string, links []archiveEntry) error {
	if !e.OS.IsPOSIX() {
		if len(links) > 0 {
			e.logger.Debug("skipping symlinks", "os", e.OS, "count", len(links))
		}
		return nil
	}

	created := make([]string, 0, len(links))
	createErr := func() error {
		for _, link := range links {
			target, err := resolveEntry(root, link.name)
			if err != nil {
				return err
			}
			if target == "" {
				continue
			}
			if link.linkname == "" || filepath.IsAbs(link.linkname) || path.IsAbs(link.linkname) {
				return fmt.Errorf("symlink %s points outside the archive: %s", link.name, link.linkname)
			}
			if err := prepareTarget(target); err != nil {
				return err
			}
			if err := os.Symlink(link.linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
			created = append(created, target)
		}
		return nil
	}()

	// links created before a failure are checked too
	var escaped []string
	for _, link := range created {
		linkname, err := os.Readlink(link)
		if err == nil {
			_, err = followInside(root, filepath.Dir(link), linkname, 0)
		}
		if err != nil {
			e.logger.Warn("removing symlink", "path", link, "err", err)
			escaped = append(escaped, link)
		}
	}
	for _, link := range escaped {
		_ = os.Remove(link)
	}

	if createErr != nil {
		return createErr
	}
	if len(escaped) > 0 {
		return fmt.Errorf("%d symlink(s) point outside the archive, first: %s", len(escaped), escaped[0])
	}
	return nil
}

// maxLinkDepth bounds nested symlink resolution
const maxLinkDepth = 40

var errLinkEscapes = errors.New("symlink resolves outside the destination")

// followInside resolves rel against dir one component at a time, following
// symlinks found on disk, and fails as soon as a step leaves root.
// Components that do not exist are resolved lexically.
func followInside(root, dir, rel string, depth int) (string, error) {
	if depth > maxLinkDepth {
		return "", fmt.Errorf("too many levels of symlinks in %s", rel)
	}
	if filepath.IsAbs(rel) || path.IsAbs(rel) {
		return "", errLinkEscapes
	}

	cur := dir
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			cur = filepath.Join(cur, part)
		}
		if !isWithin(root, cur) {
			return "", errLinkEscapes
		}

		info, err := os.Lstat(cur)
		if err != nil || info.Mode()&fs.ModeSymlink == 0 {
			continue
		}
		next, err := os.Readlink(cur)
		if err != nil {
			return "", err
		}
		cur, err = followInside(root, filepath.Dir(cur), next, depth+1)
		if err != nil {
			return "", err
		}
	}
	return cur, nil
}

func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// makeExecutable gives every regular file in the install's bin directory rwxrwxr-x
func (e *Extractor) makeExecutable(installDir string) error {
	if !e.OS.IsPOSIX() {
		return nil
	}

	binDir := java.BinDirectory(e.OS, installDir)
	entries, err := os.ReadDir(binDir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", binDir, err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := os.Chmod(filepath.Join(binDir, entry.Name()), 0o775); err != nil {
			return fmt.Errorf("failed to make %s executable: %w", entry.Name(), err)
		}
	}
	return nil
}

// walkArchive calls fn for each entry in stream order. fn may return errStopWalk.
func walkArchive(archive string, format archiveFormat, fn func(archiveEntry) error) error {
	var err error
	switch format {
	case formatTarGz, formatTarXz:
		err = walkTar(archive, format, fn)
	case formatZip:
		err = walkZip(archive, fn)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archive))
	}
	if errors.Is(err, errStopWalk) {
		return nil
	}
	return err
}

func walkTar(archive string, format archiveFormat, fn func(archiveEntry) error) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	var stream io.Reader
	switch format {
	case formatTarGz:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		stream = gz
	case formatTarXz:
		xzr, err := xz.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to open xz stream: %w", err)
		}
		stream = xzr
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedArchive, filepath.Base(archive))
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		entry := archiveEntry{name: hdr.Name, mode: hdr.FileInfo().Mode(), linkname: hdr.Linkname, body: tr}
		switch hdr.Typeflag {
		case tar.TypeDir:
			entry.kind = entryDir
		case tar.TypeReg:
			entry.kind = entryFile
		case tar.TypeSymlink:
			entry.kind = entrySymlink
		case tar.TypeLink:
			entry.kind = entryHardlink
		default:
			entry.kind = entryOther
			if entry.mode.IsRegular() {
				entry.kind = entryFile
			}
		}

		if err := fn(entry); err != nil {
			return err
		}
	}
}

func walkZip(archive string, fn func(archiveEntry) error) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := visitZipFile(file, fn); err != nil {
			return err
		}
	}
	return nil
}

func visitZipFile(file *zip.File, fn func(archiveEntry) error) error {
	mode := file.Mode()
	entry := archiveEntry{name: file.Name, mode: mode}

	switch {
	case mode.IsDir():
		entry.kind = entryDir
		return fn(entry)
	case mode&fs.ModeSymlink != 0:
		entry.kind = entrySymlink
	case mode.IsRegular():
		entry.kind = entryFile
	default:
		entry.kind = entryOther
		return fn(entry)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in zip: %w", err)
	}
	defer rc.Close()

	if entry.kind == entrySymlink {
		target, err := io.ReadAll(io.LimitReader(rc, 4096))
		if err != nil {
			return fmt.Errorf("failed to read symlink in zip: %w", err)
		}
		entry.linkname = string(target)
	} else {
		entry.body = rc
	}
	return fn(entry)
}
