package binary

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// extract unpacks a tar or tar.gz archive into destination and removes the archive.
func extract(archive, destination string) error {
	file, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() {
		file.Close()
		os.Remove(archive)
	}()

	// sniff mime header to determine file type
	header := make([]byte, 512)
	n, err := file.Read(header)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read archive header: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("archive is empty")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	switch mime := http.DetectContentType(header[:n]); mime {
	case "application/x-gzip":
		decompressor, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer decompressor.Close()

		return untar(decompressor, destination)
	case "application/zip":
		return fmt.Errorf("unsupported format: %s", mime)
	default:
		return untar(file, destination)
	}
}

// untar writes every directory, regular file, hard link and symlink of the tar
// stream under destination. Directories and files are created through an
// [os.Root], so they can't land outside destination even when an earlier entry
// planted a symlink. Links must resolve inside destination.
func untar(file io.Reader, destination string) error {
	root, err := os.OpenRoot(destination)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", destination, err)
	}
	defer root.Close()

	realroot, err := filepath.EvalSymlinks(destination)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", destination, err)
	}

	reader := tar.NewReader(file)

	for {
		header, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		name, err := relative(realroot, header.Name)
		if err != nil {
			return err
		}
		if name == "." {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := mkdirall(root, name); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writefile(root, name, reader, header.FileInfo().Mode().Perm()); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := relative(realroot, header.Linkname)
			if err != nil {
				return fmt.Errorf("illegal link target: %s -> %s", header.Name, header.Linkname)
			}
			if err := copyfile(root, source, name); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(root, realroot, name, header.Linkname); err != nil {
				return err
			}
		case tar.TypeXGlobalHeader:
			continue
		default:
			return fmt.Errorf("unsupported entry type %q for %s", header.Typeflag, header.Name)
		}
	}

	return nil
}

// relative cleans an entry name into a path relative to root, rejecting
// names that point outside of it.
func relative(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || !within(root, filepath.Join(root, clean)) {
		return "", fmt.Errorf("illegal file path: %s", name)
	}
	return clean, nil
}

// mkdirall creates name and its parents one level at a time inside root.
func mkdirall(root *os.Root, name string) error {
	var current string
	for _, part := range strings.Split(name, string(os.PathSeparator)) {
		current = filepath.Join(current, part)
		if err := root.Mkdir(current, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create directory %s: %w", current, err)
		}
	}

	// an existing entry may be a symlink; stat fails if it leads out of root
	info, err := root.Stat(name)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to create directory %s: not a directory", name)
	}
	return nil
}

func writefile(root *os.Root, name string, contents io.Reader, mode os.FileMode) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := mkdirall(root, dir); err != nil {
			return err
		}
	}

	if mode == 0 {
		mode = 0o644
	}

	out, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", name, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, contents); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", name, err)
	}

	return out.Close()
}

// copyfile materializes a hard link entry as a copy of an already extracted file.
func copyfile(root *os.Root, source, target string) error {
	in, err := root.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open link source %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat link source %s: %w", source, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("link source %s is not a regular file", source)
	}

	return writefile(root, target, in, info.Mode().Perm())
}

// symlink creates name pointing at linkname. Both the folder holding the
// link and the resolved link target must be inside realroot once every
// symlink created so far is followed.
func symlink(root *os.Root, realroot, name, linkname string) error {
	dir := filepath.Dir(name)
	if dir != "." {
		if err := mkdirall(root, dir); err != nil {
			return err
		}
	}

	parent, err := filepath.EvalSymlinks(filepath.Join(realroot, dir))
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if !within(realroot, parent) {
		return fmt.Errorf("illegal file path: %s", name)
	}

	linked := filepath.FromSlash(linkname)
	if !filepath.IsAbs(linked) {
		linked = filepath.Join(parent, linked)
	}
	if !within(realroot, linked) {
		return fmt.Errorf("illegal link target: %s -> %s", name, linkname)
	}

	target := filepath.Join(parent, filepath.Base(name))
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", name, err)
	}
	return nil
}

func within(root, path string) bool {
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}
