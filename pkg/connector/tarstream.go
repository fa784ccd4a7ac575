package connector

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

// WriteTar archives src (a file or directory tree, symlinks dereferenced)
// into w, with every member re-anchored under arcname instead of src — the
// local→remote arcname-rewrite behaviour described in spec §4.2.
func WriteTar(w io.Writer, src, arcname string) error {
	tw := tar.NewWriter(w)
	defer tw.Close()

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	return filepath.Walk(src, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		name := arcname
		if rel != "." {
			name = path.Join(arcname, filepath.ToSlash(rel))
		}

		hdr, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if info.IsDir() && fi.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if fi.Mode().IsRegular() {
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := io.Copy(tw, f); err != nil {
				return err
			}
		}
		return nil
	})
}

// ExtractTarStream applies the path-rewrite rule of spec §4.2 while
// extracting an archive read from r into dst, given that the archive's
// members were anchored at src on the remote side.
func ExtractTarStream(r io.Reader, src, dst string) error {
	tr := tar.NewReader(r)
	dstIsDir := isDir(dst)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar stream: %w", err)
		}

		rooted := path.Join("/", hdr.Name)

		switch {
		case dstIsDir:
			var target string
			if rooted == src {
				target = filepath.Join(dst, path.Base(hdr.Name))
			} else {
				rel, relErr := filepath.Rel(src, rooted)
				if relErr != nil {
					return fmt.Errorf("computing relative path for %s: %w", hdr.Name, relErr)
				}
				target = filepath.Join(dst, rel)
			}
			if err := extractMember(tr, hdr, target); err != nil {
				return err
			}
		case hdr.Typeflag == tar.TypeReg:
			if err := writeRegularFile(tr, dst, hdr); err != nil {
				return err
			}
		default:
			parent := filepath.Dir(dst)
			target := filepath.Join(parent, path.Base(hdr.Name))
			if err := extractMember(tr, hdr, target); err != nil {
				return err
			}
		}
	}
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func extractMember(tr *tar.Reader, hdr *tar.Header, target string) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, os.FileMode(hdr.Mode))
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		_ = os.Remove(target)
		return os.Symlink(hdr.Linkname, target)
	default:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, tr)
		return err
	}
}

func writeRegularFile(r io.Reader, dst string, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}
