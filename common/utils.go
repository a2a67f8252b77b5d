package common

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// SaveImage encodes img as PNG at path, creating parent directories.
func SaveImage(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

// writeJSON replaces path with the indented encoding of v.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

var unsafeName = regexp.MustCompile(`[^\p{L}\p{N}_\-]+`)

// SanitizeName turns free text into a file name fragment: runs of anything
// other than letters, digits, '_' and '-' become a single '_'. The result is
// cut to maxLen runes when maxLen > 0.
func SanitizeName(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if maxLen > 0 {
		if rs := []rune(s); len(rs) > maxLen {
			s = string(rs[:maxLen])
		}
	}
	s = unsafeName.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "untitled"
	}
	return s
}

// NumberedPath returns dir/prefix_<i>.ext with 1-based i.
func NumberedPath(dir, prefix string, i int, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", prefix, i, ext))
}
