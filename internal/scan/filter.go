package scan

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AssetsDir is the only host folder whose content is exportable.
const AssetsDir = "Assets"

// FilesWithExtensions walks root and returns root-relative paths of files whose
// extensions match any entry in exts. Extensions are case-insensitive and may
// be provided with or without a leading dot.
func FilesWithExtensions(root string, exts []string, opts Options) ([]string, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	if len(allowed) == 0 {
		return nil, nil
	}

	var files []string
	err := ScanWithOptions(root, opts, func(fv FileVisit) {
		if fv.IsDir || fv.Ext == "" {
			return
		}
		if _, ok := allowed[fv.Ext]; ok {
			files = append(files, fv.Path)
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// FilesWithSuffix is FilesWithExtensions for compound suffixes such as
// ".scene.yaml", matched case-insensitively.
func FilesWithSuffix(root string, suffixes []string, opts Options) ([]string, error) {
	var files []string
	err := ScanWithOptions(root, opts, func(fv FileVisit) {
		if fv.IsDir {
			return
		}
		lower := strings.ToLower(fv.Path)
		for _, s := range suffixes {
			if s != "" && strings.HasSuffix(lower, strings.ToLower(s)) {
				files = append(files, fv.Path)
				return
			}
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverAssets lists every file under <projectRoot>/Assets as a
// project-relative path ("Assets/..."). Import sidecars (.meta) are left out;
// classification and the baked-asset filter are the content store's job. A
// project without an Assets folder yields no paths.
func DiscoverAssets(projectRoot string) ([]string, error) {
	dir := filepath.Join(projectRoot, AssetsDir)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var out []string
	err := ScanWithOptions(dir, Options{IgnoreDirs: DefaultIgnoreDirs}, func(fv FileVisit) {
		if fv.IsDir || fv.Ext == ".meta" {
			return
		}
		out = append(out, AssetsDir+"/"+fv.Path)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out, nil
}
