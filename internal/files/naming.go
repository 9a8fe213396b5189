package files

import (
	"path/filepath"
	"strings"

	"tabprep/internal/config"
)

// splitPath returns the directory, the base name without extension and the extension
func splitPath(path string) (dir, stem, ext string) {
	dir = filepath.Dir(path)
	base := filepath.Base(path)
	ext = filepath.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	return dir, stem, ext
}

// FilledPath derives the imputer output: <dir>/<stem>_filled<ext>
func FilledPath(input string) string {
	dir, stem, ext := splitPath(input)
	return filepath.Join(dir, stem+config.FilledSuffix+ext)
}

// TransformedPath derives the transformer output: <dir>/<stem>_transformed<ext>
func TransformedPath(input string) string {
	dir, stem, ext := splitPath(input)
	return filepath.Join(dir, stem+config.TransformedSuffix+ext)
}

// CleanedPath derives the cleaner output. Without an explicit output the file
// is <dir>/cleaned_<stem><ext> with stem and extension lower-cased. An explicit
// output keeps its directory and stem but always takes the input's extension.
func CleanedPath(input, output string) string {
	dir, stem, ext := splitPath(input)
	if output == "" {
		return filepath.Join(dir, config.CleanedPrefix+strings.ToLower(stem)+strings.ToLower(ext))
	}
	outDir, outStem, _ := splitPath(output)
	return filepath.Join(outDir, outStem+ext)
}
