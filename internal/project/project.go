// Package project recognizes Gradle projects and extracts their metadata
package project

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gradle-helper/gradle-version-migration-tool/pkg/models"
)

// Marker files, any one of which makes a directory a Gradle project
var Markers = []string{"build.gradle", "build.gradle.kts", "settings.gradle", "settings.gradle.kts"}

var settingsFiles = []string{"settings.gradle", "settings.gradle.kts"}

const wrapperProperties = "gradle/wrapper/gradle-wrapper.properties"

// RootModule is the module name for files directly in the project root
const RootModule = "root"

var (
	includeRe = regexp.MustCompile(`\binclude\s*\(?\s*((?:['"][^'"]+['"]\s*,\s*)*['"][^'"]+['"])`)
	quotedRe  = regexp.MustCompile(`['"]([^'"]+)['"]`)

	distributionVersionRe = regexp.MustCompile(`gradle-(\d+\.\d+(?:\.\d+)?(?:-(?:rc|milestone)-\d+)?)-(?:bin|all)\.zip`)
	versionRe             = regexp.MustCompile(`gradle-(\d+\.\d+(?:\.\d+)?(?:-\w+)?)`)
)

// Info is what can be learned about a project without scanning it
type Info struct {
	Root          string
	Name          string
	Modules       []string
	MultiModule   bool
	GradleVersion string
}

// IsGradleProject reports whether root holds a build or settings script
func IsGradleProject(root string) bool {
	for _, marker := range Markers {
		if info, err := os.Stat(filepath.Join(root, marker)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// Inspect collects project metadata. Missing or unreadable files leave the
// corresponding fields empty, and the version falls back to "unknown".
func Inspect(root string) *Info {
	info := &Info{
		Root:          root,
		Name:          filepath.Base(root),
		GradleVersion: models.UnknownVersion,
	}

	for _, name := range settingsFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		info.Modules = ExtractModules(data)
		break
	}
	info.MultiModule = len(info.Modules) > 0

	if data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(wrapperProperties))); err == nil {
		if v := ExtractGradleVersion(data); v != "" {
			info.GradleVersion = v
		}
	}

	return info
}

// ExtractModules returns the module names included by a settings script, in
// declaration order without duplicates. An include list may span several lines.
//
// Only the leading ':' of a project path is dropped, so a nested project
// ':a:b' is reported as "a:b". ModuleFor attributes files by their first
// directory, which means files of a nested project count towards "a" and
// never match "a:b".
func ExtractModules(settings []byte) []string {
	var modules []string
	seen := make(map[string]bool)

	for _, m := range includeRe.FindAllSubmatch(stripComments(settings), -1) {
		for _, q := range quotedRe.FindAllSubmatch(m[1], -1) {
			name := strings.TrimPrefix(string(q[1]), ":")
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			modules = append(modules, name)
		}
	}
	return modules
}

// stripComments blanks out // and /* */ comments outside string literals.
// Newlines are kept so line structure survives.
func stripComments(src []byte) []byte {
	out := make([]byte, 0, len(src))
	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			out = append(out, c)
			if c == '\\' && i+1 < len(src) {
				i++
				out = append(out, src[i])
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			out = append(out, c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			end := bytes.IndexByte(src[i:], '\n')
			if end < 0 {
				return out
			}
			i += end - 1
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			block := src[i : i+2+end+2]
			out = append(out, bytes.Repeat([]byte("\n"), bytes.Count(block, []byte("\n")))...)
			i += len(block) - 1
		default:
			out = append(out, c)
		}
	}
	return out
}

// ExtractGradleVersion returns the Gradle version named by a wrapper
// distribution URL, or "" when there is none.
func ExtractGradleVersion(properties []byte) string {
	if m := distributionVersionRe.FindSubmatch(properties); m != nil {
		return string(m[1])
	}
	if m := versionRe.FindSubmatch(properties); m != nil {
		return string(m[1])
	}
	return ""
}

// ModuleFor attributes a file to the first path segment below root, or to
// RootModule when the file sits directly in root or outside it.
func ModuleFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return RootModule
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == "" || parts[0] == "." {
		return RootModule
	}
	return parts[0]
}
