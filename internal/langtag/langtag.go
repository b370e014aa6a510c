// Package langtag maps file extensions to the language identifiers used on
// Markdown code fences.
package langtag

import (
	"path/filepath"
	"strings"
)

var byExtension = map[string]string{
	"rs":         "rust",
	"py":         "python",
	"js":         "javascript",
	"mjs":        "javascript",
	"cjs":        "javascript",
	"ts":         "typescript",
	"jsx":        "jsx",
	"tsx":        "tsx",
	"java":       "java",
	"c":          "c",
	"h":          "c",
	"cpp":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"hpp":        "cpp",
	"hh":         "cpp",
	"cs":         "csharp",
	"go":         "go",
	"rb":         "ruby",
	"php":        "php",
	"swift":      "swift",
	"kt":         "kotlin",
	"kts":        "kotlin",
	"r":          "r",
	"m":          "matlab",
	"mm":         "objectivec",
	"sql":        "sql",
	"sh":         "bash",
	"bash":       "bash",
	"zsh":        "bash",
	"yaml":       "yaml",
	"yml":        "yaml",
	"json":       "json",
	"xml":        "xml",
	"html":       "html",
	"htm":        "html",
	"css":        "css",
	"scss":       "scss",
	"sass":       "scss",
	"less":       "less",
	"md":         "markdown",
	"markdown":   "markdown",
	"tex":        "latex",
	"vim":        "vim",
	"vimrc":      "vim",
	"lua":        "lua",
	"dart":       "dart",
	"scala":      "scala",
	"jl":         "julia",
	"hs":         "haskell",
	"clj":        "clojure",
	"cljs":       "clojure",
	"cljc":       "clojure",
	"edn":        "clojure",
	"ex":         "elixir",
	"exs":        "elixir",
	"erl":        "erlang",
	"hrl":        "erlang",
	"ml":         "ocaml",
	"mli":        "ocaml",
	"fs":         "fsharp",
	"fsi":        "fsharp",
	"fsx":        "fsharp",
	"fsscript":   "fsharp",
	"pl":         "perl",
	"pm":         "perl",
	"ps1":        "powershell",
	"psm1":       "powershell",
	"psd1":       "powershell",
	"toml":       "toml",
	"ini":        "ini",
	"cfg":        "ini",
	"conf":       "ini",
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
	"mk":         "makefile",
	"mak":        "makefile",
	"gradle":     "groovy",
	"tf":         "terraform",
	"tfvars":     "terraform",
	"hcl":        "hcl",
	"http":       "http",
	"gd":         "gdscript",
	"proto":      "protobuf",
}

// Files that are conventionally named without an extension.
var byBaseName = map[string]string{
	"dockerfile":  "dockerfile",
	"makefile":    "makefile",
	"gnumakefile": "makefile",
}

// ForExtension returns the fence tag for ext (with or without the leading
// dot), or "" when unknown.
func ForExtension(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return ""
	}
	if tag, ok := byExtension[ext]; ok {
		return tag
	}
	return byExtension[strings.ToLower(ext)]
}

// For returns the fence tag for a file path.
func For(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	if tag := ForExtension(filepath.Ext(base)); tag != "" {
		return tag
	}
	return byBaseName[strings.ToLower(base)]
}
