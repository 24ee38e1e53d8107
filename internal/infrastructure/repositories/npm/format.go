package npm

import (
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	crlf = "\r\n"
	lf   = "\n"
)

// DetectFormat re-detects the indentation and newline convention of content.
// The editor-config, when given, only fills in what the content cannot tell:
// the indentation of a file without indented lines and the newline of a
// single-line file.
func DetectFormat(content, editorConfig, path string) Format {
	format := DefaultFormat()
	format.FinalNewline = strings.HasSuffix(content, lf)

	indent, indentFound := detectIndent(content)
	newline, newlineFound := detectNewline(content)

	if !indentFound || !newlineFound {
		if definition := lookupEditorConfig(editorConfig, path); definition != nil {
			if !indentFound {
				if configured, ok := indentFromEditorConfig(definition); ok {
					indent, indentFound = configured, true
				}
			}
			if !newlineFound {
				switch strings.ToLower(definition.EndOfLine) {
				case "crlf":
					newline, newlineFound = crlf, true
				case "lf":
					newline, newlineFound = lf, true
				}
			}
		}
	}

	if indentFound {
		format.Indent = indent
	}
	if newlineFound {
		format.Newline = newline
	}
	return format
}

// detectIndent returns the leading whitespace of the first indented line.
// Pretty-printed JSON indents its first nested line by exactly one level.
func detectIndent(content string) (string, bool) {
	for _, line := range strings.Split(content, lf) {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" || len(trimmed) == len(line) {
			continue
		}
		return line[:len(line)-len(trimmed)], true
	}
	return "", false
}

func detectNewline(content string) (string, bool) {
	if strings.Contains(content, crlf) {
		return crlf, true
	}
	if strings.Contains(content, lf) {
		return lf, true
	}
	return "", false
}

func lookupEditorConfig(editorConfig, path string) *editorconfig.Definition {
	if strings.TrimSpace(editorConfig) == "" {
		return nil
	}
	parsed, err := editorconfig.Parse(strings.NewReader(editorConfig))
	if err != nil {
		logger.Debugf("Ignoring unparsable .editorconfig: %v", err)
		return nil
	}
	definition, err := parsed.GetDefinitionForFilename(path)
	if err != nil {
		logger.Debugf("Ignoring .editorconfig definition for %q: %v", path, err)
		return nil
	}
	return definition
}

func indentFromEditorConfig(definition *editorconfig.Definition) (string, bool) {
	switch strings.ToLower(definition.IndentStyle) {
	case "tab":
		return "\t", true
	case "space":
		size, err := strconv.Atoi(definition.IndentSize)
		if err != nil || size <= 0 {
			return "", false
		}
		return strings.Repeat(" ", size), true
	default:
		return "", false
	}
}
