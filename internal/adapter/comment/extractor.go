package comment

import (
	"regexp"
	"strings"

	"apidoc/internal/domain"
)

// Extractor finds documentation comment blocks using per-language
// delimiter rules.
type Extractor struct {
	syntaxes   map[string]*Syntax
	extensions map[string]string
}

// NewExtractor builds an extractor from the built-in languages plus the
// given overrides, keyed by file extension.
func NewExtractor(overrides map[string]SyntaxConfig) (*Extractor, error) {
	e := &Extractor{
		syntaxes:   builtinSyntaxes(),
		extensions: builtinExtensions(),
	}
	for ext, sc := range overrides {
		syn, err := sc.compile()
		if err != nil {
			return nil, err
		}
		ext = normalizeExt(ext)
		e.syntaxes[ext] = syn
		e.extensions[ext] = ext
	}
	return e, nil
}

// Language returns the language key for a file path.
func (e *Extractor) Language(path string) string {
	ext := extOf(path)
	if lang, ok := e.extensions[ext]; ok {
		return lang
	}
	if ext == "" {
		return langDefault
	}
	return strings.TrimPrefix(ext, ".")
}

func (e *Extractor) syntaxFor(lang string) *Syntax {
	if syn, ok := e.syntaxes[lang]; ok {
		return syn
	}
	return e.syntaxes[langDefault]
}

// Extract returns the comment blocks of a source text, with block delimiters
// and inline prefixes removed.
func (e *Extractor) Extract(content string, lang string) []domain.CommentBlock {
	syn := e.syntaxFor(lang)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")

	var (
		blocks  []domain.CommentBlock
		inBlock bool
		current domain.CommentBlock
		// index of the line-comment block that the next line may extend
		lineRun = -1
	)

	flush := func(endLine int) {
		current.EndLine = endLine
		blocks = append(blocks, current)
		current = domain.CommentBlock{}
	}

	for i, line := range lines {
		lineNumber := i + 1

		if inBlock {
			if loc := syn.BlockEnd.FindStringIndex(line); loc != nil {
				if text := strings.TrimRight(syn.strip(line[:loc[0]]), " \t"); text != "" {
					current.Lines = append(current.Lines, text)
				}
				inBlock = false
				flush(lineNumber)
				continue
			}
			current.Lines = append(current.Lines, syn.strip(line))
			continue
		}

		if syn.BlockStart != nil {
			if loc := syn.BlockStart.FindStringIndex(line); loc != nil {
				rest := line[loc[1]:]
				current = domain.CommentBlock{StartLine: lineNumber}
				// Lines[k] always maps to StartLine+k, so the opening line is
				// kept even when it holds no text.
				if end := syn.BlockEnd.FindStringIndex(rest); end != nil {
					current.Lines = append(current.Lines, strings.TrimSpace(rest[:end[0]]))
					flush(lineNumber)
					continue
				}
				current.Lines = append(current.Lines, strings.TrimSpace(rest))
				inBlock = true
				continue
			}
		}

		if syn.Line != nil {
			if m := syn.Line.FindStringSubmatch(line); len(m) > 1 {
				text := strings.TrimPrefix(m[1], " ")
				if lineRun >= 0 && blocks[lineRun].EndLine == lineNumber-1 {
					blocks[lineRun].Lines = append(blocks[lineRun].Lines, text)
					blocks[lineRun].EndLine = lineNumber
				} else {
					blocks = append(blocks, domain.CommentBlock{
						StartLine: lineNumber,
						EndLine:   lineNumber,
						Lines:     []string{text},
					})
					lineRun = len(blocks) - 1
				}
			}
		}
	}

	// An unterminated block runs to the end of the file.
	if inBlock {
		flush(len(lines))
	}

	return blocks
}

func (s *Syntax) strip(line string) string {
	if s.Prefix == nil {
		return line
	}
	if loc := s.Prefix.FindStringIndex(line); loc != nil && loc[0] == 0 {
		return line[loc[1]:]
	}
	return line
}

var extPattern = regexp.MustCompile(`\.[^./\\]+$`)

func extOf(path string) string {
	return strings.ToLower(extPattern.FindString(path))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
