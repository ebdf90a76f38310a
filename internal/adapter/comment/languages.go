package comment

import (
	"fmt"
	"regexp"
)

const langDefault = "default"

// Syntax is the comment delimiter rule set of one language.
type Syntax struct {
	BlockStart *regexp.Regexp
	BlockEnd   *regexp.Regexp
	// Line matches a single-line comment; group 1 is the comment text.
	// Consecutive matching lines form one block.
	Line *regexp.Regexp
	// Prefix is stripped from the start of every line inside a block.
	Prefix *regexp.Regexp
}

// SyntaxConfig is the user-facing, uncompiled form of a Syntax.
type SyntaxConfig struct {
	BlockStart string `yaml:"blockStart"`
	BlockEnd   string `yaml:"blockEnd"`
	Line       string `yaml:"line"`
	Prefix     string `yaml:"prefix"`
}

func (c SyntaxConfig) compile() (*Syntax, error) {
	if (c.BlockStart == "") != (c.BlockEnd == "") {
		return nil, fmt.Errorf("language syntax needs both blockStart and blockEnd")
	}
	if c.BlockStart == "" && c.Line == "" {
		return nil, fmt.Errorf("language syntax needs block delimiters or a line pattern")
	}
	syn := &Syntax{}
	var err error
	if syn.BlockStart, err = compileOptional(c.BlockStart); err != nil {
		return nil, fmt.Errorf("blockStart: %w", err)
	}
	if syn.BlockEnd, err = compileOptional(c.BlockEnd); err != nil {
		return nil, fmt.Errorf("blockEnd: %w", err)
	}
	if syn.Line, err = compileOptional(c.Line); err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	if syn.Line != nil && syn.Line.NumSubexp() < 1 {
		return nil, fmt.Errorf("line: pattern %q needs a capture group for the comment text", c.Line)
	}
	if syn.Prefix, err = compileOptional(c.Prefix); err != nil {
		return nil, fmt.Errorf("prefix: %w", err)
	}
	return syn, nil
}

func compileOptional(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return regexp.Compile(expr)
}

func builtinSyntaxes() map[string]*Syntax {
	return map[string]*Syntax{
		langDefault: {
			BlockStart: regexp.MustCompile(`/\*\*`),
			BlockEnd:   regexp.MustCompile(`\*/`),
			Prefix:     regexp.MustCompile(`^\s*\*[ ]?`),
		},
		"coffee": {
			BlockStart: regexp.MustCompile(`^\s*###`),
			BlockEnd:   regexp.MustCompile(`###`),
		},
		"erlang": {
			BlockStart: regexp.MustCompile(`^\s*%\{`),
			BlockEnd:   regexp.MustCompile(`%\}`),
			Prefix:     regexp.MustCompile(`^\s*%[ ]?`),
		},
		"python": {
			BlockStart: regexp.MustCompile(`"""`),
			BlockEnd:   regexp.MustCompile(`"""`),
		},
		"ruby": {
			BlockStart: regexp.MustCompile(`^=begin`),
			BlockEnd:   regexp.MustCompile(`^=end`),
		},
		"perl": {
			BlockStart: regexp.MustCompile(`^\s*#\*\*`),
			BlockEnd:   regexp.MustCompile(`^\s*#\*\s*$`),
			Prefix:     regexp.MustCompile(`^\s*#[ ]?`),
		},
		"lua": {
			BlockStart: regexp.MustCompile(`--\[\[`),
			BlockEnd:   regexp.MustCompile(`\]\]`),
		},
		"shell": {
			Line: regexp.MustCompile(`^\s*#(.*)$`),
		},
	}
}

func builtinExtensions() map[string]string {
	return map[string]string{
		".coffee": "coffee",
		".erl":    "erlang",
		".py":     "python",
		".rb":     "ruby",
		".pm":     "perl",
		".pl":     "perl",
		".lua":    "lua",
		".sh":     "shell",
		".bash":   "shell",
	}
}
