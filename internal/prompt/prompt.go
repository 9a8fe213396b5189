// Package prompt drives the line-based questions asked by an interactive
// transform: input file, method, columns and output path. Every answer is
// checked as soon as it is read and the first invalid one aborts the session.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tabprep/internal/dataprocessing"
	apperrors "tabprep/internal/errors"
	"tabprep/internal/files"
	"tabprep/internal/operations"
	"tabprep/internal/validation"
	"tabprep/pkg/contracts/domain"
)

// Menu lists the transform methods in menu order
var Menu = []string{
	"Z-score standardisation",
	"Min-Max normalisation",
	"Box-Cox transform",
	"Centered log-ratio transform",
}

// Prompter asks questions on out and reads answers from in
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	paths  *validation.FileValidator
	logger *slog.Logger
}

// New creates a prompter
func New(in io.Reader, out io.Writer, logger *slog.Logger) *Prompter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Prompter{
		in:     bufio.NewReader(in),
		out:    out,
		paths:  validation.NewFileValidator(logger),
		logger: logger.With(slog.String("component", "prompt")),
	}
}

// Transform completes preset by asking for every field left empty: the input
// path, the method (Kind 0), the columns (nil) and the output path. A blank
// output answer keeps the default <stem>_transformed<ext> name.
func (p *Prompter) Transform(preset operations.TransformRequest) (operations.TransformRequest, error) {
	req := preset

	if req.Input == "" {
		answer, err := p.ask("Path of the data file (.csv, .xls or .xlsx): ")
		if err != nil {
			return req, err
		}
		req.Input = answer
	}
	table, err := p.load(req.Input)
	if err != nil {
		return req, err
	}

	if req.Kind == 0 {
		p.printf("Choose a transform:\n")
		for i, label := range Menu {
			p.printf("%d. %s\n", i+1, label)
		}
		answer, err := p.ask("Enter a number (1-4): ")
		if err != nil {
			return req, err
		}
		if req.Kind, err = dataprocessing.ParseKind(answer); err != nil {
			return req, err
		}
	}

	if req.Columns == nil {
		p.printf("Columns:\n")
		for i, name := range table.Names() {
			p.printf("%d. %s\n", i, name)
		}
		answer, err := p.ask("Columns to transform (indices or names, comma separated): ")
		if err != nil {
			return req, err
		}
		req.Columns = dataprocessing.ParseSelection(answer)
	}
	if _, err := dataprocessing.ResolveSelection(table, req.Columns); err != nil {
		return req, err
	}

	if req.Output == "" {
		def := files.TransformedPath(req.Input)
		answer, err := p.ask(fmt.Sprintf("Output path (blank for %s): ", def))
		if err != nil {
			return req, err
		}
		req.Output = answer
		if req.Output == "" {
			req.Output = def
		}
	}

	p.logger.Debug("transform request completed",
		slog.String("input", req.Input),
		slog.String("kind", req.Kind.String()),
		slog.Any("columns", req.Columns),
		slog.String("output", req.Output))
	return req, nil
}

func (p *Prompter) load(path string) (*domain.Table, error) {
	if _, err := p.paths.ValidateInput(path, files.TransformFormats); err != nil {
		return nil, err
	}
	return dataprocessing.ParseFile(path)
}

// ask prints question and returns the trimmed answer. A final line without a
// newline is accepted; end of input before any answer is an error.
func (p *Prompter) ask(question string) (string, error) {
	p.printf("%s", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", apperrors.NewAppValidationError("no answer given; input ended")
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}
