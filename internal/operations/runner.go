package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"tabprep/internal/config"
	"tabprep/internal/dataprocessing"
	"tabprep/internal/exporter"
	"tabprep/internal/files"
	"tabprep/internal/infrastructure"
	"tabprep/internal/validation"
	"tabprep/pkg/contracts/domain"
)

// Runner executes commands against files on disk
type Runner struct {
	validator   *validation.Validator
	paths       *validation.FileValidator
	exporter    *exporter.Exporter
	imputer     *dataprocessing.Imputer
	transformer *dataprocessing.Transformer
	telemetry   *infrastructure.Telemetry
	logger      *slog.Logger
}

// NewRunner wires a runner from cfg. tel must not be nil; use a telemetry
// with tracing "none" when spans are not wanted.
func NewRunner(cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		validator:   validation.New(),
		paths:       validation.NewFileValidator(logger),
		exporter:    exporter.New(files.NewManager(logger), logger),
		imputer:     dataprocessing.NewImputer(cfg.Imputer, logger),
		transformer: dataprocessing.NewTransformer(cfg.Transform),
		telemetry:   tel,
		logger:      infrastructure.WithComponent(logger, "operations"),
	}
}

// Impute fills the missing cells of input and writes <stem>_filled<ext> next
// to it. The result is non-nil even on failure and carries the run summary.
func (r *Runner) Impute(ctx context.Context, input string) (*ImputeResult, error) {
	ctx, run, span := r.begin(ctx, "impute", input)
	res := &ImputeResult{}

	var table *domain.Table
	err := r.step(ctx, run, StepValidate, "Validate paths", func(ctx context.Context, st *StepState) error {
		if _, err := r.paths.ValidateInput(input, files.ImputeFormats); err != nil {
			return err
		}
		run.Output = files.FilledPath(input)
		_, err := r.paths.ValidateOutput(run.Output)
		return err
	})
	if err == nil {
		err = r.step(ctx, run, StepRead, "Read table", func(ctx context.Context, st *StepState) error {
			var rerr error
			table, rerr = r.read(ctx, run, st)
			return rerr
		})
	}
	if err == nil {
		err = r.step(ctx, run, "impute", "Impute missing cells", func(ctx context.Context, st *StepState) error {
			filled, report, ierr := r.imputer.Impute(ctx, table)
			if ierr != nil {
				return ierr
			}
			table, res.Report = filled, report
			for strategy, n := range report.Filled {
				r.telemetry.Metrics.CellsImputed.Add(ctx, int64(n),
					metric.WithAttributes(attribute.String("strategy", string(strategy))))
			}
			st.SetMetadata("filled", report.TotalFilled())
			st.SetMetadata("missing_after", report.MissingAfter)
			st.SetMessage(fmt.Sprintf("filled %d cells", report.TotalFilled()))
			return nil
		})
	}
	if err == nil {
		err = r.write(ctx, run, table)
	}

	if err == nil {
		res.Output = run.Output
	}
	res.Summary = r.end(ctx, run, span, err)
	return res, err
}

// Clean drops incomplete and duplicate rows of input. An empty output writes
// cleaned_<stem><ext> in lower case next to the input; a caller supplied
// output keeps its name but takes the input's extension.
func (r *Runner) Clean(ctx context.Context, input, output string) (*CleanResult, error) {
	ctx, run, span := r.begin(ctx, "clean", input)
	res := &CleanResult{}

	var table *domain.Table
	err := r.step(ctx, run, StepValidate, "Validate paths", func(ctx context.Context, st *StepState) error {
		if _, err := r.paths.ValidateInput(input, files.ImputeFormats); err != nil {
			return err
		}
		run.Output = files.CleanedPath(input, output)
		_, err := r.paths.ValidateOutput(run.Output)
		return err
	})
	if err == nil {
		err = r.step(ctx, run, StepRead, "Read table", func(ctx context.Context, st *StepState) error {
			var rerr error
			table, rerr = r.read(ctx, run, st)
			return rerr
		})
	}
	if err == nil {
		err = r.step(ctx, run, "clean", "Drop incomplete and duplicate rows", func(ctx context.Context, st *StepState) error {
			cleaned, report := dataprocessing.Clean(table)
			table, res.Report = cleaned, report
			r.telemetry.Metrics.RowsDropped.Add(ctx, int64(report.MissingDropped),
				metric.WithAttributes(attribute.String("reason", "missing")))
			r.telemetry.Metrics.RowsDropped.Add(ctx, int64(report.DuplicatesDropped),
				metric.WithAttributes(attribute.String("reason", "duplicate")))
			st.SetMetadata("missing_dropped", report.MissingDropped)
			st.SetMetadata("duplicates_dropped", report.DuplicatesDropped)
			st.SetMessage(fmt.Sprintf("kept %d of %d rows", report.FinalRows, report.OriginalRows))
			return nil
		})
	}
	if err == nil {
		err = r.write(ctx, run, table)
	}

	if err == nil {
		res.Output = run.Output
	}
	res.Summary = r.end(ctx, run, span, err)
	return res, err
}

// Transform applies req.Kind to the selected columns of req.Input. Paths and
// the method are checked before the table is read; the selection is resolved
// against the table before anything is written.
func (r *Runner) Transform(ctx context.Context, req TransformRequest) (*TransformResult, error) {
	ctx, run, span := r.begin(ctx, "transform", req.Input)
	span.SetAttributes(attribute.String("transform.kind", req.Kind.String()))
	res := &TransformResult{Kind: req.Kind}

	var table *domain.Table
	err := r.step(ctx, run, StepValidate, "Validate request", func(ctx context.Context, st *StepState) error {
		if err := r.validator.Struct(req); err != nil {
			return err
		}
		if _, err := r.paths.ValidateInput(req.Input, files.TransformFormats); err != nil {
			return err
		}
		run.Output = req.Output
		if run.Output == "" {
			run.Output = files.TransformedPath(req.Input)
		}
		if _, err := r.paths.ValidateOutput(run.Output); err != nil {
			return err
		}
		return req.Kind.Check()
	})
	if err == nil {
		err = r.step(ctx, run, StepRead, "Read table", func(ctx context.Context, st *StepState) error {
			var rerr error
			table, rerr = r.read(ctx, run, st)
			return rerr
		})
	}
	if err == nil {
		err = r.step(ctx, run, "transform", "Transform columns", func(ctx context.Context, st *StepState) error {
			sel, serr := dataprocessing.ResolveSelection(table, req.Columns)
			if serr != nil {
				return serr
			}
			out, terr := r.transformer.Transform(table, req.Kind, sel)
			if terr != nil {
				return terr
			}
			table = out
			res.Columns = sel.Names(table)
			r.telemetry.Metrics.ColumnsTransformed.Add(ctx, int64(len(sel)),
				metric.WithAttributes(attribute.String("kind", req.Kind.String())))
			st.SetMetadata("kind", req.Kind.String())
			st.SetMetadata("columns", res.Columns)
			return nil
		})
	}
	if err == nil {
		err = r.write(ctx, run, table)
	}

	if err == nil {
		res.Output = run.Output
	}
	res.Summary = r.end(ctx, run, span, err)
	return res, err
}

func (r *Runner) read(ctx context.Context, run *Run, st *StepState) (*domain.Table, error) {
	table, err := dataprocessing.ParseFile(run.Input)
	if err != nil {
		return nil, err
	}
	r.telemetry.Metrics.RowsRead.Add(ctx, int64(table.NumRows()),
		metric.WithAttributes(attribute.String("command", run.Command)))
	st.SetMetadata("rows", table.NumRows())
	st.SetMetadata("columns", table.NumCols())
	r.logger.InfoContext(ctx, "table loaded",
		slog.String("file", run.Input),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumCols()))
	return table, nil
}

func (r *Runner) write(ctx context.Context, run *Run, table *domain.Table) error {
	return r.step(ctx, run, StepWrite, "Write output", func(ctx context.Context, st *StepState) error {
		if err := r.exporter.Write(run.Output, table); err != nil {
			return err
		}
		st.SetMetadata("path", run.Output)
		return nil
	})
}

// begin opens the run span and tags ctx with the run's trace id
func (r *Runner) begin(ctx context.Context, command, input string) (context.Context, *Run, trace.Span) {
	ctx, span := r.telemetry.Tracer.Start(ctx, command,
		trace.WithAttributes(
			attribute.String("command", command),
			attribute.String("input", input),
		))

	id := infrastructure.GenerateTraceID()
	traceID := id
	if sc := span.SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
	}
	ctx = infrastructure.WithTraceID(ctx, traceID)
	span.SetAttributes(attribute.String("run.id", id))

	r.logger.InfoContext(ctx, "run started",
		slog.String("run_id", id),
		slog.String("command", command),
		slog.String("input", input))
	return ctx, newRun(id, command, input), span
}

// step runs fn as a named, traced step of run. A cancelled context skips the step.
func (r *Runner) step(ctx context.Context, run *Run, id, name string, fn func(context.Context, *StepState) error) error {
	st := run.addStep(id, name)
	if err := ctx.Err(); err != nil {
		st.Skip("cancelled")
		return NewCancellationError(id, err)
	}

	ctx, span := r.telemetry.Tracer.Start(ctx, run.Command+"."+id)
	defer span.End()

	st.Start()
	r.logger.DebugContext(ctx, "step started", slog.String("step", id))

	if err := fn(ctx, st); err != nil {
		st.Fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.DebugContext(ctx, "step failed",
			slog.String("step", id),
			slog.String("error", err.Error()))
		return NewStepError(id, err)
	}

	st.Complete()
	r.logger.DebugContext(ctx, "step completed",
		slog.String("step", id),
		slog.Duration("duration", st.Duration()))
	return nil
}

// end records the run outcome on the span, the metrics and the log
func (r *Runner) end(ctx context.Context, run *Run, span trace.Span, err error) domain.RunSummary {
	defer span.End()

	r.telemetry.RecordRun(ctx, run.Command, run.StartedAt, err)
	summary := run.Summary(err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "run failed",
			slog.String("run_id", run.ID),
			slog.String("command", run.Command),
			slog.String("step", FailedStep(err)),
			slog.String("error_type", string(GetErrorType(err))),
			slog.String("error", err.Error()))
		return summary
	}

	span.SetStatus(codes.Ok, "")
	r.logger.InfoContext(ctx, "run completed",
		slog.String("run_id", run.ID),
		slog.String("command", run.Command),
		slog.String("output", run.Output),
		slog.Duration("duration", time.Since(run.StartedAt)))
	return summary
}
