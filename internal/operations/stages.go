package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"soiagi/internal/config"
	"soiagi/internal/dataprocessing"
	apperrors "soiagi/internal/errors"
	"soiagi/internal/exporter"
	"soiagi/internal/files"
	"soiagi/internal/geocode"
	"soiagi/internal/infrastructure"
	"soiagi/internal/validation"
	"soiagi/pkg/contracts/domain"
)

// StepOptions carries the shared dependencies of the pipeline steps
type StepOptions struct {
	Config    *config.Config
	Paths     *config.Paths
	Writer    *exporter.CSVWriter
	Validator *validation.FileValidator
	Tracer    *OperationTracer
	Logger    *slog.Logger
}

func (o StepOptions) withDefaults() StepOptions {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Validator == nil {
		o.Validator = validation.NewFileValidator(o.Logger)
	}
	if o.Writer == nil {
		o.Writer = exporter.NewCSVWriter(o.Paths).WithLogger(o.Logger)
	}
	if o.Tracer == nil {
		o.Tracer, _ = NewOperationTracer(nil)
	}
	return o
}

// PipelineSteps returns every pipeline step in registration order
func PipelineSteps(opts StepOptions) []Step {
	return []Step{
		NewStandardizeStep(opts),
		NewMasterStep(opts),
		NewPrevalentZipStep(opts),
		NewCoordinatesStep(opts),
	}
}

// RegisterPipelineSteps registers every pipeline step with the registry
func RegisterPipelineSteps(registry *Registry, opts StepOptions) error {
	for _, step := range PipelineSteps(opts) {
		if err := registry.Register(step); err != nil {
			return err
		}
	}
	return registry.ValidateDependencies()
}

// StandardizeStep reads the codebook, standardizes every selected yearly
// extract and writes one _stdz file per extract
type StandardizeStep struct {
	BaseStep
	opts   StepOptions
	logger *slog.Logger
}

// NewStandardizeStep creates a new standardize step
func NewStandardizeStep(opts StepOptions) *StandardizeStep {
	opts = opts.withDefaults()
	return &StandardizeStep{
		BaseStep: NewBaseStep(StepIDStandardize, StepNameStandardize, nil),
		opts:     opts,
		logger:   infrastructure.StepLogger(opts.Logger, StepIDStandardize),
	}
}

// Validate checks that the codebook and input directory exist and that the
// output directory is writable
func (s *StandardizeStep) Validate(state *OperationState) error {
	if err := s.opts.Validator.ValidateExcelFile(s.opts.Paths.CodebookFile); err != nil {
		return err
	}
	if _, err := s.opts.Validator.ValidateInputDirectory(s.opts.Paths.InputDir, "*.csv"); err != nil {
		return err
	}
	return s.opts.Validator.ValidateOutputDirectory(s.opts.Paths.OutputDir)
}

// Execute standardizes every selected period extract
func (s *StandardizeStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())
	years := s.opts.Config.Pipeline.Years

	dict, err := dataprocessing.ReadCodebook(s.opts.Paths.CodebookFile, s.opts.Config.Paths.CodebookSheet)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyDictionary, dict)

	s.logger.InfoContext(ctx, "Codebook loaded",
		slog.String("path", s.opts.Paths.CodebookFile),
		slog.Int("variables", dict.Len()),
		slog.String("sentinel", dataprocessing.FormatSentinel(s.opts.Config.Pipeline.Sentinel)))

	periods, err := files.FindPeriodCSVFiles(s.opts.Paths.InputDir, years)
	if err != nil {
		return apperrors.NewInputError(s.opts.Paths.InputDir, err)
	}

	skipped, err := files.SkippedFiles(s.opts.Paths.InputDir, years)
	if err == nil {
		for name, reason := range skipped {
			s.logger.DebugContext(ctx, "Extract skipped",
				slog.String("file", name),
				slog.String("reason", reason))
		}
		stepState.SetMetadata(MetadataSkipped, len(skipped))
	}

	if len(periods) == 0 {
		return apperrors.NewInputError(s.opts.Paths.InputDir,
			fmt.Errorf("no CSV extracts found for years %s", strings.Join(years, ",")))
	}

	processor := dataprocessing.NewProcessor(dataprocessing.NewStandardizer(dict), s.opts.Config.Pipeline.Sentinel)

	tables := make([]dataprocessing.PeriodTable, 0, len(periods))
	outputs := make([]string, 0, len(periods))
	read, written := 0, 0

	for _, p := range periods {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := dataprocessing.ReadCSVTable(p.Path)
		if err != nil {
			return err
		}

		result, err := processor.Prepare(raw, p.Year)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return appErr.WithContext("path", p.Path)
			}
			return err
		}
		if len(result.MissingColumns) > 0 {
			s.logger.WarnContext(ctx, "Extract lacks codebook variables",
				slog.String("file", p.Name),
				slog.Any("missing", result.MissingColumns))
		}

		out, err := s.opts.Writer.WriteTable(dataprocessing.StandardizedFileName(p.Name), result.Table)
		if err != nil {
			return err
		}

		s.logger.InfoContext(ctx, "Extract standardized",
			slog.String("file", p.Name),
			slog.String("year", p.Year),
			slog.Int("rows", result.Table.Len()),
			slog.Int("sentinels_zeroed", result.SentinelsZeroed))

		tables = append(tables, dataprocessing.PeriodTable{Year: p.Year, Source: p.Name, Table: result.Table})
		outputs = append(outputs, out)
		read += result.InputRows
		written += result.Table.Len()
	}

	state.SetContext(ContextKeyPeriods, tables)

	stepState.SetMetadata(MetadataFiles, len(tables))
	stepState.SetMetadata(MetadataRows, written)
	stepState.SetMetadata(MetadataOutputs, outputs)
	s.opts.Tracer.RecordTable(ctx, s.ID(), read, written, 0)

	return nil
}

// MasterStep concatenates the standardized periods into the master tables
type MasterStep struct {
	BaseStep
	opts   StepOptions
	logger *slog.Logger
}

// NewMasterStep creates a new master step
func NewMasterStep(opts StepOptions) *MasterStep {
	opts = opts.withDefaults()
	return &MasterStep{
		BaseStep: NewBaseStep(StepIDMaster, StepNameMaster, []string{StepIDStandardize}),
		opts:     opts,
		logger:   infrastructure.StepLogger(opts.Logger, StepIDMaster),
	}
}

// Validate checks that standardized periods are available
func (s *MasterStep) Validate(state *OperationState) error {
	if _, ok := ContextValue[[]dataprocessing.PeriodTable](state, ContextKeyPeriods); !ok {
		return apperrors.NewAppValidationError("standardized period tables are not available")
	}
	return nil
}

// Execute writes one master table per configured jurisdiction
func (s *MasterStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())
	periods, _ := ContextValue[[]dataprocessing.PeriodTable](state, ContextKeyPeriods)

	aggregator := dataprocessing.NewMasterAggregator(s.logger)

	outputs := make([]string, 0, 2)
	rows := make(map[string]int)
	read, written := 0, 0
	for _, p := range periods {
		read += p.Table.Len()
	}

	for _, jurisdiction := range s.opts.Config.MasterJurisdictions() {
		master, err := aggregator.Aggregate(ctx, periods, jurisdiction)
		if err != nil {
			return err
		}

		name := dataprocessing.MasterFileName(jurisdiction)
		out, err := s.opts.Writer.WriteTable(name, master)
		if err != nil {
			return err
		}

		outputs = append(outputs, out)
		rows[name] = master.Len()
		written += master.Len()
	}

	stepState.SetMetadata(MetadataFiles, len(outputs))
	stepState.SetMetadata(MetadataRows, written)
	stepState.SetMetadata(MetadataOutputs, outputs)
	stepState.SetMetadata("master_rows", rows)
	s.opts.Tracer.RecordTable(ctx, s.ID(), read, written, 0)

	return nil
}

// PrevalentZipStep assigns each energy usage row the most prevalent ZIP of
// its census tract
type PrevalentZipStep struct {
	BaseStep
	opts   StepOptions
	logger *slog.Logger
}

// NewPrevalentZipStep creates a new prevalent ZIP step
func NewPrevalentZipStep(opts StepOptions) *PrevalentZipStep {
	opts = opts.withDefaults()
	return &PrevalentZipStep{
		BaseStep: NewBaseStep(StepIDPrevalentZip, StepNamePrevalentZip, nil),
		opts:     opts,
		logger:   infrastructure.StepLogger(opts.Logger, StepIDPrevalentZip),
	}
}

// Validate checks that the crosswalk and energy tables exist and that the
// output directory is writable
func (s *PrevalentZipStep) Validate(state *OperationState) error {
	if err := s.opts.Validator.ValidateInputs(map[string]string{
		"tract table":  s.opts.Paths.TractTableFile,
		"energy table": s.opts.Paths.EnergyTableFile,
	}); err != nil {
		return err
	}
	return s.opts.Validator.ValidateOutputDirectory(s.opts.Paths.OutputDir)
}

// Execute resolves tract modes, enriches the energy table and writes the
// enriched table, the unmapped audit and the mode table
func (s *PrevalentZipStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())

	crosswalk, err := dataprocessing.ReadCSVTable(s.opts.Paths.TractTableFile)
	if err != nil {
		return err
	}
	energy, err := dataprocessing.ReadCSVTable(s.opts.Paths.EnergyTableFile)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := geocode.AssignPrevalentZip(energy, crosswalk)
	if err != nil {
		return err
	}

	outputs := make([]string, 0, 3)
	for _, o := range []struct {
		name  string
		table *domain.Table
	}{
		{config.PrevalentZipFile, result.Enriched},
		{config.MissingZipFile, result.Missing},
		{config.PrevalentByTract, result.Modes},
	} {
		out, err := s.opts.Writer.WriteTable(o.name, o.table)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}

	state.SetContext(ContextKeyEnriched, result.Enriched)

	s.logger.InfoContext(ctx, "Prevalent ZIP assigned",
		slog.Int("rows", result.Report.Rows),
		slog.Int("mapped", result.Report.Mapped),
		slog.Int("unmapped", result.Report.Unmapped),
		slog.Int("tracts", result.Modes.Len()),
		slog.Int("invalid_blocks", result.InvalidBlocks),
		slog.Float64("coverage", result.Report.Coverage()))

	stepState.SetMetadata(MetadataFiles, len(outputs))
	stepState.SetMetadata(MetadataRows, result.Report.Rows)
	stepState.SetMetadata(MetadataMapped, result.Report.Mapped)
	stepState.SetMetadata(MetadataUnmapped, result.Report.Unmapped)
	stepState.SetMetadata(MetadataOutputs, outputs)
	s.opts.Tracer.RecordTable(ctx, s.ID(), energy.Len()+crosswalk.Len(), result.Enriched.Len(), result.Report.Unmapped)

	return nil
}

// CoordinatesStep attaches latitude and longitude to the ZIP-enriched
// energy table
type CoordinatesStep struct {
	BaseStep
	opts   StepOptions
	logger *slog.Logger
}

// NewCoordinatesStep creates a new coordinates step
func NewCoordinatesStep(opts StepOptions) *CoordinatesStep {
	opts = opts.withDefaults()
	return &CoordinatesStep{
		BaseStep: NewBaseStep(StepIDCoordinates, StepNameCoordinates, []string{StepIDPrevalentZip}),
		opts:     opts,
		logger:   infrastructure.StepLogger(opts.Logger, StepIDCoordinates),
	}
}

// Validate checks that the coordinate table exists and the enriched energy
// table was produced
func (s *CoordinatesStep) Validate(state *OperationState) error {
	if _, ok := ContextValue[*domain.Table](state, ContextKeyEnriched); !ok {
		return apperrors.NewAppValidationError("ZIP-enriched energy table is not available")
	}
	return s.opts.Validator.ValidateInputs(map[string]string{
		"coordinate table": s.opts.Paths.CoordinateTableFile,
	})
}

// Execute joins coordinates on the zip column and writes the final table
func (s *CoordinatesStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())
	enriched, _ := ContextValue[*domain.Table](state, ContextKeyEnriched)

	reference, err := dataprocessing.ReadCSVTable(s.opts.Paths.CoordinateTableFile)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := geocode.AttachCoordinates(enriched, reference)
	if err != nil {
		return err
	}
	if result.Malformed > 0 {
		s.logger.WarnContext(ctx, "Malformed coordinates skipped",
			slog.Int("count", result.Malformed))
	}
	if result.Collisions > 0 {
		s.logger.WarnContext(ctx, "Repeated ZIPs in coordinate table",
			slog.Int("count", result.Collisions),
			slog.String("policy", result.Policy.String()))
	}

	out, err := s.opts.Writer.WriteTable(config.CoordinatesFile, result.Enriched)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Coordinates attached",
		slog.Int("rows", result.Report.Rows),
		slog.Int("mapped", result.Report.Mapped),
		slog.Int("unmapped", result.Report.Unmapped),
		slog.Float64("coverage", result.Report.Coverage()))

	stepState.SetMetadata(MetadataFiles, 1)
	stepState.SetMetadata(MetadataRows, result.Report.Rows)
	stepState.SetMetadata(MetadataMapped, result.Report.Mapped)
	stepState.SetMetadata(MetadataUnmapped, result.Report.Unmapped)
	stepState.SetMetadata("malformed", result.Malformed)
	stepState.SetMetadata(MetadataCollisions, result.Collisions)
	stepState.SetMetadata(MetadataOutputs, []string{out})
	s.opts.Tracer.RecordTable(ctx, s.ID(), reference.Len(), result.Enriched.Len(), result.Report.Unmapped)

	return nil
}
