package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"soiagi/internal/config"
	"soiagi/internal/dataprocessing"
	apperrors "soiagi/internal/errors"
	"soiagi/pkg/contracts/domain"
)

type pipelineFixture struct {
	cfg   *config.Config
	paths *config.Paths
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeCodebook(t *testing.T, path string, variables ...string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := dataprocessing.DefaultCodebookSheet
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))

	rows := [][]interface{}{{"Variable", "Description"}}
	for _, v := range variables {
		rows = append(rows, []interface{}{v, v + " description"})
	}
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.SaveAs(path))
}

// newPipelineFixture lays out a base directory with a codebook, yearly
// extracts and the three geocoding reference tables
func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.InputDir = "input"
	cfg.Paths.OutputDir = "output"
	cfg.Paths.LogsDir = "logs"
	cfg.Paths.Codebook = "artifacts/Codebook.xlsx"
	cfg.Paths.TractTable = "ref/ZIP_TRACT.csv"
	cfg.Paths.EnergyTable = "ref/energy.csv"
	cfg.Paths.CoordinateTable = "ref/unique_zip_codes.csv"
	cfg.Pipeline.Years = []string{"2009", "2021"}
	cfg.Pipeline.FilterJurisdiction = true
	cfg.Pipeline.Jurisdiction = "TX"
	cfg.Pipeline.EmitUnfiltered = true

	paths, err := config.GetPaths(cfg.Paths)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	writeCodebook(t, paths.CodebookFile, "STATEFIPS", "STATE", "ZIPCODE", "AGI_STUB", "N1")

	writeFile(t, filepath.Join(paths.InputDir, "21zpallagi.csv"),
		"STATEFIPS,STATE,zipcode,agi_stub,N1,EXTRA\n"+
			"48,TX,75002,1,10,x\n"+
			"48,TX,75001,2,0.0001,x\n"+
			"40,OK,73001,1,5,x\n")
	writeFile(t, filepath.Join(paths.InputDir, "09zpallagi.csv"),
		"statefips,state,zipcode,agi_stub,n1\n"+
			"48,TX,75002,1,8\n"+
			"48,TX,75001,1,7\n")
	writeFile(t, filepath.Join(paths.InputDir, "15zpallagi.csv"),
		"STATEFIPS,STATE,ZIPCODE,AGI_STUB,N1\n48,TX,75001,1,1\n")
	writeFile(t, filepath.Join(paths.InputDir, "notes.csv"), "a\n1\n")

	writeFile(t, paths.TractTableFile,
		"tract,zip\n"+
			"48113000100,\"['75001', '75002']\"\n"+
			"48113000100,\"['75002']\"\n"+
			"48113000200,[]\n"+
			"48113000300,75003.0\n")
	writeFile(t, paths.EnergyTableFile,
		"CENSUS BLOCK,usage\n"+
			"481130001001000,100\n"+
			"481130002001000,200\n"+
			"481130003001000,300\n")
	writeFile(t, paths.CoordinateTableFile,
		"zip,latlong\n"+
			"75002,\"32.96, -96.83\"\n"+
			"75003,bad\n"+
			"75002,\"33.00,-96.80\"\n")

	return &pipelineFixture{cfg: cfg, paths: paths}
}

func (f *pipelineFixture) manager(t *testing.T) *Manager {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, RegisterPipelineSteps(registry, StepOptions{
		Config: f.cfg,
		Paths:  f.paths,
		Logger: testLogger(),
	}))
	return NewManager(registry, nil, testLogger())
}

func (f *pipelineFixture) readOutput(t *testing.T, name string) *domain.Table {
	t.Helper()
	table, err := dataprocessing.ReadCSVTable(f.paths.GetOutputPath(name))
	require.NoError(t, err)
	return table
}

func TestPipelineEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)

	resp, err := f.manager(t).Execute(context.Background(), OperationRequest{})
	require.NoError(t, err, resp.Error)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, []string{StepIDStandardize, StepIDPrevalentZip, StepIDMaster, StepIDCoordinates}, resp.Order)

	t.Run("standardized extracts", func(t *testing.T) {
		std := resp.Steps[StepIDStandardize]
		assert.Equal(t, 2, std.Metadata[MetadataFiles])
		assert.Equal(t, 5, std.Metadata[MetadataRows])
		assert.Equal(t, 2, std.Metadata[MetadataSkipped])

		table := f.readOutput(t, "21zpallagi_stdz.csv")
		assert.Equal(t, []string{"STATEFIPS", "STATE", "ZIPCODE", "AGI_STUB", "N1", "YEAR"}, table.Columns())
		assert.Equal(t, [][]string{
			{"48", "TX", "75002", "1", "10", "2021"},
			{"48", "TX", "75001", "2", "0", "2021"},
			{"40", "OK", "73001", "1", "5", "2021"},
		}, table.Records())

		assert.FileExists(t, f.paths.GetOutputPath("09zpallagi_stdz.csv"))
		assert.NoFileExists(t, f.paths.GetOutputPath("15zpallagi_stdz.csv"))
	})

	t.Run("master tables", func(t *testing.T) {
		tx := f.readOutput(t, "allagi_TX.csv")
		assert.Equal(t, []string{"STATEFIPS", "STATE", "ZIPCODE", "AGI_STUB", "N1", "YEAR"}, tx.Columns())
		assert.Equal(t, [][]string{
			{"48", "TX", "75001", "1", "7", "2009"},
			{"48", "TX", "75001", "2", "0", "2021"},
			{"48", "TX", "75002", "1", "8", "2009"},
			{"48", "TX", "75002", "1", "10", "2021"},
		}, tx.Records())

		all := f.readOutput(t, "allagi.csv")
		require.Equal(t, 5, all.Len())
		assert.Equal(t, []string{"40", "OK", "73001", "1", "5", "2021"}, all.Records()[0])

		rows, ok := resp.Steps[StepIDMaster].GetMetadata("master_rows")
		require.True(t, ok)
		assert.Equal(t, map[string]int{"allagi_TX.csv": 4, "allagi.csv": 5}, rows)
	})

	t.Run("prevalent zip", func(t *testing.T) {
		enriched := f.readOutput(t, config.PrevalentZipFile)
		assert.Equal(t, []string{"CENSUS BLOCK", "usage", "tract", "zip"}, enriched.Columns())
		assert.Equal(t, [][]string{
			{"481130001001000", "100", "48113000100", "75002"},
			{"481130002001000", "200", "48113000200", ""},
			{"481130003001000", "300", "48113000300", "75003"},
		}, enriched.Records())

		missing := f.readOutput(t, config.MissingZipFile)
		assert.Equal(t, [][]string{{"481130002001000", "200", "48113000200", ""}}, missing.Records())

		modes := f.readOutput(t, config.PrevalentByTract)
		assert.Equal(t, [][]string{
			{"48113000100", "75002", "2"},
			{"48113000300", "75003", "1"},
		}, modes.Records())

		step := resp.Steps[StepIDPrevalentZip]
		assert.Equal(t, 2, step.Metadata[MetadataMapped])
		assert.Equal(t, 1, step.Metadata[MetadataUnmapped])
	})

	t.Run("coordinates", func(t *testing.T) {
		final := f.readOutput(t, config.CoordinatesFile)
		assert.Equal(t, []string{"CENSUS BLOCK", "usage", "tract", "zip", "Latitude", "Longitude"}, final.Columns())
		assert.Equal(t, [][]string{
			{"481130001001000", "100", "48113000100", "75002", "33.00", "-96.80"},
			{"481130002001000", "200", "48113000200", "", "", ""},
			{"481130003001000", "300", "48113000300", "75003", "", ""},
		}, final.Records())

		step := resp.Steps[StepIDCoordinates]
		assert.Equal(t, 1, step.Metadata[MetadataMapped])
		assert.Equal(t, 2, step.Metadata[MetadataUnmapped])
		assert.Equal(t, 1, step.Metadata["malformed"])
		assert.Equal(t, 1, step.Metadata[MetadataCollisions], "75002 appears twice")
	})
}

func TestPipelineSingleStep(t *testing.T) {
	f := newPipelineFixture(t)

	resp, err := f.manager(t).Execute(context.Background(), OperationRequest{Step: StepIDMaster})
	require.NoError(t, err)
	assert.Equal(t, []string{StepIDStandardize, StepIDMaster}, resp.Order)

	assert.FileExists(t, f.paths.GetOutputPath("allagi_TX.csv"))
	assert.NoFileExists(t, f.paths.GetOutputPath(config.PrevalentZipFile))
}

func TestPipelineUnfilteredOnly(t *testing.T) {
	f := newPipelineFixture(t)
	f.cfg.Pipeline.FilterJurisdiction = false

	_, err := f.manager(t).Execute(context.Background(), OperationRequest{Step: StepIDMaster})
	require.NoError(t, err)

	assert.FileExists(t, f.paths.GetOutputPath("allagi.csv"))
	assert.NoFileExists(t, f.paths.GetOutputPath("allagi_TX.csv"))
}

func TestPipelineMissingInputs(t *testing.T) {
	tests := []struct {
		name      string
		remove    func(p *config.Paths) string
		step      string
		failed    string
		dependent string
	}{
		{
			name:      "codebook",
			remove:    func(p *config.Paths) string { return p.CodebookFile },
			step:      StepIDMaster,
			failed:    StepIDStandardize,
			dependent: StepIDMaster,
		},
		{
			name:      "tract table",
			remove:    func(p *config.Paths) string { return p.TractTableFile },
			step:      StepIDCoordinates,
			failed:    StepIDPrevalentZip,
			dependent: StepIDCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			require.NoError(t, os.Remove(tt.remove(f.paths)))

			resp, err := f.manager(t).Execute(context.Background(), OperationRequest{Step: tt.step})
			require.Error(t, err)

			assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput), err.Error())
			assert.Equal(t, StepStatusFailed, resp.Steps[tt.failed].Status)
			assert.Equal(t, StepStatusSkipped, resp.Steps[tt.dependent].Status)
			assert.Equal(t, OperationStatusFailed, resp.Status)
		})
	}
}

func TestPipelineNoSelectedPeriods(t *testing.T) {
	f := newPipelineFixture(t)
	f.cfg.Pipeline.Years = []string{"2012"}

	resp, err := f.manager(t).Execute(context.Background(), OperationRequest{Step: StepIDStandardize})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInput))
	assert.Contains(t, resp.Error, "2012")
}

func TestPipelineStepsValidateContext(t *testing.T) {
	f := newPipelineFixture(t)
	opts := StepOptions{Config: f.cfg, Paths: f.paths, Logger: testLogger()}
	state := NewOperationState("op")

	assert.True(t, apperrors.IsType(NewMasterStep(opts).Validate(state), apperrors.ErrTypeValidation))
	assert.True(t, apperrors.IsType(NewCoordinatesStep(opts).Validate(state), apperrors.ErrTypeValidation))
	assert.NoError(t, NewStandardizeStep(opts).Validate(state))
	assert.NoError(t, NewPrevalentZipStep(opts).Validate(state))
}
