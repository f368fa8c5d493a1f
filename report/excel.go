// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/callvista/callsight/core"
	"github.com/callvista/callsight/storage"
)

const (
	callsSheet    = "Calls"
	featuresSheet = "Feature Requests"
)

// ExcelExporter writes calls and feature requests to an .xlsx workbook with
// one sheet per collection.
type ExcelExporter struct {
	callRepo    storage.CallRepository
	featureRepo storage.FeatureRepository
}

// NewExcelExporter creates an exporter over the given repositories.
func NewExcelExporter(callRepo storage.CallRepository, featureRepo storage.FeatureRepository) *ExcelExporter {
	return &ExcelExporter{
		callRepo:    callRepo,
		featureRepo: featureRepo,
	}
}

// Export writes the workbook to path, overwriting any existing file.
func (e *ExcelExporter) Export(ctx context.Context, path string) error {
	calls, err := e.callRepo.ListCalls(ctx)
	if err != nil {
		return fmt.Errorf("listing calls: %w", err)
	}
	features, err := e.featureRepo.ListFeatures(ctx)
	if err != nil {
		return fmt.Errorf("listing feature requests: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), callsSheet)
	if err := e.writeCalls(f, calls); err != nil {
		return err
	}
	if err := e.writeFeatures(f, features); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeCalls(f *excelize.File, calls []*core.Call) error {
	header := []any{"ID", "Source Call ID", "Title", "Start Time", "Duration (s)", "Sentiment", "Summary"}
	if err := f.SetSheetRow(callsSheet, "A1", &header); err != nil {
		return err
	}

	for i, call := range calls {
		row := []any{
			uint64(call.Id),
			call.SourceId,
			call.Title,
			call.StartTime.Format(time.RFC3339),
			int64(call.Duration / time.Second),
			string(call.Sentiment),
			call.Summary,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(callsSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *ExcelExporter) writeFeatures(f *excelize.File, features []*core.FeatureRequest) error {
	if _, err := f.NewSheet(featuresSheet); err != nil {
		return err
	}

	header := []any{"ID", "Call ID", "Request", "Customer Quote", "Priority"}
	if err := f.SetSheetRow(featuresSheet, "A1", &header); err != nil {
		return err
	}

	for i, feature := range features {
		row := []any{
			uint64(feature.Id),
			uint64(feature.CallId),
			feature.Request,
			feature.Context,
			string(feature.Priority),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(featuresSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
