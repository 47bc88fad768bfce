package seed

import (
	"context"
	"fmt"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"
)

type AlertCreator interface {
	Create(ctx context.Context, alert *types.Alert) error
}

// SeedDemoAlert logs one unverified alert so the verification flow can be
// exercised end to end on a fresh database.
func SeedDemoAlert(ctx context.Context, repo AlertCreator) (*types.Alert, error) {
	alert := &types.Alert{
		AlertIntake: types.AlertIntake{
			CallTaker:           utils.StringPtr("seed"),
			PersonReporting:     utils.StringPtr("Jane Okello"),
			ContactNumber:       utils.StringPtr("0772000000"),
			Village:             utils.StringPtr("Laroo"),
			SubCounty:           utils.StringPtr("Bar-dege"),
			AlertReportedBefore: utils.StringPtr("No"),
			Narrative:           utils.StringPtr("Sudden death after two days of fever and bleeding"),
		},
		AlertCase: types.AlertCase{
			SourceOfAlert:     utils.StringPtr("Community"),
			AlertCaseName:     utils.StringPtr("John Doe"),
			AlertCaseAge:      utils.IntPtr(34),
			AlertCaseSex:      utils.StringPtr("Male"),
			AlertCaseVillage:  utils.StringPtr("Laroo"),
			AlertCaseDistrict: utils.StringPtr("Gulu"),
			Region:            utils.StringPtr("North"),
		},
	}

	if err := repo.Create(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create demo alert: %w", err)
	}

	return alert, nil
}
