package chi

import (
	"context"

	"github.com/restodir/restodir/internal/domain/progress"
	healthuc "github.com/restodir/restodir/internal/usecase/health"
)

type mockHealth struct {
	checkFn func(ctx context.Context) healthuc.Report
}

func (m *mockHealth) Check(ctx context.Context) healthuc.Report {
	if m.checkFn != nil {
		return m.checkFn(ctx)
	}
	return healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
	}
}

type mockProgress struct {
	snap progress.Snapshot
}

func (m *mockProgress) Progress() progress.Snapshot { return m.snap }
