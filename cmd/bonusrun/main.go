// Command bonusrun applies the sales bonus once against stored data and exits
// with the run's status code: 0 applied, 1 no data, 2 not applicable, 3 error.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/locvowork/sales_bonus/internal/bootstrap"
	"github.com/locvowork/sales_bonus/internal/domain"
	"github.com/locvowork/sales_bonus/internal/logger"
)

const exitError = 3

func main() {
	dryRun := flag.Bool("dry-run", false, "Compute the bonus without storing new salaries")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall timeout")
	flag.Parse()

	os.Exit(run(*dryRun, *timeout))
}

func run(dryRun bool, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		return exitError
	}
	defer app.Close()

	var (
		result *domain.BonusRun
		err    error
	)
	if dryRun {
		result, _, err = app.BonusService.Preview(ctx)
	} else {
		result, err = app.BonusService.Run(ctx)
	}
	if err != nil {
		logger.ErrorLog(ctx, "Bonus run failed: %v", err)
		return exitError
	}

	fmt.Printf("run_id=%s status=%s code=%d adjusted=%d total_increase=%d persisted=%t\n",
		result.RunID, result.Status, result.Code, len(result.Adjustments), result.TotalIncrease(), result.Persisted)
	return result.Code
}
