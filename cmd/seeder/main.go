package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/sales_bonus/internal/bootstrap"
	"github.com/locvowork/sales_bonus/internal/database"
	"github.com/locvowork/sales_bonus/internal/logger"
)

func main() {
	// Define flags
	action := flag.String("action", "seed", "Action to perform: seed, clear")
	preset := flag.String("preset", "small", "Data preset: small, medium, large, max")
	departments := flag.Int("departments", 0, "Number of departments (overrides preset)")
	employees := flag.Int("employees", 0, "Number of employees (overrides preset)")
	seed := flag.Int64("seed", 1, "Random seed for generated data")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt for clear")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("Sales Bonus Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, "Failed to initialize application: %v", err)
		log.Fatal(err)
	}
	defer app.Close()

	seeder := database.NewDataSeeder(app.DB, app.Employees, app.Sales)

	switch *action {
	case "seed":
		performSeed(ctx, seeder, *preset, *departments, *employees, *seed)
	case "clear":
		performClear(ctx, seeder, *yes)
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		flag.PrintDefaults()
		return
	}

	fmt.Println("Done!")
}

func performSeed(ctx context.Context, seeder *database.DataSeeder, preset string, departments, employees int, seed int64) {
	var numDepartments, numEmployees int

	if departments > 0 && employees > 0 {
		numDepartments, numEmployees = departments, employees
		fmt.Printf("Using custom configuration: %d departments, %d employees\n", numDepartments, numEmployees)
	} else {
		numDepartments, numEmployees = database.GetPresetConfig(database.SeedPreset(preset))
		fmt.Printf("Using preset: %s\n", preset)
	}

	if err := seeder.SeedData(ctx, numDepartments, numEmployees, seed); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func performClear(ctx context.Context, seeder *database.DataSeeder, yes bool) {
	if !yes {
		fmt.Println("This will delete all seeded data!")
		fmt.Print("Continue? (yes/no): ")

		var response string
		fmt.Scanln(&response)
		if response != "yes" {
			fmt.Println("Cancelled.")
			return
		}
	}

	if err := seeder.ClearData(ctx); err != nil {
		log.Fatalf("Clear failed: %v", err)
	}
}
