package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/cold-outreach/internal/core"
	"github.com/mikey/cold-outreach/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, verifier core.Verifier) error {
	defer logger.Sync()

	emails, err := collectEmails(flags)
	if err != nil {
		logger.Fatal("Failed to read input", zap.Error(err))
	}
	if len(emails) == 0 {
		fmt.Println("No email addresses given. Pass them as arguments or via -file.")
		os.Exit(2)
	}

	fmt.Printf("\n=== Verification ===\n")
	fmt.Printf("Strategy: %s\n", flags.Strategy)
	fmt.Printf("Addresses: %d\n", len(emails))
	fmt.Printf("\n")

	startTime := time.Now()
	results := verifier.VerifyBatch(context.Background(), emails, core.VerifyStrategy(flags.Strategy), flags.Delay)
	duration := time.Since(startTime)

	counts := make(map[core.VerificationStatus]int)
	for _, result := range results {
		counts[result.Status]++
		fmt.Printf("%-40s %-10s %s\n", result.Email, result.Status, result.Message)
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Valid: %d\n", counts[core.VerificationValid])
	fmt.Printf("Invalid: %d\n", counts[core.VerificationInvalid])
	fmt.Printf("Catch-all: %d\n", counts[core.VerificationCatchAll])
	fmt.Printf("Unknown: %d\n", counts[core.VerificationUnknown])
	fmt.Printf("Processing time: %v\n", duration)
	return nil
}

// collectEmails gathers addresses from the input file or the remaining
// command line arguments
func collectEmails(flags *di.CLIFlags) ([]string, error) {
	if flags.InputFile == "" {
		return flag.Args(), nil
	}

	file, err := os.Open(flags.InputFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var emails []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		emails = append(emails, line)
	}
	return emails, scanner.Err()
}
