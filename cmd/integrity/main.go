// cmd/integrity/main.go
package main

import (
	"context"
	"log"
	"os"

	"focis/internal/config"
	"focis/internal/integrity"
	"focis/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()

	es, blob, err := server.OpenLedger(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer blob.Close()

	snap, err := es.Snapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to snapshot ledger: %v", err)
	}

	auditor := integrity.NewAuditor()
	auditor.RegisterDefaultRules()

	report := auditor.Run(ctx, snap)
	integrity.PrintReport(os.Stdout, report)
	if !report.Passed {
		blob.Close()
		os.Exit(1)
	}
}
