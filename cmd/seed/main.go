// cmd/seed/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"focis/internal/clients"
	"focis/internal/domain"
	"focis/internal/inventory"
	"focis/internal/maintenance"
	"focis/internal/production"
	"focis/internal/security"
)

// Posts a demo shift against a running API. Identity is sent as
// development headers, so the server must run without FOCIS_JWT_SECRET.
func main() {
	baseURL := getEnv("FOCIS_API_URL", "http://localhost:8080")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	c := clients.NewClient(baseURL)
	as := func(user string, role domain.Role) *clients.Client {
		return c.As(clients.WithActor(domain.Actor{UserID: user, Role: role, FactoryID: "fac-1"}))
	}
	gate := as("u-gate", domain.RoleSecurity)
	stores := as("u-stores", domain.RoleStorekeeper)
	operator := as("u-op", domain.RoleOperator)
	tech := as("u-tech", domain.RoleTechnician)

	if _, err := stores.OpeningBalance(ctx, inventory.Receipt{
		ItemID: "itm-sp-bearing", WarehouseID: "wh-spare",
		Quantity: decimal.NewFromInt(12), UnitPrice: decimal.NewFromInt(180),
	}); err != nil {
		log.Fatalf("Failed to record opening balance: %v", err)
	}

	in, err := gate.GateIn(ctx, security.Movement{
		VehicleNo: "DXB-4471", DriverName: "R. Haddad",
		ItemID: "itm-cement", Quantity: decimal.NewFromInt(40), Reference: "DN-2024-118",
	})
	if err != nil {
		log.Fatalf("Failed to record gate in: %v", err)
	}
	fmt.Printf("🚚 Gate in %s, receipt %s\n", in.Gate.ID, in.Receipt.ID)

	start, err := operator.StartCycle(ctx, production.CycleStart{AssetID: "ast-line1", ProductID: "itm-interlock-6cm"})
	if err != nil {
		log.Fatalf("Failed to start cycle: %v", err)
	}
	res, err := operator.EndCycle(ctx, production.CycleEnd{StartEventID: start.ID, PalletCount: 18})
	if err != nil {
		log.Fatalf("Failed to end cycle: %v", err)
	}
	fmt.Printf("🏭 Cycle %s closed, %s curing\n", start.ID, res.DryingEntry.ID)

	if _, err := operator.RecordWaste(ctx, production.Waste{
		AssetID: "ast-line1", ProductID: "itm-interlock-6cm",
		Quantity: decimal.NewFromInt(6), Reason: "edge chipping",
	}); err != nil {
		log.Fatalf("Failed to record waste: %v", err)
	}

	bd, err := tech.ReportBreakdown(ctx, maintenance.BreakdownReport{AssetID: "ast-line2", Description: "vibrator bearing seized"})
	if err != nil {
		log.Fatalf("Failed to report breakdown: %v", err)
	}
	if _, err := tech.StartWorkOrder(ctx, maintenance.WorkOrderAction{WorkOrderID: bd.WorkOrder.ID}); err != nil {
		log.Fatalf("Failed to start work order: %v", err)
	}
	if _, err := tech.IssueSparePart(ctx, maintenance.SpareIssue{
		WorkOrderID: bd.WorkOrder.ID, PartID: "itm-sp-bearing", WarehouseID: "wh-spare",
		Quantity: decimal.NewFromInt(2),
	}); err != nil {
		log.Fatalf("Failed to issue spare part: %v", err)
	}
	if _, err := tech.CloseWorkOrder(ctx, maintenance.WorkOrderAction{WorkOrderID: bd.WorkOrder.ID, Conclusion: "bearing replaced"}); err != nil {
		log.Fatalf("Failed to close work order: %v", err)
	}
	fmt.Printf("🔧 Work order %s closed\n", bd.WorkOrder.ID)

	kpis, err := operator.Dashboard(ctx, "fac-1", 24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to read dashboard: %v", err)
	}
	fmt.Printf("📊 OEE %.1f%%  availability %.1f%%  health %.0f\n", kpis.OEE, kpis.Availability, kpis.FactoryHealth)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
