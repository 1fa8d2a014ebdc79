package functions

import (
	"context"
	"testing"

	"homescout/inventory"
)

func TestLogApplianceDecodesArgs(t *testing.T) {
	sink := inventory.NewSink(nil)
	list := &inventory.List{}

	resp := LogAppliance(context.Background(), sink, list, map[string]any{
		"appliance_type": "washer",
		"make":           "LG",
		"model":          "WM4000HWA",
		"location":       "laundry room",
		"finish":         "white",
		"notes":          "purchased 2023",
	})

	if resp["status"] != inventory.StatusSuccess {
		t.Fatalf("status = %v, want success", resp["status"])
	}
	if resp["total_appliances"] != 1 {
		t.Fatalf("total_appliances = %v, want 1", resp["total_appliances"])
	}
	entry := list.Entries()[0]
	if entry.Make != "LG" || entry.Finish != "white" || entry.Notes != "purchased 2023" {
		t.Fatalf("entry = %+v", entry)
	}
	if entry.UserID != inventory.DefaultUserID {
		t.Fatalf("user_id = %q, want default", entry.UserID)
	}
}

func TestLogApplianceRejectsMissingRequiredField(t *testing.T) {
	sink := inventory.NewSink(nil)
	list := &inventory.List{}

	resp := LogAppliance(context.Background(), sink, list, map[string]any{
		"appliance_type": "washer",
		"make":           "LG",
		// model and location missing
	})

	if resp["status"] != inventory.StatusError {
		t.Fatalf("status = %v, want error", resp["status"])
	}
	if list.Len() != 0 {
		t.Fatalf("list = %d entries, want 0 (nothing logged on bad args)", list.Len())
	}
}

func TestLogApplianceDeclarationShape(t *testing.T) {
	decl := LogApplianceDeclaration()
	if decl.Name != LogApplianceName {
		t.Fatalf("name = %q, want %q", decl.Name, LogApplianceName)
	}
	if len(decl.Parameters.Required) != 4 {
		t.Fatalf("required = %v, want the 4 mandatory fields", decl.Parameters.Required)
	}
	for _, field := range []string{"appliance_type", "make", "model", "location", "finish", "notes", "user_id"} {
		if _, ok := decl.Parameters.Properties[field]; !ok {
			t.Fatalf("declaration missing property %q", field)
		}
	}
}
