package functions

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"homescout/inventory"
)

// LogApplianceName is the tool name the model calls.
const LogApplianceName = "log_appliance"

// LogApplianceDeclaration returns the function declaration for Gemini
func LogApplianceDeclaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        LogApplianceName,
		Description: "Logs a confirmed home appliance to the user's inventory. Call only after the user confirms they want to log it.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"appliance_type": {
					Type:        genai.TypeString,
					Description: "The type of appliance (e.g., refrigerator, oven, dishwasher).",
				},
				"make": {
					Type:        genai.TypeString,
					Description: "The manufacturer/brand of the appliance (e.g., Samsung, GE, Bosch).",
				},
				"model": {
					Type:        genai.TypeString,
					Description: "The model number or name of the appliance (e.g., RF28R7351SR).",
				},
				"location": {
					Type:        genai.TypeString,
					Description: "Where in the home the appliance is located (e.g., kitchen, laundry room).",
				},
				"finish": {
					Type:        genai.TypeString,
					Description: "The finish/color of the appliance (e.g., stainless steel, black, white).",
				},
				"notes": {
					Type:        genai.TypeString,
					Description: "Optional additional notes about the appliance.",
				},
				"user_id": {
					Type:        genai.TypeString,
					Description: "Optional user identifier.",
				},
			},
			Required: []string{"appliance_type", "make", "model", "location"},
		},
	}
}

// LogAppliance decodes the model's arguments and records the appliance
// through the sink. The returned map becomes the FunctionResponse payload.
func LogAppliance(ctx context.Context, sink *inventory.Sink, list *inventory.List, args map[string]any) map[string]any {
	entry := inventory.Entry{
		ApplianceType: stringArg(args, "appliance_type"),
		Make:          stringArg(args, "make"),
		Model:         stringArg(args, "model"),
		Location:      stringArg(args, "location"),
		Finish:        stringArg(args, "finish"),
		Notes:         stringArg(args, "notes"),
		UserID:        stringArg(args, "user_id"),
	}

	for name, value := range map[string]string{
		"appliance_type": entry.ApplianceType,
		"make":           entry.Make,
		"model":          entry.Model,
		"location":       entry.Location,
	} {
		if value == "" {
			return map[string]any{
				"status":  inventory.StatusError,
				"message": fmt.Sprintf("missing required field: %s", name),
			}
		}
	}

	result := sink.Log(ctx, list, entry)

	resp := map[string]any{
		"status":           result.Status,
		"message":          result.Message,
		"total_appliances": result.TotalAppliances,
	}
	if len(result.BigQueryErrors) > 0 {
		resp["bigquery_errors"] = result.BigQueryErrors
	}
	return resp
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
