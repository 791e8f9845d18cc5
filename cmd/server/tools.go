package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/voxflow/voxflow-core/core/llms"
	"github.com/voxflow/voxflow-core/internal/metrics"
)

type inventoryQuery struct {
	Location string `json:"location" jsonschema:"title=location,description=Kitchen storage location to check: fridge or pantry or freezer"`
}

// newKitchenInventoryTool builds the shipped example tool: it answers
// questions about what is in a kitchen, backed by a YAML pantry file.
func newKitchenInventoryTool(pantryPath string, m *metrics.Metrics) (llms.Tool, error) {
	data, err := os.ReadFile(pantryPath)
	if err != nil {
		return llms.Tool{}, fmt.Errorf("failed to read pantry file: %w", err)
	}

	var pantry map[string][]string
	if err := yaml.Unmarshal(data, &pantry); err != nil {
		return llms.Tool{}, fmt.Errorf("failed to parse pantry file: %w", err)
	}

	tool := llms.NewTool("get_kitchen_inventory",
		"List the items currently stored in a kitchen location",
		func(query inventoryQuery) (string, error) {
			m.ToolExecutions.Inc()
			location := strings.ToLower(strings.TrimSpace(query.Location))
			items, ok := pantry[location]
			if !ok {
				locations := make([]string, 0, len(pantry))
				for name := range pantry {
					locations = append(locations, name)
				}
				return "", fmt.Errorf("unknown location %q, known locations: %s",
					query.Location, strings.Join(locations, ", "))
			}
			if len(items) == 0 {
				return fmt.Sprintf("The %s is empty.", location), nil
			}
			return fmt.Sprintf("The %s contains: %s.", location, strings.Join(items, ", ")), nil
		})

	return tool, nil
}
