package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CropGroup is a logical crop group and its member category labels.
type CropGroup struct {
	Name  string
	Crops []string
}

// CropGroups keeps groups in the order they were declared. In YAML it is a
// mapping of group name to {crops: [...]}.
type CropGroups []CropGroup

func (g *CropGroups) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: crop_groupings must be a mapping", node.Line)
	}

	groups := make(CropGroups, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var body struct {
			Crops []string `yaml:"crops"`
		}
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("crop group %q: %w", node.Content[i].Value, err)
		}
		groups = append(groups, CropGroup{Name: node.Content[i].Value, Crops: body.Crops})
	}

	*g = groups
	return nil
}

// Document renders the groups in the crop_groupings.json shape.
func (g CropGroups) Document() map[string]map[string]map[string][]string {
	inner := make(map[string]map[string][]string, len(g))
	for _, group := range g {
		inner[group.Name] = map[string][]string{"crops": append([]string(nil), group.Crops...)}
	}
	return map[string]map[string]map[string][]string{"crop_groupings": inner}
}

// DefaultCropGroups are the principal field crops tracked in table 32-10-0359.
func DefaultCropGroups() CropGroups {
	return CropGroups{
		{Name: "Wheat", Crops: []string{"Wheat, all"}},
		{Name: "Coarse Grains", Crops: []string{"Barley", "Corn for grain", "Oats", "Rye, all", "Mixed grains"}},
		{Name: "Oilseeds", Crops: []string{"Canola (rapeseed)", "Flaxseed", "Soybeans"}},
		{Name: "Pulses and Special Crops", Crops: []string{
			"Peas, dry", "Lentils", "Beans, all dry (white and coloured)", "Chick peas",
			"Mustard seed", "Canary seed", "Sunflower seed",
		}},
	}
}
