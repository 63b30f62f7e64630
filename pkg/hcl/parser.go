package hcl

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/marinelabs/sailgraph/pkg/temporal"
)

// HCLRenderSpec represents the render spec structure
type HCLRenderSpec struct {
	TrackID string         `hcl:"track_id"`
	Graph   *HCLGraph      `hcl:"graph,block"`
	Colors  *hcl.Attribute `hcl:"colors,optional"`
}

// HCLGraph holds the output dimensions and the optional time window
type HCLGraph struct {
	Width     *int          `hcl:"width,optional"`
	Height    *int          `hcl:"height,optional"`
	TimeRange *HCLTimeRange `hcl:"time_range,block"`
}

// HCLTimeRange represents a time window for rendering
type HCLTimeRange struct {
	Start string `hcl:"start"`
	End   string `hcl:"end"`
}

// ParseRenderSpec parses HCL content and converts it to a temporal.RenderRequest
func ParseRenderSpec(hclContent string) (*temporal.RenderRequest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "render.hcl")

	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	// Create evaluation context with helper functions
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"timestamp": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "timestamp",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					return args[0], nil
				},
			}),
		},
	}

	var hclSpec HCLRenderSpec
	diags = gohcl.DecodeBody(file.Body, evalCtx, &hclSpec)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	request := &temporal.RenderRequest{
		TrackID: hclSpec.TrackID,
	}

	if hclSpec.Graph != nil {
		if hclSpec.Graph.Width != nil {
			request.Width = *hclSpec.Graph.Width
		}
		if hclSpec.Graph.Height != nil {
			request.Height = *hclSpec.Graph.Height
		}

		// Parse time range
		if hclSpec.Graph.TimeRange != nil {
			start, err := time.Parse(time.RFC3339, hclSpec.Graph.TimeRange.Start)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start time: %w", err)
			}

			end, err := time.Parse(time.RFC3339, hclSpec.Graph.TimeRange.End)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end time: %w", err)
			}

			request.TimeRange = &temporal.TimeRange{
				Start: start,
				End:   end,
			}
		}
	}

	// Parse colour overrides if they exist
	if hclSpec.Colors != nil {
		colorsVal, diags := hclSpec.Colors.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate colors: %s", diags.Error())
		}
		colors, err := hclValueToColorMap(colorsVal)
		if err != nil {
			return nil, err
		}
		request.Colors = colors
	}

	return request, nil
}

// hclValueToColorMap converts a cty.Value to a channel->hex colour map
func hclValueToColorMap(val cty.Value) (map[string]string, error) {
	if val.IsNull() {
		return nil, nil
	}

	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("colors must be a map of channel name to hex value")
	}

	result := make(map[string]string)
	for key, attr := range val.AsValueMap() {
		if attr.IsNull() || attr.Type() != cty.String {
			return nil, fmt.Errorf("color for %q must be a string", key)
		}
		result[key] = attr.AsString()
	}

	return result, nil
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, err := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return err == nil
}
