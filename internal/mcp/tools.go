package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/speclite/speclite/internal/corpus"
	"github.com/speclite/speclite/internal/feature"
	"github.com/speclite/speclite/internal/git"
	"github.com/speclite/speclite/internal/merge"
	"github.com/speclite/speclite/internal/render"
)

// --- Context tool ---

// ContextInput is the input for the context tool.
type ContextInput struct {
	Require []string `json:"require,omitempty" jsonschema:"artifacts that must exist: spec, plan, tasks"`
}

// ContextOutput is the output for the context tool. Keys mirror the JSON
// contract consumed by generated helper scripts.
type ContextOutput struct {
	FeatureID string `json:"FEATURE_ID" jsonschema:"active feature ID (NNN-slug)"`
	Dir       string `json:"FEATURE_DIR" jsonschema:"absolute path of the feature directory"`
	SpecFile  string `json:"SPEC_FILE"  jsonschema:"absolute path of the feature spec"`
	PlanFile  string `json:"PLAN_FILE"  jsonschema:"absolute path of the feature plan"`
	TasksFile string `json:"TASKS_FILE" jsonschema:"absolute path of the feature tasks file"`
}

func handleContext(root string) mcp.ToolHandlerFor[ContextInput, ContextOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input ContextInput) (*mcp.CallToolResult, ContextOutput, error) {
		branches := feature.BranchReaderFunc(git.CurrentBranch)
		ctx, err := feature.Resolve(root, os.Getenv(feature.EnvOverride), branches)
		if err != nil {
			return nil, ContextOutput{}, fmt.Errorf("resolving feature: %w", err)
		}

		if len(input.Require) > 0 {
			if err := ctx.RequireArtifacts(input.Require...); err != nil {
				return nil, ContextOutput{}, err
			}
		}

		return nil, ContextOutput{
			FeatureID: ctx.ID,
			Dir:       ctx.Dir,
			SpecFile:  ctx.SpecFile,
			PlanFile:  ctx.PlanFile,
			TasksFile: ctx.TasksFile,
		}, nil
	}
}

// --- Commands tool ---

// CommandsInput is the input for the commands tool (no parameters needed).
type CommandsInput struct{}

// CommandInfo describes one workflow command.
type CommandInfo struct {
	Name        string `json:"name"        jsonschema:"logical command name"`
	Description string `json:"description" jsonschema:"what the command does"`
}

// CommandsOutput is the output for the commands tool.
type CommandsOutput struct {
	Commands []CommandInfo `json:"commands" jsonschema:"workflow commands in the corpus"`
	Agents   []string      `json:"agents"   jsonschema:"agent IDs the corpus can provision"`
}

func handleCommands(c *corpus.Corpus) mcp.ToolHandlerFor[CommandsInput, CommandsOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ CommandsInput) (*mcp.CallToolResult, CommandsOutput, error) {
		out := CommandsOutput{Agents: c.AgentIDs()}
		for _, cmd := range c.Commands() {
			out.Commands = append(out.Commands, CommandInfo{
				Name:        cmd.Name,
				Description: cmd.Description,
			})
		}
		return nil, out, nil
	}
}

// --- Plan tool ---

// PlanInput is the input for the plan tool.
type PlanInput struct {
	Agents []string `json:"agents"           jsonschema:"agent IDs to plan for"`
	Script string   `json:"script,omitempty" jsonschema:"script flavor: sh (default) or ps"`
}

// PlannedPath is one entry of a dry-run plan.
type PlannedPath struct {
	Path   string `json:"path"   jsonschema:"target path relative to the project root"`
	Action string `json:"action" jsonschema:"create, overwrite, or skip-protected"`
}

// PlanOutput is the output for the plan tool.
type PlanOutput struct {
	Files []PlannedPath `json:"files" jsonschema:"per-path actions, sorted by path"`
}

func handlePlan(root string, c *corpus.Corpus) mcp.ToolHandlerFor[PlanInput, PlanOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input PlanInput) (*mcp.CallToolResult, PlanOutput, error) {
		if len(input.Agents) == 0 {
			return nil, PlanOutput{}, errors.New("agents must name at least one agent ID")
		}

		flavor := corpus.FlavorSh
		switch input.Script {
		case "", "sh":
		case "ps":
			flavor = corpus.FlavorPS
		default:
			return nil, PlanOutput{}, fmt.Errorf("unknown script flavor %q (expected sh or ps)", input.Script)
		}

		files, err := render.All(c, input.Agents, flavor)
		if err != nil {
			return nil, PlanOutput{}, fmt.Errorf("rendering: %w", err)
		}

		plan, err := merge.Plan(files, merge.ModeUpgrade, merge.DefaultRules(), merge.ExistsOnDisk(root))
		if err != nil {
			return nil, PlanOutput{}, fmt.Errorf("planning: %w", err)
		}

		out := PlanOutput{Files: make([]PlannedPath, 0, len(plan))}
		for _, p := range plan {
			out.Files = append(out.Files, PlannedPath{
				Path:   p.File.TargetPath,
				Action: string(p.Action),
			})
		}
		return nil, out, nil
	}
}
