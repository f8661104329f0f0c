// Package invoker executes registered tools and normalizes every outcome
// into a single response envelope.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/gamemaster/gamemaster-mcp-server/internal/protocol"
	"github.com/gamemaster/gamemaster-mcp-server/internal/registry"
)

// Invoker looks up tools, binds arguments, and produces response envelopes.
type Invoker struct {
	registry *registry.Registry
	logger   *logrus.Entry
}

// New constructs an invoker over the shared registry.
func New(reg *registry.Registry, logger *logrus.Entry) *Invoker {
	return &Invoker{registry: reg, logger: logger}
}

// Invoke runs the named tool with raw JSON arguments. It always returns
// exactly one envelope: 404 when the tool is unknown, 500 when argument
// binding or execution fails, 200 with the result otherwise. Implementation
// failures never propagate past this boundary.
func (inv *Invoker) Invoke(ctx context.Context, name string, raw json.RawMessage) protocol.ResponseEnvelope {
	tool, ok := inv.registry.Get(name)
	if !ok {
		inv.logger.WithField("tool", name).Warn("unknown tool")
		return protocol.ResponseEnvelope{
			StatusCode: http.StatusNotFound,
			Body:       protocol.ErrorBody{Error: fmt.Sprintf("Tool '%s' not found", name)},
		}
	}

	args, err := bindArguments(tool.Descriptor(), raw)
	if err != nil {
		inv.logger.WithField("tool", name).Warnf("argument binding failed: %v", err)
		return executionError(err)
	}

	start := time.Now()
	value, err := callSafely(ctx, tool, args)
	if err != nil {
		inv.logger.WithFields(logrus.Fields{
			"tool": name,
			"dur":  time.Since(start).Round(time.Millisecond),
		}).Errorf("tool failed: %v", err)
		return executionError(err)
	}

	inv.logger.WithFields(logrus.Fields{
		"tool": name,
		"dur":  time.Since(start).Round(time.Millisecond),
	}).Info("tool ok")
	return protocol.ResponseEnvelope{
		StatusCode: http.StatusOK,
		Body:       protocol.ResultBody{Result: value},
	}
}

// callSafely converts a panicking implementation into an error return.
func callSafely(ctx context.Context, tool registry.Tool, args map[string]any) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panic: %v", r)
		}
	}()
	return tool.Call(ctx, args)
}

// bindArguments decodes raw JSON into a map and validates it against the
// tool's declared input schema. Missing required or mistyped keys are
// rejected here rather than left for the implementation to trip over.
func bindArguments(desc protocol.ToolDescriptor, raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %v", err)
	}
	if args == nil {
		args = map[string]any{}
	}

	if desc.InputSchema == nil {
		return args, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(desc.InputSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate arguments: %v", err)
	}
	if !result.Valid() {
		descs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			descs = append(descs, e.String())
		}
		return nil, fmt.Errorf("invalid arguments for tool '%s': %s", desc.Name, strings.Join(descs, "; "))
	}

	return args, nil
}

func executionError(err error) protocol.ResponseEnvelope {
	return protocol.ResponseEnvelope{
		StatusCode: http.StatusInternalServerError,
		Body:       protocol.ErrorBody{Error: fmt.Sprintf("Error executing tool: %v", err)},
	}
}
