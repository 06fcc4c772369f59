// Package orchestrator composes the Query primitive into bounded-parallel,
// sequential, and retrying workflows.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	agentcli "github.com/agentcli/agentcli-go"
)

// QuerySpec is one unit of work: a prompt plus the options it runs with.
type QuerySpec struct {
	Prompt  string
	Options []agentcli.Option
}

// QueryResult is the outcome of running a single QuerySpec.
type QueryResult struct {
	Prompt     string
	Messages   []agentcli.Message
	Cost       float64
	SessionID  string
	Success    bool
	Errors     []error
	DurationMs int64
}

// runQuery drives a single Query to completion, collecting every message and
// classifying success the way the CLI's own callers do: a terminal
// result/success, or at least one assistant message with no error result (the
// CLI sometimes omits a terminal record under max_turns=1).
func runQuery(ctx context.Context, prompt string, opts []agentcli.Option) QueryResult {
	start := time.Now()

	result := QueryResult{Prompt: prompt}

	sawAssistant := false
	sawErrorResult := false

	for msg, err := range agentcli.Query(ctx, prompt, opts...) {
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		result.Messages = append(result.Messages, msg)

		switch m := msg.(type) {
		case *agentcli.AssistantMessage:
			sawAssistant = true
		case *agentcli.ResultMessage:
			if m.SessionID != "" {
				result.SessionID = m.SessionID
			}

			result.Cost = m.CostUSD()

			if m.Subtype == "success" {
				result.Success = true
			} else {
				sawErrorResult = true
			}
		}
	}

	if !result.Success && sawAssistant && !sawErrorResult {
		result.Success = true
	}

	result.DurationMs = time.Since(start).Milliseconds()

	return result
}

// Parallel runs up to maxConcurrent queries concurrently and returns their
// results in input order regardless of completion order. Cancelling ctx
// cancels every in-flight query. maxConcurrent <= 0 means unbounded.
func Parallel(ctx context.Context, specs []QuerySpec, maxConcurrent int) []QueryResult {
	results := make([]QueryResult, len(specs))

	g, gCtx := errgroup.WithContext(ctx)
	if maxConcurrent > 0 {
		g.SetLimit(maxConcurrent)
	}

	for i, spec := range specs {
		g.Go(func() error {
			results[i] = runQuery(gCtx, spec.Prompt, spec.Options)
			return nil
		})
	}

	// Errors are carried in each QueryResult, not returned here - an
	// orchestrator-level partial failure never tears down sibling queries.
	_ = g.Wait()

	return results
}

// contextHeader delimits a previous pipeline step's assistant text when it is
// prepended to the next step's prompt.
const contextHeader = "--- Context from previous step ---"

// Pipeline runs specs sequentially. When useContext is true, the concatenated
// assistant text of the previous step is prepended to the next prompt under a
// delimited header. Any step failure aborts the pipeline; the partial trace
// completed so far is returned.
func Pipeline(ctx context.Context, specs []QuerySpec, useContext bool) []QueryResult {
	results := make([]QueryResult, 0, len(specs))

	var previousText string

	for _, spec := range specs {
		prompt := spec.Prompt
		if useContext && previousText != "" {
			prompt = fmt.Sprintf("%s\n%s\n\n%s", contextHeader, previousText, spec.Prompt)
		}

		result := runQuery(ctx, prompt, spec.Options)
		results = append(results, result)

		if !result.Success {
			return results
		}

		previousText = assistantText(result.Messages)
	}

	return results
}

// assistantText concatenates the text blocks of every assistant message in
// order, for use as pipeline context in the next step.
func assistantText(messages []agentcli.Message) string {
	var b strings.Builder

	for _, msg := range messages {
		am, ok := msg.(*agentcli.AssistantMessage)
		if !ok {
			continue
		}

		for _, block := range am.Content {
			if tb, ok := block.(*agentcli.TextBlock); ok {
				if b.Len() > 0 {
					b.WriteString("\n")
				}

				b.WriteString(tb.Text)
			}
		}
	}

	return b.String()
}

// Retry runs spec once, retrying up to maxRetries additional times with
// exponential backoff starting at backoffMs (each delay doubles the last). A
// retry is triggered only by query-level failure - a transport error or a
// non-success result - never by the content the agent returned.
func Retry(ctx context.Context, spec QuerySpec, maxRetries int, backoffMs int) QueryResult {
	delay := time.Duration(backoffMs) * time.Millisecond

	var result QueryResult

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result = runQuery(ctx, spec.Prompt, spec.Options)
		if result.Success {
			return result
		}

		if attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, ctx.Err())
			return result
		case <-time.After(delay):
		}

		delay *= 2
	}

	return result
}
