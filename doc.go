// Package agentcli provides a Go SDK for interacting with the Agent CLI agent.
//
// This SDK enables Go applications to programmatically communicate with the agent
// through the official Agent CLI tool. It supports both one-shot queries and
// interactive multi-turn conversations.
//
// # Basic Usage
//
// For simple, one-shot queries, use the Query function:
//
//	ctx := context.Background()
//	messages, err := agentcli.Query(ctx, "What is 2+2?",
//	    agentcli.WithPermissionMode("acceptEdits"),
//	    agentcli.WithMaxTurns(1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for msg := range messages {
//	    switch m := msg.(type) {
//	    case *agentcli.AssistantMessage:
//	        for _, block := range m.Content {
//	            if text, ok := block.(*agentcli.TextBlock); ok {
//	                fmt.Println(text.Text)
//	            }
//	        }
//	    case *agentcli.ResultMessage:
//	        fmt.Printf("Completed in %dms\n", m.DurationMs)
//	    }
//	}
//
// # Interactive Sessions
//
// For multi-turn conversations, use NewClient or the WithClient helper:
//
//	// Using WithClient for automatic lifecycle management
//	err := agentcli.WithClient(ctx, func(c agentcli.Client) error {
//	    if err := c.Query(ctx, "Hello agent"); err != nil {
//	        return err
//	    }
//	    for msg, err := range c.ReceiveResponse(ctx) {
//	        if err != nil {
//	            return err
//	        }
//	        // process message...
//	    }
//	    return nil
//	},
//	    agentcli.WithLogger(slog.Default()),
//	    agentcli.WithPermissionMode("acceptEdits"),
//	)
//
//	// Or using NewClient directly for more control
//	client := agentcli.NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    agentcli.WithLogger(slog.Default()),
//	    agentcli.WithPermissionMode("acceptEdits"),
//	)
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	messages, err := agentcli.Query(ctx, "Hello agent",
//	    agentcli.WithLogger(logger),
//	)
//
// # Error Handling
//
// The SDK provides typed errors for different failure scenarios:
//
//	messages, err := agentcli.Query(ctx, prompt, agentcli.WithPermissionMode("acceptEdits"))
//	if err != nil {
//	    if cliErr, ok := errors.AsType[*agentcli.CLINotFoundError](err); ok {
//	        log.Fatalf("Agent CLI not installed, searched: %v", cliErr.SearchedPaths)
//	    }
//	    if procErr, ok := errors.AsType[*agentcli.ProcessError](err); ok {
//	        log.Fatalf("CLI process failed with exit code %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// This SDK requires the Agent CLI to be installed and available in your system PATH.
// You can specify a custom CLI path using the WithCliPath option.
package agentcli
