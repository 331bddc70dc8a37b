// scenario-runner executes declarative story files against a simulated
// world or a remote console, and reports the run as text or JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goliatone/go-logger/glog"

	scenario "github.com/goliatone/go-scenario"
	"github.com/goliatone/go-scenario/backend/console"
	"github.com/goliatone/go-scenario/backend/remote"
	"github.com/goliatone/go-scenario/backend/simworld"
	"github.com/goliatone/go-scenario/correlate"
	"github.com/goliatone/go-scenario/executor"
	"github.com/goliatone/go-scenario/metric"
	"github.com/goliatone/go-scenario/orchestrator"
	"github.com/goliatone/go-scenario/story"
)

type cli struct {
	Verbose bool `help:"Enable debug logging." short:"v"`

	Run runCmd `cmd:"" help:"Run a story file."`
}

type runCmd struct {
	Story string `arg:"" help:"Path to the story YAML/JSON file." type:"existingfile"`

	ConsoleURL    string        `help:"Websocket console endpoint; default runs against the in-process simulated world." name:"console-url"`
	EventsNATSURL string        `help:"NATS server feeding the correlation event stream." name:"events-nats-url"`
	EventsSubject string        `help:"NATS subject carrying event frames." name:"events-subject" default:"scenario.events"`
	Timeout       time.Duration `help:"Overall run deadline." default:"5m"`
	JSON          bool          `help:"Emit the TestResult as JSON." name:"json"`
	Metrics       bool          `help:"Register Prometheus run metrics on the default registry."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("scenario-runner"),
		kong.Description("Declarative test orchestration for stateful, event-emitting targets."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&app))
}

func (c *runCmd) Run(app *cli) error {
	level := "info"
	if app.Verbose {
		level = "debug"
	}
	base := glog.NewLogger(
		glog.WithLevel(level),
	)
	logger := glogAdapter{logger: base}

	st, err := story.Load(c.Story)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	bus := correlate.NewBus()

	if c.EventsNATSURL != "" {
		source, err := correlate.ConnectNATS(c.EventsNATSURL, c.EventsSubject, bus)
		if err != nil {
			return err
		}
		defer source.Close()
		logger.Info("event stream attached: %s %s", c.EventsNATSURL, c.EventsSubject)
	}

	var backend scenario.Backend
	if c.ConsoleURL != "" {
		client, err := console.Dial(runCtx, c.ConsoleURL, console.WithBus(bus), console.WithLogger(logger))
		if err != nil {
			return err
		}
		backend = remote.New(client)
		logger.Info("console attached: %s", c.ConsoleURL)
	} else {
		backend = simworld.New(simworld.WithBus(bus))
		logger.Info("running against the in-process simulated world")
	}

	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if c.Metrics {
		opts = append(opts, orchestrator.WithMetrics(metric.NewRecorder(nil)))
	}

	orc := orchestrator.New(executor.NewDefaultRegistry(bus), opts...)
	result := orc.Run(runCtx, st, backend)

	if c.JSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printSummary(result)
	}

	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func printSummary(result *scenario.TestResult) {
	status := "PASS"
	if !result.Success {
		status = "FAIL"
	}
	fmt.Printf("%s %s (%s)\n", status, result.Story, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("  actions: %d  assertions: %d passed, %d failed\n",
		result.ActionsExecuted, result.AssertionsPassed, result.AssertionsFailed)
	for _, step := range result.Steps {
		mark := "ok"
		if !step.Passed {
			mark = "FAILED"
		}
		fmt.Printf("  [%s] %-28s %s", step.Phase, step.Name, mark)
		if step.Error != "" {
			fmt.Printf(": %s", step.Error)
		}
		fmt.Println()
	}
}

// glogAdapter bridges go-logger to the orchestrator and console logging
// contracts.
type glogAdapter struct {
	logger glog.Logger
}

func (l glogAdapter) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l glogAdapter) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l glogAdapter) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l glogAdapter) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l glogAdapter) WithFields(fields map[string]any) orchestrator.Logger {
	if fl, ok := l.logger.(glog.FieldsLogger); ok {
		return glogAdapter{logger: fl.WithFields(fields)}
	}
	return l
}
