// Command eventlogctl is a thin producer CLI exercising the ingest
// engine, transport client, and spillover writer a real producer
// library would embed: it reads one or more events from a JSON file
// and submits them through the same async pipeline, so operators can
// exercise delivery, retry, and spillover behavior by hand.
//
// Command structure and flag/viper wiring follow the corpus's
// cli/root.go, adapted from a single long-running server command into
// send, send-batch and demo commands over a short-lived process.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventlog.dev/service/ambient"
	"eventlog.dev/service/authtoken"
	"eventlog.dev/service/eventlog"
	"eventlog.dev/service/ingest"
	"eventlog.dev/service/logging"
	"eventlog.dev/service/processlog"
	"eventlog.dev/service/spillover"
	"eventlog.dev/service/transportclient"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "eventlogctl",
	Short: "submit events to an eventlogd server through the async ingestion pipeline",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.eventlogctl.yaml)")
	rootCmd.PersistentFlags().String("server-url", "http://localhost:8080", "eventlogd base URL")
	rootCmd.PersistentFlags().String("application-id", "eventlogctl", "application_id stamped on the transport client")
	rootCmd.PersistentFlags().String("jwt-secret", "", "HMAC secret used to self-issue a bearer token")
	rootCmd.PersistentFlags().String("spillover-dir", "", "directory for spillover files; disabled when empty")

	viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server-url"))
	viper.BindPFlag("application_id", rootCmd.PersistentFlags().Lookup("application-id"))
	viper.BindPFlag("jwt_secret", rootCmd.PersistentFlags().Lookup("jwt-secret"))
	viper.BindPFlag("spillover_dir", rootCmd.PersistentFlags().Lookup("spillover-dir"))

	rootCmd.AddCommand(sendCmd, sendBatchCmd, demoCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".eventlogctl")
	}
	viper.SetEnvPrefix("EVENTLOGCTL")
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

var sendCmd = &cobra.Command{
	Use:   "send [event.json]",
	Short: "submit a single event read from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := readEvents(args[0])
		if err != nil {
			return err
		}
		return runProducer(events)
	},
}

var sendBatchCmd = &cobra.Command{
	Use:   "send-batch [events.json]",
	Short: "submit a JSON array of events through the ingestion queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := readEvents(args[0])
		if err != nil {
			return err
		}
		return runProducer(events)
	},
}

func readEvents(path string) ([]eventlog.Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var single eventlog.Event
	if err := json.Unmarshal(raw, &single); err == nil && single.CorrelationID != "" {
		return []eventlog.Event{single}, nil
	}

	var many []eventlog.Event
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return many, nil
}

// newEngine wires a transport client, optional spillover writer, and
// the async ingestion engine exactly as a long-lived producer process
// would. The caller must Start() the engine and Shutdown() it when
// done; the returned cleanup stops the spillover writer, if any.
func newEngine(log *logrus.Logger) (*ingest.Engine, func(), error) {
	var tokenProvider transportclient.TokenProvider
	if secret := viper.GetString("jwt_secret"); secret != "" {
		tokenProvider = authtoken.NewProvider(secret, "eventlogctl", "eventlogctl", time.Hour, 5*time.Minute)
	}

	clientCfg := transportclient.DefaultConfig(viper.GetString("server_url"))
	clientCfg.ApplicationID = viper.GetString("application_id")
	clientCfg.TokenProvider = tokenProvider
	clientCfg.Logger = log
	client := transportclient.New(clientCfg)

	var spiller ingest.Spiller
	var writer *spillover.Writer
	cleanup := func() {}
	if dir := viper.GetString("spillover_dir"); dir != "" {
		var err error
		writer, err = spillover.NewWriter(spillover.DefaultConfig(dir), log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening spillover writer: %w", err)
		}
		writer.Start()
		cleanup = writer.Stop
		spiller = writer
	}

	engine := ingest.New(ingest.DefaultConfig(), client, spiller, ingest.Hooks{
		OnBatchSent: func(n int) { log.WithField("count", n).Info("batch sent") },
		OnBatchFailed: func(n int, err error) {
			log.WithError(err).WithField("count", n).Warn("batch failed")
		},
		OnEventLoss: func(e eventlog.Event, reason string) {
			log.WithField("correlation_id", e.CorrelationID).WithField("reason", reason).Error("event lost")
		},
	}, log)
	return engine, cleanup, nil
}

// runProducer drains a pre-built slice of events through a fresh
// engine: Log every event, then shut down, which drains the queue for
// up to the engine's drain timeout before stopping.
func runProducer(events []eventlog.Event) error {
	log := logging.New(logging.DefaultConfig("eventlogctl"))

	engine, cleanup, err := newEngine(log)
	if err != nil {
		return err
	}
	defer cleanup()
	engine.Start()

	accepted := 0
	for _, ev := range events {
		if engine.Log(ev) {
			accepted++
		}
	}
	log.WithField("accepted", accepted).WithField("total", len(events)).Info("events queued")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	engine.Shutdown(ctx)

	snapshot := engine.Metrics()
	log.WithField("sent", snapshot.Sent).WithField("failed", snapshot.Failed).WithField("spilled", snapshot.Spilled).Info("done")
	return nil
}

var demoCmd = &cobra.Command{
	Use:   "demo [process-name]",
	Short: "run a single synthetic process through the process logger and ingestion pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(args[0])
	},
}

// runDemo exercises the process logger end to end: Template.ForProcess
// resolves fresh correlation/trace IDs (no ambient context established
// for a one-shot CLI invocation), and the emitted PROCESS_START/STEP/
// PROCESS_END events are validated and queued onto the same engine
// send/spill would use for any other producer.
func runDemo(processName string) error {
	log := logging.New(logging.DefaultConfig("eventlogctl"))
	contextLog := logging.ServiceLogger(log, "eventlogctl")

	engine, cleanup, err := newEngine(log)
	if err != nil {
		return err
	}
	defer cleanup()
	engine.Start()

	template := processlog.NewTemplate(
		viper.GetString("application_id"),
		"eventlogctl",
		"eventlogctl",
		contextLog,
		engine.Log,
	)

	ctx := ambient.WithValues(context.Background(), ambient.Values{})
	proc := template.ForProcess(ctx, processName)

	start := time.Now()
	proc.LogStart("process started")
	proc.LogStep(proc.NextStep(), "validate", eventlog.EventStatusSuccess, "input validated")
	proc.LogStep(proc.NextStep(), "execute", eventlog.EventStatusSuccess, "work performed")
	proc.LogEnd(proc.NextStep(), eventlog.EventStatusSuccess, "process completed", time.Since(start).Milliseconds())

	log.WithField("correlation_id", proc.CorrelationID()).WithField("trace_id", proc.TraceID()).Info("demo process emitted")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	engine.Shutdown(ctx2)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
