package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"

	"dispatch-project/internal/adapters/appconfig"
	"dispatch-project/internal/adapters/messaging"
	"dispatch-project/internal/adapters/redis"
	"dispatch-project/internal/app"
	"dispatch-project/internal/config"
	"dispatch-project/internal/domain"
	"dispatch-project/internal/logging"
	"dispatch-project/internal/ports"
	"dispatch-project/internal/service"
)

// Event is the batch the host hands to the worker: either outbound dispatch
// items or raw inbound webhook items to route.
type Event struct {
	Action         string                 `json:"action"` // "dispatch" or "route"
	ContinueOnFail bool                   `json:"continue_on_fail,omitempty"`
	Profile        string                 `json:"profile,omitempty"`
	Items          []json.RawMessage      `json:"items"`
	Routing        *service.RoutingConfig `json:"routing,omitempty"`
}

// Response carries the per-item outcomes. Dispatch fills Results; routing
// fills the two lanes.
type Response struct {
	Action        string                  `json:"action"`
	Results       []domain.DispatchResult `json:"results,omitempty"`
	ContinueItems []domain.RoutedItem     `json:"continue,omitempty"`
	CloseItems    []domain.RoutedItem     `json:"close,omitempty"`
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(handleLambda)
	} else {
		if err := runLocal(); err != nil {
			os.Exit(1)
		}
	}
}

func handleLambda(ctx context.Context, event Event) (*Response, error) {
	response, tasks, err := run(ctx, event)
	// The sandbox freezes the moment the handler returns, so detached
	// presence sequences must finish inside the invocation.
	tasks.Wait()
	return response, err
}

func runLocal() error {
	logger := logging.New(logging.DefaultConfig())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	event, err := readLocalEvent()
	if err != nil {
		logger.Error("failed to read event", "error", err)
		return err
	}

	response, tasks, err := run(ctx, *event)
	if err != nil {
		tasks.Wait()
		logger.Error("run failed", "error", err)
		return err
	}

	if err := writeAndDrain(os.Stdout, response, tasks); err != nil {
		logger.Error("failed to encode response", "error", err)
		return err
	}

	return nil
}

// writeAndDrain emits the response, then waits for detached work. The response
// must reach the host before the drain: a detached presence sequence can run
// for minutes after the batch itself is done.
func writeAndDrain(out io.Writer, response *Response, tasks *service.TaskGroup) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	tasks.Wait()
	return nil
}

// readLocalEvent reads one JSON event from the file given as the first
// argument, or from stdin when no argument is given.
func readLocalEvent() (*Event, error) {
	var reader io.Reader = os.Stdin
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			return nil, fmt.Errorf("open event file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	var event Event
	if err := json.NewDecoder(reader).Decode(&event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &event, nil
}

func run(ctx context.Context, event Event) (*Response, *service.TaskGroup, error) {
	logger := logging.New(logging.DefaultConfig())
	tasks := &service.TaskGroup{}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return nil, tasks, err
	}

	if cfg.WhatsApp.SecretName != "" {
		secrets, err := config.NewSecretsManagerClient(ctx)
		if err != nil {
			logger.Error("failed to create secrets manager client", "error", err)
			return nil, tasks, err
		}
		secret, err := secrets.GetWhatsAppSecret(ctx, cfg.WhatsApp.SecretName)
		if err != nil {
			logger.Error("failed to load whatsapp credentials", "error", err)
			return nil, tasks, err
		}
		secret.Apply(&cfg.WhatsApp)
	}

	messenger, err := messaging.NewClient(cfg.WhatsApp, logger.With("component", "messenger"))
	if err != nil {
		logger.Error("failed to create whatsapp client", "error", err)
		return nil, tasks, err
	}

	var deduper ports.Deduper = redis.NoopDeduper{}
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			return nil, tasks, err
		}
		defer redisClient.Close()

		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		deduper = redis.NewDedupStore(redisClient, cfg.Redis.DedupTTL)
	}

	var profileLoader ports.ProfileLoader
	if cfg.AppConfig.Endpoint != "" {
		profileLoader = appconfig.NewLoader(cfg.AppConfig, logger.With("component", "profiles"))
	}

	application := app.New(app.Options{
		Logger:         logger,
		Messenger:      messenger,
		Deduper:        deduper,
		ProfileLoader:  profileLoader,
		Tasks:          tasks,
		ContinueOnFail: event.ContinueOnFail,
	})

	if len(event.Items) == 0 {
		return nil, tasks, domain.ErrEmptyBatch
	}

	response := &Response{Action: event.Action}

	switch event.Action {
	case "dispatch", "":
		results, err := application.DispatchBatch(ctx, event.Items, event.Profile)
		if err != nil {
			return nil, tasks, err
		}
		response.Action = "dispatch"
		response.Results = results
	case "route":
		continueLane, closeLane, err := application.RouteBatch(ctx, event.Items, event.Routing, event.Profile)
		if err != nil {
			return nil, tasks, err
		}
		response.ContinueItems = continueLane
		response.CloseItems = closeLane
	default:
		return nil, tasks, fmt.Errorf("unknown action %q", event.Action)
	}

	return response, tasks, nil
}
