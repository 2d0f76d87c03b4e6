package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/lumilearn/documentflow/internal/config"
	"github.com/lumilearn/documentflow/internal/gcp"
	"github.com/lumilearn/documentflow/internal/services"
)

var (
	reactorInstance *services.Reactor
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Register the CloudEvent function. The framework routes the GCS
	// object-finalized event here.
	functions.CloudEvent("OnMaterialFinalized", onMaterialFinalized)
}

// main is required by the Go Functions Framework.
func main() {}

func onMaterialFinalized(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		reactorInstance, initErr = newReactor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.StorageObjectEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return reactorInstance.HandleFinalized(ctx, gcsEvent)
}

// newReactor builds the reactor and its clients once per instance; the
// clients live for the lifetime of the process.
func newReactor(ctx context.Context) (*services.Reactor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}

	records := services.NewRecordManager(
		gcp.NewFirestoreRecords(firestoreClient, cfg.DocumentsCollection, cfg.CoursesCollection),
		services.RecordManagerConfig{StrictTransitions: cfg.StrictTransitions},
	)
	blobs := gcp.NewGCSBlobs(storageClient, cfg.MaterialsBucket)

	slog.Info("Material-finalized trigger initialized", "convertService", cfg.ConvertServiceBaseURL)
	return services.NewReactor(records, blobs, services.ReactorConfig{
		ConvertServiceBaseURL: cfg.ConvertServiceBaseURL,
		ConvertTimeout:        cfg.ConvertTimeout,
	}), nil
}
