package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/lumilearn/documentflow/internal/config"
	"github.com/lumilearn/documentflow/internal/gcp"
	"github.com/lumilearn/documentflow/internal/services"
)

var (
	apiInstance *services.API
	once        sync.Once
	initErr     error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "MaterialsAPI" is the entry point name configured in GCP.
	functions.HTTP("MaterialsAPI", handleMaterialsAPI)
}

// main is required by the Go Functions Framework.
func main() {}

func handleMaterialsAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		apiInstance, initErr = newAPI(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	apiInstance.ServeHTTP(w, r)
}

func newAPI(ctx context.Context) (*services.API, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var (
		store services.RecordStore
		blobs services.BlobStore
	)
	if cfg.UseMemoryStores {
		// Local development mode: no Firestore or GCS needed.
		store = services.NewMemoryRecords()
		blobs = services.NewMemoryBlobs()
		slog.Warn("Materials API running with in-memory stores")
	} else {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		storageClient, err := gcp.NewStorageClient(ctx)
		if err != nil {
			return nil, err
		}
		store = gcp.NewFirestoreRecords(firestoreClient, cfg.DocumentsCollection, cfg.CoursesCollection)
		blobs = gcp.NewGCSBlobs(storageClient, cfg.MaterialsBucket)
	}

	records := services.NewRecordManager(store, services.RecordManagerConfig{
		StrictTransitions: cfg.StrictTransitions,
	})
	uploader := services.NewUploader(records, blobs)

	slog.Info("Materials API initialized", "bucket", cfg.MaterialsBucket)
	return services.NewAPI(records, uploader), nil
}
