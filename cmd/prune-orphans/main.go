// Command prune-orphans deletes version snapshots whose parent document no
// longer exists. Document deletion cascades versions in-line; this tool cleans
// up after crashes between the two writes.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/codrift/codrift/backend/go-services/internal/config"
	"github.com/codrift/codrift/backend/go-services/internal/database"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	dryRun := flag.Bool("dry-run", false, "report orphaned versions without deleting them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(cfg.MongoDB.Database)
	docs := db.Collection("documents")
	versions := db.Collection("versions")

	docIDs, err := versions.Distinct(ctx, "docId", bson.M{})
	if err != nil {
		logger.Fatalf("list version parents: %v", err)
	}

	var pruned int64
	for _, raw := range docIDs {
		id, ok := raw.(string)
		if !ok {
			continue
		}
		n, err := docs.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			logger.Fatalf("check document %s: %v", id, err)
		}
		if n > 0 {
			continue
		}
		if *dryRun {
			cnt, err := versions.CountDocuments(ctx, bson.M{"docId": id})
			if err != nil {
				logger.Fatalf("count versions for %s: %v", id, err)
			}
			logger.Infof("would prune %d versions for missing document %s", cnt, id)
			pruned += cnt
			continue
		}
		res, err := versions.DeleteMany(ctx, bson.M{"docId": id})
		if err != nil {
			logger.Fatalf("prune versions for %s: %v", id, err)
		}
		logger.Infof("pruned %d versions for missing document %s", res.DeletedCount, id)
		pruned += res.DeletedCount
	}
	logger.Infof("done: %d orphaned versions", pruned)
}
