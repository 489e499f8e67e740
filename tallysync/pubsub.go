package tallysync

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
)

// PublishSyncRun queues a run for the async worker. When pub/sub is not
// configured and the inline fallback flag is on, the run executes in the
// calling goroutine instead.
func PublishSyncRun(ctx context.Context, payload SyncPubSubPayload) error {
	topicName := strings.TrimSpace(os.Getenv("TALLY_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "tally-sync"
	}

	client, err := config.GetClient(ctx)
	if err != nil {
		if config.InlineSyncFallback() {
			return processSyncRun(ctx, payload)
		}
		return err
	}

	topic := client.Topic(topicName)
	if envBoolDefault("TALLY_SYNC_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	data, _ := json.Marshal(payload)
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// PubSubPushHandler accepts the push delivery from the subscription. It
// always acknowledges with 204: redelivering a malformed message cannot
// make it parse, and processSyncRun is idempotent for valid ones.
func PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_TALLY_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload SyncPubSubPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.RunId == 0 || payload.BusinessId == "" {
			c.Status(204)
			return
		}

		if err := processSyncRun(c.Request.Context(), payload); err != nil {
			config.LogError(config.GetLogger(), "tallysync", "PubSubPushHandler", "sync run failed", map[string]any{
				"run_id": payload.RunId,
			}, err)
		}
		c.Status(204)
	}
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
