// Package redis connects to Redis with go-redis/v9.
//
// Connect retries until the server answers a ping; Healthcheck wraps the same
// ping for readiness probes. The session package builds its Redis-backed store
// on the client returned here.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
