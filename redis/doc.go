// Package redis is the shared session backend: a go-redis client with
// lifecycle support and TypedStore, a provider.ContextStore keeping JSON
// values with an optional TTL.
//
//	client, err := redis.New(redis.Config{Addr: "localhost:6379"})
//	store := redis.NewTypedStore[session.Credential](client, "scribe:session")
package redis
