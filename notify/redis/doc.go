// Package redis publishes bond events to a Redis Pub/Sub channel using
// go-redis/v9.
package redis
