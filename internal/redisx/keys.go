package redisx

import "time"

const (
	// Every storage key lives under this prefix: storefront:{logical key}
	KeyPrefix = "storefront:"

	// Per-key mutex: storefront:lock:{logical key} -> owner token
	KeyLock = KeyPrefix + "lock:%s"

	// Change notifications between processes sharing the backend.
	ChannelNotify = KeyPrefix + "notify"
)

var (
	TTLLock        = 5 * time.Second
	LockRetryDelay = 20 * time.Millisecond
)
