package orchestrator

import (
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/session"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Registry holds the live orchestration client of each user. Sessions live
// in memory only; an idle conversation expires after the TTL and its client
// is closed so that any response still in flight is discarded.
type Registry struct {
	clients   *gocache.Cache
	connector ConsultConnector
	logger    *zap.Logger
	ttl       time.Duration
}

func NewRegistry(connector ConsultConnector, logger *zap.Logger, ttl, cleanupInterval time.Duration) *Registry {
	clients := gocache.New(ttl, cleanupInterval)
	clients.OnEvicted(func(userID string, v any) {
		if client, ok := v.(*Client); ok {
			client.Close()
			logger.Info("session expired", zap.String("user_id", userID))
		}
	})

	return &Registry{
		clients:   clients,
		connector: connector,
		logger:    logger,
		ttl:       ttl,
	}
}

// Get returns the user's client, creating one on first contact. A tier that
// differs from the stored one is applied to the running conversation, so a
// mid-conversation upgrade unlocks gated features immediately. An empty tier
// keeps the current one. Each access slides the expiration window.
func (r *Registry) Get(userID string, userTier entity.UserTier) *Client {
	if v, ok := r.clients.Get(userID); ok {
		client := v.(*Client)
		if userTier != "" && client.Store().UserTier() != userTier {
			client.Store().SetTier(userTier)
			r.logger.Info("session tier changed",
				zap.String("user_id", userID),
				zap.String("user_tier", string(userTier)),
			)
		}
		r.clients.Set(userID, client, r.ttl)
		return client
	}

	store := session.NewStore(userID, userTier)
	client := NewClient(store, r.connector, r.logger)
	r.clients.Set(userID, client, r.ttl)

	r.logger.Info("session created",
		zap.String("user_id", userID),
		zap.String("user_tier", string(userTier)),
	)
	return client
}

// Lookup returns the user's client without creating one.
func (r *Registry) Lookup(userID string) (*Client, bool) {
	v, ok := r.clients.Get(userID)
	if !ok {
		return nil, false
	}
	return v.(*Client), true
}

// Drop removes and closes the user's client.
func (r *Registry) Drop(userID string) {
	if v, ok := r.clients.Get(userID); ok {
		v.(*Client).Close()
	}
	r.clients.Delete(userID)
}
