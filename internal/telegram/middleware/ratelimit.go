package middleware

import (
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// bucket tracks the token bucket of a single user
type bucket struct {
	tokens        float64
	lastRefill    time.Time
	warningsSent  int
	lastWarningAt time.Time
	mu            sync.Mutex
}

// RateLimiterMiddleware implements per-user token bucket rate limiting
type RateLimiterMiddleware struct {
	buckets         map[int64]*bucket
	mu              sync.RWMutex
	maxTokens       float64
	refillRate      float64 // tokens per second
	warningInterval time.Duration
	logger          *zap.Logger
	api             *tgbotapi.BotAPI
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	api *tgbotapi.BotAPI,
) *RateLimiterMiddleware {
	maxTokens := float64(requestsPerMinute)
	if burstSize > 0 && float64(burstSize) < maxTokens {
		maxTokens = float64(burstSize)
	}

	rl := &RateLimiterMiddleware{
		buckets:         make(map[int64]*bucket),
		maxTokens:       maxTokens,
		refillRate:      float64(requestsPerMinute) / 60.0,
		warningInterval: 30 * time.Second,
		logger:          logger,
		api:             api,
	}

	go rl.evictIdleBuckets()

	return rl
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	var userID, chatID int64

	switch {
	case update.Message != nil:
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		next(update)
		return
	}

	if !rl.allow(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

func (rl *RateLimiterMiddleware) allow(userID, chatID int64) bool {
	rl.mu.Lock()
	b, exists := rl.buckets[userID]
	if !exists {
		b = &bucket{
			tokens:     rl.maxTokens,
			lastRefill: time.Now(),
		}
		rl.buckets[userID] = b
	}
	rl.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()

	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * rl.refillRate
	if b.tokens > rl.maxTokens {
		b.tokens = rl.maxTokens
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		b.warningsSent = 0
		return true
	}

	// Warn the user, but not on every rejected update
	if now.Sub(b.lastWarningAt) > rl.warningInterval {
		b.warningsSent++
		b.lastWarningAt = now
		rl.sendWarning(chatID, b.warningsSent)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64, warningCount int) {
	var text string

	switch {
	case warningCount == 1:
		text = "⚠️ Terlalu banyak permintaan. Mohon tunggu sebentar."
	case warningCount == 2:
		text = "⚠️ Batas permintaan terlampaui. Tunggu sekitar 30 detik sebelum mencoba lagi."
	case warningCount >= 3:
		text = "🛑 Anda mengirim permintaan terlalu sering. Mohon tunggu satu menit."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := rl.api.Send(msg); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// evictIdleBuckets removes users that have been silent for an hour
func (rl *RateLimiterMiddleware) evictIdleBuckets() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()

		for userID, b := range rl.buckets {
			b.mu.Lock()
			if now.Sub(b.lastRefill) > time.Hour {
				delete(rl.buckets, userID)
				rl.logger.Debug("evicted idle user from rate limiter",
					zap.Int64("user_id", userID),
				)
			}
			b.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}
