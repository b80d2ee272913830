package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"classifieds-api/internal/model"

	"github.com/redis/go-redis/v9"
)

// Buffer configuration
const (
	MaxBatchSize       = 50
	FlushTimeout       = 60 * time.Second
	StaleDataThreshold = 1 * time.Hour
	CleanupInterval    = 5 * time.Minute
)

// FlushFunc persists a batch of buffered read receipts to the database.
type FlushFunc func(ctx context.Context, receipts []model.ReadReceipt) error

var deleteIfUnchangedScript = redis.NewScript(`
	if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
		redis.call("HDEL", KEYS[1], ARGV[1])
		redis.call("SREM", KEYS[2], ARGV[1])
		return 1
	else
		return 0
	end
`)

// RedisReceiptBuffer buffers mark-as-read receipts in Redis and flushes them
// to the database in batches. Marking a conversation read is acknowledged the
// moment the receipt lands in the buffer; the database write happens behind
// the caller's back. Receipts are idempotent, so re-buffering the same
// conversation/viewer pair just advances its timestamp.
type RedisReceiptBuffer struct {
	client        *redis.Client
	flushFunc     FlushFunc
	flushTicker   *time.Ticker
	cleanupTicker *time.Ticker
	stopFlush     chan struct{}
	stopOnce      sync.Once
	keyPrefix     string
}

// RedisBufferConfig holds configuration for the receipt buffer.
type RedisBufferConfig struct {
	Addr          string
	Password      string
	DB            int
	FlushInterval time.Duration
	KeyPrefix     string
}

// NewRedisReceiptBuffer creates a Redis-backed read-receipt buffer.
func NewRedisReceiptBuffer(cfg RedisBufferConfig, flushFunc FlushFunc) (*RedisReceiptBuffer, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "classifieds:receipts"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}

	b := &RedisReceiptBuffer{
		client:        client,
		flushFunc:     flushFunc,
		flushTicker:   time.NewTicker(cfg.FlushInterval),
		cleanupTicker: time.NewTicker(CleanupInterval),
		stopFlush:     make(chan struct{}),
		keyPrefix:     keyPrefix,
	}

	go b.backgroundFlush()
	go b.backgroundCleanup()

	log.Printf("[RedisReceiptBuffer] Started - DB:%d, prefix:%s, flush:%v, batch:%d",
		cfg.DB, keyPrefix, cfg.FlushInterval, MaxBatchSize)
	return b, nil
}

func (b *RedisReceiptBuffer) bufferKey() string {
	return b.keyPrefix + ":buffer"
}

func (b *RedisReceiptBuffer) pendingKey() string {
	return b.keyPrefix + ":pending"
}

func receiptField(conversationID, viewerID string) string {
	return conversationID + ":" + viewerID
}

// Add buffers a read receipt in Redis.
func (b *RedisReceiptBuffer) Add(ctx context.Context, receipt model.ReadReceipt) error {
	jsonData, err := json.Marshal(&receipt)
	if err != nil {
		return err
	}

	field := receiptField(receipt.ConversationID, receipt.ViewerID)
	pipe := b.client.Pipeline()
	pipe.HSet(ctx, b.bufferKey(), field, jsonData)
	pipe.SAdd(ctx, b.pendingKey(), field)
	_, err = pipe.Exec(ctx)
	return err
}

// Count returns the number of pending receipts.
func (b *RedisReceiptBuffer) Count(ctx context.Context) (int64, error) {
	return b.client.SCard(ctx, b.pendingKey()).Result()
}

// FlushBatch writes up to MaxBatchSize receipts to the database.
func (b *RedisReceiptBuffer) FlushBatch(ctx context.Context) (int, error) {
	fields, err := b.client.SRandMemberN(ctx, b.pendingKey(), MaxBatchSize).Result()
	if err != nil {
		return 0, err
	}

	if len(fields) == 0 {
		return 0, nil
	}

	receipts := make([]model.ReadReceipt, 0, len(fields))
	originalData := make(map[string]string)

	for _, field := range fields {
		data, err := b.client.HGet(ctx, b.bufferKey(), field).Bytes()
		if err == redis.Nil {
			b.client.SRem(ctx, b.pendingKey(), field)
			continue
		}
		if err != nil {
			log.Printf("[RedisReceiptBuffer] Error getting %s: %v", field, err)
			continue
		}

		originalData[field] = string(data)

		var receipt model.ReadReceipt
		if err := json.Unmarshal(data, &receipt); err != nil {
			log.Printf("[RedisReceiptBuffer] Error unmarshaling %s: %v", field, err)
			b.client.HDel(ctx, b.bufferKey(), field)
			b.client.SRem(ctx, b.pendingKey(), field)
			continue
		}
		receipts = append(receipts, receipt)
	}

	if len(receipts) == 0 {
		return 0, nil
	}

	if err := b.flushFunc(ctx, receipts); err != nil {
		log.Printf("[RedisReceiptBuffer] Flush error: %v", err)
		return 0, err
	}

	// A receipt re-buffered during the flush has newer data; leave it in
	// place for the next batch.
	pipe := b.client.Pipeline()
	for field, rawJSON := range originalData {
		deleteIfUnchangedScript.Run(ctx, pipe, []string{b.bufferKey(), b.pendingKey()}, field, rawJSON)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[RedisReceiptBuffer] Error clearing Redis: %v", err)
	}

	return len(receipts), nil
}

// Flush writes one batch of buffered receipts to the database.
func (b *RedisReceiptBuffer) Flush(ctx context.Context) error {
	_, err := b.FlushBatch(ctx)
	return err
}

// CleanupStale drops receipts older than StaleDataThreshold that repeatedly
// failed to flush.
func (b *RedisReceiptBuffer) CleanupStale(ctx context.Context) (int, error) {
	fields, err := b.client.SMembers(ctx, b.pendingKey()).Result()
	if err != nil {
		return 0, err
	}

	if len(fields) == 0 {
		return 0, nil
	}

	staleThreshold := time.Now().Add(-StaleDataThreshold)
	staleCount := 0
	pipe := b.client.Pipeline()

	for _, field := range fields {
		data, err := b.client.HGet(ctx, b.bufferKey(), field).Bytes()
		if err == redis.Nil {
			pipe.SRem(ctx, b.pendingKey(), field)
			continue
		}
		if err != nil {
			continue
		}

		var receipt model.ReadReceipt
		if err := json.Unmarshal(data, &receipt); err != nil {
			pipe.HDel(ctx, b.bufferKey(), field)
			pipe.SRem(ctx, b.pendingKey(), field)
			staleCount++
			continue
		}

		if receipt.ReadAt.Before(staleThreshold) {
			pipe.HDel(ctx, b.bufferKey(), field)
			pipe.SRem(ctx, b.pendingKey(), field)
			staleCount++
		}
	}

	if staleCount > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("[RedisReceiptBuffer] Cleanup exec error: %v", err)
			return 0, err
		}
		log.Printf("[RedisReceiptBuffer] Cleaned up %d stale receipts", staleCount)
	}

	return staleCount, nil
}

func (b *RedisReceiptBuffer) backgroundFlush() {
	for {
		select {
		case <-b.flushTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), FlushTimeout)
			if _, err := b.FlushBatch(ctx); err != nil {
				log.Printf("[RedisReceiptBuffer] Background flush error: %v", err)
			}
			cancel()
		case <-b.stopFlush:
			log.Printf("[RedisReceiptBuffer] Shutdown: flushing remaining receipts...")
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			for {
				flushed, err := b.FlushBatch(ctx)
				if err != nil {
					log.Printf("[RedisReceiptBuffer] Shutdown flush error: %v", err)
					break
				}
				if flushed == 0 {
					break
				}
			}
			cancel()
			log.Printf("[RedisReceiptBuffer] Shutdown flush complete")
			return
		}
	}
}

func (b *RedisReceiptBuffer) backgroundCleanup() {
	for {
		select {
		case <-b.cleanupTicker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			b.CleanupStale(ctx)
			cancel()
		case <-b.stopFlush:
			return
		}
	}
}

// Close stops the buffer and performs a final flush.
func (b *RedisReceiptBuffer) Close() error {
	b.stopOnce.Do(func() {
		b.flushTicker.Stop()
		b.cleanupTicker.Stop()
		close(b.stopFlush)
	})
	return b.client.Close()
}
