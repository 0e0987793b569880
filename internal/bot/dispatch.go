package bot

import (
	"context"
	"log"
	"sync"
	"time"
)

// queueSize bounds the per-chat inbox; the poll loop blocks when a single
// chat falls this far behind.
const queueSize = 32

type inbound struct {
	chatID int64
	text   string
}

// dispatcher fans messages out to one ordered queue per chat. Messages for
// one chat are processed strictly in arrival order by a single goroutine;
// different chats proceed in parallel.
type dispatcher struct {
	bot    *Bot
	mu     sync.Mutex
	queues map[int64]chan inbound
	wg     sync.WaitGroup
}

func newDispatcher(b *Bot) *dispatcher {
	return &dispatcher{
		bot:    b,
		queues: map[int64]chan inbound{},
	}
}

func (d *dispatcher) enqueue(ctx context.Context, msg inbound) {
	d.mu.Lock()
	q, ok := d.queues[msg.chatID]
	if !ok {
		q = make(chan inbound, queueSize)
		d.queues[msg.chatID] = q
		d.wg.Add(1)
		go d.drain(ctx, q)
	}
	d.mu.Unlock()

	// The drain goroutine exits on cancellation, so a blocked send on a
	// full queue must give up with it or Run would never return.
	select {
	case q <- msg:
	case <-ctx.Done():
	}
}

func (d *dispatcher) drain(ctx context.Context, q chan inbound) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			d.bot.handleMessage(ctx, msg.chatID, msg.text)
		}
	}
}

// Run polls for updates and dispatches them until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	d := newDispatcher(b)
	defer d.wg.Wait()

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.messenger.GetUpdates(offset, b.pollTimeout)
		if err != nil {
			log.Printf("[bot] getUpdates error: %v", err)
			sleepCtx(ctx, b.sleep)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil {
				continue
			}
			if update.Message.Text == nil {
				// Stickers, photos and the like.
				b.send(update.Message.Chat.ID, textOnlyText)
				continue
			}
			d.enqueue(ctx, inbound{chatID: update.Message.Chat.ID, text: *update.Message.Text})
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
